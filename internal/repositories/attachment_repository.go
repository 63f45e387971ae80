// Файл: internal/repositories/attachment_repository.go
package repositories

import (
	"context"
	"errors"

	"onboarding-system/internal/entities"
	apperrors "onboarding-system/pkg/errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	attachmentTable  = "attachments"
	attachmentFields = "id, session_id, storage_key, file_name, mime_type, declared_size, checksum, actual_size, url, created_at"
)

// AttachmentRepositoryInterface - хранилище метаданных вложений.
// Сервис загрузки только создаёт и мутирует записи, удаление записей
// остаётся за основным приложением.
type AttachmentRepositoryInterface interface {
	Create(ctx context.Context, attachment *entities.Attachment) error
	FindByID(ctx context.Context, id string) (*entities.Attachment, error)
	FindAllBySessionID(ctx context.Context, sessionID string) ([]entities.Attachment, error)
	UpdateUploadResult(ctx context.Context, id, checksum string, actualSize int64, url, mimeType string) (*entities.Attachment, error)
}

type attachmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAttachmentRepository(storage *pgxpool.Pool, logger *zap.Logger) AttachmentRepositoryInterface {
	return &attachmentRepository{
		storage: storage,
		logger:  logger,
	}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entities.Attachment) error {
	query := `
		INSERT INTO attachments
		(id, session_id, storage_key, file_name, mime_type, declared_size, checksum, actual_size, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`
	err := r.storage.QueryRow(ctx, query,
		attachment.ID, attachment.SessionID, attachment.StorageKey,
		attachment.FileName, attachment.MimeType, attachment.DeclaredSize,
		attachment.Checksum, attachment.ActualSize, attachment.URL,
	).Scan(&attachment.CreatedAt)
	if err != nil {
		r.logger.Error("не удалось создать запись вложения", zap.String("id", attachment.ID), zap.Error(err))
	}
	return err
}

func (r *attachmentRepository) FindByID(ctx context.Context, id string) (*entities.Attachment, error) {
	query := `SELECT ` + attachmentFields + ` FROM attachments WHERE id = $1`
	var a entities.Attachment
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.SessionID, &a.StorageKey, &a.FileName, &a.MimeType,
		&a.DeclaredSize, &a.Checksum, &a.ActualSize, &a.URL, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *attachmentRepository) FindAllBySessionID(ctx context.Context, sessionID string) ([]entities.Attachment, error) {
	query, args, err := sq.
		Select(attachmentFields).
		From(attachmentTable).
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []entities.Attachment
	for rows.Next() {
		var a entities.Attachment
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.StorageKey, &a.FileName, &a.MimeType,
			&a.DeclaredSize, &a.Checksum, &a.ActualSize, &a.URL, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// UpdateUploadResult фиксирует результат успешной загрузки одним UPDATE:
// checksum и actual_size выставляются вместе, url и mime_type обновляются
// той же командой.
func (r *attachmentRepository) UpdateUploadResult(ctx context.Context, id, checksum string, actualSize int64, url, mimeType string) (*entities.Attachment, error) {
	query := `
		UPDATE attachments
		SET checksum = $2, actual_size = $3, url = $4, mime_type = $5
		WHERE id = $1
		RETURNING ` + attachmentFields
	var a entities.Attachment
	err := r.storage.QueryRow(ctx, query, id, checksum, actualSize, url, mimeType).Scan(
		&a.ID, &a.SessionID, &a.StorageKey, &a.FileName, &a.MimeType,
		&a.DeclaredSize, &a.Checksum, &a.ActualSize, &a.URL, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		r.logger.Error("не удалось зафиксировать результат загрузки", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &a, nil
}
