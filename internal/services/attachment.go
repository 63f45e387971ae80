package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"onboarding-system/internal/dto"
	"onboarding-system/internal/entities"
	"onboarding-system/internal/repositories"
	"onboarding-system/pkg/config"
	apperrors "onboarding-system/pkg/errors"
	"onboarding-system/pkg/filestorage"
	"onboarding-system/pkg/ticketstore"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

const (
	attachmentIDBytes = 12 // 24 hex-символа
	uploadTokenBytes  = 24 // 48 hex-символов

	defaultMimeType     = "application/octet-stream"
	sessionListCacheTTL = time.Minute * 5
	sessionListCacheKey = "session_attachments:"
)

// AttachmentServiceInterface определяет контракт конвейера загрузки вложений:
// выдача тикета, приём потока байт, выдача пути к файлу и список по сессии.
type AttachmentServiceInterface interface {
	IssueUpload(ctx context.Context, payload dto.IssueUploadDTO) (*dto.UploadHandleDTO, error)
	ReceiveUpload(ctx context.Context, token string, body io.Reader, contentType string, contentLength int64) (*dto.AttachmentResponseDTO, error)
	OpenAttachmentPath(ctx context.Context, attachmentID string) (*entities.Attachment, string, error)
	ListForSession(ctx context.Context, sessionID string) ([]dto.AttachmentResponseDTO, error)
}

type AttachmentService struct {
	repo        repositories.AttachmentRepositoryInterface
	cache       repositories.CacheRepositoryInterface
	fileStorage filestorage.FileStorageInterface
	tickets     *ticketstore.Store
	storageCfg  *config.StorageConfig
	logger      *zap.Logger
}

func NewAttachmentService(
	repo repositories.AttachmentRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
	tickets *ticketstore.Store,
	storageCfg *config.StorageConfig,
	logger *zap.Logger,
) AttachmentServiceInterface {
	return &AttachmentService{
		repo:        repo,
		cache:       cache,
		fileStorage: fileStorage,
		tickets:     tickets,
		storageCfg:  storageCfg,
		logger:      logger,
	}
}

// IssueUpload создаёт запись вложения и одноразовый тикет загрузки.
func (s *AttachmentService) IssueUpload(ctx context.Context, payload dto.IssueUploadDTO) (*dto.UploadHandleDTO, error) {
	if err := s.fileStorage.EnsureRoot(); err != nil {
		s.logger.Error("хранилище недоступно при выдаче тикета", zap.Error(err))
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, apperrors.ErrStorageUnavailable.Error(), err, nil)
	}

	attachmentID, err := randomHex(attachmentIDBytes)
	if err != nil {
		return nil, err
	}
	token, err := randomHex(uploadTokenBytes)
	if err != nil {
		return nil, err
	}

	fileName := filestorage.SanitizeFileName(payload.FileName)
	storageKey := filestorage.BuildStorageKey(payload.SessionID, attachmentID, fileName)

	mimeType := payload.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	attachment := &entities.Attachment{
		ID:           attachmentID,
		SessionID:    payload.SessionID,
		StorageKey:   storageKey,
		FileName:     fileName,
		MimeType:     mimeType,
		DeclaredSize: null.Int64FromPtr(payload.DeclaredSize),
		URL:          "/uploads/" + storageKey,
	}

	if err := s.repo.Create(ctx, attachment); err != nil {
		return nil, apperrors.NewHttpError(http.StatusInternalServerError, apperrors.ErrStorageUnavailable.Error(), err,
			map[string]interface{}{"sessionId": payload.SessionID})
	}

	expiresAt := time.Now().Add(s.storageCfg.TicketTTL)
	s.tickets.Put(token, ticketstore.Ticket{
		AttachmentID: attachmentID,
		ExpiresAt:    expiresAt,
	})

	s.invalidateSessionCache(ctx, payload.SessionID)

	s.logger.Info("выдан тикет загрузки",
		zap.String("attachmentId", attachmentID),
		zap.String("sessionId", payload.SessionID),
		zap.Time("expiresAt", expiresAt),
	)

	return &dto.UploadHandleDTO{
		UploadURL:  "/api/upload/" + token,
		Method:     http.MethodPut,
		Headers:    map[string]string{"Content-Type": mimeType},
		ExpiresAt:  expiresAt,
		Attachment: toAttachmentResponseDTO(attachment),
	}, nil
}

// ReceiveUpload принимает поток байт по тикету и коммитит файл.
// Тикет гасится при первом же обращении, даже если дальше что-то пойдёт
// не так: повторная попытка с тем же токеном невозможна.
func (s *AttachmentService) ReceiveUpload(ctx context.Context, token string, body io.Reader, contentType string, contentLength int64) (*dto.AttachmentResponseDTO, error) {
	ticket, ok := s.tickets.Consume(token, time.Now())
	if !ok {
		return nil, apperrors.NewHttpError(http.StatusGone, apperrors.ErrInvalidOrExpiredTicket.Error(), apperrors.ErrInvalidOrExpiredTicket, nil)
	}

	attachment, err := s.repo.FindByID(ctx, ticket.AttachmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAttachmentNotFound) {
			return nil, apperrors.NewHttpError(http.StatusNotFound, apperrors.ErrAttachmentNotFound.Error(), err,
				map[string]interface{}{"attachmentId": ticket.AttachmentID})
		}
		return nil, err
	}

	// Быстрая проверка заявленной длины до чтения единственного байта.
	if contentLength >= 0 {
		if contentLength > s.storageCfg.MaxAttachmentSize {
			return nil, apperrors.NewHttpError(http.StatusRequestEntityTooLarge, apperrors.ErrAttachmentTooLarge.Error(), apperrors.ErrAttachmentTooLarge,
				map[string]interface{}{"contentLength": contentLength, "max": s.storageCfg.MaxAttachmentSize})
		}
		if attachment.DeclaredSize.Valid && contentLength > attachment.DeclaredSize.Int64 {
			return nil, apperrors.NewHttpError(http.StatusRequestEntityTooLarge, apperrors.ErrAttachmentSizeExceeded.Error(), apperrors.ErrAttachmentSizeExceeded,
				map[string]interface{}{"contentLength": contentLength, "declared": attachment.DeclaredSize.Int64})
		}
	}

	written, checksum, err := s.fileStorage.SaveStream(attachment.StorageKey, body, s.storageCfg.MaxAttachmentSize, attachment.DeclaredSize.Ptr())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrAttachmentTooLarge):
			return nil, apperrors.NewHttpError(http.StatusRequestEntityTooLarge, apperrors.ErrAttachmentTooLarge.Error(), err,
				map[string]interface{}{"attachmentId": attachment.ID})
		case errors.Is(err, apperrors.ErrAttachmentSizeExceeded):
			return nil, apperrors.NewHttpError(http.StatusRequestEntityTooLarge, apperrors.ErrAttachmentSizeExceeded.Error(), err,
				map[string]interface{}{"attachmentId": attachment.ID})
		}
		s.logger.Error("ошибка приёма потока вложения",
			zap.String("attachmentId", attachment.ID),
			zap.Error(err),
		)
		return nil, err
	}

	resolvedPath, err := s.fileStorage.ResolvePath(attachment.StorageKey)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = attachment.MimeType
	}

	updated, err := s.repo.UpdateUploadResult(ctx, attachment.ID, checksum, written, resolvedPath, contentType)
	if err != nil {
		return nil, err
	}

	s.invalidateSessionCache(ctx, updated.SessionID)

	s.logger.Info("вложение загружено",
		zap.String("attachmentId", updated.ID),
		zap.Int64("size", written),
		zap.String("checksum", checksum),
	)

	response := toAttachmentResponseDTO(updated)
	return &response, nil
}

// OpenAttachmentPath отдаёт метаданные и путь к файлу на диске.
func (s *AttachmentService) OpenAttachmentPath(ctx context.Context, attachmentID string) (*entities.Attachment, string, error) {
	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAttachmentNotFound) {
			return nil, "", apperrors.NewHttpError(http.StatusNotFound, apperrors.ErrAttachmentNotFound.Error(), err,
				map[string]interface{}{"attachmentId": attachmentID})
		}
		return nil, "", err
	}

	path, err := s.fileStorage.Stat(attachment.StorageKey)
	if err != nil {
		if errors.Is(err, apperrors.ErrAttachmentFileMissing) {
			return nil, "", apperrors.NewHttpError(http.StatusNotFound, apperrors.ErrAttachmentFileMissing.Error(), err,
				map[string]interface{}{"attachmentId": attachmentID})
		}
		return nil, "", err
	}

	return attachment, path, nil
}

// ListForSession возвращает вложения сессии, свежие первыми.
// Список кешируется в Redis и сбрасывается при выдаче тикета и коммите.
func (s *AttachmentService) ListForSession(ctx context.Context, sessionID string) ([]dto.AttachmentResponseDTO, error) {
	cacheKey := sessionListCacheKey + sessionID

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var list []dto.AttachmentResponseDTO
			if err := json.Unmarshal([]byte(cached), &list); err == nil {
				return list, nil
			}
		}
	}

	attachments, err := s.repo.FindAllBySessionID(ctx, sessionID)
	if err != nil {
		s.logger.Error("не удалось получить вложения сессии", zap.String("sessionId", sessionID), zap.Error(err))
		return nil, err
	}

	list := make([]dto.AttachmentResponseDTO, 0, len(attachments))
	for i := range attachments {
		list = append(list, toAttachmentResponseDTO(&attachments[i]))
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(list); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(encoded), sessionListCacheTTL); err != nil {
				s.logger.Warn("не удалось закешировать список вложений", zap.Error(err))
			}
		}
	}

	return list, nil
}

func (s *AttachmentService) invalidateSessionCache(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, sessionListCacheKey+sessionID); err != nil {
		s.logger.Warn("не удалось сбросить кеш вложений сессии", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

func toAttachmentResponseDTO(a *entities.Attachment) dto.AttachmentResponseDTO {
	return dto.AttachmentResponseDTO{
		ID:           a.ID,
		SessionID:    a.SessionID,
		FileName:     a.FileName,
		MimeType:     a.MimeType,
		DeclaredSize: a.DeclaredSize,
		Checksum:     a.Checksum,
		ActualSize:   a.ActualSize,
		URL:          a.URL,
		CreatedAt:    a.CreatedAt,
	}
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
