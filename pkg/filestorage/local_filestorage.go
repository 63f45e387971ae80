// pkg/filestorage/local_filestorage.go

package filestorage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "onboarding-system/pkg/errors"

	"github.com/google/uuid"
)

const copyBufferSize = 32 * 1024

// FileStorageInterface определяет контракт для хранилища файлов вложений.
type FileStorageInterface interface {
	EnsureRoot() error
	ResolvePath(storageKey string) (string, error)
	SaveStream(storageKey string, src io.Reader, maxSize int64, declaredSize *int64) (written int64, checksum string, err error)
	Stat(storageKey string) (string, error)
	Delete(storageKey string) error
}

type LocalFileStorage struct {
	basePath string
}

func NewLocalFileStorage(basePath string) (FileStorageInterface, error) {
	s := &LocalFileStorage{basePath: basePath}
	if err := s.EnsureRoot(); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureRoot создаёт корневую директорию хранилища, если её ещё нет.
func (s *LocalFileStorage) EnsureRoot() error {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return fmt.Errorf("%w: не удалось создать директорию %s: %v", apperrors.ErrStorageUnavailable, s.basePath, err)
	}
	return nil
}

// ResolvePath превращает ключ хранения в абсолютный путь на диске.
// Ключ всегда разделён "/"; обратные слэши нормализуются, пустые сегменты
// и сегменты ".." отклоняются, чтобы ключ не мог выйти за пределы basePath.
func (s *LocalFileStorage) ResolvePath(storageKey string) (string, error) {
	normalized := strings.ReplaceAll(storageKey, "\\", "/")
	segments := strings.Split(normalized, "/")
	for _, segment := range segments {
		if segment == "" || segment == ".." {
			return "", apperrors.NewInvalidInputError("недопустимый сегмент в ключе хранения: %q", storageKey)
		}
	}
	parts := append([]string{s.basePath}, segments...)
	return filepath.Abs(filepath.Join(parts...))
}

// SaveStream принимает поток байт и доводит его до файла по ключу хранения.
// Пока поток читается, считается SHA-256 и счётчик байт; превышение
// maxSize или declaredSize обрывает приём. Запись идёт во временный файл
// рядом с конечным, и только успешное завершение потока делает файл
// видимым по конечному пути (atomic rename). Ни один путь с ошибкой не
// оставляет временный файл на диске.
func (s *LocalFileStorage) SaveStream(storageKey string, src io.Reader, maxSize int64, declaredSize *int64) (int64, string, error) {
	finalPath, err := s.ResolvePath(storageKey)
	if err != nil {
		return 0, "", err
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return 0, "", fmt.Errorf("%w: не удалось создать директорию вложения: %v", apperrors.ErrStorageUnavailable, err)
	}

	// Временный файл живёт в той же директории, чтобы rename был атомарным.
	tmpPath := fmt.Sprintf("%s.%s.tmp", finalPath, uuid.New().String())
	dst, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, "", fmt.Errorf("%w: не удалось создать временный файл: %v", apperrors.ErrStorageUnavailable, err)
	}

	cleanup := func() {
		dst.Close()
		os.Remove(tmpPath)
	}

	hasher := sha256.New()
	var written int64
	buf := make([]byte, copyBufferSize)

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > maxSize {
				cleanup()
				return 0, "", apperrors.ErrAttachmentTooLarge
			}
			if declaredSize != nil && written > *declaredSize {
				cleanup()
				return 0, "", apperrors.ErrAttachmentSizeExceeded
			}
			// Запись в файл блокирует чтение следующего куска:
			// входящий поток ждёт, пока диск не примет данные.
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				cleanup()
				return 0, "", writeErr
			}
			hasher.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// Обрыв входящего потока: убираем всё, что успели записать.
			cleanup()
			return 0, "", readErr
		}
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, "", err
	}

	// Повторная загрузка по тому же ключу просто перезаписывает файл.
	if err := os.Remove(finalPath); err != nil && !os.IsNotExist(err) {
		os.Remove(tmpPath)
		return 0, "", err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return 0, "", err
	}

	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}

// Stat возвращает абсолютный путь файла по ключу, если файл существует.
func (s *LocalFileStorage) Stat(storageKey string) (string, error) {
	fullPath, err := s.ResolvePath(storageKey)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.ErrAttachmentFileMissing
		}
		return "", err
	}
	return fullPath, nil
}

// Delete удаляет файл по ключу. Отсутствие файла ошибкой не считается.
func (s *LocalFileStorage) Delete(storageKey string) error {
	fullPath, err := s.ResolvePath(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
