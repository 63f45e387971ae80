package filestorage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "onboarding-system/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errReader обрывает чтение после prefix, имитируя разрыв соединения.
type errReader struct {
	prefix []byte
	done   bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		n := copy(p, r.prefix)
		return n, nil
	}
	return 0, errors.New("соединение разорвано")
}

func newTestStorage(t *testing.T) (FileStorageInterface, string) {
	t.Helper()
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	require.NoError(t, err, "хранилище должно создаваться в пустой директории")
	return storage, dir
}

// listFiles возвращает все обычные файлы под корнем хранилища.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestSaveStreamRoundTrip(t *testing.T) {
	storage, root := newTestStorage(t)

	content := []byte("пример содержимого вложения для проверки контрольной суммы")
	expectedSum := sha256.Sum256(content)

	written, checksum, err := storage.SaveStream("s1/att1/report.pdf", bytes.NewReader(content), 1<<20, nil)
	require.NoError(t, err, "загрузка корректного потока не должна падать")

	assert.Equal(t, int64(len(content)), written, "счётчик байт должен совпасть с длиной потока")
	assert.Equal(t, hex.EncodeToString(expectedSum[:]), checksum, "контрольная сумма должна совпасть с независимо посчитанной")

	path, err := storage.Stat("s1/att1/report.pdf")
	require.NoError(t, err, "файл должен существовать после коммита")
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, onDisk, "содержимое на диске должно совпасть с потоком")

	// Временных файлов после коммита не остаётся.
	for _, f := range listFiles(t, root) {
		assert.False(t, strings.HasSuffix(f, ".tmp"), "временный файл не должен пережить коммит: %s", f)
	}
}

func TestSaveStreamMaxSizeExceeded(t *testing.T) {
	storage, root := newTestStorage(t)

	payload := bytes.Repeat([]byte("x"), 4096)
	_, _, err := storage.SaveStream("s1/att2/big.bin", bytes.NewReader(payload), 1024, nil)
	assert.ErrorIs(t, err, apperrors.ErrAttachmentTooLarge, "превышение максимума должно давать ErrAttachmentTooLarge")

	assert.Empty(t, listFiles(t, root), "после обрыва по лимиту на диске не должно остаться файлов")
}

func TestSaveStreamDeclaredSizeExceeded(t *testing.T) {
	storage, root := newTestStorage(t)

	declared := int64(100)
	payload := bytes.Repeat([]byte("y"), 500)
	_, _, err := storage.SaveStream("s1/att3/file.bin", bytes.NewReader(payload), 1<<20, &declared)
	assert.ErrorIs(t, err, apperrors.ErrAttachmentSizeExceeded, "превышение заявленного размера должно давать ErrAttachmentSizeExceeded")

	assert.Empty(t, listFiles(t, root), "после обрыва по заявленному размеру на диске не должно остаться файлов")
}

func TestSaveStreamSourceInterrupted(t *testing.T) {
	storage, root := newTestStorage(t)

	src := &errReader{prefix: []byte("частичные данные")}
	_, _, err := storage.SaveStream("s1/att4/partial.bin", src, 1<<20, nil)
	require.Error(t, err, "обрыв входящего потока должен пробрасываться")
	assert.NotErrorIs(t, err, apperrors.ErrAttachmentTooLarge)

	assert.Empty(t, listFiles(t, root), "после обрыва потока не должно остаться ни временного, ни конечного файла")
}

func TestSaveStreamOverwritesExistingFile(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, _, err := storage.SaveStream("s1/att5/doc.txt", strings.NewReader("первая версия"), 1<<20, nil)
	require.NoError(t, err)

	_, _, err = storage.SaveStream("s1/att5/doc.txt", strings.NewReader("вторая версия"), 1<<20, nil)
	require.NoError(t, err, "повторная загрузка по тому же ключу должна перезаписывать файл")

	path, err := storage.Stat("s1/att5/doc.txt")
	require.NoError(t, err)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "вторая версия", string(onDisk))
}

func TestResolvePathRejectsTraversal(t *testing.T) {
	storage, _ := newTestStorage(t)

	bad := []string{
		"../secret",
		"s1/../../etc/passwd",
		"s1//file",
		"",
		"s1/..\\..\\file",
	}
	for _, key := range bad {
		_, err := storage.ResolvePath(key)
		assert.Error(t, err, "ключ %q должен быть отклонён", key)
	}

	path, err := storage.ResolvePath("s1/att/file.txt")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path), "разрешённый путь должен быть абсолютным")
}

func TestStatMissingFile(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, err := storage.Stat("s1/none/absent.bin")
	assert.ErrorIs(t, err, apperrors.ErrAttachmentFileMissing, "отсутствующий файл должен давать ErrAttachmentFileMissing")
}

func TestDeleteIsIdempotent(t *testing.T) {
	storage, _ := newTestStorage(t)

	_, _, err := storage.SaveStream("s1/att6/tmp.bin", strings.NewReader("данные"), 1<<20, nil)
	require.NoError(t, err)

	require.NoError(t, storage.Delete("s1/att6/tmp.bin"))
	assert.NoError(t, storage.Delete("s1/att6/tmp.bin"), "повторное удаление не должно быть ошибкой")
}

var _ io.Reader = (*errReader)(nil)
