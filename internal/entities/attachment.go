package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Attachment - метаданные одного загруженного (или ожидающего загрузки) файла.
// Checksum и ActualSize либо оба NULL (загрузка не завершена), либо оба
// заполнены - они выставляются вместе, один раз, при успешном коммите.
type Attachment struct {
	ID           string      `db:"id"`
	SessionID    string      `db:"session_id"`
	StorageKey   string      `db:"storage_key"`
	FileName     string      `db:"file_name"`
	MimeType     string      `db:"mime_type"`
	DeclaredSize null.Int64  `db:"declared_size"`
	Checksum     null.String `db:"checksum"`
	ActualSize   null.Int64  `db:"actual_size"`
	URL          string      `db:"url"`
	CreatedAt    time.Time   `db:"created_at"`
}

// Committed сообщает, завершилась ли загрузка файла.
func (a *Attachment) Committed() bool {
	return a.Checksum.Valid && a.ActualSize.Valid
}
