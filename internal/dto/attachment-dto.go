package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// IssueUploadDTO: что клиент присылает для получения тикета загрузки.
type IssueUploadDTO struct {
	SessionID    string `json:"session_id" validate:"required,max=100"`
	FileName     string `json:"file_name" validate:"omitempty,max=255"`
	MimeType     string `json:"mime_type" validate:"omitempty,max=100"`
	DeclaredSize *int64 `json:"declared_size" validate:"omitempty,gte=0"`
}

// UploadHandleDTO: ответ на выдачу тикета - куда и как загружать байты.
type UploadHandleDTO struct {
	UploadURL  string                `json:"upload_url"`
	Method     string                `json:"method"`
	Headers    map[string]string     `json:"headers"`
	ExpiresAt  time.Time             `json:"expires_at"`
	Attachment AttachmentResponseDTO `json:"attachment"`
}

// AttachmentResponseDTO: что сервер отправляет клиенту в ответ.
type AttachmentResponseDTO struct {
	ID           string      `json:"id"`
	SessionID    string      `json:"session_id"`
	FileName     string      `json:"file_name"`
	MimeType     string      `json:"mime_type"`
	DeclaredSize null.Int64  `json:"declared_size"`
	Checksum     null.String `json:"checksum"`
	ActualSize   null.Int64  `json:"actual_size"`
	URL          string      `json:"url"`
	CreatedAt    time.Time   `json:"created_at"`
}
