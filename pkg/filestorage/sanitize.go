package filestorage

import (
	"regexp"
	"strings"
)

const fallbackFileName = "file"

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	illegalRe    = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

// SanitizeFileName приводит имя файла к безопасному виду:
// пробелы схлопываются в дефисы, всё вне [A-Za-z0-9._-] вырезается.
// Если после чистки ничего не осталось - подставляется fallbackFileName.
func SanitizeFileName(name string) string {
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(name), "-")
	cleaned = illegalRe.ReplaceAllString(cleaned, "")
	if cleaned == "" || strings.Trim(cleaned, ".") == "" {
		return fallbackFileName
	}
	return cleaned
}

// BuildStorageKey собирает ключ хранения sessionId/attachmentId/fileName.
// Разделитель всегда "/", независимо от ОС.
func BuildStorageKey(sessionID, attachmentID, fileName string) string {
	return sessionID + "/" + attachmentID + "/" + fileName
}
