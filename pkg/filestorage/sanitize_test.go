package filestorage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"пробелы схлопываются в дефисы", "  my report.PDF ", "my-report.PDF"},
		{"недопустимые символы вырезаются", "отчёт (финал)?.pdf", "-.pdf"},
		{"попытка обхода директорий", "../../etc/passwd", "....etcpasswd"},
		{"пустое имя", "", "file"},
		{"только недопустимые символы", "???///", "file"},
		{"только точки", "..", "file"},
		{"обычное имя не меняется", "invoice_2026-08.pdf", "invoice_2026-08.pdf"},
		{"внутренние пробелы", "annual  report v2.docx", "annual-report-v2.docx"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFileName(tc.input), "имя после чистки не совпало")
		})
	}
}

func TestSanitizeFileNameNeverProducesTraversal(t *testing.T) {
	inputs := []string{"..", "../..", "..\\..", "a/../b", "   ..   ", "..%2f..", "c:\\windows\\system32"}
	for _, input := range inputs {
		cleaned := SanitizeFileName(input)
		assert.NotContains(t, cleaned, "/", "в имени не должно быть слэшей: %q", input)
		assert.NotContains(t, cleaned, "\\", "в имени не должно быть обратных слэшей: %q", input)
		assert.NotEqual(t, "..", cleaned, "имя не должно быть сегментом ..")
		for _, r := range cleaned {
			ok := r == '.' || r == '_' || r == '-' ||
				(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			assert.True(t, ok, "недопустимый символ %q в результате %q", r, cleaned)
		}
	}
}

func TestBuildStorageKey(t *testing.T) {
	key := BuildStorageKey("s1", "abc123", "my-report.PDF")
	assert.Equal(t, "s1/abc123/my-report.PDF", key)
	assert.False(t, strings.Contains(key, "\\"), "ключ всегда разделён прямыми слэшами")
}
