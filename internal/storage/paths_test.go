package storage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/libingest/internal/storage"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already safe", "brief.pdf", "brief.pdf"},
		{"spaces stripped", "case opinion.md", "caseopinion.md"},
		{"unicode stripped", "résumé.docx", "rsum.docx"},
		{"underscores stripped", "my_file.txt", "myfile.txt"},
		{"path separators stripped", "../../etc/passwd", "....etcpasswd"},
		{"empty becomes fallback", "", "file"},
		{"only unsafe chars becomes fallback", "???***", "file"},
		{"only dots becomes fallback", "...", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storage.SanitizeFilename(tt.in))
		})
	}
}

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	got := storage.ObjectPath("documents", "brief.pdf", now)
	assert.Equal(t, "documents/1700000000000_brief.pdf", got)

	// Same name at different instants yields different paths.
	later := storage.ObjectPath("documents", "brief.pdf", now.Add(time.Millisecond))
	assert.NotEqual(t, got, later)
}
