package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jonesrussell/libingest/internal/domain"
)

// openZip opens a zip central directory over an in-memory buffer.
func openZip(data []byte) (*zip.Reader, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip index: %w", err)
	}
	return reader, nil
}

// enumerateZip lists entries from the central directory. No entry content
// is read: the index carries names and sizes, so enumeration is free.
func (e *Engine) enumerateZip(data []byte, preview *domain.ArchivePreview) error {
	reader, err := openZip(data)
	if err != nil {
		return err
	}

	for _, f := range reader.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		if skippable(f.Name) {
			continue
		}

		if supported(f.Name) {
			preview.Entries = append(preview.Entries, entryFor(f.Name, int64(f.UncompressedSize64)))
		} else {
			preview.SkippedPaths = append(preview.SkippedPaths, f.Name)
		}
	}

	return nil
}

// extractZip reopens the index and reads each selected entry on demand, in
// archive order. A failing entry is skipped, never fatal.
func (e *Engine) extractZip(data []byte, selected map[string]bool) ([]domain.ExtractedFile, error) {
	reader, err := openZip(data)
	if err != nil {
		return nil, err
	}

	files := make([]domain.ExtractedFile, 0, len(selected))
	for _, f := range reader.File {
		if !selected[f.Name] || f.FileInfo().IsDir() {
			continue
		}
		if !supported(f.Name) {
			// Selection is constrained to the previously returned entries
			// list; anything else is ignored.
			continue
		}

		content, readErr := readZipEntry(f)
		if readErr != nil {
			e.log.Warn("zip entry read failed, skipping",
				"path", f.Name,
				"error", readErr.Error(),
			)
			continue
		}

		files = append(files, domain.ExtractedFile{
			Entry: entryFor(f.Name, int64(len(content))),
			Data:  content,
		})
	}

	return files, nil
}

// readZipEntry decompresses one zip entry into memory.
func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}
	return content, nil
}
