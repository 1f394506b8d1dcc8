package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/jonesrussell/libingest/internal/domain"
)

// enumerateTar makes the single forward pass over a tar stream. The
// container has no directory index, so listing and content capture happen
// together: supported entries are buffered into the returned cache for the
// extraction call, bytes of everything else are discarded as the reader
// advances past them.
func (e *Engine) enumerateTar(data []byte, format Format, preview *domain.ArchivePreview) (*ContentCache, error) {
	var stream io.Reader = bytes.NewReader(data)

	if format == FormatTarGzip {
		gzr, err := gzip.NewReader(stream)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gzr.Close()
		stream = gzr
	}

	cache := &ContentCache{}
	tr := tar.NewReader(stream)

	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A corrupt header ends the walk; whatever was listed so far
			// stands.
			e.log.Warn("tar stream ended early", "error", err.Error())
			break
		}

		if header.Typeflag != tar.TypeReg {
			continue
		}
		if skippable(header.Name) {
			continue
		}

		if !supported(header.Name) {
			preview.SkippedPaths = append(preview.SkippedPaths, header.Name)
			continue
		}

		// One entry's read failure must not abort the pass: record the
		// entry as skipped and move to the next header.
		content, err := io.ReadAll(tr)
		if err != nil {
			e.log.Warn("tar entry read failed, skipping",
				"path", header.Name,
				"error", err.Error(),
			)
			preview.SkippedPaths = append(preview.SkippedPaths, header.Name)
			continue
		}

		entry := entryFor(header.Name, header.Size)
		preview.Entries = append(preview.Entries, entry)
		cache.files = append(cache.files, domain.ExtractedFile{Entry: entry, Data: content})
	}

	return cache, nil
}
