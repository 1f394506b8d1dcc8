// Package bundle enumerates and selectively extracts entries from ZIP and
// TAR/TAR.GZ archives without assuming unlimited memory.
//
// Enumeration is content-free for zip (the central directory is an index),
// but content-capturing for the tar family: tar has no independent directory
// index, so the single forward pass that lists entries also buffers the
// bytes of supported entries for the extraction call that follows. Bytes of
// unsupported entries are discarded immediately. This asymmetry is a
// deliberate trade-off; the alternative of re-decompressing on extract
// trades memory for a second full pass.
package bundle

import (
	"path"
	"strings"

	"github.com/jonesrussell/libingest/internal/classify"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
)

// metadataDirs are platform artifacts whose contents are never listed.
var metadataDirs = []string{"__MACOSX"}

// Engine enumerates and extracts archive entries.
type Engine struct {
	log logger.Interface
}

// NewEngine creates an archive extraction engine.
func NewEngine(log logger.Interface) *Engine {
	return &Engine{log: log}
}

// ContentCache holds the bytes of supported entries captured during a tar
// enumeration pass, in archive order.
type ContentCache struct {
	files []domain.ExtractedFile
}

// Enumerate walks the archive and partitions its files into supported
// entries and skipped paths. The returned cache is non-nil only for
// tar-family formats (see the package comment); callers hold it for the
// extraction call.
//
// Enumeration is deterministic: identical bytes yield identical entries and
// skipped paths in identical order.
func (e *Engine) Enumerate(name string, data []byte) (*domain.ArchivePreview, *ContentCache, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, nil, err
	}

	preview := &domain.ArchivePreview{
		ArchiveName:  name,
		Format:       string(format),
		Entries:      []domain.ArchiveEntry{},
		SkippedPaths: []string{},
	}

	switch format {
	case FormatZip:
		if err := e.enumerateZip(data, preview); err != nil {
			return nil, nil, err
		}
		return preview, nil, nil
	default:
		cache, err := e.enumerateTar(data, format, preview)
		if err != nil {
			return nil, nil, err
		}
		return preview, cache, nil
	}
}

// ExtractSelected returns the raw bytes of the selected entry paths. For
// zip the index is reopened and each selected entry is read on demand; for
// the tar family the bytes captured during the preceding Enumerate pass are
// served (pass the cache it returned, or nil to let extraction re-run the
// streaming pass).
//
// Entries are returned in archive order. A selected path that cannot be
// read is skipped; extraction failures never abort the whole call.
func (e *Engine) ExtractSelected(
	name string,
	data []byte,
	selectedPaths []string,
	cache *ContentCache,
) ([]domain.ExtractedFile, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool, len(selectedPaths))
	for _, p := range selectedPaths {
		selected[p] = true
	}

	if format == FormatZip {
		return e.extractZip(data, selected)
	}

	if cache == nil {
		preview := &domain.ArchivePreview{Entries: []domain.ArchiveEntry{}, SkippedPaths: []string{}}
		cache, err = e.enumerateTar(data, format, preview)
		if err != nil {
			return nil, err
		}
	}

	files := make([]domain.ExtractedFile, 0, len(selectedPaths))
	for _, f := range cache.files {
		if selected[f.Entry.Path] {
			files = append(files, f)
		}
	}
	return files, nil
}

// entryFor builds an ArchiveEntry for a supported archive file.
func entryFor(entryPath string, size int64) domain.ArchiveEntry {
	base := path.Base(entryPath)
	return domain.ArchiveEntry{
		Name:      base,
		Path:      entryPath,
		SizeBytes: size,
		Extension: classify.Extension(base),
		Category:  classify.Classify(base, "").Category,
	}
}

// skippable reports whether an archive path is invisible to enumeration:
// directories are handled by the container walkers; this covers hidden files
// and platform metadata directories.
func skippable(entryPath string) bool {
	cleaned := strings.TrimSuffix(entryPath, "/")
	for _, segment := range strings.Split(cleaned, "/") {
		if strings.HasPrefix(segment, ".") {
			return true
		}
		for _, meta := range metadataDirs {
			if segment == meta {
				return true
			}
		}
	}
	return false
}

// supported reports whether an archive path's extension is on the
// extraction allow-list.
func supported(entryPath string) bool {
	return classify.IsSupported(classify.Extension(entryPath))
}
