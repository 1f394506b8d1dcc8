package bundle

import (
	"context"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonesrussell/libingest/internal/classify"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
	"github.com/jonesrussell/libingest/internal/storage"
)

// UploadedFile reports one successfully materialized entry.
type UploadedFile struct {
	Name       string                    `json:"name"`
	URL        string                    `json:"url"`
	Descriptor domain.ResourceDescriptor `json:"-"`
}

// FailedFile reports one entry whose upload failed.
type FailedFile struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// BatchResult is the partial-success report of a batch upload: M selected
// entries with N failures always yield len(Uploaded) == M-N and
// len(Failed) == N, never an all-or-nothing error.
type BatchResult struct {
	Uploaded []UploadedFile
	Failed   []FailedFile
}

// Uploader materializes extracted archive entries as library objects.
type Uploader struct {
	store       storage.Materializer
	log         logger.Interface
	concurrency int
	now         func() time.Time
}

// NewUploader creates a batch uploader. concurrency 1 processes entries
// sequentially in archive order; higher values fan out with that bound
// while preserving result order and the partial-failure contract.
func NewUploader(store storage.Materializer, log logger.Interface, concurrency int) *Uploader {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Uploader{
		store:       store,
		log:         log,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// uploadSlot is the per-entry result of a batch upload, indexed by the
// entry's position so fan-out cannot reorder the report.
type uploadSlot struct {
	uploaded *UploadedFile
	failed   *FailedFile
}

// UploadSelected uploads each extracted file independently. One entry's
// failure is recorded and never stops the remaining entries.
func (u *Uploader) UploadSelected(
	ctx context.Context,
	archiveName string,
	format Format,
	files []domain.ExtractedFile,
) *BatchResult {
	slots := make([]uploadSlot, len(files))

	if u.concurrency == 1 {
		for i, f := range files {
			slots[i] = u.uploadOne(ctx, archiveName, format, f)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(u.concurrency)
		for i, f := range files {
			g.Go(func() error {
				slots[i] = u.uploadOne(gctx, archiveName, format, f)
				return nil
			})
		}
		// Workers never return errors; failures land in their slots.
		_ = g.Wait()
	}

	result := &BatchResult{
		Uploaded: []UploadedFile{},
		Failed:   []FailedFile{},
	}
	for _, slot := range slots {
		if slot.uploaded != nil {
			result.Uploaded = append(result.Uploaded, *slot.uploaded)
		}
		if slot.failed != nil {
			result.Failed = append(result.Failed, *slot.failed)
		}
	}

	u.log.Info("batch upload finished",
		"archive", archiveName,
		"uploaded", len(result.Uploaded),
		"failed", len(result.Failed),
	)

	return result
}

// uploadOne materializes a single extracted file and builds its resource
// descriptor.
func (u *Uploader) uploadOne(
	ctx context.Context,
	archiveName string,
	format Format,
	file domain.ExtractedFile,
) uploadSlot {
	classification := classify.Classify(file.Entry.Name, "")
	objectPath := storage.ObjectPath(classification.Folder, file.Entry.Name, u.now())

	locator, err := u.store.Put(ctx, objectPath, file.Data, classification.ContentType)
	if err != nil {
		u.log.Warn("entry upload failed",
			"archive", archiveName,
			"path", file.Entry.Path,
			"error", err.Error(),
		)
		return uploadSlot{failed: &FailedFile{Name: file.Entry.Name, Error: err.Error()}}
	}

	descriptor := domain.ResourceDescriptor{
		Title:     TitleFromFilename(file.Entry.Name),
		Locator:   locator,
		SizeBytes: int64(len(file.Data)),
		Category:  classification.Category,
		Provenance: &domain.Provenance{
			ArchiveName:  archiveName,
			OriginalPath: file.Entry.Path,
			Format:       string(format),
		},
	}

	return uploadSlot{uploaded: &UploadedFile{
		Name:       file.Entry.Name,
		URL:        locator,
		Descriptor: descriptor,
	}}
}

// TitleFromFilename derives a human-readable title from an archive entry
// name: the extension is stripped and underscores become spaces.
func TitleFromFilename(name string) string {
	title := strings.TrimSuffix(name, path.Ext(name))
	return strings.ReplaceAll(title, "_", " ")
}
