package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/logger"
)

// Archive endpoint modes.
const (
	modePreview = "preview"
	modeUpload  = "upload"
)

// maxArchiveBytes caps the size of an uploaded archive.
const maxArchiveBytes = 500 * 1024 * 1024 // 500 MB

// handleArchive serves both phases of the archive workflow. The preview is
// never persisted server-side: the upload phase re-derives everything from
// the resent archive bytes plus the previously returned entry paths.
func handleArchive(log logger.Interface, engine ArchiveEngine, uploader BatchUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxArchiveBytes)

		name, data, err := readArchiveFile(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		switch c.PostForm("mode") {
		case modePreview:
			previewArchive(c, engine, name, data)
		case modeUpload:
			uploadArchive(c, log, engine, uploader, name, data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be \"preview\" or \"upload\""})
		}
	}
}

// readArchiveFile pulls the archive bytes out of the multipart form.
func readArchiveFile(c *gin.Context) (string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", nil, errors.New("archive file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read uploaded file: %w", err)
	}

	return fileHeader.Filename, data, nil
}

// previewArchive enumerates the archive and returns its entry partition.
func previewArchive(c *gin.Context, engine ArchiveEngine, name string, data []byte) {
	preview, _, err := engine.Enumerate(name, data)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, bundle.ErrUnsupportedFormat) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"archiveName":  preview.ArchiveName,
		"archiveType":  preview.Format,
		"totalFiles":   len(preview.Entries),
		"skippedFiles": len(preview.SkippedPaths),
		"files":        preview.Entries,
		"skipped":      preview.SkippedPaths,
	})
}

// uploadRequest carries the upload-mode form fields.
type uploadRequest struct {
	CategoryID    string
	SelectedPaths []string
}

// parseUploadForm validates the upload-mode fields.
func parseUploadForm(c *gin.Context) (*uploadRequest, error) {
	req := &uploadRequest{CategoryID: c.PostForm("category_id")}
	if req.CategoryID == "" {
		return nil, errors.New("category_id is required")
	}

	raw := c.PostForm("selected_files")
	if raw == "" {
		return nil, errors.New("selected_files is required")
	}
	if err := json.Unmarshal([]byte(raw), &req.SelectedPaths); err != nil {
		return nil, fmt.Errorf("selected_files must be a JSON array of paths: %w", err)
	}
	if len(req.SelectedPaths) == 0 {
		return nil, errors.New("selected_files cannot be empty")
	}

	return req, nil
}

// uploadArchive extracts the selected entries and uploads each one
// independently, reporting partial success.
func uploadArchive(
	c *gin.Context,
	log logger.Interface,
	engine ArchiveEngine,
	uploader BatchUploader,
	name string,
	data []byte,
) {
	req, err := parseUploadForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := bundle.DetectFormat(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Tar-family archives capture entry bytes during enumeration; zip
	// archives extract lazily from the index. Either way the preview phase
	// left no server-side state, so enumerate again from the resent bytes.
	_, cache, err := engine.Enumerate(name, data)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	files, err := engine.ExtractSelected(name, data, req.SelectedPaths, cache)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result := uploader.UploadSelected(c.Request.Context(), name, format, files)

	log.Info("archive upload complete",
		"archive", name,
		"category_id", req.CategoryID,
		"uploaded", len(result.Uploaded),
		"failed", len(result.Failed),
	)

	c.JSON(http.StatusOK, gin.H{
		"uploaded":      len(result.Uploaded),
		"failed":        len(result.Failed),
		"uploadedFiles": result.Uploaded,
		"failedFiles":   result.Failed,
		"message": fmt.Sprintf("%d of %d files uploaded",
			len(result.Uploaded), len(result.Uploaded)+len(result.Failed)),
	})
}
