// Package api implements the HTTP API for the content-library ingestion
// service.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/libingest/internal/api/middleware"
	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
)

// Acquirer ingests one URL per call.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.AcquisitionRequest) *domain.AcquisitionOutcome
}

// ArchiveEngine enumerates and selectively extracts archive entries.
type ArchiveEngine interface {
	Enumerate(name string, data []byte) (*domain.ArchivePreview, *bundle.ContentCache, error)
	ExtractSelected(name string, data []byte, selectedPaths []string, cache *bundle.ContentCache) ([]domain.ExtractedFile, error)
}

// BatchUploader materializes extracted archive entries.
type BatchUploader interface {
	UploadSelected(ctx context.Context, archiveName string, format bundle.Format, files []domain.ExtractedFile) *bundle.BatchResult
}

// SetupRouter creates and configures the gin router with all routes.
func SetupRouter(
	log logger.Interface,
	acquirer Acquirer,
	engine ArchiveEngine,
	uploader BatchUploader,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(loggingMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.POST("/resources/acquire", handleAcquire(log, acquirer))
	v1.POST("/archives", handleArchive(log, engine, uploader))

	return router
}

// loggingMiddleware logs each request with its latency and status.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"request_id", c.GetString(middleware.RequestIDKey),
		)
	}
}
