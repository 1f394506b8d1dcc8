package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	storageconfig "github.com/jonesrussell/libingest/internal/config/storage"
	"github.com/jonesrussell/libingest/internal/logger"
)

// MinIOMaterializer stores objects in a MinIO-compatible bucket.
type MinIOMaterializer struct {
	client *miniogo.Client
	config *storageconfig.Config
	logger logger.Interface
}

// Ensure MinIOMaterializer implements Materializer.
var _ Materializer = (*MinIOMaterializer)(nil)

// NewMinIO creates a new MinIO-backed materializer.
func NewMinIO(cfg *storageconfig.Config, log logger.Interface) (*MinIOMaterializer, error) {
	if cfg == nil {
		return nil, errors.New("storage config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("storage config: %w", err)
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	log.Info("object storage materializer initialized",
		"endpoint", cfg.Endpoint,
		"bucket", cfg.Bucket,
	)

	return &MinIOMaterializer{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// Put uploads data under path and returns the public locator.
//
// Paths are timestamp-qualified and freshly generated per call, so two puts
// never target the same key. A server-side precondition failure (a bucket
// with object locking or a conflicting policy) maps to ErrPathExists.
func (m *MinIOMaterializer) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(
		ctx,
		m.config.Bucket,
		path,
		bytes.NewReader(data),
		int64(len(data)),
		miniogo.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		var errResp miniogo.ErrorResponse
		if errors.As(err, &errResp) && errResp.StatusCode == http.StatusPreconditionFailed {
			return "", ErrPathExists
		}
		return "", fmt.Errorf("upload object %q: %w", path, err)
	}

	m.logger.Debug("object uploaded",
		"path", path,
		"size", len(data),
		"content_type", contentType,
	)

	return m.PublicLocator(path), nil
}

// PublicLocator returns the public locator for a stored path.
func (m *MinIOMaterializer) PublicLocator(path string) string {
	if m.config.PublicBaseURL != "" {
		return strings.TrimSuffix(m.config.PublicBaseURL, "/") + "/" + path
	}

	scheme := "http"
	if m.config.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, m.config.Endpoint, m.config.Bucket, path)
}

// HealthCheck verifies storage connectivity and bucket existence.
func (m *MinIOMaterializer) HealthCheck(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.config.Bucket)
	if err != nil {
		return fmt.Errorf("storage health check: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", m.config.Bucket)
	}
	return nil
}
