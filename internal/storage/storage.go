// Package storage materializes ingested content into object storage and
// hands back durable public locators.
package storage

import (
	"context"
	"errors"
)

// ErrPathExists is returned when a put targets a pre-existing path. Paths
// are timestamp-qualified and unique by construction, so this indicates a
// caller bug rather than a normal collision.
var ErrPathExists = errors.New("object path already exists")

// Materializer persists byte buffers under unique paths and returns durable
// public locators.
type Materializer interface {
	// Put uploads data under path with the given content type and returns
	// the public locator for the stored object.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// PublicLocator returns the public locator for a stored path without
	// performing any I/O.
	PublicLocator(path string) string
}
