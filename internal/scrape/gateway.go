// Package scrape extracts readable text and a title from live pages. It is
// the fallback route when direct retrieval of a URL is unavailable, blocked,
// or misleading.
package scrape

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when a scrape succeeds at the transport level
// but yields no usable text.
var ErrEmptyContent = errors.New("scrape returned no content")

// Result is the readable content extracted from a live page.
type Result struct {
	// Title is the page title, possibly empty.
	Title string `json:"title"`
	// Text is the extracted readable text.
	Text string `json:"text"`
}

// Gateway extracts readable text and a title from a live page. It is a
// slow, occasionally unavailable dependency: callers bound each call with a
// context deadline and treat errors as recoverable policy input, not faults.
type Gateway interface {
	Scrape(ctx context.Context, url string) (*Result, error)
}
