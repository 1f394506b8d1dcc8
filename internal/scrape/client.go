package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/libingest/internal/logger"
)

// maxScrapeResponseBytes limits the size of a scrape service response.
const maxScrapeResponseBytes = 20 * 1024 * 1024 // 20 MB

// Client calls an external rendering/extraction service over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Interface
}

// Ensure Client implements Gateway.
var _ Gateway = (*Client)(nil)

// scrapeRequest is the wire request to the scrape service.
type scrapeRequest struct {
	URL string `json:"url"`
}

// scrapeResponse is the wire response from the scrape service.
type scrapeResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewClient creates a gateway backed by an external scrape service.
func NewClient(endpoint string, timeout time.Duration, log logger.Interface) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// Scrape asks the external service to extract readable text from url.
func (c *Client) Scrape(ctx context.Context, url string) (*Result, error) {
	payload, err := json.Marshal(scrapeRequest{URL: url})
	if err != nil {
		return nil, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape service call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read scrape response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape service returned status %d", resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode scrape response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("scrape service error: %s", parsed.Error)
	}
	if parsed.Text == "" {
		return nil, ErrEmptyContent
	}

	c.logger.Debug("scrape succeeded",
		"url", url,
		"title", parsed.Title,
		"text_length", len(parsed.Text),
	)

	return &Result{Title: parsed.Title, Text: parsed.Text}, nil
}
