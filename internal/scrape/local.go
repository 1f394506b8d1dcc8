package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/libingest/internal/logger"
)

// Local fetches the page itself and extracts readable text with goquery.
// It serves deployments without an external rendering service; pages that
// need JavaScript rendering will come back thin or empty.
type Local struct {
	httpClient *http.Client
	userAgent  string
	logger     logger.Interface
}

// Ensure Local implements Gateway.
var _ Gateway = (*Local)(nil)

// NewLocal creates a local goquery-based scrape gateway.
func NewLocal(userAgent string, timeout time.Duration, log logger.Interface) *Local {
	return &Local{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		logger:     log,
	}
}

// nonContentSelectors lists elements to strip before extracting body text.
const nonContentSelectors = "script, style, nav, header, footer, noscript, iframe"

// Scrape fetches url and extracts its title and readable body text.
func (l *Local) Scrape(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScrapeResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	result := &Result{
		Title: extractTitle(doc),
		Text:  extractBodyText(doc),
	}
	if result.Text == "" {
		return nil, ErrEmptyContent
	}

	l.logger.Debug("local scrape succeeded",
		"url", url,
		"title", result.Title,
		"text_length", len(result.Text),
	)

	return result, nil
}

// extractTitle extracts the page title, preferring <title> then og:title.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}

	return ""
}

// extractBodyText extracts the main body text from the document. Prefers
// <article> content; falls back to <body> with non-content elements
// stripped.
func extractBodyText(doc *goquery.Document) string {
	article := doc.Find("article").First()
	if article.Length() > 0 {
		article.Find(nonContentSelectors).Remove()
		return strings.TrimSpace(article.Text())
	}

	body := doc.Find("body").First()
	if body.Length() > 0 {
		body.Find(nonContentSelectors).Remove()
		return strings.TrimSpace(body.Text())
	}

	return ""
}
