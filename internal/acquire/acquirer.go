// Package acquire orchestrates the ingestion of one externally referenced
// URL: blocked-domain policy, a single direct fetch, response
// classification, and the scrape fallback route.
package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jonesrussell/libingest/internal/classify"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
	"github.com/jonesrussell/libingest/internal/scrape"
	"github.com/jonesrussell/libingest/internal/storage"
)

// fallbackCause records why the acquirer routed a request to the scrape
// gateway; it decides the terminal state when the scrape also fails.
type fallbackCause int

const (
	causeBlockedDomain fallbackCause = iota
	causeForbidden
	causeFetchFailed
	causeHTMLPage
)

// downloadableMarkers are content-type fragments that identify a response
// body as a storable file. The downloadable check runs BEFORE the HTML
// check: a server that mislabels a real file as text/html but whose
// content-type also carries one of these markers is still stored directly.
var downloadableMarkers = []string{
	"pdf",
	"octet-stream",
	"msword",
	"officedocument",
	"ms-excel",
	"ms-powerpoint",
	"video",
	"audio",
	"epub",
	"zip",
}

// htmlMarker identifies a page response that should go to the scrape route.
const htmlMarker = "html"

// isDownloadable reports whether contentType carries a downloadable marker.
func isDownloadable(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, marker := range downloadableMarkers {
		if strings.Contains(ct, marker) {
			return true
		}
	}
	return false
}

// isHTML reports whether contentType identifies an html page.
func isHTML(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), htmlMarker)
}

// defaultFilename is the last resort when no usable name can be derived.
const defaultFilename = "download"

// Config configures the single-resource acquirer.
type Config struct {
	// UserAgent is sent on the direct fetch.
	UserAgent string
	// MaxFetchBytes caps the response body size.
	MaxFetchBytes int64
	// FetchTimeout bounds the direct fetch.
	FetchTimeout time.Duration
	// BlockedDomains are hostname substrings that skip the fetch entirely.
	BlockedDomains []string
}

// Acquirer ingests one URL per call. Each call makes at most one network
// fetch and at most one scrape-gateway call; retry policy belongs to the
// caller.
type Acquirer struct {
	gateway        scrape.Gateway
	store          storage.Materializer
	creds          CredentialProvider
	log            logger.Interface
	httpClient     *http.Client
	userAgent      string
	maxFetchBytes  int64
	blockedDomains []string
	now            func() time.Time
}

// New creates an Acquirer with the given collaborators and configuration.
func New(
	gateway scrape.Gateway,
	store storage.Materializer,
	creds CredentialProvider,
	log logger.Interface,
	cfg Config,
) *Acquirer {
	return &Acquirer{
		gateway:        gateway,
		store:          store,
		creds:          creds,
		log:            log,
		httpClient:     &http.Client{Timeout: cfg.FetchTimeout},
		userAgent:      cfg.UserAgent,
		maxFetchBytes:  cfg.MaxFetchBytes,
		blockedDomains: cfg.BlockedDomains,
		now:            time.Now,
	}
}

// Acquire runs the acquisition state machine for one request. Every failure
// mode is encoded in the returned outcome's State and Reason; nothing
// escapes as an error.
func (a *Acquirer) Acquire(ctx context.Context, req domain.AcquisitionRequest) *domain.AcquisitionOutcome {
	parsed, err := url.Parse(req.URL)
	if err != nil || parsed.Hostname() == "" {
		return rejected(fmt.Sprintf("invalid url %q", req.URL))
	}

	if a.hostBlocked(parsed.Hostname()) {
		a.log.Info("blocked domain, skipping fetch", "url", req.URL, "host", parsed.Hostname())
		return a.scrapeFallback(ctx, req, causeBlockedDomain, "host is on the blocked-domain list")
	}

	resp, err := a.fetch(ctx, req.URL, parsed.Hostname())
	if err != nil {
		a.log.Info("direct fetch failed", "url", req.URL, "error", err.Error())
		return a.scrapeFallback(ctx, req, causeFetchFailed, fmt.Sprintf("fetch failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		a.log.Info("origin returned 403", "url", req.URL)
		return a.scrapeFallback(ctx, req, causeForbidden, "origin returned 403")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		a.log.Info("direct fetch returned non-2xx", "url", req.URL, "status", resp.StatusCode)
		return a.scrapeFallback(ctx, req, causeFetchFailed, detail)
	}

	contentType := resp.Header.Get("Content-Type")

	// Downloadable wins over HTML: mislabeled files carrying a downloadable
	// marker inside a text/html content type are stored, not scraped.
	if !isDownloadable(contentType) && isHTML(contentType) {
		a.log.Info("html page, routing to scrape", "url", req.URL, "content_type", contentType)
		return a.scrapeFallback(ctx, req, causeHTMLPage, "response is an html page")
	}

	// Anything that is neither a downloadable marker nor HTML falls through
	// to direct storage.
	return a.materializeResponse(ctx, req, resp, contentType)
}

// hostBlocked tests the hostname against the deny-list with case-insensitive
// substring matching.
func (a *Acquirer) hostBlocked(host string) bool {
	lowerHost := strings.ToLower(host)
	for _, blocked := range a.blockedDomains {
		if blocked != "" && strings.Contains(lowerHost, strings.ToLower(blocked)) {
			return true
		}
	}
	return false
}

// fetch performs the single HTTP GET with browser-like headers, attaching a
// bearer credential when the host is a recognized authenticated source.
func (a *Acquirer) fetch(ctx context.Context, rawURL, host string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if a.creds != nil {
		if token, ok := a.creds.Token(ctx, host); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http fetch: %w", err)
	}
	return resp, nil
}

// materializeResponse stores the response body as a library object.
func (a *Acquirer) materializeResponse(
	ctx context.Context,
	req domain.AcquisitionRequest,
	resp *http.Response,
	contentType string,
) *domain.AcquisitionOutcome {
	data, err := io.ReadAll(io.LimitReader(resp.Body, a.maxFetchBytes))
	if err != nil {
		return rejected(fmt.Sprintf("read response body: %v", err))
	}

	name := deriveFilename(req, resp)
	classification := classify.Classify(name, contentType)
	objectPath := storage.ObjectPath(classification.Folder, name, a.now())

	locator, err := a.store.Put(ctx, objectPath, data, classification.ContentType)
	if err != nil {
		a.log.Error("materialize failed", "url", req.URL, "path", objectPath, "error", err.Error())
		return rejected(fmt.Sprintf("store object: %v", err))
	}

	a.log.Info("resource stored",
		"url", req.URL,
		"path", objectPath,
		"size", len(data),
		"folder", classification.Folder,
	)

	return &domain.AcquisitionOutcome{
		State:       domain.AcquisitionStored,
		Locator:     locator,
		Path:        objectPath,
		SizeBytes:   int64(len(data)),
		ContentType: classification.ContentType,
		Folder:      classification.Folder,
	}
}

// scrapeFallback calls the scrape gateway exactly once and materializes the
// extracted text as a markdown object, or maps the failure to the terminal
// state implied by cause.
func (a *Acquirer) scrapeFallback(
	ctx context.Context,
	req domain.AcquisitionRequest,
	cause fallbackCause,
	detail string,
) *domain.AcquisitionOutcome {
	result, err := a.gateway.Scrape(ctx, req.URL)
	if err != nil || result.Text == "" {
		if err == nil {
			err = scrape.ErrEmptyContent
		}
		return fallbackFailure(cause, detail, err)
	}

	title := req.Title
	if title == "" {
		title = result.Title
	}
	if title == "" {
		title = "scraped-content"
	}

	content := result.Text
	if result.Title != "" {
		content = "# " + result.Title + "\n\n" + result.Text
	}

	data := []byte(content)
	objectPath := storage.ObjectPath(classify.FolderScraped, storage.SanitizeFilename(title)+".md", a.now())

	locator, err := a.store.Put(ctx, objectPath, data, "text/markdown")
	if err != nil {
		a.log.Error("scraped content store failed", "url", req.URL, "error", err.Error())
		return rejected(fmt.Sprintf("store scraped content: %v", err))
	}

	a.log.Info("resource scraped",
		"url", req.URL,
		"path", objectPath,
		"title", title,
	)

	return &domain.AcquisitionOutcome{
		State:         domain.AcquisitionScraped,
		Locator:       locator,
		Path:          objectPath,
		SizeBytes:     int64(len(data)),
		Title:         title,
		Content:       result.Text,
		ContentSource: domain.ContentSourceScraped,
	}
}

// fallbackFailure maps a failed scrape fallback to its terminal outcome.
func fallbackFailure(cause fallbackCause, detail string, scrapeErr error) *domain.AcquisitionOutcome {
	switch cause {
	case causeForbidden:
		return &domain.AcquisitionOutcome{
			State:  domain.AcquisitionBlocked,
			Reason: fmt.Sprintf("origin denies automated access; scrape fallback failed: %v", scrapeErr),
		}
	case causeBlockedDomain:
		return rejected(fmt.Sprintf("blocked domain, scrape also failed: %v", scrapeErr))
	default:
		return rejected(fmt.Sprintf("direct retrieval failed (%s); scrape fallback failed: %v", detail, scrapeErr))
	}
}

// rejected builds a terminal Rejected outcome.
func rejected(reason string) *domain.AcquisitionOutcome {
	return &domain.AcquisitionOutcome{
		State:  domain.AcquisitionRejected,
		Reason: reason,
	}
}

// deriveFilename picks the stored filename with the precedence: explicit
// caller title > Content-Disposition filename > URL path basename > generic
// default. The name keeps (or inherits) an extension so classification by
// extension stays possible downstream.
func deriveFilename(req domain.AcquisitionRequest, resp *http.Response) string {
	urlExt := ""
	urlBase := ""
	if parsed, err := url.Parse(req.URL); err == nil {
		urlBase = path.Base(parsed.Path)
		if urlBase == "/" || urlBase == "." {
			urlBase = ""
		}
		urlExt = path.Ext(urlBase)
	}

	if req.Title != "" {
		return ensureExtension(req.Title, urlExt)
	}

	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename := params["filename"]; filename != "" {
				return filename
			}
		}
	}

	if urlBase != "" {
		return urlBase
	}

	return defaultFilename
}

// ensureExtension appends ext to name when name has none.
func ensureExtension(name, ext string) string {
	if ext == "" || path.Ext(name) != "" {
		return name
	}
	return name + ext
}
