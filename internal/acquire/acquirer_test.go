package acquire_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/libingest/internal/acquire"
	"github.com/jonesrussell/libingest/internal/config/ingest"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
	"github.com/jonesrussell/libingest/internal/scrape"
)

const testFetchTimeout = 5 * time.Second

// --- Mock implementations ---

// mockGateway implements scrape.Gateway for testing.
type mockGateway struct {
	mu     sync.Mutex
	result *scrape.Result
	err    error
	calls  []string
}

func (m *mockGateway) Scrape(_ context.Context, url string) (*scrape.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// putCall records one Materializer.Put invocation.
type putCall struct {
	Path        string
	Data        []byte
	ContentType string
}

// mockStore implements storage.Materializer for testing.
type mockStore struct {
	mu   sync.Mutex
	puts []putCall
	err  error
}

func (m *mockStore) Put(_ context.Context, path string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.puts = append(m.puts, putCall{Path: path, Data: data, ContentType: contentType})
	return "https://cdn.example.com/" + path, nil
}

func (m *mockStore) PublicLocator(path string) string {
	return "https://cdn.example.com/" + path
}

// newAcquirer wires an Acquirer with test defaults.
func newAcquirer(gateway *mockGateway, store *mockStore, blocked []string) *acquire.Acquirer {
	return acquire.New(gateway, store, nil, logger.NewNoOp(), acquire.Config{
		UserAgent:      "TestAgent/1.0",
		MaxFetchBytes:  10 * 1024 * 1024,
		FetchTimeout:   testFetchTimeout,
		BlockedDomains: blocked,
	})
}

// --- Tests ---

func TestAcquireBlockedDomainSkipsFetch(t *testing.T) {
	fetchCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetchCount++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gateway := &mockGateway{result: &scrape.Result{Title: "Case Opinion", Text: "The court held..."}}
	store := &mockStore{}
	// The deny-list matches the test server host via substring.
	acq := newAcquirer(gateway, store, []string{"127.0.0.1"})

	blockedURL := srv.URL + "/slip/1.pdf"
	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: blockedURL})

	assert.Equal(t, 0, fetchCount, "blocked domain must never trigger a fetch")
	require.Equal(t, 1, gateway.callCount(), "scrape gateway must be invoked exactly once")
	assert.Equal(t, blockedURL, gateway.calls[0])

	assert.Equal(t, domain.AcquisitionScraped, outcome.State)
	assert.Equal(t, domain.ContentSourceScraped, outcome.ContentSource)
	assert.Equal(t, "Case Opinion", outcome.Title)

	require.Len(t, store.puts, 1)
	assert.True(t, strings.HasPrefix(store.puts[0].Path, "scraped/"), "path %q", store.puts[0].Path)
	assert.True(t, strings.HasSuffix(store.puts[0].Path, ".md"), "path %q", store.puts[0].Path)
	assert.Equal(t, "text/markdown", store.puts[0].ContentType)
}

func TestAcquireBlockedDomainScrapeFails(t *testing.T) {
	gateway := &mockGateway{err: errors.New("render timeout")}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, []string{"supremecourt.gov"})

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{
		URL: "https://www.supremecourt.gov/opinions/1.pdf",
	})

	assert.Equal(t, domain.AcquisitionRejected, outcome.State)
	assert.Contains(t, outcome.Reason, "blocked domain, scrape also failed")
	assert.Empty(t, store.puts)
}

func TestAcquireForbiddenWithScrapeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	gateway := &mockGateway{result: &scrape.Result{Title: "Paywalled Piece", Text: "body text"}}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/article"})

	assert.Equal(t, domain.AcquisitionScraped, outcome.State)
	assert.Equal(t, 1, gateway.callCount())
}

func TestAcquireForbiddenWithScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	gateway := &mockGateway{err: errors.New("unavailable")}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/article"})

	assert.Equal(t, domain.AcquisitionBlocked, outcome.State)
	assert.Contains(t, outcome.Reason, "origin denies automated access")
}

func TestAcquireNonForbiddenErrorWithScrapeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gateway := &mockGateway{err: errors.New("unavailable")}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL})

	assert.Equal(t, domain.AcquisitionRejected, outcome.State)
	assert.Contains(t, outcome.Reason, "503")
	assert.Contains(t, outcome.Reason, "scrape fallback failed")
}

func TestAcquireHTMLPageRoutesToScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>page</body></html>"))
	}))
	defer srv.Close()

	gateway := &mockGateway{result: &scrape.Result{Title: "Page", Text: "readable text"}}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL})

	assert.Equal(t, domain.AcquisitionScraped, outcome.State, "200 html with no downloadable marker goes to scrape")
	assert.Equal(t, 1, gateway.callCount())
}

func TestAcquireMislabeledDownloadableStoredDirectly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Hostile origin mislabels a real PDF: the content type contains both
		// the html marker and a downloadable marker. Downloadable wins.
		w.Header().Set("Content-Type", "text/html; profile=pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	gateway := &mockGateway{}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/brief.pdf"})

	assert.Equal(t, domain.AcquisitionStored, outcome.State)
	assert.Equal(t, 0, gateway.callCount(), "downloadable precedence must bypass scrape")
	require.Len(t, store.puts, 1)
	assert.True(t, strings.HasPrefix(store.puts[0].Path, "documents/"))
}

func TestAcquireContentTypeRouting(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantState   domain.AcquisitionState
	}{
		{name: "pdf stored", contentType: "application/pdf", wantState: domain.AcquisitionStored},
		{name: "octet-stream stored", contentType: "application/octet-stream", wantState: domain.AcquisitionStored},
		{name: "word document stored", contentType: "application/msword", wantState: domain.AcquisitionStored},
		{name: "video stored", contentType: "video/mp4", wantState: domain.AcquisitionStored},
		{name: "audio stored", contentType: "audio/mpeg", wantState: domain.AcquisitionStored},
		{name: "epub stored", contentType: "application/epub+zip", wantState: domain.AcquisitionStored},
		{name: "plain html scraped", contentType: "text/html", wantState: domain.AcquisitionScraped},
		{name: "html with charset scraped", contentType: "TEXT/HTML; charset=UTF-8", wantState: domain.AcquisitionScraped},
		{name: "html carrying pdf marker stored", contentType: "text/html; profile=pdf", wantState: domain.AcquisitionStored},
		{name: "unrecognized type stored", contentType: "application/x-custom", wantState: domain.AcquisitionStored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte("payload"))
			}))
			defer srv.Close()

			gateway := &mockGateway{result: &scrape.Result{Title: "Page", Text: "text"}}
			acq := newAcquirer(gateway, &mockStore{}, nil)

			outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/file"})

			assert.Equal(t, tt.wantState, outcome.State)
		})
	}
}

func TestAcquireDirectStore(t *testing.T) {
	const body = "%PDF-1.7 content"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestAgent/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	gateway := &mockGateway{}
	store := &mockStore{}
	acq := newAcquirer(gateway, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/slip/opinion.pdf"})

	require.Equal(t, domain.AcquisitionStored, outcome.State)
	assert.Equal(t, int64(len(body)), outcome.SizeBytes)
	assert.Equal(t, "documents", outcome.Folder)
	assert.Equal(t, "application/pdf", outcome.ContentType)
	assert.Equal(t, "https://cdn.example.com/"+outcome.Path, outcome.Locator)

	require.Len(t, store.puts, 1)
	assert.Contains(t, store.puts[0].Path, "opinion.pdf")
	assert.Equal(t, 0, gateway.callCount())
}

func TestAcquireFilenamePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		disposition string
		urlPath     string
		wantInPath  string
	}{
		{
			name:       "caller title wins",
			title:      "My Brief",
			urlPath:    "/files/original.pdf",
			wantInPath: "MyBrief.pdf",
		},
		{
			name:        "content disposition beats url path",
			disposition: `attachment; filename="served-name.pdf"`,
			urlPath:     "/files/original.pdf",
			wantInPath:  "served-name.pdf",
		},
		{
			name:       "url path basename",
			urlPath:    "/files/original.pdf",
			wantInPath: "original.pdf",
		},
		{
			name:       "generic default",
			urlPath:    "/",
			wantInPath: "download",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF"))
			}))
			defer srv.Close()

			store := &mockStore{}
			acq := newAcquirer(&mockGateway{}, store, nil)

			outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{
				URL:   srv.URL + tt.urlPath,
				Title: tt.title,
			})

			require.Equal(t, domain.AcquisitionStored, outcome.State)
			require.Len(t, store.puts, 1)
			assert.Contains(t, store.puts[0].Path, tt.wantInPath)
		})
	}
}

func TestAcquireStorageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	store := &mockStore{err: errors.New("bucket unavailable")}
	acq := newAcquirer(&mockGateway{}, store, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/a.pdf"})

	assert.Equal(t, domain.AcquisitionRejected, outcome.State)
	assert.Contains(t, outcome.Reason, "store object")
}

func TestAcquireInvalidURL(t *testing.T) {
	acq := newAcquirer(&mockGateway{}, &mockStore{}, nil)

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: "not a url"})

	assert.Equal(t, domain.AcquisitionRejected, outcome.State)
	assert.Contains(t, outcome.Reason, "invalid url")
}

func TestAcquireAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	creds := acquire.NewTokenSource([]ingest.AuthenticatedSource{
		{Host: "127.0.0.1", Token: "secret-token"},
	})
	store := &mockStore{}
	acq := acquire.New(&mockGateway{}, store, creds, logger.NewNoOp(), acquire.Config{
		UserAgent:     "TestAgent/1.0",
		MaxFetchBytes: 1024,
		FetchTimeout:  testFetchTimeout,
	})

	outcome := acq.Acquire(context.Background(), domain.AcquisitionRequest{URL: srv.URL + "/a.pdf"})

	require.Equal(t, domain.AcquisitionStored, outcome.State)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}
