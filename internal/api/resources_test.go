package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/libingest/internal/api"
	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/domain"
	"github.com/jonesrussell/libingest/internal/logger"
)

// mockAcquirer implements api.Acquirer for testing.
type mockAcquirer struct {
	outcome *domain.AcquisitionOutcome
	gotReq  domain.AcquisitionRequest
}

func (m *mockAcquirer) Acquire(_ context.Context, req domain.AcquisitionRequest) *domain.AcquisitionOutcome {
	m.gotReq = req
	return m.outcome
}

// mockUploader implements api.BatchUploader for testing.
type mockUploader struct {
	result   *bundle.BatchResult
	gotFiles []domain.ExtractedFile
}

func (m *mockUploader) UploadSelected(
	_ context.Context,
	_ string,
	_ bundle.Format,
	files []domain.ExtractedFile,
) *bundle.BatchResult {
	m.gotFiles = files
	return m.result
}

// newTestRouter builds a router over the given mocks with a real archive
// engine.
func newTestRouter(acquirer api.Acquirer, uploader api.BatchUploader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := bundle.NewEngine(logger.NewNoOp())
	return api.SetupRouter(logger.NewNoOp(), acquirer, engine, uploader)
}

// postJSON performs a JSON POST against the router.
func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorder body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAcquireEndpointStored(t *testing.T) {
	acquirer := &mockAcquirer{outcome: &domain.AcquisitionOutcome{
		State:       domain.AcquisitionStored,
		Locator:     "https://cdn.example.com/documents/1_brief.pdf",
		Path:        "documents/1_brief.pdf",
		SizeBytes:   1024,
		ContentType: "application/pdf",
		Folder:      "documents",
	}}
	router := newTestRouter(acquirer, &mockUploader{})

	rec := postJSON(t, router, "/api/v1/resources/acquire", gin.H{
		"url":   "https://example.com/brief.pdf",
		"title": "My Brief",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://cdn.example.com/documents/1_brief.pdf", body["file_url"])
	assert.Equal(t, "documents", body["folder"])
	assert.EqualValues(t, 1024, body["file_size"])

	assert.Equal(t, "https://example.com/brief.pdf", acquirer.gotReq.URL)
	assert.Equal(t, "My Brief", acquirer.gotReq.Title)
}

func TestAcquireEndpointScraped(t *testing.T) {
	acquirer := &mockAcquirer{outcome: &domain.AcquisitionOutcome{
		State:         domain.AcquisitionScraped,
		Locator:       "https://cdn.example.com/scraped/1_CaseOpinion.md",
		Path:          "scraped/1_CaseOpinion.md",
		SizeBytes:     64,
		Title:         "Case Opinion",
		Content:       "The court held...",
		ContentSource: domain.ContentSourceScraped,
	}}
	router := newTestRouter(acquirer, &mockUploader{})

	rec := postJSON(t, router, "/api/v1/resources/acquire", gin.H{"url": "https://supremecourt.gov/slip/1.pdf"})

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["scraped"])
	assert.Equal(t, "scraped", body["content_source"])
	assert.Equal(t, "The court held...", body["scraped_content"])
}

func TestAcquireEndpointBlocked(t *testing.T) {
	acquirer := &mockAcquirer{outcome: &domain.AcquisitionOutcome{
		State:  domain.AcquisitionBlocked,
		Reason: "origin denies automated access; scrape fallback failed: timeout",
	}}
	router := newTestRouter(acquirer, &mockUploader{})

	rec := postJSON(t, router, "/api/v1/resources/acquire", gin.H{"url": "https://example.com/x"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["blocked"])
	assert.Contains(t, body["reason"], "origin denies automated access")
}

func TestAcquireEndpointRejected(t *testing.T) {
	acquirer := &mockAcquirer{outcome: &domain.AcquisitionOutcome{
		State:  domain.AcquisitionRejected,
		Reason: "503 Service Unavailable",
	}}
	router := newTestRouter(acquirer, &mockUploader{})

	rec := postJSON(t, router, "/api/v1/resources/acquire", gin.H{"url": "https://example.com/x"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["blocked"])
	assert.Contains(t, body["reason"], "503")
}

func TestAcquireEndpointMissingURL(t *testing.T) {
	router := newTestRouter(&mockAcquirer{}, &mockUploader{})

	rec := postJSON(t, router, "/api/v1/resources/acquire", gin.H{"title": "no url"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&mockAcquirer{}, &mockUploader{})

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
