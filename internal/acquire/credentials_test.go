package acquire_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/libingest/internal/acquire"
	"github.com/jonesrussell/libingest/internal/config/ingest"
)

func TestTokenSourceStatic(t *testing.T) {
	source := acquire.NewTokenSource([]ingest.AuthenticatedSource{
		{Host: "courtlistener.com", Token: "static-token"},
	})

	token, ok := source.Token(context.Background(), "www.courtlistener.com")
	require.True(t, ok)
	assert.Equal(t, "static-token", token)

	// Matching is a case-insensitive substring test, like the deny-list.
	token, ok = source.Token(context.Background(), "API.CourtListener.COM")
	require.True(t, ok)
	assert.Equal(t, "static-token", token)

	_, ok = source.Token(context.Background(), "example.com")
	assert.False(t, ok)
}

func TestTokenSourceRefreshCaching(t *testing.T) {
	var refreshCalls int32
	source := acquire.NewTokenSource([]ingest.AuthenticatedSource{
		{Host: "data.example.com"}, // no static token: refresh path
	}).WithRefresh(func(_ context.Context, _ string) (string, error) {
		n := atomic.AddInt32(&refreshCalls, 1)
		if n == 1 {
			return "token-1", nil
		}
		return "token-2", nil
	}, time.Hour)

	token, ok := source.Token(context.Background(), "data.example.com")
	require.True(t, ok)
	assert.Equal(t, "token-1", token)

	// Within the TTL the cached token is reused.
	token, ok = source.Token(context.Background(), "data.example.com")
	require.True(t, ok)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))

	// Explicit invalidation forces a refresh on the next request.
	source.Invalidate("data.example.com")
	token, ok = source.Token(context.Background(), "data.example.com")
	require.True(t, ok)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), atomic.LoadInt32(&refreshCalls))
}

func TestTokenSourceRefreshFailure(t *testing.T) {
	source := acquire.NewTokenSource([]ingest.AuthenticatedSource{
		{Host: "data.example.com"},
	}).WithRefresh(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("auth endpoint down")
	}, time.Hour)

	_, ok := source.Token(context.Background(), "data.example.com")
	assert.False(t, ok, "a failed refresh yields no token rather than an error")
}

func TestTokenSourceNoRefreshConfigured(t *testing.T) {
	source := acquire.NewTokenSource([]ingest.AuthenticatedSource{
		{Host: "data.example.com"},
	})

	_, ok := source.Token(context.Background(), "data.example.com")
	assert.False(t, ok)
}
