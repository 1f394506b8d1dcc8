package acquire

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonesrussell/libingest/internal/config/ingest"
)

// CredentialProvider yields bearer tokens for recognized authenticated
// sources. Implementations are injected rather than held in package state so
// tests stay deterministic and multiple tenants can carry distinct
// credentials.
type CredentialProvider interface {
	// Token returns the bearer token for host and whether one applies.
	Token(ctx context.Context, host string) (string, bool)
}

// RefreshFunc obtains a fresh token for a host, typically by exchanging a
// long-lived credential against the source's auth endpoint.
type RefreshFunc func(ctx context.Context, host string) (string, error)

// cachedToken is a refreshed token with its expiry.
type cachedToken struct {
	token     string
	expiresAt time.Time
}

// TokenSource is the standard CredentialProvider: static per-host tokens
// from configuration, optionally backed by a refresh function whose results
// are cached for a bounded TTL and can be explicitly invalidated.
type TokenSource struct {
	mu      sync.Mutex
	sources []ingest.AuthenticatedSource
	refresh RefreshFunc
	ttl     time.Duration
	cache   map[string]cachedToken
	now     func() time.Time
}

// Ensure TokenSource implements CredentialProvider.
var _ CredentialProvider = (*TokenSource)(nil)

// NewTokenSource creates a TokenSource over the configured authenticated
// sources.
func NewTokenSource(sources []ingest.AuthenticatedSource) *TokenSource {
	return &TokenSource{
		sources: sources,
		cache:   make(map[string]cachedToken),
		now:     time.Now,
	}
}

// WithRefresh enables time-boxed token refresh for hosts whose configured
// token is empty. Refreshed tokens are cached for ttl.
func (t *TokenSource) WithRefresh(refresh RefreshFunc, ttl time.Duration) *TokenSource {
	t.refresh = refresh
	t.ttl = ttl
	return t
}

// Token returns the bearer token for host. Hosts are matched with the same
// case-insensitive substring rule used for blocked domains.
func (t *TokenSource) Token(ctx context.Context, host string) (string, bool) {
	lowerHost := strings.ToLower(host)

	for _, src := range t.sources {
		if src.Host == "" || !strings.Contains(lowerHost, strings.ToLower(src.Host)) {
			continue
		}
		if src.Token != "" {
			return src.Token, true
		}
		return t.refreshedToken(ctx, strings.ToLower(src.Host))
	}

	return "", false
}

// refreshedToken returns a cached token for key or refreshes one.
func (t *TokenSource) refreshedToken(ctx context.Context, key string) (string, bool) {
	if t.refresh == nil {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cached, ok := t.cache[key]; ok && t.now().Before(cached.expiresAt) {
		return cached.token, true
	}

	token, err := t.refresh(ctx, key)
	if err != nil || token == "" {
		return "", false
	}

	t.cache[key] = cachedToken{token: token, expiresAt: t.now().Add(t.ttl)}
	return token, true
}

// Invalidate drops any cached token for host so the next request refreshes.
func (t *TokenSource) Invalidate(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cache, strings.ToLower(host))
}
