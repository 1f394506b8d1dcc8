// Package ingest provides configuration for the acquisition and archive
// extraction pipelines.
package ingest

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Default ingestion settings.
const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultMaxFetchBytes    = 100 * 1024 * 1024 // 100 MB
	defaultScrapeTimeout    = 45 * time.Second
	defaultFetchTimeout     = 60 * time.Second
	defaultBatchConcurrency = 1
)

// defaultBlockedDomains lists hosts known to reject automated retrieval.
// Operators extend this list via configuration; matches are case-insensitive
// hostname substring tests.
var defaultBlockedDomains = []string{
	"supremecourt.gov",
}

// AuthenticatedSource describes a host that accepts a bearer credential.
type AuthenticatedSource struct {
	// Host is matched as a case-insensitive substring of the request host.
	Host string `yaml:"host"`
	// Token is the bearer token to attach.
	Token string `yaml:"token"`
}

// Config represents ingestion configuration.
type Config struct {
	// UserAgent is sent on direct fetches so origins see a browser-like client.
	UserAgent string `yaml:"user_agent"`
	// MaxFetchBytes caps the size of a fetched response body.
	MaxFetchBytes int64 `yaml:"max_fetch_bytes"`
	// FetchTimeout bounds the direct HTTP fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// BlockedDomains are hostname substrings that skip the fetch entirely.
	BlockedDomains []string `yaml:"blocked_domains"`
	// ScraperEndpoint is the URL of the external scrape/rendering service.
	// When empty, the local goquery-based gateway is used.
	ScraperEndpoint string `yaml:"scraper_endpoint"`
	// ScrapeTimeout bounds one scrape gateway call.
	ScrapeTimeout time.Duration `yaml:"scrape_timeout"`
	// AuthenticatedSources maps recognized hosts to bearer credentials.
	AuthenticatedSources []AuthenticatedSource `yaml:"authenticated_sources"`
	// BatchConcurrency bounds archive batch upload fan-out. 1 means
	// sequential processing in archive order.
	BatchConcurrency int `yaml:"batch_concurrency"`
}

// NewConfig returns a new ingestion configuration with default values.
func NewConfig() *Config {
	return &Config{
		UserAgent:        defaultUserAgent,
		MaxFetchBytes:    defaultMaxFetchBytes,
		FetchTimeout:     defaultFetchTimeout,
		BlockedDomains:   append([]string(nil), defaultBlockedDomains...),
		ScrapeTimeout:    defaultScrapeTimeout,
		BatchConcurrency: defaultBatchConcurrency,
	}
}

// LoadFromViper loads ingestion configuration from Viper.
func LoadFromViper(v *viper.Viper) *Config {
	cfg := NewConfig()

	if v.IsSet("ingest.user_agent") {
		cfg.UserAgent = v.GetString("ingest.user_agent")
	}
	if v.IsSet("ingest.max_fetch_bytes") {
		cfg.MaxFetchBytes = v.GetInt64("ingest.max_fetch_bytes")
	}
	if v.IsSet("ingest.fetch_timeout") {
		cfg.FetchTimeout = v.GetDuration("ingest.fetch_timeout")
	}
	if v.IsSet("ingest.blocked_domains") {
		cfg.BlockedDomains = append(cfg.BlockedDomains, v.GetStringSlice("ingest.blocked_domains")...)
	}
	if v.IsSet("ingest.scraper_endpoint") {
		cfg.ScraperEndpoint = v.GetString("ingest.scraper_endpoint")
	}
	if v.IsSet("ingest.scrape_timeout") {
		cfg.ScrapeTimeout = v.GetDuration("ingest.scrape_timeout")
	}
	if v.IsSet("ingest.batch_concurrency") {
		cfg.BatchConcurrency = v.GetInt("ingest.batch_concurrency")
	}
	if v.IsSet("ingest.authenticated_sources") {
		var sources []AuthenticatedSource
		if err := v.UnmarshalKey("ingest.authenticated_sources", &sources); err == nil {
			cfg.AuthenticatedSources = sources
		}
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxFetchBytes <= 0 {
		return errors.New("max fetch bytes must be positive")
	}
	if c.BatchConcurrency < 1 {
		return errors.New("batch concurrency must be at least 1")
	}
	for _, src := range c.AuthenticatedSources {
		if src.Host == "" {
			return errors.New("authenticated source host cannot be empty")
		}
	}
	return nil
}
