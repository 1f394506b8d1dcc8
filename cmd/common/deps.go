// Package common provides shared dependency construction for libingest
// commands.
package common

import (
	"errors"
	"fmt"

	"github.com/jonesrussell/libingest/internal/acquire"
	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/config"
	"github.com/jonesrussell/libingest/internal/logger"
	"github.com/jonesrussell/libingest/internal/scrape"
	"github.com/jonesrussell/libingest/internal/storage"
)

// CommandDeps holds the dependencies every command needs.
type CommandDeps struct {
	Logger logger.Interface
	Config config.Interface
}

var (
	// errLoggerRequired is returned when CommandDeps.Logger is nil.
	errLoggerRequired = errors.New("logger is required")
	// errConfigRequired is returned when CommandDeps.Config is nil.
	errConfigRequired = errors.New("config is required")
)

// NewCommandDeps loads configuration and creates the logger.
// config.InitializeViper must have been called first.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.GetLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	deps := &CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.validate(); validateErr != nil {
		return nil, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}

// validate ensures all required dependencies are present.
func (d *CommandDeps) validate() error {
	if d.Logger == nil {
		return errLoggerRequired
	}
	if d.Config == nil {
		return errConfigRequired
	}
	return nil
}

// NewMaterializer creates the object storage client from configuration.
func NewMaterializer(deps *CommandDeps) (*storage.MinIOMaterializer, error) {
	store, err := storage.NewMinIO(deps.Config.GetStorageConfig(), deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}
	return store, nil
}

// NewScrapeGateway creates the scrape gateway. A configured scraper endpoint
// selects the external rendering service; otherwise pages are fetched and
// parsed locally.
func NewScrapeGateway(deps *CommandDeps) scrape.Gateway {
	ingestCfg := deps.Config.GetIngestConfig()

	if ingestCfg.ScraperEndpoint != "" {
		return scrape.NewClient(ingestCfg.ScraperEndpoint, ingestCfg.ScrapeTimeout, deps.Logger)
	}
	return scrape.NewLocal(ingestCfg.UserAgent, ingestCfg.ScrapeTimeout, deps.Logger)
}

// NewAcquirer wires the single-resource acquirer from configuration.
func NewAcquirer(deps *CommandDeps, store storage.Materializer) *acquire.Acquirer {
	ingestCfg := deps.Config.GetIngestConfig()

	creds := acquire.NewTokenSource(ingestCfg.AuthenticatedSources)
	gateway := NewScrapeGateway(deps)

	return acquire.New(gateway, store, creds, deps.Logger, acquire.Config{
		UserAgent:      ingestCfg.UserAgent,
		MaxFetchBytes:  ingestCfg.MaxFetchBytes,
		FetchTimeout:   ingestCfg.FetchTimeout,
		BlockedDomains: ingestCfg.BlockedDomains,
	})
}

// NewBatchUploader wires the archive batch uploader from configuration.
func NewBatchUploader(deps *CommandDeps, store storage.Materializer) *bundle.Uploader {
	return bundle.NewUploader(store, deps.Logger, deps.Config.GetIngestConfig().BatchConcurrency)
}
