// Package httpd implements the HTTP server for the ingestion service.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/libingest/cmd/common"
	"github.com/jonesrussell/libingest/internal/api"
	"github.com/jonesrussell/libingest/internal/bundle"
	"github.com/jonesrussell/libingest/internal/logger"
	"github.com/jonesrussell/libingest/internal/storage"
)

const (
	signalChannelBufferSize = 1
	errorChannelBufferSize  = 1
	defaultShutdownTimeout  = 30 * time.Second
	storageProbeTimeout     = 10 * time.Second
)

// Command returns the httpd command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Start the ingestion HTTP server",
		Long:  `Start the HTTP server exposing the acquisition and archive endpoints.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return Start()
		},
	}
}

// Start starts the HTTP server and runs until interrupted.
// It handles graceful shutdown on SIGINT or SIGTERM signals.
func Start() error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	server, errChan, err := startHTTPServer(deps)
	if err != nil {
		return err
	}

	return runServerUntilInterrupt(deps.Logger, server, errChan)
}

// startHTTPServer wires the pipelines, builds the router, and starts
// listening. Returns the server and an error channel for serve errors.
func startHTTPServer(deps *common.CommandDeps) (*http.Server, chan error, error) {
	store, err := common.NewMaterializer(deps)
	if err != nil {
		return nil, nil, err
	}

	probeStorage(deps, store)

	acquirer := common.NewAcquirer(deps, store)
	engine := bundle.NewEngine(deps.Logger)
	uploader := common.NewBatchUploader(deps, store)

	router := api.SetupRouter(deps.Logger, acquirer, engine, uploader)

	serverCfg := deps.Config.GetServerConfig()
	server := &http.Server{
		Addr:         serverCfg.Address,
		Handler:      router,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
	}

	deps.Logger.Info("Starting HTTP server", "addr", serverCfg.Address)
	errChan := make(chan error, errorChannelBufferSize)
	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	return server, errChan, nil
}

// probeStorage verifies the bucket is reachable. A failed probe is not
// fatal: preview-mode archive requests work without storage.
func probeStorage(deps *common.CommandDeps, store *storage.MinIOMaterializer) {
	ctx, cancel := context.WithTimeout(context.Background(), storageProbeTimeout)
	defer cancel()

	if err := store.HealthCheck(ctx); err != nil {
		deps.Logger.Warn("Object storage probe failed, uploads will error until it recovers",
			"error", err)
	}
}

// runServerUntilInterrupt runs the server until interrupted by signal or
// error.
func runServerUntilInterrupt(
	log logger.Interface,
	server *http.Server,
	errChan chan error,
) error {
	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serverErr := <-errChan:
		log.Error("Server error", "error", serverErr)
		return fmt.Errorf("server error: %w", serverErr)
	case sig := <-sigChan:
		return shutdownServer(log, server, sig)
	}
}

// shutdownServer performs graceful shutdown of the server.
func shutdownServer(log logger.Interface, server *http.Server, sig os.Signal) error {
	log.Info("Shutdown signal received", "signal", sig.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	log.Info("Stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop server", "error", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	log.Info("Server stopped successfully")
	return nil
}
