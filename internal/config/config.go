// Package config provides configuration management for the libingest
// service. It handles loading, validation, and access to configuration
// values from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonesrussell/libingest/internal/config/ingest"
	"github.com/jonesrussell/libingest/internal/config/server"
	"github.com/jonesrussell/libingest/internal/config/storage"
	"github.com/jonesrussell/libingest/internal/logger"
)

// Interface defines the interface for configuration management.
type Interface interface {
	// GetServerConfig returns the server configuration.
	GetServerConfig() *server.Config
	// GetStorageConfig returns the object storage configuration.
	GetStorageConfig() *storage.Config
	// GetIngestConfig returns the ingestion configuration.
	GetIngestConfig() *ingest.Config
	// GetLoggerConfig returns the logger configuration.
	GetLoggerConfig() *logger.Config
	// Validate validates the configuration.
	Validate() error
}

// Ensure Config implements Interface.
var _ Interface = (*Config)(nil)

// Config represents the application configuration.
type Config struct {
	Server  *server.Config  `yaml:"server"`
	Storage *storage.Config `yaml:"storage"`
	Ingest  *ingest.Config  `yaml:"ingest"`
	Logger  *logger.Config  `yaml:"logger"`
}

// InitializeViper initializes Viper from environment variables and config
// files. Must be called before Load.
func InitializeViper() error {
	// .env is optional; ignore a missing file.
	_ = godotenv.Load()

	viper.SetEnvPrefix("LIBINGEST")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Config file is optional; env vars and defaults may be enough.
	_ = viper.ReadInConfig()

	return nil
}

// Load builds the application configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds the application configuration from the given Viper
// instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server:  server.LoadFromViper(v),
		Storage: storage.LoadFromViper(v),
		Ingest:  ingest.LoadFromViper(v),
		Logger:  loadLoggerConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadLoggerConfig loads logger configuration from Viper.
func loadLoggerConfig(v *viper.Viper) *logger.Config {
	cfg := &logger.Config{
		Level:    logger.InfoLevel,
		Encoding: "console",
	}

	if v.IsSet("logger.level") {
		cfg.Level = logger.Level(v.GetString("logger.level"))
	}
	if v.IsSet("logger.encoding") {
		cfg.Encoding = v.GetString("logger.encoding")
	}
	if v.IsSet("logger.development") {
		cfg.Development = v.GetBool("logger.development")
	}

	return cfg
}

// GetServerConfig returns the server configuration.
func (c *Config) GetServerConfig() *server.Config { return c.Server }

// GetStorageConfig returns the object storage configuration.
func (c *Config) GetStorageConfig() *storage.Config { return c.Storage }

// GetIngestConfig returns the ingestion configuration.
func (c *Config) GetIngestConfig() *ingest.Config { return c.Ingest }

// GetLoggerConfig returns the logger configuration.
func (c *Config) GetLoggerConfig() *logger.Config { return c.Logger }

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	// Storage credentials are validated at client construction time so that
	// preview-only commands can run without them.
	return nil
}
