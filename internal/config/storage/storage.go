// Package storage provides object storage configuration for materialized
// content.
package storage

import (
	"errors"

	"github.com/spf13/viper"
)

// Config represents MinIO-compatible object storage configuration.
type Config struct {
	// Endpoint is the object storage server address (e.g., "minio:9000")
	Endpoint string `yaml:"endpoint"`
	// AccessKey for authentication
	AccessKey string `yaml:"access_key"`
	// SecretKey for authentication
	SecretKey string `yaml:"secret_key"`
	// UseSSL enables HTTPS for storage connections
	UseSSL bool `yaml:"use_ssl"`
	// Bucket is the bucket holding ingested library objects
	Bucket string `yaml:"bucket"`
	// PublicBaseURL is the externally reachable base URL for stored objects.
	// When empty, locators are derived from the endpoint and bucket.
	PublicBaseURL string `yaml:"public_base_url"`
}

// NewConfig returns a new storage configuration with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint: "localhost:9000",
		UseSSL:   false,
		Bucket:   "library-content",
	}
}

// LoadFromViper loads storage configuration from Viper.
func LoadFromViper(v *viper.Viper) *Config {
	cfg := NewConfig()

	if v.IsSet("storage.endpoint") {
		cfg.Endpoint = v.GetString("storage.endpoint")
	}
	if v.IsSet("storage.access_key") {
		cfg.AccessKey = v.GetString("storage.access_key")
	}
	if v.IsSet("storage.secret_key") {
		cfg.SecretKey = v.GetString("storage.secret_key")
	}
	if v.IsSet("storage.use_ssl") {
		cfg.UseSSL = v.GetBool("storage.use_ssl")
	}
	if v.IsSet("storage.bucket") {
		cfg.Bucket = v.GetString("storage.bucket")
	}
	if v.IsSet("storage.public_base_url") {
		cfg.PublicBaseURL = v.GetString("storage.public_base_url")
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("storage endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("storage credentials are required")
	}
	return nil
}
