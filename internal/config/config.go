// Package config provides configuration loading for assetd.
//
// Configuration is loaded from a YAML file with environment variable
// overrides, or from environment variables alone. This package covers the
// HTTP server, object storage, asset catalog, NATS eventing, registry
// limits, and observability settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete assetd configuration.
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	Catalog       CatalogConfig
	NATS          NATSConfig
	Registry      RegistryConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimit       float64  `koanf:"rate_limit"` // requests/second, 0 disables
}

// StorageConfig holds object store configuration.
type StorageConfig struct {
	// BaseURL selects the storage backend by scheme, e.g.
	// file:///var/lib/assetd, mem://localhost/assetd, s3://bucket/prefix.
	BaseURL string `koanf:"base_url"`
}

// CatalogConfig holds asset manifest catalog configuration.
type CatalogConfig struct {
	// Root is the project tree holding data/ and models/ manifests.
	// Empty disables the catalog: any storage-safe asset ID is accepted.
	Root string

	// Watch reloads the catalog when manifests change on disk.
	Watch bool
}

// NATSConfig holds event publishing configuration.
type NATSConfig struct {
	// URL of the NATS server. Empty disables eventing.
	URL string

	// Token is an optional authentication token.
	Token Secret
}

// RegistryConfig holds asset registry limits.
type RegistryConfig struct {
	MaxPayloadMB int `koanf:"max_payload_mb"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool   `koanf:"enable_telemetry"`
	ServiceName     string `koanf:"service_name"`
}

// Load loads configuration from environment variables with defaults.
//
// Environment variables:
//   - SERVER_HTTP_PORT: HTTP server port (default: 8090)
//   - SERVER_SHUTDOWN_TIMEOUT: Graceful shutdown timeout (default: 10s)
//   - SERVER_RATE_LIMIT: Requests per second, 0 disables (default: 0)
//   - STORAGE_BASE_URL: Object store base URL (default: file store under
//     ~/.local/share/assetd)
//   - CATALOG_ROOT: Project tree with asset manifests (default: unset)
//   - CATALOG_WATCH: Reload manifests on change (default: true)
//   - NATS_URL: NATS server URL, empty disables eventing (default: unset)
//   - NATS_TOKEN: NATS authentication token (default: unset)
//   - REGISTRY_MAX_PAYLOAD_MB: Payload size cap in MiB (default: 64)
//   - OBSERVABILITY_ENABLE_TELEMETRY: Enable OpenTelemetry (default: true)
//   - OBSERVABILITY_SERVICE_NAME: Service name for traces (default: assetd)
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_HTTP_PORT", 8090),
			ShutdownTimeout: Duration(getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)),
			RateLimit:       getEnvFloat("SERVER_RATE_LIMIT", 0),
		},
		Storage: StorageConfig{
			BaseURL: getEnvString("STORAGE_BASE_URL", DefaultStorageURL()),
		},
		Catalog: CatalogConfig{
			Root:  getEnvString("CATALOG_ROOT", ""),
			Watch: getEnvBool("CATALOG_WATCH", true),
		},
		NATS: NATSConfig{
			URL:   getEnvString("NATS_URL", ""),
			Token: Secret(getEnvString("NATS_TOKEN", "")),
		},
		Registry: RegistryConfig{
			MaxPayloadMB: getEnvInt("REGISTRY_MAX_PAYLOAD_MB", 64),
		},
		Observability: ObservabilityConfig{
			EnableTelemetry: getEnvBool("OBSERVABILITY_ENABLE_TELEMETRY", true),
			ServiceName:     getEnvString("OBSERVABILITY_SERVICE_NAME", "assetd"),
		},
	}

	return cfg
}

// DefaultStorageURL returns the default object store location: a file
// store under the user's data directory, or an in-memory store when the
// home directory cannot be resolved.
func DefaultStorageURL() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mem://localhost/assetd"
	}
	return "file://" + filepath.Join(home, ".local", "share", "assetd")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %f", c.Server.RateLimit)
	}

	if !strings.Contains(c.Storage.BaseURL, "://") {
		return fmt.Errorf("storage base URL needs a scheme: %q", c.Storage.BaseURL)
	}

	if c.Registry.MaxPayloadMB < 0 {
		return fmt.Errorf("max payload size cannot be negative: %d", c.Registry.MaxPayloadMB)
	}

	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
