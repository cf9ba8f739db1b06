package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupTestHome points HOME at a temp directory so tests never touch the
// real user config. Returns the temp home path.
func setupTestHome(t *testing.T) string {
	t.Helper()

	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)
	return tmpHome
}

// writeTestConfig writes YAML into the allowed config dir with 0600.
func writeTestConfig(t *testing.T, home, content string) string {
	t.Helper()

	configDir := filepath.Join(home, ".config", "assetd")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadWithFile_BuiltinDefaults(t *testing.T) {
	home := setupTestHome(t)

	// No file exists at the default path, defaults apply.
	cfg, err := LoadWithFile(filepath.Join(home, ".config", "assetd", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout.Duration())
	}
	if !cfg.Catalog.Watch {
		t.Error("Catalog.Watch = false, want true")
	}
	if !cfg.Observability.EnableTelemetry {
		t.Error("Observability.EnableTelemetry = false, want true")
	}
	if cfg.Observability.ServiceName != "assetd" {
		t.Errorf("Observability.ServiceName = %q, want assetd", cfg.Observability.ServiceName)
	}
	if !strings.Contains(cfg.Storage.BaseURL, "://") {
		t.Errorf("Storage.BaseURL = %q, want a URL with a scheme", cfg.Storage.BaseURL)
	}
}

func TestLoadWithFile_ValidYAML(t *testing.T) {
	home := setupTestHome(t)

	configPath := writeTestConfig(t, home, `server:
  http_port: 9191
  shutdown_timeout: 25s

storage:
  base_url: mem://localhost/assetd-yaml

catalog:
  root: /srv/demo-project
  watch: false

nats:
  url: nats://127.0.0.1:4222
  token: topsecret

observability:
  enable_telemetry: false
  service_name: assetd-test
`)

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 25*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 25s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Storage.BaseURL != "mem://localhost/assetd-yaml" {
		t.Errorf("Storage.BaseURL = %q, want mem://localhost/assetd-yaml", cfg.Storage.BaseURL)
	}
	if cfg.Catalog.Root != "/srv/demo-project" {
		t.Errorf("Catalog.Root = %q, want /srv/demo-project", cfg.Catalog.Root)
	}
	if cfg.Catalog.Watch {
		t.Error("Catalog.Watch = true, want false")
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("NATS.URL = %q, want nats://127.0.0.1:4222", cfg.NATS.URL)
	}
	if cfg.NATS.Token.Value() != "topsecret" {
		t.Errorf("NATS.Token.Value() = %q, want topsecret", cfg.NATS.Token.Value())
	}
	if cfg.Observability.EnableTelemetry {
		t.Error("Observability.EnableTelemetry = true, want false")
	}
	if cfg.Observability.ServiceName != "assetd-test" {
		t.Errorf("Observability.ServiceName = %q, want assetd-test", cfg.Observability.ServiceName)
	}
}

func TestLoadWithFile_EnvironmentOverride(t *testing.T) {
	home := setupTestHome(t)

	configPath := writeTestConfig(t, home, `server:
  http_port: 9191

observability:
  service_name: yaml-service
`)

	t.Setenv("SERVER_HTTP_PORT", "7777")
	t.Setenv("OBSERVABILITY_SERVICE_NAME", "env-service")

	cfg, err := LoadWithFile(configPath)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v, want nil", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (from env override)", cfg.Server.Port)
	}
	if cfg.Observability.ServiceName != "env-service" {
		t.Errorf("Observability.ServiceName = %q, want env-service (from env override)", cfg.Observability.ServiceName)
	}
}

func TestLoadWithFile_RejectsInsecurePermissions(t *testing.T) {
	home := setupTestHome(t)

	configPath := writeTestConfig(t, home, "server:\n  http_port: 9191\n")
	if err := os.Chmod(configPath, 0644); err != nil {
		t.Fatalf("Chmod error = %v", err)
	}

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want permission error")
	}
	if !strings.Contains(err.Error(), "permissions") {
		t.Errorf("LoadWithFile() error = %v, want permissions error", err)
	}
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	setupTestHome(t)

	outside := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(outside, []byte("server:\n  http_port: 9191\n"), 0600); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	_, err := LoadWithFile(outside)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want path validation error")
	}
	if !strings.Contains(err.Error(), "path validation") {
		t.Errorf("LoadWithFile() error = %v, want path validation error", err)
	}
}

func TestLoadWithFile_InvalidYAML(t *testing.T) {
	home := setupTestHome(t)

	configPath := writeTestConfig(t, home, "server: [not: a: mapping\n")

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want parse error")
	}
}

func TestLoadWithFile_InvalidConfigFails(t *testing.T) {
	home := setupTestHome(t)

	configPath := writeTestConfig(t, home, "server:\n  http_port: 99999\n")

	_, err := LoadWithFile(configPath)
	if err == nil {
		t.Fatal("LoadWithFile() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "invalid server port") {
		t.Errorf("LoadWithFile() error = %v, want invalid server port", err)
	}
}

func TestValidateConfigPath_RejectsPathTraversal(t *testing.T) {
	setupTestHome(t)

	tests := []struct {
		name string
		path string
	}{
		{"double dot escape", "/etc/assetd../etc/passwd"},
		{"relative escape", "../../../../etc/passwd"},
		{"unrelated absolute path", "/var/tmp/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateConfigPath(tt.path); err == nil {
				t.Errorf("Expected error for path: %s", tt.path)
			}
		})
	}
}

func TestValidateConfigPath_AllowsValidPaths(t *testing.T) {
	home := setupTestHome(t)

	validPaths := []string{
		filepath.Join(home, ".config", "assetd", "config.yaml"),
		filepath.Join(home, ".config", "assetd", "subdir", "config.yaml"),
		"/etc/assetd/config.yaml",
		"/etc/assetd/production/config.yaml",
	}

	for _, path := range validPaths {
		t.Run(path, func(t *testing.T) {
			if err := validateConfigPath(path); err != nil {
				t.Errorf("Valid path rejected: %s, error: %v", path, err)
			}
		})
	}
}

func TestEnsureConfigDir(t *testing.T) {
	home := setupTestHome(t)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".config", "assetd"))
	if err != nil {
		t.Fatalf("Stat error = %v", err)
	}
	if !info.IsDir() {
		t.Error("config path is not a directory")
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("config dir permissions = %v, want 0700", perm)
	}
}
