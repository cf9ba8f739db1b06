package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout.Duration())
	}
	if !strings.Contains(cfg.Storage.BaseURL, "://") {
		t.Errorf("Storage.BaseURL = %q, want a URL with a scheme", cfg.Storage.BaseURL)
	}
	if !cfg.Catalog.Watch {
		t.Error("Catalog.Watch = false, want true")
	}
	if cfg.NATS.URL != "" {
		t.Errorf("NATS.URL = %q, want empty", cfg.NATS.URL)
	}
	if cfg.Registry.MaxPayloadMB != 64 {
		t.Errorf("Registry.MaxPayloadMB = %d, want 64", cfg.Registry.MaxPayloadMB)
	}
	if cfg.Observability.ServiceName != "assetd" {
		t.Errorf("Observability.ServiceName = %q, want %q", cfg.Observability.ServiceName, "assetd")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_HTTP_PORT", "7070")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STORAGE_BASE_URL", "mem://localhost/test")
	t.Setenv("CATALOG_ROOT", "/srv/project")
	t.Setenv("CATALOG_WATCH", "false")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("NATS_TOKEN", "s3cret")
	t.Setenv("REGISTRY_MAX_PAYLOAD_MB", "8")
	t.Setenv("OBSERVABILITY_ENABLE_TELEMETRY", "false")

	cfg := Load()

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 30*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 30s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Storage.BaseURL != "mem://localhost/test" {
		t.Errorf("Storage.BaseURL = %q, want mem://localhost/test", cfg.Storage.BaseURL)
	}
	if cfg.Catalog.Root != "/srv/project" {
		t.Errorf("Catalog.Root = %q, want /srv/project", cfg.Catalog.Root)
	}
	if cfg.Catalog.Watch {
		t.Error("Catalog.Watch = true, want false")
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" {
		t.Errorf("NATS.URL = %q, want nats://127.0.0.1:4222", cfg.NATS.URL)
	}
	if cfg.NATS.Token.Value() != "s3cret" {
		t.Errorf("NATS.Token.Value() = %q, want s3cret", cfg.NATS.Token.Value())
	}
	if cfg.Registry.MaxPayloadMB != 8 {
		t.Errorf("Registry.MaxPayloadMB = %d, want 8", cfg.Registry.MaxPayloadMB)
	}
	if cfg.Observability.EnableTelemetry {
		t.Error("Observability.EnableTelemetry = true, want false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default config is valid",
			mutate: func(*Config) {},
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid server port",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout must be positive",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.Server.RateLimit = -1 },
			wantErr: "rate limit cannot be negative",
		},
		{
			name:    "storage URL without scheme",
			mutate:  func(c *Config) { c.Storage.BaseURL = "/var/lib/assetd" },
			wantErr: "storage base URL needs a scheme",
		},
		{
			name:    "negative payload cap",
			mutate:  func(c *Config) { c.Registry.MaxPayloadMB = -1 },
			wantErr: "max payload size cannot be negative",
		},
		{
			name: "telemetry without service name",
			mutate: func(c *Config) {
				c.Observability.EnableTelemetry = true
				c.Observability.ServiceName = ""
			},
			wantErr: "service name required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText(90s) error = %v", err)
	}
	if d.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", d.Duration())
	}

	if err := d.UnmarshalText([]byte("-5s")); err == nil {
		t.Error("UnmarshalText(-5s) error = nil, want error")
	}
	if err := d.UnmarshalText([]byte("not-a-duration")); err == nil {
		t.Error("UnmarshalText(not-a-duration) error = nil, want error")
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Duration(5 * time.Minute))
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `"5m0s"` {
		t.Errorf("Marshal = %s, want \"5m0s\"", data)
	}
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("hunter2")

	if got := s.String(); got != "[REDACTED]" {
		t.Errorf("String() = %q, want [REDACTED]", got)
	}
	if got := fmt.Sprintf("%v", s); got != "[REDACTED]" {
		t.Errorf("Sprintf(%%v) = %q, want [REDACTED]", got)
	}
	if got := fmt.Sprintf("%#v", s); got != "Secret([REDACTED])" {
		t.Errorf("Sprintf(%%#v) = %q, want Secret([REDACTED])", got)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != `"[REDACTED]"` {
		t.Errorf("Marshal = %s, want \"[REDACTED]\"", data)
	}

	if s.Value() != "hunter2" {
		t.Errorf("Value() = %q, want hunter2", s.Value())
	}
	if !s.IsSet() {
		t.Error("IsSet() = false, want true")
	}

	var empty Secret
	if empty.String() != "" {
		t.Errorf("empty String() = %q, want empty", empty.String())
	}
	if empty.IsSet() {
		t.Error("empty IsSet() = true, want false")
	}
}
