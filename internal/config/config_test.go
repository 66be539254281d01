// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate, for mutation tests.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Upstream.URL = "https://api.example.com"
	cfg.Upstream.Token = "secret"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("Upstream timeout: expected 30s, got %s", cfg.Upstream.Timeout)
	}
	if cfg.Database.Path != "/data/vitrine.duckdb" {
		t.Errorf("Database path: expected /data/vitrine.duckdb, got %s", cfg.Database.Path)
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("Sync interval: expected 5m, got %s", cfg.Sync.Interval)
	}
	if cfg.Sync.Workers != 4 {
		t.Errorf("Sync workers: expected 4, got %d", cfg.Sync.Workers)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server port: expected 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaintenanceMode {
		t.Error("Maintenance mode must default to off")
	}
	if cfg.SEO.ProbeTimeout != 10*time.Second {
		t.Errorf("Probe timeout: expected 10s, got %s", cfg.SEO.ProbeTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Log level: expected info, got %s", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing upstream url", func(c *Config) { c.Upstream.URL = "" }, "upstream.url"},
		{"relative upstream url", func(c *Config) { c.Upstream.URL = "api.example.com" }, "not a valid absolute URL"},
		{"missing token", func(c *Config) { c.Upstream.Token = "" }, "upstream.token"},
		{"zero upstream timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "upstream.timeout"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "database.threads"},
		{"sub-second interval", func(c *Config) { c.Sync.Interval = 100 * time.Millisecond }, "sync.interval"},
		{"zero workers", func(c *Config) { c.Sync.Workers = 0 }, "sync.workers"},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero server timeout", func(c *Config) { c.Server.Timeout = 0 }, "server.timeout"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected valid config, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
