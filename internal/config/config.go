// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package config loads and validates the Vitrine application configuration.
//
// Configuration is loaded via Koanf v2 with layered sources, highest
// priority last:
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (UPSTREAM_URL, DUCKDB_PATH, SYNC_INTERVAL, ...)
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the Vitrine server.
type Config struct {
	Upstream UpstreamConfig `koanf:"upstream"`
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Server   ServerConfig   `koanf:"server"`
	SEO      SEOConfig      `koanf:"seo"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// UpstreamConfig configures the remote system-of-record API client.
type UpstreamConfig struct {
	// URL is the base URL of the upstream API, e.g. https://api.example.com.
	URL string `koanf:"url"`

	// Token is the bearer credential sent with every request.
	Token string `koanf:"token"`

	// Timeout bounds each HTTP call so a stalled fetch fails instead of
	// hanging a sync cycle.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the maximum upstream requests per second. 0 disables
	// client-side rate limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

// DatabaseConfig configures the embedded DuckDB snapshot store.
type DatabaseConfig struct {
	// Path is the DuckDB database file path.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB memory usage, e.g. "512MB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// SyncConfig configures the periodic full-refresh cycle.
type SyncConfig struct {
	// Interval is the delay between cycles, measured from cycle completion.
	Interval time.Duration `koanf:"interval"`

	// Workers bounds how many tenants are fetched concurrently within one
	// cycle. The three sub-resources of each tenant are always fetched in
	// parallel regardless of this value.
	Workers int `koanf:"workers"`
}

// ServerConfig configures the HTTP serving surface.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// MaintenanceMode switches storefront rendering to the maintenance
	// template for every tenant.
	MaintenanceMode bool `koanf:"maintenance_mode"`

	// RateLimitReqs/RateLimitWindow configure per-IP API rate limiting.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins for the JSON API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// SEOConfig configures server-rendered page metadata.
type SEOConfig struct {
	// DefaultTitle is used for the storefront root path.
	DefaultTitle string `koanf:"default_title"`

	// DefaultDescription is the fallback meta description.
	DefaultDescription string `koanf:"default_description"`

	// ProbeTimeout bounds the representative-image metadata fetch.
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
}

// LoggingConfig configures the zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			URL:       "",
			Token:     "",
			Timeout:   30 * time.Second,
			RateLimit: 10,
		},
		Database: DatabaseConfig{
			Path:      "/data/vitrine.duckdb",
			MaxMemory: "512MB",
			Threads:   0, // 0 = runtime.NumCPU()
		},
		Sync: SyncConfig{
			Interval: 5 * time.Minute,
			Workers:  4,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			MaintenanceMode: false,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{},
		},
		SEO: SEOConfig{
			DefaultTitle:       "Shop",
			DefaultDescription: "Official artist storefront",
			ProbeTimeout:       10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks configuration invariants after all layers are merged.
func (c *Config) Validate() error {
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateUpstream() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is required (UPSTREAM_URL)")
	}
	u, err := url.Parse(c.Upstream.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.url %q is not a valid absolute URL", c.Upstream.URL)
	}
	if c.Upstream.Token == "" {
		return fmt.Errorf("upstream.token is required (UPSTREAM_TOKEN)")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required (DUCKDB_PATH)")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database.threads must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least 1s, got %s", c.Sync.Interval)
	}
	if c.Sync.Workers < 1 {
		return fmt.Errorf("sync.workers must be >= 1, got %d", c.Sync.Workers)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}
