// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package store persists the latest synchronized snapshot in an embedded
// DuckDB database. The sync engine is the only writer, replacing all four
// tables in one transaction per cycle; the serving path only reads. A
// reader never observes a torn mix of two generations.
//
// The store is constructed once in main and passed by reference to the
// sync engine and request handlers. It holds no global state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/vitrine/internal/config"
)

// Store wraps the DuckDB connection and provides snapshot access methods.
type Store struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database file and initializes the schema.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for the database file.
	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301.
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg}

	if err := s.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

// initialize creates the snapshot tables if they do not exist.
func (s *Store) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS tenants (
			id               VARCHAR PRIMARY KEY,
			name             VARCHAR NOT NULL,
			category         VARCHAR NOT NULL,
			website          VARCHAR,
			contact_email    VARCHAR,
			contact_password VARCHAR,
			logos            VARCHAR,
			favicons         VARCHAR,
			active           BOOLEAN NOT NULL DEFAULT true,
			production_cost  DOUBLE,
			has_avatar       BOOLEAN NOT NULL DEFAULT false,
			has_logo         BOOLEAN NOT NULL DEFAULT false,
			has_favicon      BOOLEAN NOT NULL DEFAULT false
		)`,
		`CREATE TABLE IF NOT EXISTS shops (
			id        VARCHAR PRIMARY KEY,
			tenant_id VARCHAR NOT NULL,
			name      VARCHAR NOT NULL,
			website   VARCHAR,
			gallery   VARCHAR,
			feed_url  VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS social_links (
			tenant_id   VARCHAR NOT NULL,
			platform    VARCHAR NOT NULL,
			description VARCHAR,
			url         VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS release_infos (
			tenant_id          VARCHAR PRIMARY KEY,
			video_title        VARCHAR,
			video_url          VARCHAR,
			video_image        VARCHAR,
			video_published_at TIMESTAMP,
			audio_title        VARCHAR,
			audio_url          VARCHAR,
			audio_image        VARCHAR,
			audio_published_at TIMESTAMP
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// marshalList serializes an ordered string list column. Empty lists are
// stored as NULL.
func marshalList(items []string) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal list: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// unmarshalList deserializes an ordered string list column.
func unmarshalList(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw.String), &items); err != nil {
		return nil, fmt.Errorf("unmarshal list: %w", err)
	}
	return items, nil
}
