// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/vitrine/internal/logging"
	syncpkg "github.com/tomtom215/vitrine/internal/sync"
)

// SyncService wraps the sync manager as a suture service. The manager
// runs its own refresh loop; Serve starts it, blocks until the context
// is canceled, then stops it and waits for any in-flight cycle to drain.
type SyncService struct {
	manager *syncpkg.Manager
}

// NewSyncService creates a suture service for the sync manager.
func NewSyncService(manager *syncpkg.Manager) *SyncService {
	return &SyncService{manager: manager}
}

// Serve implements suture.Service.
func (s *SyncService) Serve(ctx context.Context) error {
	if err := s.manager.Start(ctx); err != nil {
		return fmt.Errorf("starting sync manager: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		logging.Warn().Err(err).Msg("sync manager stop reported error")
	}
	return ctx.Err()
}

func (s *SyncService) String() string { return "sync-manager" }

// HTTPService wraps an http.Server as a suture service with graceful
// shutdown.
type HTTPService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

// NewHTTPService creates a suture service for the HTTP server.
func NewHTTPService(server *http.Server, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. ListenAndServe runs until shutdown;
// context cancellation triggers a graceful Shutdown bounded by the
// configured timeout.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logging.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		// Clean close without cancellation means something external shut
		// the server down; do not restart.
		return suture.ErrDoNotRestart
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		logging.Warn().Err(err).Msg("HTTP server shutdown incomplete, forcing close")
		_ = s.server.Close()
	}
	<-errCh

	return ctx.Err()
}

func (s *HTTPService) String() string { return "http-server" }
