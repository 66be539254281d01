// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

/*
manager.go - Sync Manager Lifecycle and Orchestration

The sync manager periodically replaces the local snapshot with a full
refresh from the upstream system of record.

Lifecycle Methods:
  - NewManager(): Initialize manager with store, upstream client and config
  - Start(): Begin the initial cycle and the periodic sync loop
  - Stop(): Gracefully shut down and wait for the in-flight cycle
  - TriggerSync(): Manual cycle execution (single-flight, drops overlaps)
  - LastSyncTime(): Timestamp of the last successful cycle

Thread Safety:
  - syncMu: single-flight guard; TryLock drops overlapping triggers
  - mu: protects shared state (running, lastSync, callback)
  - stopChan + WaitGroup coordinate shutdown
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// StoreInterface defines the snapshot store operations the sync engine
// needs. The store's read side is never touched from here.
type StoreInterface interface {
	ReplaceAll(ctx context.Context, snap *models.Snapshot) error
	Counts(ctx context.Context) (tenants, shops, socials, releases int, err error)
}

// Client defines the upstream API surface consumed by sync cycles.
// Satisfied by upstream.Client and upstream.CircuitBreakerClient.
type Client interface {
	ListArtists(ctx context.Context) ([]models.Tenant, error)
	GetShop(ctx context.Context, artistID string) (*models.Shop, error)
	GetSocialLinks(ctx context.Context, artistID string) ([]models.SocialLink, error)
	GetLatestReleases(ctx context.Context, artistID string) (*models.ReleaseInfo, error)
}

// Manager orchestrates periodic full-refresh cycles from upstream into the
// snapshot store.
type Manager struct {
	store  StoreInterface
	client Client
	cfg    *config.SyncConfig

	lastSync time.Time
	running  bool
	mu       sync.RWMutex

	// syncMu is the single-flight guard. A trigger that arrives while a
	// cycle is in flight is dropped, not queued.
	syncMu sync.Mutex

	stopChan chan struct{}
	wg       sync.WaitGroup

	onSyncCompleted func(tenants int, durationMs int64)
}

// NewManager creates a sync manager.
func NewManager(store StoreInterface, client Client, cfg *config.SyncConfig) *Manager {
	logging.Info().
		Dur("interval", cfg.Interval).
		Int("workers", cfg.Workers).
		Msg("Sync manager config loaded")

	return &Manager{
		store:    store,
		client:   client,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// SetOnSyncCompleted sets the callback invoked after each successful cycle.
func (m *Manager) SetOnSyncCompleted(callback func(tenants int, durationMs int64)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSyncCompleted = callback
}

// Start kicks off an immediate initial cycle followed by the periodic loop.
// The stop channel is recreated on every start so a stopped manager can be
// restarted, e.g. after a supervisor restart of its service wrapper.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	m.running = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.wg.Add(1)
	m.mu.Unlock()

	logging.Info().Msg("Starting sync manager...")

	go m.syncLoop(ctx, stop)

	return nil
}

// Stop gracefully stops the sync loop, waiting for an in-flight cycle.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	close(stop)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")

	return nil
}

// LastSyncTime returns the timestamp of the last successful cycle.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// TriggerSync runs one cycle now. If a cycle is already in flight the
// trigger is a no-op: the store is touched at most once per overlapping
// burst. Cycle failures are returned for the caller's log line but are
// never fatal.
func (m *Manager) TriggerSync(ctx context.Context) error {
	if !m.syncMu.TryLock() {
		logging.Debug().Msg("Sync already in flight, dropping trigger")
		metrics.SyncCyclesTotal.WithLabelValues("skipped").Inc()
		return nil
	}
	defer m.syncMu.Unlock()

	return m.runCycle(ctx)
}

// TriggerSyncBackground runs one cycle in a goroutine tracked by the
// manager's WaitGroup, so Stop waits for it instead of letting it race
// store shutdown. Returns false when the manager is not running.
func (m *Manager) TriggerSyncBackground() bool {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return false
	}
	stop := m.stopChan
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-stop:
				cancel()
			case <-ctx.Done():
			}
		}()

		if err := m.TriggerSync(ctx); err != nil {
			logging.Error().Err(err).Msg("Manually triggered sync failed")
		}
	}()
	return true
}

// syncLoop runs the initial cycle, then reschedules each subsequent cycle
// a full interval after the previous one completes. A failed cycle is
// retried on the next tick indefinitely.
func (m *Manager) syncLoop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	if err := m.TriggerSync(ctx); err != nil {
		logging.Warn().Err(err).Msg("Initial sync failed (will retry)")
	}

	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-timer.C:
			if err := m.TriggerSync(ctx); err != nil {
				logging.Error().Err(err).Msg("Sync cycle failed")
			}
			// Interval is measured from cycle completion, not aligned
			// to the wall clock.
			timer.Reset(m.cfg.Interval)
		}
	}
}
