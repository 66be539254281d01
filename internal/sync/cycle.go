// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// runCycle executes one full-refresh cycle. Callers must hold syncMu.
//
// A root-collection failure (or an empty collection) aborts the cycle
// before the store is touched, preserving the last-known-good snapshot.
// Per-tenant sub-fetch failures degrade that tenant's data to absent
// instead of aborting. All writes land in a single atomic ReplaceAll.
func (m *Manager) runCycle(ctx context.Context) error {
	start := time.Now()

	tenants, err := m.client.ListArtists(ctx)
	if err != nil {
		metrics.RecordSyncCycle(0, 0, err)
		return fmt.Errorf("fetch artist collection: %w", err)
	}
	if len(tenants) == 0 {
		err = fmt.Errorf("upstream returned zero artists, keeping previous snapshot")
		metrics.RecordSyncCycle(0, 0, err)
		return err
	}

	snap := m.fetchDetails(ctx, tenants)

	if err := m.store.ReplaceAll(ctx, snap); err != nil {
		metrics.RecordSyncCycle(0, 0, err)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	m.finalizeCycle(ctx, start, len(tenants))
	return nil
}

// fetchDetails fans out the per-tenant sub-resource fetches. Tenants are
// processed with bounded concurrency (cfg.Workers); within one tenant the
// shop, social links and release fetches run in parallel.
func (m *Manager) fetchDetails(ctx context.Context, tenants []models.Tenant) *models.Snapshot {
	snap := &models.Snapshot{
		Tenants:  tenants,
		Shops:    make(map[string]*models.Shop, len(tenants)),
		Socials:  make(map[string][]models.SocialLink, len(tenants)),
		Releases: make(map[string]*models.ReleaseInfo, len(tenants)),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, m.cfg.Workers)
	)

	for i := range tenants {
		tenantID := tenants[i].ID

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			shop, socials, releases := m.fetchTenantDetails(ctx, tenantID)

			mu.Lock()
			if shop != nil {
				snap.Shops[tenantID] = shop
			}
			if len(socials) > 0 {
				snap.Socials[tenantID] = socials
			}
			if releases != nil {
				snap.Releases[tenantID] = releases
			}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return snap
}

// fetchTenantDetails fetches one tenant's shop, social links and release
// info concurrently. Any failure degrades that field to absent; the tenant
// itself still lands in the snapshot.
func (m *Manager) fetchTenantDetails(ctx context.Context, tenantID string) (*models.Shop, []models.SocialLink, *models.ReleaseInfo) {
	var (
		wg       sync.WaitGroup
		shop     *models.Shop
		socials  []models.SocialLink
		releases *models.ReleaseInfo
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		s, err := m.client.GetShop(ctx, tenantID)
		if err != nil {
			metrics.SyncPartialFailures.WithLabelValues("shop").Inc()
			logging.Warn().Err(err).Str("tenant", tenantID).Msg("Shop fetch failed, syncing tenant without shop")
			return
		}
		shop = s
	}()

	go func() {
		defer wg.Done()
		links, err := m.client.GetSocialLinks(ctx, tenantID)
		if err != nil {
			metrics.SyncPartialFailures.WithLabelValues("socials").Inc()
			logging.Warn().Err(err).Str("tenant", tenantID).Msg("Social links fetch failed, syncing tenant without socials")
			return
		}
		socials = links
	}()

	go func() {
		defer wg.Done()
		info, err := m.client.GetLatestReleases(ctx, tenantID)
		if err != nil {
			metrics.SyncPartialFailures.WithLabelValues("releases").Inc()
			logging.Warn().Err(err).Str("tenant", tenantID).Msg("Release fetch failed, syncing tenant without releases")
			return
		}
		releases = info
	}()

	wg.Wait()
	return shop, socials, releases
}

// finalizeCycle records completion state, metrics and the summary log.
func (m *Manager) finalizeCycle(ctx context.Context, start time.Time, tenantCount int) {
	m.mu.Lock()
	m.lastSync = start
	callback := m.onSyncCompleted
	m.mu.Unlock()

	duration := time.Since(start)
	metrics.RecordSyncCycle(duration, tenantCount, nil)

	if callback != nil {
		callback(tenantCount, duration.Milliseconds())
	}

	tenants, shops, socials, releases, err := m.store.Counts(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Snapshot counts unavailable after sync")
		logging.Info().Dur("duration", duration).Msg("Sync completed")
		return
	}

	logging.Info().
		Int("tenants", tenants).
		Int("shops", shops).
		Int("socials", socials).
		Int("releases", releases).
		Dur("duration", duration).
		Msg("Sync completed")
}
