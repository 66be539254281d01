// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/models"
)

// Test assertion helpers with "check" prefix. Using t.Helper() ensures
// error messages point to the calling line.

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkNoError(t *testing.T, operation string, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", operation, err)
	}
}

func checkError(t *testing.T, operation string, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error, got nil", operation)
	}
}

func newTestSyncConfig() *config.SyncConfig {
	return &config.SyncConfig{
		Interval: 5 * time.Minute,
		Workers:  4,
	}
}

// mockStore records ReplaceAll calls for assertion.
type mockStore struct {
	mu         sync.Mutex
	snapshots  []*models.Snapshot
	replaceErr error

	// replaceDelay makes ReplaceAll slow enough to test single-flight.
	replaceDelay time.Duration
}

func (s *mockStore) ReplaceAll(ctx context.Context, snap *models.Snapshot) error {
	if s.replaceDelay > 0 {
		select {
		case <-time.After(s.replaceDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replaceErr != nil {
		return s.replaceErr
	}
	s.snapshots = append(s.snapshots, snap)
	return nil
}

func (s *mockStore) Counts(_ context.Context) (int, int, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return 0, 0, 0, 0, nil
	}
	last := s.snapshots[len(s.snapshots)-1]
	return len(last.Tenants), len(last.Shops), len(last.Socials), len(last.Releases), nil
}

func (s *mockStore) replaceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *mockStore) lastSnapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.snapshots) == 0 {
		return nil
	}
	return s.snapshots[len(s.snapshots)-1]
}

// mockUpstream is a configurable fake for the upstream client.
type mockUpstream struct {
	tenants    []models.Tenant
	listErr    error
	shopErr    error
	socialsErr error
	releaseErr error

	// failShopFor limits shopErr to a single tenant ID.
	failShopFor string

	listCalls atomic.Int64
}

func (c *mockUpstream) ListArtists(_ context.Context) ([]models.Tenant, error) {
	c.listCalls.Add(1)
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.tenants, nil
}

func (c *mockUpstream) GetShop(_ context.Context, artistID string) (*models.Shop, error) {
	if c.shopErr != nil && (c.failShopFor == "" || c.failShopFor == artistID) {
		return nil, c.shopErr
	}
	return &models.Shop{
		ID:       "shop-" + artistID,
		TenantID: artistID,
		Name:     "Shop for " + artistID,
	}, nil
}

func (c *mockUpstream) GetSocialLinks(_ context.Context, artistID string) ([]models.SocialLink, error) {
	if c.socialsErr != nil {
		return nil, c.socialsErr
	}
	return []models.SocialLink{
		{TenantID: artistID, Platform: "instagram", URL: "https://instagram.com/" + artistID},
	}, nil
}

func (c *mockUpstream) GetLatestReleases(_ context.Context, artistID string) (*models.ReleaseInfo, error) {
	if c.releaseErr != nil {
		return nil, c.releaseErr
	}
	return &models.ReleaseInfo{
		TenantID: artistID,
		Video:    &models.ReleaseSummary{Title: "Video " + artistID, URL: "https://example.com/v"},
	}, nil
}

func makeTenants(n int) []models.Tenant {
	tenants := make([]models.Tenant, 0, n)
	for i := 0; i < n; i++ {
		tenants = append(tenants, models.Tenant{
			ID:      fmt.Sprintf("tenant-%d", i),
			Name:    fmt.Sprintf("Tenant %d", i),
			Website: fmt.Sprintf("tenant%d.example.com", i),
			Active:  true,
		})
	}
	return tenants
}
