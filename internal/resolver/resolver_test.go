// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/vitrine/internal/hostname"
	"github.com/tomtom215/vitrine/internal/models"
)

// fakeStore resolves hosts against an in-memory tenant list using the
// same normalization the real store applies.
type fakeStore struct {
	tenants   []models.Tenant
	shops     map[string]*models.Shop
	tenantErr error
	shopErr   error
}

func (s *fakeStore) FindTenantByWebsite(_ context.Context, host string) (*models.Tenant, error) {
	if s.tenantErr != nil {
		return nil, s.tenantErr
	}
	needle := hostname.Normalize(host)
	for i := range s.tenants {
		stored := hostname.Normalize(s.tenants[i].Website)
		if stored != "" && hostname.Matches(needle, stored) {
			return &s.tenants[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindShopByTenant(_ context.Context, tenantID string) (*models.Shop, error) {
	if s.shopErr != nil {
		return nil, s.shopErr
	}
	return s.shops[tenantID], nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants: []models.Tenant{
			{ID: "t1", Name: "Band One", Website: "https://www.bandone.com/", Active: true},
			{ID: "t2", Name: "Shopless", Website: "shopless.example.com", Active: true},
		},
		shops: map[string]*models.Shop{
			"t1": {ID: "s1", TenantID: "t1", Name: "Band One Shop"},
		},
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	r := New(newFakeStore())

	// Host header variants that must all land on the same tenant.
	for _, host := range []string{
		"bandone.com",
		"www.bandone.com",
		"BANDONE.COM",
		"bandone.com:443",
		"shop.bandone.com",
	} {
		tenant, shop, err := r.Resolve(context.Background(), host)
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", host, err)
		}
		if tenant.ID != "t1" {
			t.Errorf("Resolve(%q) tenant = %s, want t1", host, tenant.ID)
		}
		if shop == nil || shop.ID != "s1" {
			t.Errorf("Resolve(%q) shop = %+v, want s1", host, shop)
		}
	}
}

func TestResolver_Resolve_UnknownHost(t *testing.T) {
	t.Parallel()

	r := New(newFakeStore())

	_, _, err := r.Resolve(context.Background(), "unknown.example.net")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestResolver_Resolve_TenantWithoutShop(t *testing.T) {
	t.Parallel()

	r := New(newFakeStore())

	// A matched tenant with no shop still resolves to not-found: there is
	// no storefront to serve.
	_, _, err := r.Resolve(context.Background(), "shopless.example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for shopless tenant, got %v", err)
	}
}

func TestResolver_Cached(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := NewCached(store, 64, time.Minute)
	ctx := context.Background()

	tenant, _, err := r.Resolve(ctx, "bandone.com")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	// Remove the backing data: a cached resolver must still answer until
	// invalidated.
	store.tenants = nil

	cached, _, err := r.Resolve(ctx, "bandone.com")
	if err != nil {
		t.Fatalf("cached Resolve failed: %v", err)
	}
	if cached.ID != tenant.ID {
		t.Errorf("Cached tenant = %s, want %s", cached.ID, tenant.ID)
	}

	// After invalidation the lookup goes back to the store and misses.
	r.InvalidateCache()
	if _, _, err := r.Resolve(ctx, "bandone.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after invalidation, got %v", err)
	}
}

func TestResolver_Cached_NegativeResult(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	r := NewCached(store, 64, time.Minute)
	ctx := context.Background()

	if _, _, err := r.Resolve(ctx, "unknown.example.net"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	// The miss is memoized: even if the store would now match, the cached
	// negative answer holds until invalidation.
	store.tenants = append(store.tenants, models.Tenant{
		ID: "t9", Name: "Late", Website: "unknown.example.net", Active: true,
	})
	store.shops["t9"] = &models.Shop{ID: "s9", TenantID: "t9", Name: "Late Shop"}

	if _, _, err := r.Resolve(ctx, "unknown.example.net"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected cached ErrNotFound, got %v", err)
	}

	r.InvalidateCache()
	tenant, _, err := r.Resolve(ctx, "unknown.example.net")
	if err != nil {
		t.Fatalf("Resolve after invalidation failed: %v", err)
	}
	if tenant.ID != "t9" {
		t.Errorf("Tenant = %s, want t9", tenant.ID)
	}
}

func TestResolver_Resolve_StoreErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.tenantErr = errors.New("query failed")
	r := New(store)

	_, _, err := r.Resolve(context.Background(), "bandone.com")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected store error to pass through, got %v", err)
	}

	store = newFakeStore()
	store.shopErr = errors.New("shop query failed")
	r = New(store)

	_, _, err = r.Resolve(context.Background(), "bandone.com")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected shop store error to pass through, got %v", err)
	}
}
