// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package resolver maps an inbound request host to the tenant and shop
// that own it. Lookups are read-only queries against whatever snapshot
// generation is currently committed, so resolution keeps working on stale
// data while a sync is in flight or the upstream is unreachable.
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/vitrine/internal/cache"
	"github.com/tomtom215/vitrine/internal/hostname"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// ErrNotFound is returned when no tenant owns the host, or the owning
// tenant has no shop. Absence is a first-class result, not an exception.
var ErrNotFound = errors.New("no tenant for host")

// StoreInterface defines the snapshot reads the resolver needs.
type StoreInterface interface {
	FindTenantByWebsite(ctx context.Context, host string) (*models.Tenant, error)
	FindShopByTenant(ctx context.Context, tenantID string) (*models.Shop, error)
}

// resolution is a memoized lookup result. Misses are cached too, so an
// unknown host hammering the gateway does not scan tenants on every hit.
type resolution struct {
	tenant *models.Tenant
	shop   *models.Shop
}

// Resolver answers "which tenant owns this hostname" queries.
type Resolver struct {
	store StoreInterface
	cache *cache.LRU[resolution]
}

// New creates a resolver backed by the given snapshot store, without a
// resolution cache.
func New(store StoreInterface) *Resolver {
	return &Resolver{store: store}
}

// NewCached creates a resolver with an LRU resolution cache. The cache
// must be invalidated after every snapshot replace; wire
// InvalidateCache into the sync completion callback.
func NewCached(store StoreInterface, capacity int, ttl time.Duration) *Resolver {
	return &Resolver{
		store: store,
		cache: cache.NewLRU[resolution](capacity, ttl),
	}
}

// InvalidateCache drops all memoized resolutions.
func (r *Resolver) InvalidateCache() {
	if r.cache != nil {
		r.cache.Clear()
	}
}

// Resolve maps a request Host header to its tenant and shop.
// Returns ErrNotFound when the host matches no stored website domain or
// the matched tenant has no shop in the current snapshot.
func (r *Resolver) Resolve(ctx context.Context, hostHeader string) (*models.Tenant, *models.Shop, error) {
	key := hostname.Normalize(hostHeader)

	if r.cache != nil {
		if res, ok := r.cache.Get(key); ok {
			if res.tenant == nil || res.shop == nil {
				metrics.ResolverLookups.WithLabelValues("cached_miss").Inc()
				return nil, nil, ErrNotFound
			}
			metrics.ResolverLookups.WithLabelValues("cached_hit").Inc()
			return res.tenant, res.shop, nil
		}
	}

	tenant, err := r.store.FindTenantByWebsite(ctx, hostHeader)
	if err != nil {
		return nil, nil, err
	}
	if tenant == nil {
		r.remember(key, resolution{})
		metrics.ResolverLookups.WithLabelValues("miss").Inc()
		return nil, nil, ErrNotFound
	}

	shop, err := r.store.FindShopByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, nil, err
	}
	if shop == nil {
		r.remember(key, resolution{tenant: tenant})
		metrics.ResolverLookups.WithLabelValues("miss").Inc()
		return nil, nil, ErrNotFound
	}

	r.remember(key, resolution{tenant: tenant, shop: shop})
	metrics.ResolverLookups.WithLabelValues("hit").Inc()
	return tenant, shop, nil
}

func (r *Resolver) remember(key string, res resolution) {
	if r.cache != nil {
		r.cache.Add(key, res)
	}
}
