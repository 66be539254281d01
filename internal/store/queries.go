// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vitrine/internal/hostname"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

const tenantColumns = `id, name, category, website, contact_email, contact_password,
	logos, favicons, active, production_cost, has_avatar, has_logo, has_favicon`

// FindTenantByWebsite returns the tenant whose stored website domain owns
// the given host, or nil when none matches. The host and the stored values
// are normalized before comparison; an exact registrable-domain match is
// preferred over a subdomain-suffix match, and in each tier the first
// match in natural row order wins.
func (s *Store) FindTenantByWebsite(ctx context.Context, host string) (t *models.Tenant, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("find_tenant_by_website", start, err) }()

	needle := hostname.Normalize(host)
	if needle == "" {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE website IS NOT NULL AND website <> ''`)
	if err != nil {
		return nil, fmt.Errorf("query tenants by website: %w", err)
	}
	defer rows.Close()

	var suffixMatch *models.Tenant
	for rows.Next() {
		tenant, scanErr := scanTenant(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		stored := hostname.Normalize(tenant.Website)
		if stored == "" {
			continue
		}
		if needle == stored || hostname.Registrable(needle) == stored {
			return tenant, nil
		}
		if suffixMatch == nil && hostname.Matches(needle, stored) {
			suffixMatch = tenant
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("scan tenants by website: %w", err)
	}

	return suffixMatch, nil
}

// FindShopByTenant returns a tenant's shop, or nil when the tenant has none.
func (s *Store) FindShopByTenant(ctx context.Context, tenantID string) (shop *models.Shop, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("find_shop_by_tenant", start, err) }()

	row := s.conn.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, website, gallery, feed_url FROM shops WHERE tenant_id = ?`,
		tenantID)

	shop, err = scanShop(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return shop, err
}

// ListSocialLinks returns a tenant's social links in natural row order.
func (s *Store) ListSocialLinks(ctx context.Context, tenantID string) (links []models.SocialLink, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("list_social_links", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT tenant_id, platform, description, url FROM social_links WHERE tenant_id = ?`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("query social links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var link models.SocialLink
		var description sql.NullString
		if err = rows.Scan(&link.TenantID, &link.Platform, &description, &link.URL); err != nil {
			return nil, fmt.Errorf("scan social link: %w", err)
		}
		link.Description = description.String
		links = append(links, link)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("scan social links: %w", err)
	}
	return links, nil
}

// GetReleaseInfo returns a tenant's latest-release info, or nil when absent.
func (s *Store) GetReleaseInfo(ctx context.Context, tenantID string) (info *models.ReleaseInfo, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("get_release_info", start, err) }()

	row := s.conn.QueryRowContext(ctx,
		`SELECT tenant_id, video_title, video_url, video_image, video_published_at,
		        audio_title, audio_url, audio_image, audio_published_at
		 FROM release_infos WHERE tenant_id = ?`,
		tenantID)

	var (
		id                     string
		vTitle, vURL, vImage   sql.NullString
		aTitle, aURL, aImage   sql.NullString
		vPublished, aPublished sql.NullTime
	)
	err = row.Scan(&id, &vTitle, &vURL, &vImage, &vPublished, &aTitle, &aURL, &aImage, &aPublished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan release info: %w", err)
	}

	info = &models.ReleaseInfo{TenantID: id}
	if vTitle.Valid {
		info.Video = &models.ReleaseSummary{
			Title: vTitle.String, URL: vURL.String, Image: vImage.String, PublishedAt: vPublished.Time,
		}
	}
	if aTitle.Valid {
		info.Audio = &models.ReleaseSummary{
			Title: aTitle.String, URL: aURL.String, Image: aImage.String, PublishedAt: aPublished.Time,
		}
	}
	return info, nil
}

// ListTenants returns every tenant in the committed snapshot.
func (s *Store) ListTenants(ctx context.Context) (tenants []models.Tenant, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("list_tenants", start, err) }()

	rows, err := s.conn.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants`)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tenant, scanErr := scanTenant(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tenants = append(tenants, *tenant)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("scan tenants: %w", err)
	}
	return tenants, nil
}

// ListShops returns every shop in the committed snapshot.
func (s *Store) ListShops(ctx context.Context) (shops []models.Shop, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("list_shops", start, err) }()

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, tenant_id, name, website, gallery, feed_url FROM shops`)
	if err != nil {
		return nil, fmt.Errorf("query shops: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		shop, scanErr := scanShop(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		shops = append(shops, *shop)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("scan shops: %w", err)
	}
	return shops, nil
}

// Counts returns the row counts of the four snapshot tables, used for the
// cycle summary log.
func (s *Store) Counts(ctx context.Context) (tenants, shops, socials, releases int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("counts", start, err) }()

	err = s.conn.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM tenants),
		        (SELECT count(*) FROM shops),
		        (SELECT count(*) FROM social_links),
		        (SELECT count(*) FROM release_infos)`).
		Scan(&tenants, &shops, &socials, &releases)
	if err != nil {
		err = fmt.Errorf("count snapshot rows: %w", err)
	}
	return tenants, shops, socials, releases, err
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTenant(sc scanner) (*models.Tenant, error) {
	var (
		t               models.Tenant
		website         sql.NullString
		email, password sql.NullString
		logos, favicons sql.NullString
		productionCost  sql.NullFloat64
	)
	if err := sc.Scan(&t.ID, &t.Name, &t.Category, &website, &email, &password,
		&logos, &favicons, &t.Active, &productionCost,
		&t.HasAvatar, &t.HasLogo, &t.HasFavicon); err != nil {
		return nil, fmt.Errorf("scan tenant: %w", err)
	}

	t.Website = website.String
	t.ContactEmail = email.String
	t.ContactPassword = password.String
	if productionCost.Valid {
		t.ProductionCost = &productionCost.Float64
	}

	var err error
	if t.Logos, err = unmarshalList(logos); err != nil {
		return nil, fmt.Errorf("tenant %s logos: %w", t.ID, err)
	}
	if t.Favicons, err = unmarshalList(favicons); err != nil {
		return nil, fmt.Errorf("tenant %s favicons: %w", t.ID, err)
	}
	return &t, nil
}

func scanShop(sc scanner) (*models.Shop, error) {
	var (
		shop             models.Shop
		website, feedURL sql.NullString
		gallery          sql.NullString
	)
	if err := sc.Scan(&shop.ID, &shop.TenantID, &shop.Name, &website, &gallery, &feedURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan shop: %w", err)
	}

	shop.Website = website.String
	shop.FeedURL = feedURL.String

	var err error
	if shop.Gallery, err = unmarshalList(gallery); err != nil {
		return nil, fmt.Errorf("shop %s gallery: %w", shop.ID, err)
	}
	return &shop, nil
}
