// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// ReplaceAll replaces the committed snapshot with a new generation in a
// single transaction: all four tables are deleted and reinserted as one
// unit. On any failure the transaction rolls back and the previous
// generation stays intact.
//
// Shops, social links and release infos whose tenant id is absent from the
// snapshot's tenant set are orphans and are dropped here.
func (s *Store) ReplaceAll(ctx context.Context, snap *models.Snapshot) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStoreQuery("replace_all", start, err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"social_links", "release_infos", "shops", "tenants"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	ids := snap.TenantIDs()

	if err = insertTenants(ctx, tx, snap); err != nil {
		return err
	}
	if err = insertShops(ctx, tx, snap, ids); err != nil {
		return err
	}
	if err = insertSocials(ctx, tx, snap, ids); err != nil {
		return err
	}
	if err = insertReleases(ctx, tx, snap, ids); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace transaction: %w", err)
	}
	return nil
}

func insertTenants(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tenants
		(id, name, category, website, contact_email, contact_password,
		 logos, favicons, active, production_cost, has_avatar, has_logo, has_favicon)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare tenant insert: %w", err)
	}
	defer stmt.Close()

	for i := range snap.Tenants {
		t := &snap.Tenants[i]

		logos, err := marshalList(t.Logos)
		if err != nil {
			return fmt.Errorf("tenant %s logos: %w", t.ID, err)
		}
		favicons, err := marshalList(t.Favicons)
		if err != nil {
			return fmt.Errorf("tenant %s favicons: %w", t.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.Category,
			nullable(t.Website), nullable(t.ContactEmail), nullable(t.ContactPassword),
			logos, favicons, t.Active, t.ProductionCost,
			t.HasAvatar, t.HasLogo, t.HasFavicon,
		); err != nil {
			return fmt.Errorf("insert tenant %s: %w", t.ID, err)
		}
	}
	return nil
}

func insertShops(ctx context.Context, tx *sql.Tx, snap *models.Snapshot, ids map[string]struct{}) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO shops
		(id, tenant_id, name, website, gallery, feed_url)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare shop insert: %w", err)
	}
	defer stmt.Close()

	for tenantID, shop := range snap.Shops {
		if shop == nil {
			continue
		}
		if _, ok := ids[tenantID]; !ok {
			continue // orphan
		}

		gallery, err := marshalList(shop.Gallery)
		if err != nil {
			return fmt.Errorf("shop %s gallery: %w", shop.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			shop.ID, tenantID, shop.Name,
			nullable(shop.Website), gallery, nullable(shop.FeedURL),
		); err != nil {
			return fmt.Errorf("insert shop %s: %w", shop.ID, err)
		}
	}
	return nil
}

func insertSocials(ctx context.Context, tx *sql.Tx, snap *models.Snapshot, ids map[string]struct{}) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO social_links
		(tenant_id, platform, description, url)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare social link insert: %w", err)
	}
	defer stmt.Close()

	for tenantID, links := range snap.Socials {
		if _, ok := ids[tenantID]; !ok {
			continue // orphan
		}
		for i := range links {
			if _, err := stmt.ExecContext(ctx,
				tenantID, links[i].Platform, nullable(links[i].Description), links[i].URL,
			); err != nil {
				return fmt.Errorf("insert social link for tenant %s: %w", tenantID, err)
			}
		}
	}
	return nil
}

func insertReleases(ctx context.Context, tx *sql.Tx, snap *models.Snapshot, ids map[string]struct{}) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO release_infos
		(tenant_id, video_title, video_url, video_image, video_published_at,
		 audio_title, audio_url, audio_image, audio_published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare release insert: %w", err)
	}
	defer stmt.Close()

	for tenantID, info := range snap.Releases {
		if info == nil || (info.Video == nil && info.Audio == nil) {
			continue
		}
		if _, ok := ids[tenantID]; !ok {
			continue // orphan
		}

		var vTitle, vURL, vImage interface{}
		var vAt interface{}
		if info.Video != nil {
			vTitle, vURL, vImage, vAt = info.Video.Title, info.Video.URL, nullable(info.Video.Image), info.Video.PublishedAt
		}
		var aTitle, aURL, aImage interface{}
		var aAt interface{}
		if info.Audio != nil {
			aTitle, aURL, aImage, aAt = info.Audio.Title, info.Audio.URL, nullable(info.Audio.Image), info.Audio.PublishedAt
		}

		if _, err := stmt.ExecContext(ctx,
			tenantID, vTitle, vURL, vImage, vAt, aTitle, aURL, aImage, aAt,
		); err != nil {
			return fmt.Errorf("insert release info for tenant %s: %w", tenantID, err)
		}
	}
	return nil
}

// nullable maps an empty string to NULL.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
