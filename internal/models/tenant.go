// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package models defines the entities held in the local snapshot store:
// tenants (artists), their shops, social links, and latest-release info.
// All entities are produced by the sync engine and read-only on the
// serving path.
package models

import "time"

// Tenant categories as reported by the upstream system of record.
const (
	CategoryGroup      = "group"
	CategoryIndividual = "individual"
)

// Tenant is an artist or brand owning one storefront.
type Tenant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"` // "group" or "individual"

	// Website is the tenant's public domain, as provided upstream.
	// Stored verbatim; normalization happens at resolve time.
	Website string `json:"website,omitempty"`

	// Contact mailbox credentials used by the storefront contact form.
	ContactEmail    string `json:"contactEmail,omitempty"`
	ContactPassword string `json:"-"`

	// Logos and Favicons are ordered asset reference lists; the first
	// entry is the representative one for previews and OG images.
	Logos    []string `json:"logos,omitempty"`
	Favicons []string `json:"favicons,omitempty"`

	Active         bool     `json:"active"`
	ProductionCost *float64 `json:"productionCost,omitempty"`

	HasAvatar  bool `json:"hasAvatar"`
	HasLogo    bool `json:"hasLogo"`
	HasFavicon bool `json:"hasFavicon"`
}

// Shop is the storefront configuration for one tenant (1:1).
type Shop struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
	Website  string `json:"website,omitempty"`

	// Gallery is the ordered image-gallery asset list.
	Gallery []string `json:"gallery,omitempty"`

	// FeedURL is the external XML product feed consumed by the UI.
	FeedURL string `json:"feedUrl,omitempty"`
}

// SocialLink is one of a tenant's social profiles (1:N).
type SocialLink struct {
	TenantID    string `json:"tenantId"`
	Platform    string `json:"platform"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// ReleaseSummary describes the latest known release on one platform.
type ReleaseSummary struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Image       string    `json:"image,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// ReleaseInfo holds a tenant's latest video- and audio-platform releases.
// Either side may be nil independently.
type ReleaseInfo struct {
	TenantID string          `json:"tenantId"`
	Video    *ReleaseSummary `json:"video,omitempty"`
	Audio    *ReleaseSummary `json:"audio,omitempty"`
}

// Snapshot is the complete set of rows produced by one sync cycle.
// It is replaced wholesale in the store; readers never observe a mix of
// two generations.
type Snapshot struct {
	Tenants  []Tenant
	Shops    map[string]*Shop        // keyed by tenant ID
	Socials  map[string][]SocialLink // keyed by tenant ID
	Releases map[string]*ReleaseInfo // keyed by tenant ID
}

// TenantIDs returns the set of tenant ids present in the snapshot.
// Rows referencing ids outside this set are orphans and are dropped
// during replace.
func (s *Snapshot) TenantIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Tenants))
	for i := range s.Tenants {
		ids[s.Tenants[i].ID] = struct{}{}
	}
	return ids
}
