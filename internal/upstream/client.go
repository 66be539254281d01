// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package upstream implements the authenticated HTTP client for the remote
// system of record. It fetches the artist collection and per-artist
// sub-resources (shop, social links, latest releases).
//
// The client performs no retries: a transport failure and a non-2xx status
// are both surfaced as errors, and the sync engine decides how a cycle
// degrades. Every request carries a bounded timeout so a stalled fetch
// fails instead of hanging a cycle.
package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/models"
)

// API is the upstream surface consumed by the sync engine. The concrete
// implementation is either Client or its circuit-breaker decorator.
type API interface {
	Ping(ctx context.Context) error
	ListArtists(ctx context.Context) ([]models.Tenant, error)
	GetShop(ctx context.Context, artistID string) (*models.Shop, error)
	GetSocialLinks(ctx context.Context, artistID string) ([]models.SocialLink, error)
	GetLatestReleases(ctx context.Context, artistID string) (*models.ReleaseInfo, error)
}

// Client communicates with the upstream API using bearer authentication.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an authenticated upstream client from configuration.
func NewClient(cfg *config.UpstreamConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit)+1)
	}

	return &Client{
		baseURL: cfg.URL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
	}
}

// Wire shapes for upstream JSON bodies.

type listArtistsResponse struct {
	Artists []artistPayload `json:"artists"`
}

type artistPayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Website         string   `json:"website"`
	ContactEmail    string   `json:"contactEmail"`
	ContactPassword string   `json:"contactPassword"`
	Logos           []string `json:"logos"`
	Favicons        []string `json:"favicons"`
	Active          bool     `json:"active"`
	ProductionCost  *float64 `json:"productionCost"`
	HasAvatar       bool     `json:"hasAvatar"`
	HasLogo         bool     `json:"hasLogo"`
	HasFavicon      bool     `json:"hasFavicon"`
}

type shopPayload struct {
	ID       string   `json:"id"`
	ArtistID string   `json:"artistId"`
	Name     string   `json:"name"`
	Website  string   `json:"website"`
	Gallery  []string `json:"gallery"`
	FeedURL  string   `json:"feedUrl"`
}

type socialLinksResponse struct {
	Links []socialLinkPayload `json:"links"`
}

type socialLinkPayload struct {
	Platform    string `json:"platform"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type releasesPayload struct {
	Video *releaseSummaryPayload `json:"video"`
	Audio *releaseSummaryPayload `json:"audio"`
}

type releaseSummaryPayload struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	PublishedAt time.Time `json:"publishedAt"`
}

// requestConfig holds configuration for building HTTP requests.
type requestConfig struct {
	method      string
	path        string
	query       url.Values
	allowAbsent bool // if true, a 404 yields errAbsent instead of a failure
}

// errAbsent signals a 404 on a sub-resource that is legitimately optional.
var errAbsent = fmt.Errorf("upstream resource absent")

// doRequest executes an upstream API request and decodes the JSON response
// into result when a result pointer is provided.
func (c *Client) doRequest(ctx context.Context, cfg requestConfig, result interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	reqURL := fmt.Sprintf("%s%s", c.baseURL, cfg.path)

	req, err := http.NewRequestWithContext(ctx, cfg.method, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upstream request %s: %w", cfg.path, err)
	}
	defer resp.Body.Close()

	if cfg.allowAbsent && resp.StatusCode == http.StatusNotFound {
		return errAbsent
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upstream %s: unexpected status %d %s", cfg.path, resp.StatusCode, resp.Status)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode %s response: %w", cfg.path, err)
		}
	}

	return nil
}

// Ping verifies the upstream API is reachable and the credential is valid.
func (c *Client) Ping(ctx context.Context) error {
	query := url.Values{}
	query.Set("limit", "1")
	return c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   "/api/v1/artists",
		query:  query,
	}, nil)
}

// ListArtists fetches the root artist collection.
func (c *Client) ListArtists(ctx context.Context) ([]models.Tenant, error) {
	var body listArtistsResponse
	if err := c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   "/api/v1/artists",
	}, &body); err != nil {
		return nil, err
	}

	tenants := make([]models.Tenant, 0, len(body.Artists))
	for i := range body.Artists {
		tenants = append(tenants, body.Artists[i].toTenant())
	}
	return tenants, nil
}

// GetShop fetches an artist's shop configuration.
// Returns (nil, nil) when the artist has no shop.
func (c *Client) GetShop(ctx context.Context, artistID string) (*models.Shop, error) {
	var body shopPayload
	err := c.doRequest(ctx, requestConfig{
		method:      http.MethodGet,
		path:        fmt.Sprintf("/api/v1/artists/%s/shop", url.PathEscape(artistID)),
		allowAbsent: true,
	}, &body)
	if err == errAbsent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	shop := body.toShop()
	if shop.TenantID == "" {
		shop.TenantID = artistID
	}
	return shop, nil
}

// GetSocialLinks fetches an artist's social profiles.
func (c *Client) GetSocialLinks(ctx context.Context, artistID string) ([]models.SocialLink, error) {
	var body socialLinksResponse
	if err := c.doRequest(ctx, requestConfig{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/artists/%s/social-links", url.PathEscape(artistID)),
	}, &body); err != nil {
		return nil, err
	}

	links := make([]models.SocialLink, 0, len(body.Links))
	for i := range body.Links {
		links = append(links, models.SocialLink{
			TenantID:    artistID,
			Platform:    body.Links[i].Platform,
			Description: body.Links[i].Description,
			URL:         body.Links[i].URL,
		})
	}
	return links, nil
}

// GetLatestReleases fetches an artist's latest video- and audio-platform
// release summaries. Returns (nil, nil) when none are known upstream.
func (c *Client) GetLatestReleases(ctx context.Context, artistID string) (*models.ReleaseInfo, error) {
	var body releasesPayload
	err := c.doRequest(ctx, requestConfig{
		method:      http.MethodGet,
		path:        fmt.Sprintf("/api/v1/artists/%s/latest-releases", url.PathEscape(artistID)),
		allowAbsent: true,
	}, &body)
	if err == errAbsent {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if body.Video == nil && body.Audio == nil {
		return nil, nil
	}

	info := &models.ReleaseInfo{TenantID: artistID}
	if body.Video != nil {
		info.Video = body.Video.toSummary()
	}
	if body.Audio != nil {
		info.Audio = body.Audio.toSummary()
	}
	return info, nil
}

func (p *artistPayload) toTenant() models.Tenant {
	return models.Tenant{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Website:         p.Website,
		ContactEmail:    p.ContactEmail,
		ContactPassword: p.ContactPassword,
		Logos:           p.Logos,
		Favicons:        p.Favicons,
		Active:          p.Active,
		ProductionCost:  p.ProductionCost,
		HasAvatar:       p.HasAvatar,
		HasLogo:         p.HasLogo,
		HasFavicon:      p.HasFavicon,
	}
}

func (p *shopPayload) toShop() *models.Shop {
	return &models.Shop{
		ID:       p.ID,
		TenantID: p.ArtistID,
		Name:     p.Name,
		Website:  p.Website,
		Gallery:  p.Gallery,
		FeedURL:  p.FeedURL,
	}
}

func (p *releaseSummaryPayload) toSummary() *models.ReleaseSummary {
	return &models.ReleaseSummary{
		Title:       p.Title,
		URL:         p.URL,
		Image:       p.Image,
		PublishedAt: p.PublishedAt,
	}
}
