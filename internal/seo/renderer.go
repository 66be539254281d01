// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package seo assembles server-rendered page metadata for a resolved
// tenant and shop: page title, description, Open Graph tags and the
// representative image's dimensions. It never fails a page render —
// missing data degrades to configured defaults.
package seo

import (
	"context"
	"fmt"
	"html"
	"image"
	"net/http"
	"strings"

	// Register decoders for the representative-image probe.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// Fallback image metadata used when the representative image cannot be
// fetched or decoded.
const (
	FallbackImageWidth  = 1920
	FallbackImageHeight = 1080
	FallbackImageType   = "image/png"
)

// ImageMeta describes a probed Open Graph image.
type ImageMeta struct {
	URL         string
	Width       int
	Height      int
	ContentType string
}

// Renderer produces the storefront HTML shell with substituted metadata.
type Renderer struct {
	cfg        *config.SEOConfig
	httpClient *http.Client
}

// New creates a renderer. The probe client carries its own bounded timeout
// so a slow asset host cannot stall page renders.
func New(cfg *config.SEOConfig) *Renderer {
	return &Renderer{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.ProbeTimeout,
		},
	}
}

// Render produces the final HTML for a resolved tenant/shop and request
// path. When maintenance is set the maintenance template is used instead
// of the storefront shell.
func (r *Renderer) Render(ctx context.Context, tenant *models.Tenant, shop *models.Shop, path string, maintenance bool) string {
	title := r.PageTitle(path, shop.Name)
	description := r.description(tenant, shop)

	img := r.ProbeImage(ctx, representativeImage(tenant, shop))
	metaTags := buildMetaTags(title, description, shop.Website, img)

	template := storefrontTemplate
	if maintenance {
		template = maintenanceTemplate
	}

	page := strings.ReplaceAll(template, "{metaTags}", metaTags)
	page = strings.ReplaceAll(page, "{favicon_url}", html.EscapeString(faviconURL(tenant)))
	page = strings.ReplaceAll(page, "{title}", html.EscapeString(title))
	return page
}

// PageTitle derives the page title from the request path. The root path
// uses the configured default label; sub-paths title-case the first
// segment, splitting on hyphens ("gift-cards" -> "Gift Cards").
func (r *Renderer) PageTitle(path, shopName string) string {
	segment := firstSegment(path)
	if segment == "" {
		if shopName != "" {
			return shopName
		}
		return r.cfg.DefaultTitle
	}

	words := strings.Split(segment, "-")
	for i, w := range words {
		words[i] = titleWord(w)
	}
	title := strings.Join(words, " ")

	if shopName != "" {
		return fmt.Sprintf("%s | %s", title, shopName)
	}
	return title
}

// ProbeImage fetches the image and decodes its dimensions and content
// type. Any fetch or decode failure substitutes the fixed fallback
// (1920x1080, image/png) rather than failing the request.
func (r *Renderer) ProbeImage(ctx context.Context, imageURL string) ImageMeta {
	fallback := ImageMeta{
		URL:         imageURL,
		Width:       FallbackImageWidth,
		Height:      FallbackImageHeight,
		ContentType: FallbackImageType,
	}
	if imageURL == "" {
		return fallback
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		metrics.ImageProbeFailures.Inc()
		return fallback
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		metrics.ImageProbeFailures.Inc()
		logging.Debug().Err(err).Str("url", imageURL).Msg("Image probe fetch failed, using fallback metadata")
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ImageProbeFailures.Inc()
		return fallback
	}

	cfg, format, err := image.DecodeConfig(resp.Body)
	if err != nil {
		metrics.ImageProbeFailures.Inc()
		logging.Debug().Err(err).Str("url", imageURL).Msg("Image probe decode failed, using fallback metadata")
		return fallback
	}

	return ImageMeta{
		URL:         imageURL,
		Width:       cfg.Width,
		Height:      cfg.Height,
		ContentType: "image/" + format,
	}
}

func (r *Renderer) description(tenant *models.Tenant, shop *models.Shop) string {
	if shop.Name != "" {
		return fmt.Sprintf("%s - official merchandise by %s", shop.Name, tenant.Name)
	}
	return r.cfg.DefaultDescription
}

// representativeImage picks the preview image: first gallery entry, then
// first logo.
func representativeImage(tenant *models.Tenant, shop *models.Shop) string {
	if len(shop.Gallery) > 0 {
		return shop.Gallery[0]
	}
	if len(tenant.Logos) > 0 {
		return tenant.Logos[0]
	}
	return ""
}

// faviconURL picks the first favicon asset, if any.
func faviconURL(tenant *models.Tenant) string {
	if len(tenant.Favicons) > 0 {
		return tenant.Favicons[0]
	}
	return "/favicon.ico"
}

// buildMetaTags assembles the Open Graph and twitter meta block.
func buildMetaTags(title, description, siteURL string, img ImageMeta) string {
	var b strings.Builder

	// Attribute values must be HTML-escaped: title and description carry
	// request-path and upstream-supplied text, and a raw quote would close
	// the attribute.
	writeMeta := func(property, content string) {
		if content == "" {
			return
		}
		fmt.Fprintf(&b, "<meta property=\"%s\" content=\"%s\">\n", property, html.EscapeString(content))
	}

	fmt.Fprintf(&b, "<meta name=\"description\" content=\"%s\">\n", html.EscapeString(description))
	writeMeta("og:type", "website")
	writeMeta("og:title", title)
	writeMeta("og:description", description)
	writeMeta("og:url", siteURL)
	writeMeta("og:image", img.URL)
	if img.URL != "" {
		writeMeta("og:image:width", fmt.Sprintf("%d", img.Width))
		writeMeta("og:image:height", fmt.Sprintf("%d", img.Height))
		writeMeta("og:image:type", img.ContentType)
	}
	writeMeta("twitter:card", "summary_large_image")
	writeMeta("twitter:title", title)
	writeMeta("twitter:description", description)
	writeMeta("twitter:image", img.URL)

	return strings.TrimSuffix(b.String(), "\n")
}

// firstSegment returns the first non-empty path segment.
func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

// titleWord upper-cases the first byte of an ASCII word.
func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
