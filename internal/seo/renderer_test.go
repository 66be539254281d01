// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package seo

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/models"
)

func newTestRenderer() *Renderer {
	return New(&config.SEOConfig{
		DefaultTitle:       "Shop",
		DefaultDescription: "Official merchandise",
		ProbeTimeout:       2 * time.Second,
	})
}

func TestPageTitle(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()

	tests := []struct {
		name     string
		path     string
		shopName string
		want     string
	}{
		{"root with shop", "/", "Band Shop", "Band Shop"},
		{"root without shop", "/", "", "Shop"},
		{"empty path", "", "Band Shop", "Band Shop"},
		{"single segment", "/products", "Band Shop", "Products | Band Shop"},
		{"hyphenated segment", "/gift-cards", "Band Shop", "Gift Cards | Band Shop"},
		{"nested path uses first segment", "/products/shirts/123", "Band Shop", "Products | Band Shop"},
		{"segment without shop", "/about", "", "About"},
		{"multi hyphen", "/new-summer-drop", "Band Shop", "New Summer Drop | Band Shop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := r.PageTitle(tt.path, tt.shopName); got != tt.want {
				t.Errorf("PageTitle(%q, %q) = %q, want %q", tt.path, tt.shopName, got, tt.want)
			}
		})
	}
}

func TestProbeImage(t *testing.T) {
	t.Parallel()

	// Serve a real 640x480 PNG.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480))); err != nil {
		t.Fatalf("encode test png: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer server.Close()

	r := newTestRenderer()
	meta := r.ProbeImage(context.Background(), server.URL+"/img.png")

	if meta.Width != 640 || meta.Height != 480 {
		t.Errorf("Dimensions: expected 640x480, got %dx%d", meta.Width, meta.Height)
	}
	if meta.ContentType != "image/png" {
		t.Errorf("ContentType: expected image/png, got %q", meta.ContentType)
	}
}

func TestProbeImage_Fallbacks(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	ctx := context.Background()

	checkFallback := func(t *testing.T, meta ImageMeta) {
		t.Helper()
		if meta.Width != FallbackImageWidth || meta.Height != FallbackImageHeight {
			t.Errorf("Expected fallback %dx%d, got %dx%d",
				FallbackImageWidth, FallbackImageHeight, meta.Width, meta.Height)
		}
		if meta.ContentType != FallbackImageType {
			t.Errorf("Expected fallback type %q, got %q", FallbackImageType, meta.ContentType)
		}
	}

	t.Run("empty url", func(t *testing.T) {
		checkFallback(t, r.ProbeImage(ctx, ""))
	})

	t.Run("unreachable host", func(t *testing.T) {
		checkFallback(t, r.ProbeImage(ctx, "http://127.0.0.1:1/img.png"))
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()
		checkFallback(t, r.ProbeImage(ctx, server.URL+"/missing.png"))
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("this is not an image"))
		}))
		defer server.Close()

		meta := r.ProbeImage(ctx, server.URL+"/broken.png")
		checkFallback(t, meta)
		// The URL is still carried so the og:image tag points somewhere.
		if meta.URL == "" {
			t.Error("Fallback meta lost the image URL")
		}
	})
}

func TestRender(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	tenant := &models.Tenant{
		ID:       "t1",
		Name:     "Band One",
		Favicons: []string{"https://cdn.example.com/fav.ico"},
	}
	shop := &models.Shop{
		ID:       "s1",
		TenantID: "t1",
		Name:     "Band One Shop",
		Website:  "https://bandone.com",
	}

	page := r.Render(context.Background(), tenant, shop, "/gift-cards", false)

	if !strings.Contains(page, "<title>Gift Cards | Band One Shop</title>") {
		t.Error("Rendered page missing derived title")
	}
	if !strings.Contains(page, `og:title`) {
		t.Error("Rendered page missing Open Graph tags")
	}
	if !strings.Contains(page, "https://cdn.example.com/fav.ico") {
		t.Error("Rendered page missing tenant favicon")
	}
	if !strings.Contains(page, `id="root"`) {
		t.Error("Storefront template missing app mount point")
	}
	// No unresolved placeholders may survive substitution.
	for _, placeholder := range []string{"{metaTags}", "{favicon_url}", "{title}"} {
		if strings.Contains(page, placeholder) {
			t.Errorf("Unsubstituted placeholder %s in rendered page", placeholder)
		}
	}
}

func TestRender_Maintenance(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	tenant := &models.Tenant{ID: "t1", Name: "Band One"}
	shop := &models.Shop{ID: "s1", TenantID: "t1", Name: "Band One Shop"}

	page := r.Render(context.Background(), tenant, shop, "/", true)

	if strings.Contains(page, `id="root"`) {
		t.Error("Maintenance page must not mount the storefront app")
	}
	if !strings.Contains(page, "maintenance") {
		t.Error("Maintenance page missing maintenance notice")
	}
}

func TestRender_EscapesTitle(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	tenant := &models.Tenant{ID: "t1", Name: "Band"}
	shop := &models.Shop{ID: "s1", TenantID: "t1", Name: `<script>alert(1)</script>`}

	page := r.Render(context.Background(), tenant, shop, "/", false)

	if strings.Contains(page, "<script>alert(1)</script></title>") {
		t.Error("Shop name not escaped in title")
	}
	if !strings.Contains(page, "&lt;script&gt;") {
		t.Error("Expected escaped shop name in rendered page")
	}
}

func TestRender_EscapesPathDerivedMeta(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	tenant := &models.Tenant{ID: "t1", Name: "Band"}
	shop := &models.Shop{ID: "s1", TenantID: "t1", Name: "Band Shop"}

	// The first path segment flows into the og:title attribute; a quote in
	// it must not be able to close the attribute and inject markup.
	page := r.Render(context.Background(), tenant, shop, `/x"><script>alert(1)<`, false)

	if strings.Contains(page, `"><script>`) {
		t.Error("Quote in path segment broke out of a meta attribute")
	}
	if strings.Contains(page, `\"`) {
		t.Error("Meta attribute used Go-syntax quoting instead of HTML escaping")
	}
	if !strings.Contains(page, "&#34;&gt;&lt;script&gt;") {
		t.Errorf("Expected HTML-escaped path segment in meta block, got:\n%s", page)
	}
}

func TestBuildMetaTags(t *testing.T) {
	t.Parallel()

	img := ImageMeta{
		URL:         "https://cdn.example.com/img.jpg",
		Width:       1200,
		Height:      630,
		ContentType: "image/jpeg",
	}
	tags := buildMetaTags("Title", "Description", "https://bandone.com", img)

	for _, want := range []string{
		`og:title`,
		`og:image:width" content="1200"`,
		`og:image:height" content="630"`,
		`og:image:type" content="image/jpeg"`,
		`twitter:card" content="summary_large_image"`,
	} {
		if !strings.Contains(tags, want) {
			t.Errorf("Meta tags missing %q:\n%s", want, tags)
		}
	}

	// Without an image URL the dimension tags are omitted entirely.
	tags = buildMetaTags("Title", "Description", "", ImageMeta{})
	if strings.Contains(tags, "og:image") {
		t.Errorf("Expected no og:image tags without an image, got:\n%s", tags)
	}
}

func TestBuildMetaTags_EscapesAttributeValues(t *testing.T) {
	t.Parallel()

	tags := buildMetaTags(`A "quoted" <title>`, `desc & more`, "", ImageMeta{})

	if strings.Contains(tags, `"quoted"`) || strings.Contains(tags, `\"`) {
		t.Errorf("Attribute values not HTML-escaped:\n%s", tags)
	}
	for _, want := range []string{
		`content="A &#34;quoted&#34; &lt;title&gt;"`,
		`content="desc &amp; more"`,
	} {
		if !strings.Contains(tags, want) {
			t.Errorf("Meta tags missing %q:\n%s", want, tags)
		}
	}
}
