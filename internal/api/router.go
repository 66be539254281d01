// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package api provides the HTTP surface: the storefront catch-all that
// resolves the request host to a tenant and renders the SEO shell, plus a
// small JSON API and operational endpoints.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/vitrine/internal/config"
)

// Router builds the chi handler tree.
type Router struct {
	handler *Handler
	cfg     *config.ServerConfig
}

// NewRouter creates a router around the given handler set.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(router.cfg.Timeout))

	// Operational endpoints
	r.Get("/healthz", router.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: router.cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}))
		if router.cfg.RateLimitReqs > 0 {
			r.Use(httprate.Limit(
				router.cfg.RateLimitReqs,
				router.cfg.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}

		r.Get("/tenants", router.handler.ListTenants)
		r.Get("/shops", router.handler.ListShops)
		r.Get("/resolve", router.handler.ResolveHost)
		r.Post("/sync", router.handler.TriggerSync)
	})

	// Storefront catch-all: every other path is a tenant page resolved
	// from the Host header.
	r.NotFound(router.handler.Storefront)

	return r
}
