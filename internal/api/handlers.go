// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/models"
	"github.com/tomtom215/vitrine/internal/resolver"
	"github.com/tomtom215/vitrine/internal/seo"
	"github.com/tomtom215/vitrine/internal/validation"
)

// StoreReader is the read-only snapshot access used by handlers.
type StoreReader interface {
	Ping(ctx context.Context) error
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
}

// SyncTrigger kicks a sync cycle; overlapping triggers are dropped by the
// manager's single-flight guard. The background form is tracked by the
// manager so shutdown waits for it.
type SyncTrigger interface {
	TriggerSyncBackground() bool
	LastSyncTime() time.Time
}

// Handler carries the dependencies for all HTTP handlers.
type Handler struct {
	store    StoreReader
	resolver *resolver.Resolver
	renderer *seo.Renderer
	syncer   SyncTrigger
	cfg      *config.ServerConfig
}

// NewHandler creates the handler set.
func NewHandler(store StoreReader, res *resolver.Resolver, renderer *seo.Renderer, syncer SyncTrigger, cfg *config.ServerConfig) *Handler {
	return &Handler{
		store:    store,
		resolver: res,
		renderer: renderer,
		syncer:   syncer,
		cfg:      cfg,
	}
}

// Storefront serves the tenant page for the request host. Unknown hosts
// get a plain 404; resolution failures never panic the serving path.
func (h *Handler) Storefront(w http.ResponseWriter, r *http.Request) {
	tenant, shop, err := h.resolver.Resolve(r.Context(), r.Host)
	if errors.Is(err, resolver.ErrNotFound) {
		http.Error(w, "no shop is configured for this domain", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("host", r.Host).Msg("Host resolution failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	page := h.renderer.Render(r.Context(), tenant, shop, r.URL.Path, h.cfg.MaintenanceMode)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

// Health reports liveness: database reachable plus last sync timestamp.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"last_sync": h.syncer.LastSyncTime(),
	})
}

// ListTenants returns every tenant in the committed snapshot.
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.store.ListTenants(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("List tenants failed")
		writeJSONError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tenants": tenants})
}

// ListShops returns every shop in the committed snapshot.
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.store.ListShops(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("List shops failed")
		writeJSONError(w, http.StatusInternalServerError, "failed to list shops")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"shops": shops})
}

// resolveHostRequest carries the validated query parameters of the
// /resolve endpoint. The host may be a bare hostname or a full URL;
// normalization happens inside the resolver.
type resolveHostRequest struct {
	Host string `validate:"required,max=2048"`
}

// ResolveHost answers a host lookup as JSON, for diagnostics and the
// admin UI.
func (h *Handler) ResolveHost(w http.ResponseWriter, r *http.Request) {
	req := resolveHostRequest{Host: r.URL.Query().Get("host")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeJSONError(w, http.StatusBadRequest, verr.Error())
		return
	}
	host := req.Host

	tenant, shop, err := h.resolver.Resolve(r.Context(), host)
	if errors.Is(err, resolver.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "no tenant for host")
		return
	}
	if err != nil {
		logging.Error().Err(err).Str("host", host).Msg("Host resolution failed")
		writeJSONError(w, http.StatusInternalServerError, "resolution failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenant": tenant,
		"shop":   shop,
	})
}

// TriggerSync kicks a sync cycle in the background and returns 202.
// If a cycle is already in flight the trigger is dropped by the manager.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if !h.syncer.TriggerSyncBackground() {
		writeJSONError(w, http.StatusServiceUnavailable, "sync manager is not running")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{"status": "sync triggered"})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
