// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

// Package metrics provides Prometheus instrumentation for:
//   - Sync cycle outcomes and duration
//   - Snapshot store query performance (DuckDB)
//   - Host resolver hit/miss rates
//   - Upstream circuit breaker state
//   - HTTP endpoint latency
//   - SEO image probe failures
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync Engine Metrics

	SyncCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_sync_cycles_total",
			Help: "Total number of sync cycles by outcome",
		},
		[]string{"status"}, // "success", "aborted", "skipped"
	)

	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vitrine_sync_cycle_duration_seconds",
			Help:    "Duration of full sync cycles in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncTenants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vitrine_sync_tenants",
			Help: "Number of tenants in the last committed snapshot",
		},
	)

	SyncPartialFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_sync_partial_failures_total",
			Help: "Per-tenant sub-fetch failures absorbed during sync cycles",
		},
		[]string{"resource"}, // "shop", "socials", "releases"
	)

	// Snapshot Store Metrics

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_store_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_store_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Host Resolver Metrics

	ResolverLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_resolver_lookups_total",
			Help: "Host resolution attempts by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Upstream Circuit Breaker Metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vitrine_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitrine_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP Metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitrine_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// SEO Renderer Metrics

	ImageProbeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vitrine_image_probe_failures_total",
			Help: "Representative-image probes that fell back to default metadata",
		},
	)
)

// RecordSyncCycle records the outcome of one sync cycle.
func RecordSyncCycle(duration time.Duration, tenants int, err error) {
	if err != nil {
		SyncCyclesTotal.WithLabelValues("aborted").Inc()
		return
	}
	SyncCyclesTotal.WithLabelValues("success").Inc()
	SyncCycleDuration.Observe(duration.Seconds())
	SyncTenants.Set(float64(tenants))
}

// ObserveStoreQuery times a store operation and records errors.
func ObserveStoreQuery(operation string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(operation).Inc()
	}
}
