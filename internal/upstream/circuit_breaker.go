// Vitrine - Multi-Tenant Storefront Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vitrine

package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/vitrine/internal/config"
	"github.com/tomtom215/vitrine/internal/logging"
	"github.com/tomtom215/vitrine/internal/metrics"
	"github.com/tomtom215/vitrine/internal/models"
)

// CircuitBreakerClient wraps Client with circuit breaker protection so a
// dead upstream sheds load quickly instead of burning a full timeout on
// every call of every cycle.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates an upstream client with circuit breaker.
// The circuit opens after a 60% failure rate with at least 10 requests and
// probes again after one minute.
func NewCircuitBreakerClient(cfg *config.UpstreamConfig) *CircuitBreakerClient {
	client := NewClient(cfg)
	cbName := "upstream-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,           // Concurrent probes allowed in half-open state
		Interval:    time.Minute, // Reset counts after 1 minute in closed state
		Timeout:     time.Minute, // Wait before transitioning open -> half-open

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening upstream circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Upstream circuit state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps an upstream API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	// Execute callbacks can legitimately return a typed nil.
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Ping checks upstream connectivity through the circuit breaker.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

// ListArtists fetches the root artist collection through the circuit breaker.
func (cbc *CircuitBreakerClient) ListArtists(ctx context.Context) ([]models.Tenant, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.ListArtists(ctx)
	})
	return castResult[[]models.Tenant](result, err)
}

// GetShop fetches an artist's shop through the circuit breaker.
func (cbc *CircuitBreakerClient) GetShop(ctx context.Context, artistID string) (*models.Shop, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		shop, err := cbc.client.GetShop(ctx, artistID)
		if shop == nil {
			return nil, err
		}
		return shop, err
	})
	return castResult[*models.Shop](result, err)
}

// GetSocialLinks fetches an artist's social links through the circuit breaker.
func (cbc *CircuitBreakerClient) GetSocialLinks(ctx context.Context, artistID string) ([]models.SocialLink, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.GetSocialLinks(ctx, artistID)
	})
	return castResult[[]models.SocialLink](result, err)
}

// GetLatestReleases fetches an artist's release info through the circuit breaker.
func (cbc *CircuitBreakerClient) GetLatestReleases(ctx context.Context, artistID string) (*models.ReleaseInfo, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		info, err := cbc.client.GetLatestReleases(ctx, artistID)
		if info == nil {
			return nil, err
		}
		return info, err
	})
	return castResult[*models.ReleaseInfo](result, err)
}

// stateToFloat converts circuit breaker state to a metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a label value.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
