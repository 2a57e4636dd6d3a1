// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package github

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// BreakerClient wraps an API with a circuit breaker so a failing or
// throttled upstream stops costing sockets and retry delay per
// request. ErrNotFound counts as success: an unknown handle says
// nothing about upstream health.
//
// The breaker uses real time for its interval and timeout. Tests
// exercise the wrapped API directly.
type BreakerClient struct {
	api API
	cb  *gobreaker.CircuitBreaker[any]
}

// NewBreakerClient wraps api with a circuit breaker.
// Opens after 60% failures over a minimum of 10 requests; re-probes
// after 2 minutes with at most 3 half-open requests.
func NewBreakerClient(api API) *BreakerClient {
	metrics.GitHubCircuitState.Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "github-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("GitHub circuit breaker state change")
			metrics.GitHubCircuitState.Set(stateToFloat(to))
		},
	})

	return &BreakerClient{api: api, cb: cb}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// wrapOpen maps breaker rejections onto the recoverable error
// taxonomy so callers degrade instead of failing.
func wrapOpen(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrProfileUnavailable, err)
	}
	return err
}

func (b *BreakerClient) ListRecentRepositories(ctx context.Context, handle, token string, limit int) ([]Repository, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.api.ListRecentRepositories(ctx, handle, token, limit)
	})
	if err != nil {
		return nil, wrapOpen(err)
	}
	return out.([]Repository), nil
}

func (b *BreakerClient) GetRepositoryLanguages(ctx context.Context, handle, repo, token string) (map[string]int64, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.api.GetRepositoryLanguages(ctx, handle, repo, token)
	})
	if err != nil {
		return nil, wrapOpen(err)
	}
	return out.(map[string]int64), nil
}

func (b *BreakerClient) GetRepositoryTopics(ctx context.Context, handle, repo, token string) ([]string, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.api.GetRepositoryTopics(ctx, handle, repo, token)
	})
	if err != nil {
		return nil, wrapOpen(err)
	}
	return out.([]string), nil
}
