// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package recommend

import (
	"context"
	"time"

	"github.com/syncgraph/syncgraph/internal/config"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// fallbackGrace bounds the popularity query issued after the request
// deadline has already expired.
const fallbackGrace = 2 * time.Second

// Engine orchestrates one recommendation request: rank, then fall
// back, then truncate. Output never contains the requester, any of
// their accepted connections, or duplicates, and is deterministic for
// a fixed graph and fixed external data.
type Engine struct {
	ranker         *Ranker
	fallback       *Fallback
	graph          GraphReader
	maxCount       int
	requestTimeout time.Duration
}

// NewEngine wires an Engine from its parts.
func NewEngine(g GraphReader, data DataSource, profiles ProfileFetcher, cfg *config.RecommendConfig) *Engine {
	scorer := NewScorer(data, cfg.TopicPoints, cfg.LanguagePoints)
	weights := Weights{
		Recency:     cfg.RecencyPoints,
		Recommender: cfg.RecommenderPoints,
		Adjacent:    cfg.AdjacentPoints,
		External:    cfg.ExternalPoints,
	}

	return &Engine{
		ranker:         NewRanker(g, data, scorer, profiles, weights, cfg.SeedConnections),
		fallback:       NewFallback(data),
		graph:          g,
		maxCount:       cfg.MaxRecommendations,
		requestTimeout: cfg.RequestTimeout,
	}
}

// GetRecommendations returns up to count candidate user IDs for
// userID, highest estimated relevance first. Returning fewer than
// count, or none, is not an error.
func (e *Engine) GetRecommendations(ctx context.Context, userID int64, count int) ([]int64, error) {
	if count <= 0 {
		return []int64{}, nil
	}
	if count > e.maxCount {
		count = e.maxCount
	}

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	start := time.Now()

	results, err := e.ranker.Rank(ctx, userID, count)
	if err != nil {
		metrics.RecommendRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	ranked := len(results)
	if ranked < count {
		reason := "pool_exhausted"
		if len(e.graph.Neighbors(userID)) == 0 {
			reason = "no_connections"
		}
		metrics.RecommendFallbacks.WithLabelValues(reason).Inc()

		// A ranking cut short by the request deadline still gets topped
		// up: the fallback is one cheap query, so it runs on a short
		// detached deadline instead of the already-expired context.
		fillCtx := ctx
		if ctx.Err() != nil {
			var fillCancel context.CancelFunc
			fillCtx, fillCancel = context.WithTimeout(context.WithoutCancel(ctx), fallbackGrace)
			defer fillCancel()
		}

		results, err = e.fallback.Fill(fillCtx, userID, results, count)
		if err != nil {
			metrics.RecommendRequests.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	if len(results) > count {
		results = results[:count]
	}
	if results == nil {
		results = []int64{}
	}

	metrics.RecommendRequests.WithLabelValues("ok").Inc()
	metrics.RecommendDuration.Observe(time.Since(start).Seconds())

	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Int("requested", count).
		Int("ranked", ranked).
		Int("returned", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Recommendations computed")

	return results, nil
}
