// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/syncgraph/syncgraph/internal/database"
	"github.com/syncgraph/syncgraph/internal/graph"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// EdgeSource lists the accepted connections the graph is rebuilt
// from. *database.DB satisfies it.
type EdgeSource interface {
	ListAcceptedConnections(ctx context.Context) ([]database.AcceptedEdge, error)
}

// GraphBuilder accepts a full edge replay. *graph.Store satisfies it.
type GraphBuilder interface {
	Build(edges []graph.Edge)
	Size() (users, edges int)
}

// ReconcileService periodically rebuilds the in-memory graph from the
// database. Incremental event-driven updates keep the graph current
// between rebuilds; the rebuild repairs any drift from missed events.
type ReconcileService struct {
	source   EdgeSource
	graph    GraphBuilder
	interval time.Duration
}

// NewReconcileService creates the reconciler. An interval of zero
// defaults to five minutes.
func NewReconcileService(source EdgeSource, g GraphBuilder, interval time.Duration) *ReconcileService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ReconcileService{
		source:   source,
		graph:    g,
		interval: interval,
	}
}

// Serve implements suture.Service. The first rebuild happens
// immediately so a freshly supervised instance serves from current
// data rather than waiting out a full interval.
func (s *ReconcileService) Serve(ctx context.Context) error {
	if err := s.Reconcile(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				return err
			}
		}
	}
}

// Reconcile performs one rebuild pass.
func (s *ReconcileService) Reconcile(ctx context.Context) error {
	start := time.Now()

	accepted, err := s.source.ListAcceptedConnections(ctx)
	if err != nil {
		return fmt.Errorf("list accepted connections: %w", err)
	}

	edges := make([]graph.Edge, len(accepted))
	for i, e := range accepted {
		edges[i] = graph.Edge{A: e.UserA, B: e.UserB}
	}

	s.graph.Build(edges)

	users, edgeCount := s.graph.Size()
	metrics.SetGraphSize(users, edgeCount)
	metrics.GraphRebuildDuration.Observe(time.Since(start).Seconds())

	logging.Debug().
		Int("users", users).
		Int("edges", edgeCount).
		Dur("duration", time.Since(start)).
		Msg("Graph rebuilt from persisted connections")

	return nil
}

// String implements fmt.Stringer for supervisor logs.
func (s *ReconcileService) String() string {
	return "graph-reconciler"
}
