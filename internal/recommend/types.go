// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package recommend implements the connection recommendation engine:
// a deterministic, explainable heuristic ranker over the in-memory
// connection graph.
//
// A request walks outward from the user's most recent connections,
// scores unvisited second-degree candidates on engagement overlap,
// connection overlap, and external profile overlap, and greedily
// selects the highest scores. When the walkable graph cannot satisfy
// the requested count, a popularity fallback tops up the list.
package recommend

import (
	"context"

	"github.com/syncgraph/syncgraph/internal/github"
)

// DataSource is the persistence contract the engine consumes.
// Implemented by *database.DB. Failures here are fatal to the request;
// everything external degrades instead.
type DataSource interface {
	GetUserEndorsedPostIDs(ctx context.Context, userID int64) ([]int64, error)
	GetUserConnectionIDs(ctx context.Context, userID int64) ([]int64, error)
	GetUserExternalHandle(ctx context.Context, userID int64) (string, error)
	GetPopularUsers(ctx context.Context, userID int64, limit int) ([]int64, error)

	// HasConnectionRecord reports whether any connection record exists
	// for the pair, pending included. A candidate with an outstanding
	// request is never recommended.
	HasConnectionRecord(ctx context.Context, a, b int64) (bool, error)
}

// GraphReader is the graph store surface the ranker walks.
type GraphReader interface {
	Neighbors(userID int64) []int64
	Connected(a, b int64) bool
}

// ProfileFetcher retrieves external profiles. Implemented by
// *github.Fetcher; any error is treated as "no external signals".
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID int64, handle string) (*github.Profile, error)
}

// Weights are the injectable point budgets of the scorer. See
// config.RecommendConfig for the defaults.
type Weights struct {
	// Recency is the starting recency term, halved each hop.
	Recency float64

	// Recommender scales requester-to-connector profile similarity.
	Recommender float64

	// Adjacent scales requester-to-candidate profile similarity.
	Adjacent float64

	// External scales external-profile similarity.
	External float64
}
