// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package recommend

import (
	"context"

	"github.com/syncgraph/syncgraph/internal/github"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// Ranker runs the expanding-radius candidate search.
//
// The search seeds from the requester's most recent connections and
// widens only when the current pool cannot satisfy the request, so
// the average-case cost stays proportional to the seed size while
// termination is guaranteed by the user's total connection count.
type Ranker struct {
	graph    GraphReader
	data     DataSource
	scorer   *Scorer
	profiles ProfileFetcher
	weights  Weights
	seedSize int
}

// NewRanker creates a Ranker.
func NewRanker(g GraphReader, data DataSource, scorer *Scorer, profiles ProfileFetcher, weights Weights, seedSize int) *Ranker {
	return &Ranker{
		graph:    g,
		data:     data,
		scorer:   scorer,
		profiles: profiles,
		weights:  weights,
		seedSize: seedSize,
	}
}

// profileCache memoizes external profiles within one request. A failed
// fetch memoizes nil so a flaky handle is not retried inside the
// scoring loop.
type profileCache struct {
	ranker  *Ranker
	entries map[int64]*github.Profile
}

func (r *Ranker) newProfileCache() *profileCache {
	return &profileCache{ranker: r, entries: make(map[int64]*github.Profile)}
}

// get returns the external profile for userID, or nil when it cannot
// be fetched. A nil return degrades the external score term to zero.
func (c *profileCache) get(ctx context.Context, userID int64) *github.Profile {
	if p, ok := c.entries[userID]; ok {
		return p
	}

	var profile *github.Profile
	handle, err := c.ranker.data.GetUserExternalHandle(ctx, userID)
	if err == nil && handle != "" {
		profile, err = c.ranker.profiles.FetchProfile(ctx, userID, handle)
		if err != nil {
			logging.Debug().
				Int64("user_id", userID).
				Err(err).
				Msg("External profile unavailable, scoring without it")
			profile = nil
		}
	}

	c.entries[userID] = profile
	return profile
}

// Rank returns up to k candidate user IDs for u, highest estimated
// relevance first.
//
// Persistence failures abort the request unless the context has
// already expired, in which case whatever was scored so far is
// returned as a degraded result.
func (r *Ranker) Rank(ctx context.Context, u int64, k int) ([]int64, error) {
	if k <= 0 {
		return nil, nil
	}

	visitedHops := r.graph.Neighbors(u)
	if len(visitedHops) == 0 {
		return nil, nil
	}

	poolSize := min(r.seedSize, len(visitedHops))
	recencyWeight := r.weights.Recency

	profiles := r.newProfileCache()
	requesterProfile := profiles.get(ctx, u)

	var results []int64
	inResults := make(map[int64]struct{})
	scored := 0
	hopIndex := 0

	for len(results) < k {
		if hopIndex >= poolSize {
			if hopIndex >= len(visitedHops) {
				break
			}
			// Pool exhausted but request unsatisfied: widen the radius.
			poolSize = min(poolSize*2, len(visitedHops))
			metrics.RecommendPoolExpansions.Inc()
		}

		connector := visitedHops[hopIndex]

		connectorScore, err := r.scorer.ProfileSimilarityScore(ctx, u, connector, r.weights.Recommender)
		if err != nil {
			return r.degradeOrFail(ctx, results, err)
		}

		scores := make(map[int64]float64)
		for _, candidate := range r.graph.Neighbors(connector) {
			if candidate == u || r.graph.Connected(u, candidate) {
				continue
			}
			if _, taken := inResults[candidate]; taken {
				continue
			}

			// The graph only holds accepted edges; a pending request
			// between the pair also disqualifies the candidate.
			linked, err := r.data.HasConnectionRecord(ctx, u, candidate)
			if err != nil {
				return r.degradeOrFail(ctx, results, err)
			}
			if linked {
				continue
			}

			candidateScore, err := r.scorer.ProfileSimilarityScore(ctx, u, candidate, r.weights.Adjacent)
			if err != nil {
				return r.degradeOrFail(ctx, results, err)
			}

			externalScore := 0.0
			if requesterProfile != nil {
				candidateProfile := profiles.get(ctx, candidate)
				externalScore = r.scorer.ExternalProfileSimilarity(requesterProfile, candidateProfile, r.weights.External)
			}

			// Last write wins when a candidate is reachable through
			// several connectors in this pass; scores are deterministic
			// for fixed inputs so the tie is harmless.
			scores[candidate] = connectorScore + candidateScore + externalScore + recencyWeight
			scored++
		}

		for _, candidate := range drainByScore(scores, k-len(results)) {
			results = append(results, candidate)
			inResults[candidate] = struct{}{}
		}

		hopIndex++
		recencyWeight /= 2
	}

	metrics.RecommendCandidatesScored.Observe(float64(scored))
	return results, nil
}

// drainByScore empties scores into an ordered list: repeatedly the
// maximum remaining score, ties broken by lowest candidate ID, up to
// limit entries. Pool sizes stay small enough that the quadratic scan
// beats maintaining a heap.
func drainByScore(scores map[int64]float64, limit int) []int64 {
	var out []int64
	for len(out) < limit && len(scores) > 0 {
		best := int64(0)
		bestScore := 0.0
		first := true
		for id, score := range scores {
			if first || score > bestScore || (score == bestScore && id < best) {
				best, bestScore = id, score
				first = false
			}
		}
		out = append(out, best)
		delete(scores, best)
	}
	return out
}

// degradeOrFail distinguishes a dead persistence layer from a request
// that ran out of time. Deadline expiry returns the partial result;
// anything else fails the request.
func (r *Ranker) degradeOrFail(ctx context.Context, results []int64, err error) ([]int64, error) {
	if ctx.Err() != nil {
		logging.Warn().
			Err(err).
			Int("partial_results", len(results)).
			Msg("Recommendation deadline expired, returning partial ranking")
		return results, nil
	}
	return nil, err
}
