// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package recommend

import (
	"context"
	"fmt"

	"github.com/syncgraph/syncgraph/internal/github"
)

// JaccardSimilarity returns |A∩B| / |A∪B| in [0, 1]. Two empty sets
// score 0: no evidence of similarity rather than undefined.
func JaccardSimilarity(a, b []int64) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	set := make(map[int64]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}

	intersection := 0
	seen := make(map[int64]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			intersection++
		}
	}

	union := len(set) + len(seen) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// ProfileSimilarityScore scores how alike two users' in-network
// behavior is, in [0, maxPoints]: the average of their endorsed-post
// overlap and their connection-set overlap, scaled by maxPoints.
//
// Both users' data is read fresh from the store on every call; the
// store can change between requests and this subsystem keeps no
// cross-request cache.
func (s *Scorer) ProfileSimilarityScore(ctx context.Context, userA, userB int64, maxPoints float64) (float64, error) {
	postsA, err := s.data.GetUserEndorsedPostIDs(ctx, userA)
	if err != nil {
		return 0, fmt.Errorf("endorsed posts for user %d: %w", userA, err)
	}
	postsB, err := s.data.GetUserEndorsedPostIDs(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("endorsed posts for user %d: %w", userB, err)
	}
	connsA, err := s.data.GetUserConnectionIDs(ctx, userA)
	if err != nil {
		return 0, fmt.Errorf("connections for user %d: %w", userA, err)
	}
	connsB, err := s.data.GetUserConnectionIDs(ctx, userB)
	if err != nil {
		return 0, fmt.Errorf("connections for user %d: %w", userB, err)
	}

	postSim := JaccardSimilarity(postsA, postsB)
	connSim := JaccardSimilarity(connsA, connsB)
	return (postSim + connSim) / 2 * maxPoints, nil
}

// Scorer computes similarity terms from store snapshots and external
// profiles. Weights come from configuration; see ExternalProfileSimilarity
// for the split.
type Scorer struct {
	data           DataSource
	topicPoints    float64
	languagePoints float64
}

// NewScorer creates a Scorer reading from data.
func NewScorer(data DataSource, topicPoints, languagePoints float64) *Scorer {
	return &Scorer{
		data:           data,
		topicPoints:    topicPoints,
		languagePoints: languagePoints,
	}
}

// ExternalProfileSimilarity scores external-signal overlap in
// [0, maxPoints]. The budget splits 2/5 to topics and 3/5 to
// languages; each share grows linearly per shared signal but is capped
// so a handful of matches cannot exceed its allotment.
func (s *Scorer) ExternalProfileSimilarity(a, b *github.Profile, maxPoints float64) float64 {
	if a == nil || b == nil {
		return 0
	}

	topicCap := maxPoints * 2 / 5
	languageCap := maxPoints * 3 / 5

	sharedTopics := 0
	for t := range a.Topics {
		if _, ok := b.Topics[t]; ok {
			sharedTopics++
		}
	}

	sharedLanguages := 0
	for l := range a.Languages {
		if _, ok := b.Languages[l]; ok {
			sharedLanguages++
		}
	}

	topicScore := min(float64(sharedTopics)*s.topicPoints, topicCap)
	languageScore := min(float64(sharedLanguages)*s.languagePoints, languageCap)
	return topicScore + languageScore
}
