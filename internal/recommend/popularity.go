// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package recommend

import (
	"context"
	"fmt"
)

// Fallback tops up a short ranking with candidates ordered by a
// popularity proxy (accepted-connection count). The store excludes the
// requester and their existing connections; entries already ranked are
// skipped here, not re-scored.
type Fallback struct {
	data DataSource
}

// NewFallback creates a Fallback reading from data.
func NewFallback(data DataSource) *Fallback {
	return &Fallback{data: data}
}

// Fill appends popularity candidates to results until it reaches k or
// the source is exhausted.
func (f *Fallback) Fill(ctx context.Context, u int64, results []int64, k int) ([]int64, error) {
	if len(results) >= k {
		return results, nil
	}

	// Over-fetch by the current result size so skipped duplicates
	// cannot leave the list short.
	popular, err := f.data.GetPopularUsers(ctx, u, k+len(results))
	if err != nil {
		return nil, fmt.Errorf("popularity fallback: %w", err)
	}

	taken := make(map[int64]struct{}, len(results))
	for _, id := range results {
		taken[id] = struct{}{}
	}

	for _, id := range popular {
		if len(results) >= k {
			break
		}
		if _, dup := taken[id]; dup {
			continue
		}
		results = append(results, id)
		taken[id] = struct{}{}
	}
	return results, nil
}
