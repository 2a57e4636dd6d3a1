// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package github

import "errors"

var (
	// ErrNotFound is returned when a handle or repository does not
	// resolve upstream. Recoverable; scoring proceeds without the
	// external component.
	ErrNotFound = errors.New("github: not found")

	// ErrRateLimited is returned when the upstream rate limit persists
	// after all retries. Recoverable.
	ErrRateLimited = errors.New("github: rate limited")

	// ErrProfileUnavailable wraps any failure to assemble an external
	// profile. Callers treat it as degraded mode, never fatal.
	ErrProfileUnavailable = errors.New("github: profile unavailable")
)
