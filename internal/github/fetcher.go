// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package github

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/syncgraph/syncgraph/internal/config"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// Profile is a user's external signal set, derived from their most
// recently pushed repositories. Not persisted; fetched per request and
// discarded after scoring.
type Profile struct {
	Handle string

	// Languages maps language name to total byte count, summed across
	// the sampled repositories.
	Languages map[string]int64

	// Topics is the union of topic tags across the sampled repositories.
	Topics map[string]struct{}
}

// TopicList returns the topics sorted for stable logging and tests.
func (p *Profile) TopicList() []string {
	out := make([]string, 0, len(p.Topics))
	for t := range p.Topics {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TokenProvider resolves the OAuth credential for a user. Empty string
// means fall back to the service token.
type TokenProvider interface {
	TokenFor(userID int64) string
}

// Fetcher assembles external profiles. Per-repository detail calls
// fan out through a bounded worker pool.
type Fetcher struct {
	api           API
	tokens        TokenProvider
	reposAnalyzed int
	concurrency   int
}

// NewFetcher creates a Fetcher. tokens may be nil when only the
// service credential is available.
func NewFetcher(api API, tokens TokenProvider, cfg *config.GitHubConfig) *Fetcher {
	return &Fetcher{
		api:           api,
		tokens:        tokens,
		reposAnalyzed: cfg.ReposAnalyzed,
		concurrency:   cfg.FetchConcurrency,
	}
}

type repoSignals struct {
	languages map[string]int64
	topics    []string
	err       error
}

// FetchProfile retrieves the external profile for handle, using the
// credential of userID when one is stored.
//
// Per-repository language or topic failures are absorbed: the profile
// is assembled from whatever succeeded. Only a failure to list any
// repositories at all returns an error, and that error is always in
// the recoverable taxonomy (ErrNotFound, ErrRateLimited,
// ErrProfileUnavailable).
func (f *Fetcher) FetchProfile(ctx context.Context, userID int64, handle string) (*Profile, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: user %d has no linked handle", ErrProfileUnavailable, userID)
	}

	token := ""
	if f.tokens != nil {
		token = f.tokens.TokenFor(userID)
	}

	repos, err := f.api.ListRecentRepositories(ctx, handle, token, f.reposAnalyzed)
	if err != nil {
		metrics.GitHubProfileFetches.WithLabelValues(fetchResult(err)).Inc()
		return nil, err
	}
	if len(repos) > f.reposAnalyzed {
		repos = repos[:f.reposAnalyzed]
	}

	results := make([]repoSignals, len(repos))
	sem := make(chan struct{}, f.concurrency)
	var wg sync.WaitGroup

	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo Repository) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = f.fetchRepoSignals(ctx, handle, repo.Name, token)
		}(i, repo)
	}
	wg.Wait()

	profile := &Profile{
		Handle:    handle,
		Languages: make(map[string]int64),
		Topics:    make(map[string]struct{}),
	}

	failed := 0
	for i, r := range results {
		if r.err != nil {
			failed++
			logging.Debug().
				Str("handle", handle).
				Str("repo", repos[i].Name).
				Err(r.err).
				Msg("Skipping repository signals")
			continue
		}
		for lang, bytes := range r.languages {
			profile.Languages[lang] += bytes
		}
		for _, t := range r.topics {
			profile.Topics[t] = struct{}{}
		}
	}

	if len(repos) > 0 && failed == len(repos) {
		metrics.GitHubProfileFetches.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: all %d repository lookups failed for %s",
			ErrProfileUnavailable, len(repos), handle)
	}

	metrics.GitHubProfileFetches.WithLabelValues("ok").Inc()
	return profile, nil
}

// fetchRepoSignals retrieves languages and topics for one repository.
// A partial result (one of the two succeeded) is kept.
func (f *Fetcher) fetchRepoSignals(ctx context.Context, handle, repo, token string) repoSignals {
	var out repoSignals

	langs, langErr := f.api.GetRepositoryLanguages(ctx, handle, repo, token)
	if langErr == nil {
		out.languages = langs
	}

	topics, topicErr := f.api.GetRepositoryTopics(ctx, handle, repo, token)
	if topicErr == nil {
		out.topics = topics
	}

	if langErr != nil && topicErr != nil {
		out.err = errors.Join(langErr, topicErr)
	}
	return out
}

func fetchResult(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "unavailable"
}
