// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package github

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/syncgraph/syncgraph/internal/config"
)

// fakeAPI serves canned repository signals keyed by handle and repo.
type fakeAPI struct {
	repos     map[string][]Repository
	languages map[string]map[string]int64
	topics    map[string][]string
	reposErr  error
	langErr   map[string]error
	topicErr  map[string]error
}

func (f *fakeAPI) ListRecentRepositories(_ context.Context, handle, _ string, limit int) ([]Repository, error) {
	if f.reposErr != nil {
		return nil, f.reposErr
	}
	repos, ok := f.repos[handle]
	if !ok {
		return nil, ErrNotFound
	}
	if len(repos) > limit {
		repos = repos[:limit]
	}
	return repos, nil
}

func (f *fakeAPI) GetRepositoryLanguages(_ context.Context, _, repo, _ string) (map[string]int64, error) {
	if err := f.langErr[repo]; err != nil {
		return nil, err
	}
	return f.languages[repo], nil
}

func (f *fakeAPI) GetRepositoryTopics(_ context.Context, _, repo, _ string) ([]string, error) {
	if err := f.topicErr[repo]; err != nil {
		return nil, err
	}
	return f.topics[repo], nil
}

func fetcherConfig() *config.GitHubConfig {
	return &config.GitHubConfig{
		BaseURL:           "https://api.github.com",
		ReposAnalyzed:     2,
		FetchConcurrency:  2,
		RequestsPerSecond: 1000,
		Burst:             1000,
		Timeout:           time.Second,
		MaxRetries:        0,
	}
}

func TestFetchProfileMergesSignals(t *testing.T) {
	api := &fakeAPI{
		repos: map[string][]Repository{
			"octocat": {{Name: "alpha"}, {Name: "beta"}, {Name: "gamma"}},
		},
		languages: map[string]map[string]int64{
			"alpha": {"Go": 100, "Shell": 5},
			"beta":  {"Go": 50, "Rust": 20},
			"gamma": {"C": 999}, // beyond the sample size, must be ignored
		},
		topics: map[string][]string{
			"alpha": {"cli", "networking"},
			"beta":  {"networking", "storage"},
		},
	}

	f := NewFetcher(api, nil, fetcherConfig())
	p, err := f.FetchProfile(t.Context(), 1, "octocat")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}

	// Language bytes merge additively across the two sampled repos.
	if p.Languages["Go"] != 150 {
		t.Errorf("Go bytes = %d, want 150", p.Languages["Go"])
	}
	if p.Languages["Rust"] != 20 {
		t.Errorf("Rust bytes = %d, want 20", p.Languages["Rust"])
	}
	if _, ok := p.Languages["C"]; ok {
		t.Error("repo beyond sample size contributed languages")
	}

	wantTopics := []string{"cli", "networking", "storage"}
	got := p.TopicList()
	if len(got) != len(wantTopics) {
		t.Fatalf("topics = %v, want %v", got, wantTopics)
	}
	for i := range wantTopics {
		if got[i] != wantTopics[i] {
			t.Errorf("topics[%d] = %q, want %q", i, got[i], wantTopics[i])
		}
	}
}

func TestFetchProfilePartialRepoFailure(t *testing.T) {
	api := &fakeAPI{
		repos: map[string][]Repository{
			"octocat": {{Name: "alpha"}, {Name: "beta"}},
		},
		languages: map[string]map[string]int64{
			"alpha": {"Go": 100},
		},
		topics: map[string][]string{
			"alpha": {"cli"},
		},
		langErr:  map[string]error{"beta": ErrRateLimited},
		topicErr: map[string]error{"beta": ErrRateLimited},
	}

	f := NewFetcher(api, nil, fetcherConfig())
	p, err := f.FetchProfile(t.Context(), 1, "octocat")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if p.Languages["Go"] != 100 {
		t.Errorf("Go bytes = %d, want 100 from the surviving repo", p.Languages["Go"])
	}
}

func TestFetchProfileAllReposFail(t *testing.T) {
	api := &fakeAPI{
		repos: map[string][]Repository{
			"octocat": {{Name: "alpha"}},
		},
		langErr:  map[string]error{"alpha": ErrRateLimited},
		topicErr: map[string]error{"alpha": ErrRateLimited},
	}

	f := NewFetcher(api, nil, fetcherConfig())
	if _, err := f.FetchProfile(t.Context(), 1, "octocat"); !errors.Is(err, ErrProfileUnavailable) {
		t.Errorf("error = %v, want ErrProfileUnavailable", err)
	}
}

func TestFetchProfileUnknownHandle(t *testing.T) {
	api := &fakeAPI{repos: map[string][]Repository{}}

	f := NewFetcher(api, nil, fetcherConfig())
	if _, err := f.FetchProfile(t.Context(), 1, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchProfileEmptyHandle(t *testing.T) {
	f := NewFetcher(&fakeAPI{}, nil, fetcherConfig())
	if _, err := f.FetchProfile(t.Context(), 1, ""); !errors.Is(err, ErrProfileUnavailable) {
		t.Errorf("error = %v, want ErrProfileUnavailable", err)
	}
}

// slowAPI records how many repository lookups run at once.
type slowAPI struct {
	fakeAPI

	mu       sync.Mutex
	inflight int
	peak     int
}

func (s *slowAPI) GetRepositoryLanguages(ctx context.Context, handle, repo, token string) (map[string]int64, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()

	return s.fakeAPI.GetRepositoryLanguages(ctx, handle, repo, token)
}

func TestFetchProfileBoundedConcurrency(t *testing.T) {
	api := &slowAPI{
		fakeAPI: fakeAPI{
			repos: map[string][]Repository{
				"octocat": {
					{Name: "r1"}, {Name: "r2"}, {Name: "r3"},
					{Name: "r4"}, {Name: "r5"}, {Name: "r6"},
				},
			},
			languages: map[string]map[string]int64{
				"r1": {"Go": 1}, "r2": {"Go": 1}, "r3": {"Go": 1},
				"r4": {"Go": 1}, "r5": {"Go": 1}, "r6": {"Go": 1},
			},
		},
	}
	cfg := fetcherConfig()
	cfg.ReposAnalyzed = 6
	cfg.FetchConcurrency = 2

	f := NewFetcher(api, nil, cfg)
	if _, err := f.FetchProfile(t.Context(), 1, "octocat"); err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if api.peak > cfg.FetchConcurrency {
		t.Errorf("peak concurrent repository lookups = %d, want at most %d", api.peak, cfg.FetchConcurrency)
	}
	if api.peak < 2 {
		t.Errorf("peak concurrent repository lookups = %d, expected the pool to run in parallel", api.peak)
	}
}

func TestFetchProfileNoRepos(t *testing.T) {
	api := &fakeAPI{
		repos: map[string][]Repository{"octocat": {}},
	}

	f := NewFetcher(api, nil, fetcherConfig())
	p, err := f.FetchProfile(t.Context(), 1, "octocat")
	if err != nil {
		t.Fatalf("FetchProfile error: %v", err)
	}
	if len(p.Languages) != 0 || len(p.Topics) != 0 {
		t.Errorf("profile for user with no repositories should be empty, got %+v", p)
	}
}
