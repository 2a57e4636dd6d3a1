// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package github

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/syncgraph/syncgraph/internal/config"
)

func testClientConfig(baseURL string) *config.GitHubConfig {
	return &config.GitHubConfig{
		BaseURL:           baseURL,
		Token:             "service-token",
		ReposAnalyzed:     5,
		FetchConcurrency:  4,
		RequestsPerSecond: 1000,
		Burst:             1000,
		Timeout:           5 * time.Second,
		MaxRetries:        2,
	}
}

func TestListRecentRepositories(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat/repos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort"); got != "pushed" {
			t.Errorf("sort = %q, want pushed", got)
		}
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "alpha", "pushed_at": "2026-08-01T00:00:00Z"},
			{"name": "beta", "pushed_at": "2026-07-01T00:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	repos, err := c.ListRecentRepositories(t.Context(), "octocat", "", 5)
	if err != nil {
		t.Fatalf("ListRecentRepositories error: %v", err)
	}
	if len(repos) != 2 || repos[0].Name != "alpha" || repos[1].Name != "beta" {
		t.Errorf("repos = %v, want [alpha beta]", repos)
	}
	if got := gotAuth.Load(); got != "Bearer service-token" {
		t.Errorf("Authorization = %q, want service token fallback", got)
	}
}

func TestUserTokenPreferred(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-token" {
			t.Errorf("Authorization = %q, want user token", got)
		}
		_, _ = w.Write([]byte(`{"Go": 100}`))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	if _, err := c.GetRepositoryLanguages(t.Context(), "octocat", "alpha", "user-token"); err != nil {
		t.Fatalf("GetRepositoryLanguages error: %v", err)
	}
}

func TestGetRepositoryTopics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/alpha/topics" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"names": ["go", "networking"]}`))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	topics, err := c.GetRepositoryTopics(t.Context(), "octocat", "alpha", "")
	if err != nil {
		t.Fatalf("GetRepositoryTopics error: %v", err)
	}
	if len(topics) != 2 || topics[0] != "go" || topics[1] != "networking" {
		t.Errorf("topics = %v, want [go networking]", topics)
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	_, err := c.ListRecentRepositories(t.Context(), "ghost", "", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRateLimitRetryThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"Go": 42}`))
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	c.retryBaseDelay = time.Millisecond

	langs, err := c.GetRepositoryLanguages(t.Context(), "octocat", "alpha", "")
	if err != nil {
		t.Fatalf("GetRepositoryLanguages error: %v", err)
	}
	if langs["Go"] != 42 {
		t.Errorf("langs = %v, want Go:42", langs)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("upstream calls = %d, want 2", got)
	}
}

func TestRateLimitExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	c.retryBaseDelay = time.Millisecond

	_, err := c.GetRepositoryLanguages(t.Context(), "octocat", "alpha", "")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("error = %v, want ErrRateLimited", err)
	}
	// MaxRetries=2 means 3 attempts total.
	if got := calls.Load(); got != 3 {
		t.Errorf("upstream calls = %d, want 3", got)
	}
}

func TestServerErrorIsProfileUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testClientConfig(srv.URL))
	_, err := c.ListRecentRepositories(t.Context(), "octocat", "", 5)
	if !errors.Is(err, ErrProfileUnavailable) {
		t.Errorf("error = %v, want ErrProfileUnavailable", err)
	}
}
