// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package github implements the external profile fetcher against the
// GitHub REST API.
//
// The upstream enforces a strict per-credential rate limit, so the
// client paces requests with a token bucket, retries HTTP 429 with
// exponential backoff, and sits behind a circuit breaker. All failures
// surface as recoverable errors; the recommendation engine degrades
// instead of failing the request.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/syncgraph/syncgraph/internal/config"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// API is the upstream surface the profile fetcher consumes. Satisfied
// by Client and by test fakes.
type API interface {
	ListRecentRepositories(ctx context.Context, handle, token string, limit int) ([]Repository, error)
	GetRepositoryLanguages(ctx context.Context, handle, repo, token string) (map[string]int64, error)
	GetRepositoryTopics(ctx context.Context, handle, repo, token string) ([]string, error)
}

// Repository is the subset of the upstream repository object the
// fetcher needs.
type Repository struct {
	Name     string    `json:"name"`
	PushedAt time.Time `json:"pushed_at"`
}

type topicsResponse struct {
	Names []string `json:"names"`
}

// Client is a GitHub REST API client with request pacing and 429
// retry. The token argument on each call is the caller's credential;
// empty falls back to the configured service token.
type Client struct {
	baseURL        string
	serviceToken   string
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from configuration.
func NewClient(cfg *config.GitHubConfig) *Client {
	return &Client{
		baseURL:      cfg.BaseURL,
		serviceToken: cfg.Token,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: time.Second,
	}
}

// ListRecentRepositories returns up to limit repositories for handle,
// most recently pushed first.
func (c *Client) ListRecentRepositories(ctx context.Context, handle, token string, limit int) ([]Repository, error) {
	reqURL := fmt.Sprintf("%s/users/%s/repos?sort=pushed&direction=desc&per_page=%d",
		c.baseURL, url.PathEscape(handle), limit)

	var repos []Repository
	if err := c.getJSON(ctx, "user_repos", reqURL, token, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepositoryLanguages returns the byte count per language for one
// repository.
func (c *Client) GetRepositoryLanguages(ctx context.Context, handle, repo, token string) (map[string]int64, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/languages",
		c.baseURL, url.PathEscape(handle), url.PathEscape(repo))

	langs := make(map[string]int64)
	if err := c.getJSON(ctx, "repo_languages", reqURL, token, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// GetRepositoryTopics returns the topic tags for one repository.
func (c *Client) GetRepositoryTopics(ctx context.Context, handle, repo, token string) ([]string, error) {
	reqURL := fmt.Sprintf("%s/repos/%s/%s/topics",
		c.baseURL, url.PathEscape(handle), url.PathEscape(repo))

	var out topicsResponse
	if err := c.getJSON(ctx, "repo_topics", reqURL, token, &out); err != nil {
		return nil, err
	}
	return out.Names, nil
}

// getJSON performs a GET with pacing and 429 retry, then decodes the
// response body into result.
func (c *Client) getJSON(ctx context.Context, endpoint, reqURL, token string, result any) error {
	start := time.Now()
	resp, err := c.doRequestWithRateLimit(ctx, endpoint, reqURL, token)
	if err != nil {
		metrics.RecordGitHubRequest(endpoint, "error", time.Since(start))
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	metrics.RecordGitHubRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: %s returned HTTP %d", ErrProfileUnavailable, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrProfileUnavailable, endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit paces the request through the token bucket
// and retries HTTP 429 with exponential backoff (1s, 2s, 4s, ...),
// honoring Retry-After when present.
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL, token string) (*http.Response, error) {
	if token == "" {
		token = c.serviceToken
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			metrics.GitHubRateLimited.Inc()
			return nil, fmt.Errorf("%w: %s still throttled after %d retries", ErrRateLimited, endpoint, c.maxRetries)
		}

		metrics.GitHubRetries.Inc()
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				delay = time.Duration(seconds) * time.Second
			}
		}

		logging.Debug().
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("GitHub rate limited, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
