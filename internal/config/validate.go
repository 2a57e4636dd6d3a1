// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid or contradictory
// values. Called once during Load(); callers holding a *Config may
// assume it passed.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.GitHub.validate(); err != nil {
		return fmt.Errorf("github: %w", err)
	}
	if err := c.Recommend.validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.Tokens.validate(); err != nil {
		return fmt.Errorf("tokens: %w", err)
	}
	if err := c.Logging.validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", c.WriteTimeout)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout)
	}
	if c.RateLimitRequests < 0 {
		return fmt.Errorf("rate_limit_requests must not be negative, got %d", c.RateLimitRequests)
	}
	if c.RateLimitRequests > 0 && c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate_limit_window must be positive when rate limiting is enabled, got %s", c.RateLimitWindow)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.Path == "" {
		return fmt.Errorf("path must not be empty")
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	return nil
}

func (c *GitHubConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", u.Scheme)
	}
	if c.ReposAnalyzed < 1 {
		return fmt.Errorf("repos_analyzed must be at least 1, got %d", c.ReposAnalyzed)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1, got %d", c.FetchConcurrency)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive, got %g", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

func (c *RecommendConfig) validate() error {
	if c.MaxRecommendations < 1 {
		return fmt.Errorf("max_recommendations must be at least 1, got %d", c.MaxRecommendations)
	}
	if c.SeedConnections < 1 {
		return fmt.Errorf("seed_connections must be at least 1, got %d", c.SeedConnections)
	}
	for name, v := range map[string]float64{
		"recency_points":     c.RecencyPoints,
		"recommender_points": c.RecommenderPoints,
		"adjacent_points":    c.AdjacentPoints,
		"external_points":    c.ExternalPoints,
		"topic_points":       c.TopicPoints,
		"language_points":    c.LanguagePoints,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %g", name, v)
		}
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("reconcile_interval must not be negative, got %s", c.ReconcileInterval)
	}
	return nil
}

func (c *TokenStoreConfig) validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("path must not be empty unless in_memory is set")
	}
	return nil
}

func (c *LoggingConfig) validate() error {
	switch strings.ToLower(c.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("level must be one of trace, debug, info, warn, error, fatal; got %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", c.Format)
	}
	return nil
}
