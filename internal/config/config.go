// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package config provides centralized configuration for Syncgraph,
// loaded via Koanf v2 with layered sources (highest priority wins):
//
//  1. Environment variables (SERVER_PORT, GITHUB_TOKEN, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	GitHub    GitHubConfig     `koanf:"github"`
	Recommend RecommendConfig  `koanf:"recommend"`
	Tokens    TokenStoreConfig `koanf:"tokens"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed cross-origin request origins.
	// Empty by default; wildcard must be configured explicitly.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests / RateLimitWindow configure per-IP request limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings for the relational store
// (users, connections, posts, upvotes).
type DatabaseConfig struct {
	// Path is the database file path. ":memory:" opens an in-memory
	// database, used by tests.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// GitHubConfig holds settings for the external profile fetcher.
//
// The GitHub REST API enforces a strict per-credential rate limit, so
// both the request pacing (RequestsPerSecond/Burst) and the fan-out
// bound (FetchConcurrency) are correctness-relevant, not tuning knobs.
type GitHubConfig struct {
	// BaseURL is the API root. Overridable for tests and GHE deployments.
	BaseURL string `koanf:"base_url"`

	// Token is the fallback service credential used when a user has no
	// stored OAuth token.
	Token string `koanf:"token"`

	// ReposAnalyzed caps how many most-recently-pushed repositories
	// contribute to a profile's language histogram and topic set.
	ReposAnalyzed int `koanf:"repos_analyzed"`

	// FetchConcurrency bounds concurrent profile fetches per request.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// RequestsPerSecond and Burst feed the client-side rate limiter.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`

	// Timeout is the per-HTTP-request timeout.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds retries on HTTP 429 responses.
	MaxRetries int `koanf:"max_retries"`
}

// RecommendConfig holds the scoring weights, caps, and limits of the
// connection recommendation engine. All values are injectable; the
// defaults reproduce the original platform's point budgets.
type RecommendConfig struct {
	// MaxRecommendations clamps the per-request candidate count. Kept
	// low because every candidate may cost several GitHub API calls.
	MaxRecommendations int `koanf:"max_recommendations"`

	// SeedConnections is the initial search pool size: how many of the
	// requester's most recent connections seed the candidate walk.
	SeedConnections int `koanf:"seed_connections"`

	// RecencyPoints is the starting recency weight, halved each hop.
	RecencyPoints float64 `koanf:"recency_points"`

	// RecommenderPoints scales requester-to-connector profile similarity.
	RecommenderPoints float64 `koanf:"recommender_points"`

	// AdjacentPoints scales requester-to-candidate profile similarity.
	AdjacentPoints float64 `koanf:"adjacent_points"`

	// ExternalPoints scales GitHub profile similarity. Split 2/5
	// topics, 3/5 languages.
	ExternalPoints float64 `koanf:"external_points"`

	// TopicPoints and LanguagePoints are the per-shared-signal weights
	// inside the external similarity score.
	TopicPoints    float64 `koanf:"topic_points"`
	LanguagePoints float64 `koanf:"language_points"`

	// RequestTimeout bounds a whole recommendation request. On expiry
	// the engine abandons in-flight profile fetches and falls back to
	// scores already computed plus the popularity fallback.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// ReconcileInterval is how often the graph reconcile service
	// rebuilds the in-memory graph from the database. 0 disables it.
	ReconcileInterval time.Duration `koanf:"reconcile_interval"`
}

// TokenStoreConfig holds BadgerDB settings for the OAuth token store.
type TokenStoreConfig struct {
	// Path is the Badger directory. Ignored when InMemory is true.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence, used by tests.
	InMemory bool `koanf:"in_memory"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
