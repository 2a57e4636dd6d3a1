// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package config

import "time"

// defaultConfig returns the built-in defaults, the lowest-priority
// configuration layer.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path:      "data/syncgraph.db",
			MaxMemory: "1GB",
			Threads:   0,
		},
		GitHub: GitHubConfig{
			BaseURL:           "https://api.github.com",
			ReposAnalyzed:     5,
			FetchConcurrency:  4,
			RequestsPerSecond: 5,
			Burst:             10,
			Timeout:           10 * time.Second,
			MaxRetries:        3,
		},
		Recommend: RecommendConfig{
			MaxRecommendations: 10,
			SeedConnections:    5,
			RecencyPoints:      5,
			RecommenderPoints:  15,
			AdjacentPoints:     30,
			ExternalPoints:     50,
			TopicPoints:        4,
			LanguagePoints:     6,
			RequestTimeout:     30 * time.Second,
			ReconcileInterval:  5 * time.Minute,
		},
		Tokens: TokenStoreConfig{
			Path:     "data/tokens",
			InMemory: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
