// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Connection graph size and mutations
// - Recommendation latency and fallback usage
// - GitHub API client behavior (retries, rate limits, circuit breaker)
// - Database query performance (DuckDB)
// - API endpoint latency and throughput

var (
	// Graph Metrics
	GraphUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_users",
			Help: "Current number of users in the in-memory connection graph",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "graph_edges",
			Help: "Current number of undirected edges in the connection graph",
		},
	)

	GraphMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graph_mutations_total",
			Help: "Total number of graph mutations applied",
		},
		[]string{"operation"}, // "add_edge", "remove_edge", "rebuild"
	)

	GraphRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graph_rebuild_duration_seconds",
			Help:    "Duration of full graph rebuilds from the database",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"}, // "ok", "degraded", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	RecommendCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_scored",
			Help:    "Number of candidates scored per recommendation request",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 250},
		},
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_fallbacks_total",
			Help: "Recommendation slots filled by the popularity fallback",
		},
		[]string{"reason"}, // "no_connections", "pool_exhausted"
	)

	RecommendPoolExpansions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_pool_expansions_total",
			Help: "Times the candidate search pool was doubled",
		},
	)

	// GitHub Client Metrics
	GitHubRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_requests_total",
			Help: "Total number of GitHub API requests",
		},
		[]string{"endpoint", "status"},
	)

	GitHubRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "github_request_duration_seconds",
			Help:    "GitHub API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	GitHubRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "github_retries_total",
			Help: "Total number of GitHub request retries after HTTP 429",
		},
	)

	GitHubRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "github_rate_limited_total",
			Help: "GitHub requests abandoned after exhausting retries",
		},
	)

	GitHubCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "github_circuit_breaker_state",
			Help: "GitHub circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	GitHubProfileFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "github_profile_fetches_total",
			Help: "Total external profile fetch attempts",
		},
		[]string{"result"}, // "ok", "not_found", "unavailable"
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Connection lifecycle events published to the bus",
		},
		[]string{"topic"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Connection lifecycle events applied to the graph",
		},
		[]string{"topic", "result"},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordGitHubRequest records one GitHub API call.
func RecordGitHubRequest(endpoint, status string, duration time.Duration) {
	GitHubRequests.WithLabelValues(endpoint, status).Inc()
	GitHubRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetGraphSize updates the graph size gauges after a mutation or rebuild.
func SetGraphSize(users, edges int) {
	GraphUsers.Set(float64(users))
	GraphEdges.Set(float64(edges))
}
