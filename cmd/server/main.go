// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package main is the entry point for the Syncgraph server.
//
// Syncgraph recommends new connections to members of a developer
// social network by combining on-platform signals (shared connections,
// shared post upvotes) with external GitHub profile similarity
// (languages and topics of recently pushed repositories).
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 load (env > config file > defaults)
//  2. Database: DuckDB holding users, connections, posts, upvotes
//  3. Graph: in-memory adjacency store built from accepted connections
//  4. Token store: BadgerDB holding per-user OAuth credentials
//  5. GitHub client: rate-limited, retrying, behind a circuit breaker
//  6. Recommendation engine: similarity scorer plus popularity fallback
//  7. Event bus: watermill in-process pubsub feeding graph mutations
//  8. Supervision tree: suture running router, reconciler, HTTP server
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, drains in-flight requests, then closes the
// event bus, token store, and database.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/syncgraph/syncgraph/internal/api"
	"github.com/syncgraph/syncgraph/internal/config"
	"github.com/syncgraph/syncgraph/internal/database"
	"github.com/syncgraph/syncgraph/internal/events"
	"github.com/syncgraph/syncgraph/internal/github"
	"github.com/syncgraph/syncgraph/internal/graph"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/recommend"
	"github.com/syncgraph/syncgraph/internal/supervisor"
	"github.com/syncgraph/syncgraph/internal/supervisor/services"
	"github.com/syncgraph/syncgraph/internal/tokenstore"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Path).
		Msg("Starting Syncgraph server")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tokens, err := tokenstore.Open(&cfg.Tokens)
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer tokens.Close()

	graphStore := graph.New()

	githubClient := github.NewBreakerClient(github.NewClient(&cfg.GitHub))
	fetcher := github.NewFetcher(githubClient, tokenProvider{tokens}, &cfg.GitHub)
	engine := recommend.NewEngine(graphStore, db, fetcher, &cfg.Recommend)

	busLogger := events.NewLoggerAdapter()
	bus := events.NewBus(busLogger)
	defer bus.Close()

	router, err := events.NewGraphRouter(bus, graphStore, busLogger)
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	handler := api.NewHandler(db, engine, bus, graphStore, db.Conn(), cfg.Recommend.MaxRecommendations)
	middleware := api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, middleware).Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Until the initial build succeeds the engine would recommend from
	// an empty graph, so a failure here aborts startup instead of being
	// retried under supervision.
	reconciler := services.NewReconcileService(db, graphStore, cfg.Recommend.ReconcileInterval)
	if err := reconciler.Reconcile(ctx); err != nil {
		return fmt.Errorf("initial graph build: %w", err)
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddGraphService(services.NewRouterService(router))
	tree.AddGraphService(reconciler)
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Supervision tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervision tree: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}

// tokenProvider adapts the Badger token store to the fetcher's
// TokenProvider interface. Lookup failures fall back to the service
// credential by returning an empty token.
type tokenProvider struct {
	store *tokenstore.Store
}

func (p tokenProvider) TokenFor(userID int64) string {
	t, err := p.store.Get(userID)
	if err != nil {
		return ""
	}
	return t.AccessToken
}
