// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP routing tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a Router around the given handler and middleware
// factory.
func NewRouter(handler *Handler, middleware *Middleware) *Router {
	if middleware == nil {
		middleware = NewMiddleware(nil)
	}

	return &Router{
		handler:    handler,
		middleware: middleware,
	}
}

// Setup builds the Chi routing tree. Health endpoints sit outside the
// rate-limited group so monitoring probes are never throttled away.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	h := router.handler

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Post("/users", h.CreateUser)
		r.Get("/users/{userID}/connections", h.ListConnections)
		r.Get("/users/{userID}/connections/pending", h.ListPendingConnections)
		r.Get("/users/{userID}/recommendations", h.GetRecommendations)

		r.Post("/connections", h.CreateConnection)
		r.Put("/connections/accept", h.AcceptConnection)
		r.Delete("/connections/{userA}/{userB}", h.DeleteConnection)

		r.Get("/graph/stats", h.GraphStats)
	})

	return r
}
