// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/syncgraph/syncgraph/internal/database"
	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/validation"
)

// ConnectionStore is the persistence surface the handlers need.
// *database.DB satisfies it.
type ConnectionStore interface {
	CreateUser(ctx context.Context, u *database.User) error
	GetUser(ctx context.Context, id int64) (*database.User, error)
	InsertConnection(ctx context.Context, senderID, recipientID int64) (*database.Connection, error)
	AcceptConnection(ctx context.Context, userID, otherID int64) (*database.Connection, error)
	ListConnection(ctx context.Context, a, b int64) (*database.Connection, error)
	DeleteConnection(ctx context.Context, a, b int64) error
	ListPendingConnections(ctx context.Context, userID int64) ([]database.Connection, error)
	GetUserConnectionIDs(ctx context.Context, userID int64) ([]int64, error)
}

// Recommender produces ranked connection suggestions for a user.
type Recommender interface {
	GetRecommendations(ctx context.Context, userID int64, count int) ([]int64, error)
}

// EventPublisher emits graph mutation events after successful writes.
type EventPublisher interface {
	PublishConnectionAccepted(userA, userB int64) error
	PublishConnectionRemoved(userA, userB int64) error
}

// GraphStats reports the size of the in-memory connection graph.
type GraphStats interface {
	Size() (users, edges int)
}

// Pinger reports backend liveness for the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	store     ConnectionStore
	engine    Recommender
	events    EventPublisher
	graph     GraphStats
	pinger    Pinger
	maxCount  int
	startedAt time.Time
}

// NewHandler creates a Handler wired to the given backends. maxCount
// bounds the count query parameter on the recommendations endpoint.
func NewHandler(store ConnectionStore, engine Recommender, events EventPublisher, graph GraphStats, pinger Pinger, maxCount int) *Handler {
	return &Handler{
		store:     store,
		engine:    engine,
		events:    events,
		graph:     graph,
		pinger:    pinger,
		maxCount:  maxCount,
		startedAt: time.Now(),
	}
}

// CreateUserRequest is the payload for POST /api/v1/users.
type CreateUserRequest struct {
	Username       string `json:"username" validate:"required,min=1,max=64"`
	ExternalHandle string `json:"external_handle" validate:"omitempty,max=64"`
}

// CreateConnectionRequest is the payload for POST /api/v1/connections.
type CreateConnectionRequest struct {
	SenderID    int64 `json:"sender_id" validate:"required,gt=0"`
	RecipientID int64 `json:"recipient_id" validate:"required,gt=0,nefield=SenderID"`
}

// AcceptConnectionRequest is the payload for
// PUT /api/v1/connections/accept. UserID must be the recipient of the
// pending request.
type AcceptConnectionRequest struct {
	UserID  int64 `json:"user_id" validate:"required,gt=0"`
	OtherID int64 `json:"other_id" validate:"required,gt=0,nefield=UserID"`
}

// connectionView is the wire representation of a connection record.
type connectionView struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	RecipientID int64      `json:"recipient_id"`
	Accepted    bool       `json:"accepted"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

func viewConnection(c *database.Connection) connectionView {
	return connectionView{
		ID:          c.ID,
		SenderID:    c.SenderID,
		RecipientID: c.RecipientID(),
		Accepted:    c.Accepted,
		CreatedAt:   c.CreatedAt,
		AcceptedAt:  c.AcceptedAt,
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// HealthReady reports readiness, checking database connectivity.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "NOT_READY", "Database is not reachable", err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"status": "ready"})
}

// GraphStats reports the current size of the connection graph.
func (h *Handler) GraphStats(w http.ResponseWriter, r *http.Request) {
	users, edges := h.graph.Size()
	respondJSON(w, r, http.StatusOK, map[string]any{
		"users": users,
		"edges": edges,
	})
}

// CreateUser registers a new user.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u := &database.User{
		Username:       req.Username,
		ExternalHandle: req.ExternalHandle,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user", err)
		return
	}

	respondJSON(w, r, http.StatusCreated, map[string]any{
		"id":              u.ID,
		"username":        u.Username,
		"external_handle": u.ExternalHandle,
	})
}

// CreateConnection records a pending connection request.
func (h *Handler) CreateConnection(w http.ResponseWriter, r *http.Request) {
	var req CreateConnectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	conn, err := h.store.InsertConnection(r.Context(), req.SenderID, req.RecipientID)
	switch {
	case errors.Is(err, database.ErrSelfConnection):
		respondError(w, r, http.StatusBadRequest, "SELF_CONNECTION", "A user cannot connect to themselves", nil)
		return
	case errors.Is(err, database.ErrDuplicateConnection):
		respondError(w, r, http.StatusConflict, "DUPLICATE_CONNECTION", "A connection for this pair already exists", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create connection", err)
		return
	}

	respondJSON(w, r, http.StatusCreated, viewConnection(conn))
}

// AcceptConnection accepts a pending request and publishes the
// accepted event that feeds the graph.
func (h *Handler) AcceptConnection(w http.ResponseWriter, r *http.Request) {
	var req AcceptConnectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	conn, err := h.store.AcceptConnection(r.Context(), req.UserID, req.OtherID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No pending connection for this pair", nil)
		return
	case errors.Is(err, database.ErrNotRecipient):
		respondError(w, r, http.StatusForbidden, "NOT_RECIPIENT", "Only the recipient can accept a connection", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to accept connection", err)
		return
	}

	if err := h.events.PublishConnectionAccepted(conn.UserLow, conn.UserHigh); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to publish connection accepted event")
	}

	respondJSON(w, r, http.StatusOK, viewConnection(conn))
}

// DeleteConnection removes a connection, pending or accepted, and
// publishes the removal event when an accepted edge went away.
func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	userA, ok := pathID(w, r, "userA")
	if !ok {
		return
	}
	userB, ok := pathID(w, r, "userB")
	if !ok {
		return
	}

	conn, err := h.store.ListConnection(r.Context(), userA, userB)
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No connection for this pair", nil)
		return
	case errors.Is(err, database.ErrSelfConnection):
		respondError(w, r, http.StatusBadRequest, "SELF_CONNECTION", "A user cannot connect to themselves", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up connection", err)
		return
	}

	if err := h.store.DeleteConnection(r.Context(), userA, userB); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "NOT_FOUND", "No connection for this pair", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete connection", err)
		return
	}

	if conn.Accepted {
		if err := h.events.PublishConnectionRemoved(conn.UserLow, conn.UserHigh); err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to publish connection removed event")
		}
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"deleted": true})
}

// ListConnections returns the IDs of a user's accepted connections.
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	ids, err := h.store.GetUserConnectionIDs(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list connections", err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"user_id":     userID,
		"connections": ids,
	})
}

// ListPendingConnections returns incoming pending requests for a user.
func (h *Handler) ListPendingConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	pending, err := h.store.ListPendingConnections(r.Context(), userID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list pending connections", err)
		return
	}

	views := make([]connectionView, len(pending))
	for i := range pending {
		views[i] = viewConnection(&pending[i])
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"user_id": userID,
		"pending": views,
	})
}

// GetRecommendations returns ranked connection suggestions for a user.
// The count query parameter defaults to the configured maximum.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}

	count := h.maxCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "count must be a positive integer", nil)
			return
		}
		count = parsed
	}

	if _, err := h.store.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Unknown user", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up user", err)
		return
	}

	recs, err := h.engine.GetRecommendations(r.Context(), userID, count)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute recommendations", err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"user_id":         userID,
		"recommendations": recs,
	})
}

// decodeAndValidate decodes the JSON request body into v and runs
// struct validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return false
	}

	if verr := validation.ValidateStruct(v); verr != nil {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), nil)
		return false
	}

	return true
}

// pathID parses a positive int64 path parameter, writing the error
// response itself on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", name+" must be a positive integer", nil)
		return 0, false
	}

	return id, true
}
