// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syncgraph/syncgraph/internal/metrics"
)

// ensureContext attaches a default timeout when the caller supplied
// none.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// ListAcceptedConnections returns every accepted connection ordered by
// acceptance time, oldest first. The graph build replays them in order
// so per-user neighbor recency matches acceptance order.
func (db *DB) ListAcceptedConnections(ctx context.Context) ([]AcceptedEdge, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT user_low, user_high, accepted_at
		FROM connections
		WHERE accepted
		ORDER BY accepted_at, id`)
	metrics.RecordDBQuery("SELECT", "connections", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted connections: %w", err)
	}
	defer rows.Close()

	var edges []AcceptedEdge
	for rows.Next() {
		var e AcceptedEdge
		if err := rows.Scan(&e.UserA, &e.UserB, &e.AcceptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection row: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// ListConnection returns the connection record for an unordered pair,
// or ErrNotFound.
func (db *DB) ListConnection(ctx context.Context, a, b int64) (*Connection, error) {
	low, high, err := normalizePair(a, b)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, user_low, user_high, sender_id, accepted, created_at, accepted_at
		FROM connections
		WHERE user_low = ? AND user_high = ?`, low, high)

	var c Connection
	err = row.Scan(&c.ID, &c.UserLow, &c.UserHigh, &c.SenderID, &c.Accepted, &c.CreatedAt, &c.AcceptedAt)
	metrics.RecordDBQuery("SELECT", "connections", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query connection: %w", err)
	}
	return &c, nil
}

// InsertConnection creates a pending connection request from sender to
// recipient. Returns ErrDuplicateConnection when any record for the
// pair already exists.
func (db *DB) InsertConnection(ctx context.Context, senderID, recipientID int64) (*Connection, error) {
	low, high, err := normalizePair(senderID, recipientID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO connections (user_low, user_high, sender_id)
		VALUES (?, ?, ?)
		RETURNING id, user_low, user_high, sender_id, accepted, created_at, accepted_at`,
		low, high, senderID)

	var c Connection
	err = row.Scan(&c.ID, &c.UserLow, &c.UserHigh, &c.SenderID, &c.Accepted, &c.CreatedAt, &c.AcceptedAt)
	metrics.RecordDBQuery("INSERT", "connections", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateConnection
		}
		return nil, fmt.Errorf("failed to insert connection: %w", err)
	}
	return &c, nil
}

// AcceptConnection marks the pending connection between userID and
// otherID as accepted. Only the recipient of the original request may
// accept; accepting an already accepted connection is a no-op.
func (db *DB) AcceptConnection(ctx context.Context, userID, otherID int64) (*Connection, error) {
	c, err := db.ListConnection(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if c.Accepted {
		return c, nil
	}
	if c.SenderID == userID {
		return nil, ErrNotRecipient
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		UPDATE connections
		SET accepted = true, accepted_at = current_timestamp
		WHERE id = ? AND NOT accepted
		RETURNING id, user_low, user_high, sender_id, accepted, created_at, accepted_at`, c.ID)

	var out Connection
	err = row.Scan(&out.ID, &out.UserLow, &out.UserHigh, &out.SenderID, &out.Accepted, &out.CreatedAt, &out.AcceptedAt)
	metrics.RecordDBQuery("UPDATE", "connections", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		// Raced with a concurrent accept; re-read the final state.
		return db.ListConnection(ctx, userID, otherID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}
	return &out, nil
}

// DeleteConnection removes the connection record for an unordered
// pair, pending or accepted. Returns ErrNotFound when none exists.
func (db *DB) DeleteConnection(ctx context.Context, a, b int64) error {
	low, high, err := normalizePair(a, b)
	if err != nil {
		return err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		DELETE FROM connections
		WHERE user_low = ? AND user_high = ?`, low, high)
	metrics.RecordDBQuery("DELETE", "connections", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingConnections returns incoming pending requests for userID,
// newest first.
func (db *DB) ListPendingConnections(ctx context.Context, userID int64) ([]Connection, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, user_low, user_high, sender_id, accepted, created_at, accepted_at
		FROM connections
		WHERE NOT accepted
		  AND (user_low = ? OR user_high = ?)
		  AND sender_id <> ?
		ORDER BY created_at DESC, id DESC`, userID, userID, userID)
	metrics.RecordDBQuery("SELECT", "connections", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending connections: %w", err)
	}
	defer rows.Close()

	var out []Connection
	for rows.Next() {
		var c Connection
		if err := rows.Scan(&c.ID, &c.UserLow, &c.UserHigh, &c.SenderID, &c.Accepted, &c.CreatedAt, &c.AcceptedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetUserConnectionIDs returns the IDs of every user userID holds an
// accepted connection with.
func (db *DB) GetUserConnectionIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT CASE WHEN user_low = ? THEN user_high ELSE user_low END
		FROM connections
		WHERE accepted AND (user_low = ? OR user_high = ?)
		ORDER BY accepted_at, id`, userID, userID, userID)
	metrics.RecordDBQuery("SELECT", "connections", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list user connections: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetPopularUsers returns user IDs ordered by accepted-connection
// count descending, excluding userID and everyone userID already has a
// connection record with, pending included. Ties break on lowest
// user ID.
func (db *DB) GetPopularUsers(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		WITH degrees AS (
			SELECT u.id,
			       count(c.id) FILTER (WHERE c.accepted) AS degree
			FROM users u
			LEFT JOIN connections c
			       ON c.user_low = u.id OR c.user_high = u.id
			GROUP BY u.id
		)
		SELECT d.id
		FROM degrees d
		WHERE d.id <> ?
		  AND NOT EXISTS (
			SELECT 1 FROM connections c2
			WHERE (c2.user_low = ? AND c2.user_high = d.id)
			   OR (c2.user_low = d.id AND c2.user_high = ?)
		  )
		ORDER BY d.degree DESC, d.id
		LIMIT ?`, userID, userID, userID, limit)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasConnectionRecord reports whether any connection record exists for
// the unordered pair, pending or accepted. The ranker uses it to keep
// candidates with an outstanding request out of the recommendations.
func (db *DB) HasConnectionRecord(ctx context.Context, a, b int64) (bool, error) {
	low, high, err := normalizePair(a, b)
	if err != nil {
		return false, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM connections
			WHERE user_low = ? AND user_high = ?
		)`, low, high)

	var exists bool
	scanErr := row.Scan(&exists)
	metrics.RecordDBQuery("SELECT", "connections", time.Since(start), scanErr)
	if scanErr != nil {
		return false, fmt.Errorf("failed to check connection record: %w", scanErr)
	}
	return exists, nil
}

// isUniqueViolation reports whether err is a unique-constraint error.
// DuckDB surfaces these as driver errors without a stable type.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// ignoreNoRows keeps expected no-row results out of the error metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
