// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createTables creates the core tables and indexes.
//
// Connections store the unordered pair normalized as
// (user_low < user_high), so the unique index enforces at most one
// record per pair and the check constraint rules out self-connections.
// sender_id records who originated the request; only the other
// endpoint may accept.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_connection_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_user_id START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_user_id'),
			username TEXT NOT NULL,
			external_handle TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS connections (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_connection_id'),
			user_low BIGINT NOT NULL,
			user_high BIGINT NOT NULL,
			sender_id BIGINT NOT NULL,
			accepted BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			accepted_at TIMESTAMP,
			CHECK (user_low < user_high),
			CHECK (sender_id = user_low OR sender_id = user_high),
			UNIQUE (user_low, user_high)
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY,
			author_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS upvotes (
			user_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			PRIMARY KEY (user_id, post_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_connections_user_low ON connections (user_low)`,
		`CREATE INDEX IF NOT EXISTS idx_connections_user_high ON connections (user_high)`,
		`CREATE INDEX IF NOT EXISTS idx_upvotes_user ON upvotes (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts (author_id)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
