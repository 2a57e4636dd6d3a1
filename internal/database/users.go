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
	"time"

	"github.com/syncgraph/syncgraph/internal/metrics"
)

// CreateUser inserts a user row and populates u.ID. A zero ID takes
// the next sequence value; a positive ID is inserted verbatim, which
// test fixtures rely on. ExternalHandle may be empty when the user has
// not linked a code-hosting account.
func (db *DB) CreateUser(ctx context.Context, u *User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var handle any
	if u.ExternalHandle != "" {
		handle = u.ExternalHandle
	}

	query := `
		INSERT INTO users (username, external_handle)
		VALUES (?, ?) RETURNING id`
	args := []any{u.Username, handle}
	if u.ID > 0 {
		query = `
			INSERT INTO users (id, username, external_handle)
			VALUES (?, ?, ?) RETURNING id`
		args = []any{u.ID, u.Username, handle}
	}

	start := time.Now()
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&u.ID)
	metrics.RecordDBQuery("INSERT", "users", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser returns the user row for id, or ErrNotFound.
func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, username, coalesce(external_handle, ''), created_at
		FROM users WHERE id = ?`, id)

	var u User
	err := row.Scan(&u.ID, &u.Username, &u.ExternalHandle, &u.CreatedAt)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// GetUserExternalHandle returns the linked code-hosting handle for
// userID, or empty string when none is linked. A missing user also
// returns empty; callers treat both as "no external profile".
func (db *DB) GetUserExternalHandle(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT coalesce(external_handle, '') FROM users WHERE id = ?`, userID)

	var handle string
	err := row.Scan(&handle)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query external handle: %w", err)
	}
	return handle, nil
}

// CreatePost inserts a post row.
func (db *DB) CreatePost(ctx context.Context, p *Post) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO posts (id, author_id, title)
		VALUES (?, ?, ?)`, p.ID, p.AuthorID, p.Title)
	metrics.RecordDBQuery("INSERT", "posts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// UpvotePost records an upvote. Upvoting twice is a no-op.
func (db *DB) UpvotePost(ctx context.Context, userID, postID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO upvotes (user_id, post_id)
		VALUES (?, ?)`, userID, postID)
	metrics.RecordDBQuery("INSERT", "upvotes", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upvote post: %w", err)
	}
	return nil
}

// GetUserEndorsedPostIDs returns the IDs of every post userID has
// upvoted. Feeds the similarity scorer's engagement overlap.
func (db *DB) GetUserEndorsedPostIDs(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `
		SELECT post_id FROM upvotes WHERE user_id = ? ORDER BY post_id`, userID)
	metrics.RecordDBQuery("SELECT", "upvotes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list endorsed posts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
