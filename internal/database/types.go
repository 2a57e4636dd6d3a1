// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package database

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSelfConnection is returned for a connection request where both
	// endpoints are the same user.
	ErrSelfConnection = errors.New("cannot connect a user to themselves")

	// ErrDuplicateConnection is returned when a connection record for
	// the unordered pair already exists, pending or accepted.
	ErrDuplicateConnection = errors.New("connection already exists")

	// ErrNotRecipient is returned when the connection originator tries
	// to accept their own request.
	ErrNotRecipient = errors.New("only the recipient can accept a connection")
)

// User is a member of the network.
type User struct {
	ID             int64
	Username       string
	ExternalHandle string
	CreatedAt      time.Time
}

// Connection is the persisted record for an unordered user pair. The
// pair is stored normalized (UserLow < UserHigh); SenderID records who
// originated the request.
type Connection struct {
	ID         int64
	UserLow    int64
	UserHigh   int64
	SenderID   int64
	Accepted   bool
	CreatedAt  time.Time
	AcceptedAt *time.Time
}

// RecipientID returns the endpoint that did not originate the request.
func (c *Connection) RecipientID() int64 {
	if c.SenderID == c.UserLow {
		return c.UserHigh
	}
	return c.UserLow
}

// Other returns the endpoint that is not u.
func (c *Connection) Other(u int64) int64 {
	if c.UserLow == u {
		return c.UserHigh
	}
	return c.UserLow
}

// AcceptedEdge is one accepted connection as consumed by the graph
// build, ordered by acceptance time.
type AcceptedEdge struct {
	UserA      int64
	UserB      int64
	AcceptedAt time.Time
}

// Post is a feed entry. The recommendation engine only consumes post
// IDs through upvote overlap.
type Post struct {
	ID        int64
	AuthorID  int64
	Title     string
	CreatedAt time.Time
}

// normalizePair orders an unordered user pair for storage.
func normalizePair(a, b int64) (low, high int64, err error) {
	if a == b {
		return 0, 0, ErrSelfConnection
	}
	if a < b {
		return a, b, nil
	}
	return b, a, nil
}
