// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package tokenstore persists per-user OAuth access tokens for the
// external code-hosting platform in BadgerDB.
//
// Tokens are written by the OAuth handshake (outside this subsystem)
// and read by the profile fetcher, which prefers a user's own token
// over the shared service credential for rate-limit headroom.
package tokenstore

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/syncgraph/syncgraph/internal/config"
	"github.com/syncgraph/syncgraph/internal/logging"
)

const tokenKeyPrefix = "token:"

// ErrTokenNotFound is returned when no token is stored for a user.
var ErrTokenNotFound = errors.New("token not found")

// Token is one stored OAuth credential.
type Token struct {
	UserID      int64     `json:"user_id"`
	AccessToken string    `json:"access_token"`
	Scope       string    `json:"scope,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is a BadgerDB-backed token store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the configured path.
func Open(cfg *config.TokenStoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Token store opened")

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func tokenKey(userID int64) []byte {
	return []byte(fmt.Sprintf("%s%d", tokenKeyPrefix, userID))
}

// Put stores or replaces the token for a user.
func (s *Store) Put(t *Token) error {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey(t.UserID), data)
	})
}

// Get retrieves the token for a user, or ErrTokenNotFound.
func (s *Store) Get(userID int64) (*Token, error) {
	var t Token

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrTokenNotFound
		}
		if err != nil {
			return fmt.Errorf("get token: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the token for a user. Deleting a missing token is a
// no-op.
func (s *Store) Delete(userID int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey(userID))
	})
}
