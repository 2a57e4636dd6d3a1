// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package tokenstore

import (
	"errors"
	"testing"

	"github.com/syncgraph/syncgraph/internal/config"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.TokenStoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close error: %v", err)
		}
	})
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := setupStore(t)

	in := &Token{UserID: 1, AccessToken: "gho_abc", Scope: "read:user"}
	if err := s.Put(in); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := s.Get(1)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.AccessToken != "gho_abc" {
		t.Errorf("AccessToken = %q, want gho_abc", got.AccessToken)
	}
	if got.Scope != "read:user" {
		t.Errorf("Scope = %q, want read:user", got.Scope)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set on Put")
	}
}

func TestGetMissing(t *testing.T) {
	s := setupStore(t)

	if _, err := s.Get(99); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Get(99) error = %v, want ErrTokenNotFound", err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := setupStore(t)

	if err := s.Put(&Token{UserID: 1, AccessToken: "old"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Put(&Token{UserID: 1, AccessToken: "new"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := s.Get(1)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.AccessToken != "new" {
		t.Errorf("AccessToken = %q, want new", got.AccessToken)
	}
}

func TestDelete(t *testing.T) {
	s := setupStore(t)

	if err := s.Put(&Token{UserID: 1, AccessToken: "tok"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(1); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("Get after delete error = %v, want ErrTokenNotFound", err)
	}

	// Deleting again is a no-op.
	if err := s.Delete(1); err != nil {
		t.Errorf("second Delete error = %v, want nil", err)
	}
}
