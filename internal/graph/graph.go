// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package graph holds the in-memory adjacency store over accepted
// connections.
//
// The store is a rebuildable cache: it is built once at startup from
// the database and mutated incrementally as connections are accepted
// or removed. It is the single shared mutable resource of the
// recommendation subsystem, guarded by a whole-store RWMutex. Readers
// never observe a half-applied edge.
package graph

import (
	"sync"

	"github.com/syncgraph/syncgraph/internal/metrics"
)

// Store maps each user to its accepted-connection neighbors.
//
// Neighbor order is acceptance order, oldest first. Neighbors()
// reverses it so callers iterate most-recently-connected first, which
// drives the recency bias of the candidate search.
type Store struct {
	mu    sync.RWMutex
	adj   map[int64][]int64
	index map[int64]map[int64]struct{}
	edges int
}

// New returns an empty store.
func New() *Store {
	return &Store{
		adj:   make(map[int64][]int64),
		index: make(map[int64]map[int64]struct{}),
	}
}

// Edge is one undirected accepted connection.
type Edge struct {
	A, B int64
}

// Build replaces the store contents with the given accepted edges,
// which must be ordered by acceptance time, oldest first. Self-loops
// and duplicate pairs are skipped. Readers concurrent with Build see
// either the old contents or the new, never a mix.
func (s *Store) Build(edges []Edge) {
	adj := make(map[int64][]int64)
	index := make(map[int64]map[int64]struct{})
	count := 0

	insert := func(a, b int64) bool {
		set, ok := index[a]
		if !ok {
			set = make(map[int64]struct{})
			index[a] = set
		}
		if _, dup := set[b]; dup {
			return false
		}
		set[b] = struct{}{}
		adj[a] = append(adj[a], b)
		return true
	}

	for _, e := range edges {
		if e.A == e.B {
			continue
		}
		if insert(e.A, e.B) {
			count++
		}
		insert(e.B, e.A)
	}

	s.mu.Lock()
	s.adj = adj
	s.index = index
	s.edges = count
	s.mu.Unlock()

	metrics.GraphMutations.WithLabelValues("rebuild").Inc()
	metrics.SetGraphSize(len(adj), count)
}

// edge insertion shared by Build and AddEdge; caller holds the write lock.
func (s *Store) insertDirected(a, b int64) bool {
	set, ok := s.index[a]
	if !ok {
		set = make(map[int64]struct{})
		s.index[a] = set
	}
	if _, dup := set[b]; dup {
		return false
	}
	set[b] = struct{}{}
	s.adj[a] = append(s.adj[a], b)
	return true
}

// AddEdge inserts the undirected edge (a, b). Inserting an existing
// edge or a self-loop is a no-op.
func (s *Store) AddEdge(a, b int64) {
	if a == b {
		return
	}

	s.mu.Lock()
	added := s.insertDirected(a, b)
	s.insertDirected(b, a)
	if added {
		s.edges++
	}
	users, edges := len(s.adj), s.edges
	s.mu.Unlock()

	if added {
		metrics.GraphMutations.WithLabelValues("add_edge").Inc()
		metrics.SetGraphSize(users, edges)
	}
}

// RemoveEdge deletes the undirected edge (a, b). Removing a
// non-existent edge is a no-op.
func (s *Store) RemoveEdge(a, b int64) {
	if a == b {
		return
	}

	s.mu.Lock()
	removed := s.removeDirected(a, b)
	s.removeDirected(b, a)
	if removed {
		s.edges--
	}
	users, edges := len(s.adj), s.edges
	s.mu.Unlock()

	if removed {
		metrics.GraphMutations.WithLabelValues("remove_edge").Inc()
		metrics.SetGraphSize(users, edges)
	}
}

func (s *Store) removeDirected(a, b int64) bool {
	set, ok := s.index[a]
	if !ok {
		return false
	}
	if _, present := set[b]; !present {
		return false
	}
	delete(set, b)

	list := s.adj[a]
	for i, v := range list {
		if v == b {
			s.adj[a] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(set) == 0 {
		delete(s.index, a)
		delete(s.adj, a)
	}
	return true
}

// Neighbors returns a's neighbors ordered most-recently-connected
// first. The returned slice is a copy; mutating it does not affect the
// store. A user absent from the graph has zero connections, not an
// error.
func (s *Store) Neighbors(a int64) []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.adj[a]
	out := make([]int64, len(list))
	for i, v := range list {
		out[len(list)-1-i] = v
	}
	return out
}

// Connected reports whether a holds an accepted connection with b.
func (s *Store) Connected(a, b int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[a][b]
	return ok
}

// Degree returns a's accepted-connection count.
func (s *Store) Degree(a int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.adj[a])
}

// Size returns the current user and edge counts.
func (s *Store) Size() (users, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.adj), s.edges
}
