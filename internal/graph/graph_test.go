// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package graph

import (
	"sync"
	"testing"
)

func int64SlicesEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuild(t *testing.T) {
	s := New()
	s.Build([]Edge{
		{A: 1, B: 2},
		{A: 1, B: 3},
		{A: 2, B: 4},
		{A: 1, B: 2}, // duplicate, skipped
		{A: 5, B: 5}, // self-loop, skipped
	})

	users, edges := s.Size()
	if users != 4 {
		t.Errorf("users = %d, want 4", users)
	}
	if edges != 3 {
		t.Errorf("edges = %d, want 3", edges)
	}

	// Most recent first: 1 connected to 2 then 3.
	if got := s.Neighbors(1); !int64SlicesEqual(got, []int64{3, 2}) {
		t.Errorf("Neighbors(1) = %v, want [3 2]", got)
	}
	if s.Connected(5, 5) {
		t.Error("self-loop should not be stored")
	}
}

func TestSymmetry(t *testing.T) {
	s := New()
	s.Build([]Edge{{A: 1, B: 2}, {A: 2, B: 3}})
	s.AddEdge(3, 4)
	s.RemoveEdge(2, 3)

	for _, a := range []int64{1, 2, 3, 4} {
		for _, b := range s.Neighbors(a) {
			if !s.Connected(b, a) {
				t.Errorf("asymmetric edge: %d in Neighbors(%d) but not the reverse", b, a)
			}
		}
		if s.Connected(a, a) {
			t.Errorf("self-loop on %d", a)
		}
	}
}

func TestAddEdgeIdempotent(t *testing.T) {
	s := New()
	s.AddEdge(1, 2)
	s.AddEdge(1, 2)
	s.AddEdge(2, 1)

	if _, edges := s.Size(); edges != 1 {
		t.Errorf("edges = %d, want 1", edges)
	}
	if got := s.Neighbors(1); !int64SlicesEqual(got, []int64{2}) {
		t.Errorf("Neighbors(1) = %v, want [2]", got)
	}
}

func TestAddEdgeSelfLoopIgnored(t *testing.T) {
	s := New()
	s.AddEdge(7, 7)

	if users, edges := s.Size(); users != 0 || edges != 0 {
		t.Errorf("Size() = (%d, %d), want (0, 0)", users, edges)
	}
}

func TestRemoveEdgeRoundTrip(t *testing.T) {
	s := New()
	s.Build([]Edge{{A: 5, B: 1}, {A: 6, B: 2}})

	before5 := s.Neighbors(5)
	before6 := s.Neighbors(6)

	s.AddEdge(5, 6)
	s.RemoveEdge(5, 6)

	if got := s.Neighbors(5); !int64SlicesEqual(got, before5) {
		t.Errorf("Neighbors(5) = %v, want %v", got, before5)
	}
	if got := s.Neighbors(6); !int64SlicesEqual(got, before6) {
		t.Errorf("Neighbors(6) = %v, want %v", got, before6)
	}
}

func TestRemoveEdgeNonExistent(t *testing.T) {
	s := New()
	s.AddEdge(1, 2)
	s.RemoveEdge(1, 3)
	s.RemoveEdge(8, 9)

	if _, edges := s.Size(); edges != 1 {
		t.Errorf("edges = %d, want 1", edges)
	}
}

func TestRemoveEdgePreservesOrder(t *testing.T) {
	s := New()
	s.Build([]Edge{{A: 1, B: 2}, {A: 1, B: 3}, {A: 1, B: 4}})

	s.RemoveEdge(1, 3)

	if got := s.Neighbors(1); !int64SlicesEqual(got, []int64{4, 2}) {
		t.Errorf("Neighbors(1) = %v, want [4 2]", got)
	}
}

func TestNeighborsReturnsCopy(t *testing.T) {
	s := New()
	s.Build([]Edge{{A: 1, B: 2}, {A: 1, B: 3}})

	got := s.Neighbors(1)
	got[0] = 999

	if again := s.Neighbors(1); !int64SlicesEqual(again, []int64{3, 2}) {
		t.Errorf("store mutated through Neighbors result: %v", again)
	}
}

func TestNeighborsUnknownUser(t *testing.T) {
	s := New()
	if got := s.Neighbors(42); len(got) != 0 {
		t.Errorf("Neighbors(42) = %v, want empty", got)
	}
	if s.Degree(42) != 0 {
		t.Errorf("Degree(42) = %d, want 0", s.Degree(42))
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	s.Build([]Edge{{A: 1, B: 2}})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int64) {
			defer wg.Done()
			s.AddEdge(1, 100+n)
			s.RemoveEdge(1, 100+n)
		}(int64(i))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if len(s.Neighbors(1)) < 1 {
					t.Error("edge (1,2) missing during concurrent reads")
					return
				}
			}
		}()
	}
	wg.Wait()

	if !s.Connected(1, 2) {
		t.Error("edge (1,2) lost during concurrent mutations")
	}
}
