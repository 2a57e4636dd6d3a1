// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/syncgraph/syncgraph/internal/database"
	"github.com/syncgraph/syncgraph/internal/graph"
)

type fakeHTTPServer struct {
	started  chan struct{}
	release  chan error
	shutdown chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		started:  make(chan struct{}),
		release:  make(chan error, 1),
		shutdown: make(chan struct{}, 1),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	close(f.started)
	return <-f.release
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdown <- struct{}{}
	f.release <- http.ErrServerClosed
	return nil
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	<-srv.started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	select {
	case <-srv.shutdown:
	default:
		t.Error("Shutdown was not called")
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	t.Parallel()

	srv := newFakeHTTPServer()
	svc := NewHTTPService(srv, time.Second)

	go func() {
		<-srv.started
		srv.release <- errors.New("address already in use")
	}()

	err := svc.Serve(t.Context())
	if err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want startup error", err)
	}
}

type fakeEdgeSource struct {
	edges []database.AcceptedEdge
	err   error
	calls int
}

func (f *fakeEdgeSource) ListAcceptedConnections(context.Context) ([]database.AcceptedEdge, error) {
	f.calls++
	return f.edges, f.err
}

func TestReconcileRebuildsGraph(t *testing.T) {
	t.Parallel()

	source := &fakeEdgeSource{edges: []database.AcceptedEdge{
		{UserA: 1, UserB: 2},
		{UserA: 2, UserB: 3},
	}}
	store := graph.New()
	store.AddEdge(7, 8) // stale edge that the rebuild should drop

	svc := NewReconcileService(source, store, time.Minute)
	if err := svc.Reconcile(t.Context()); err != nil {
		t.Fatalf("Reconcile() = %v", err)
	}

	if store.Connected(7, 8) {
		t.Error("stale edge survived the rebuild")
	}
	if !store.Connected(1, 2) || !store.Connected(2, 3) {
		t.Error("rebuilt graph is missing persisted edges")
	}
}

func TestReconcileSourceFailure(t *testing.T) {
	t.Parallel()

	source := &fakeEdgeSource{err: errors.New("connection reset")}
	svc := NewReconcileService(source, graph.New(), time.Minute)

	if err := svc.Reconcile(t.Context()); err == nil {
		t.Error("Reconcile() = nil, want error")
	}
}

func TestReconcileServeRunsImmediately(t *testing.T) {
	t.Parallel()

	source := &fakeEdgeSource{edges: []database.AcceptedEdge{{UserA: 1, UserB: 2}}}
	store := graph.New()
	svc := NewReconcileService(source, store, time.Hour)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for !store.Connected(1, 2) {
		select {
		case <-deadline:
			t.Fatal("initial rebuild did not happen")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
