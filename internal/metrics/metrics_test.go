// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getHistogramCount extracts the observation count from a Prometheus
// histogram. testutil.ToFloat64 only handles counters and gauges.
func getHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()

	var m io_prometheus_client.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("write histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{
			name:      "successful select",
			operation: "SELECT",
			table:     "connections",
			duration:  10 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "successful insert",
			operation: "INSERT",
			table:     "connections",
			duration:  5 * time.Millisecond,
			err:       nil,
		},
		{
			name:      "failed query",
			operation: "SELECT",
			table:     "users",
			duration:  100 * time.Millisecond,
			err:       errors.New("database closed"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))

			wantDelta := 0.0
			if tt.err != nil {
				wantDelta = 1.0
			}
			if got := after - before; got != wantDelta {
				t.Errorf("error counter delta = %g, want %g", got, wantDelta)
			}
		})
	}
}

func TestDBQueryDurationObserved(t *testing.T) {
	h, ok := DBQueryDuration.WithLabelValues("SELECT", "posts").(prometheus.Histogram)
	if !ok {
		t.Fatal("DBQueryDuration observer is not a histogram")
	}

	before := getHistogramCount(t, h)
	RecordDBQuery("SELECT", "posts", 3*time.Millisecond, nil)
	after := getHistogramCount(t, h)

	if after != before+1 {
		t.Errorf("sample count = %d, want %d", after, before+1)
	}
}

func TestGraphRebuildDurationObserved(t *testing.T) {
	before := getHistogramCount(t, GraphRebuildDuration)
	GraphRebuildDuration.Observe(0.25)
	after := getHistogramCount(t, GraphRebuildDuration)

	if after != before+1 {
		t.Errorf("sample count = %d, want %d", after, before+1)
	}
}

func TestSetGraphSize(t *testing.T) {
	SetGraphSize(42, 99)

	if got := testutil.ToFloat64(GraphUsers); got != 42 {
		t.Errorf("GraphUsers = %g, want 42", got)
	}
	if got := testutil.ToFloat64(GraphEdges); got != 99 {
		t.Errorf("GraphEdges = %g, want 99", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %g, want %g", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %g, want %g", got, before)
	}
}

func TestRecordGitHubRequest(t *testing.T) {
	before := testutil.ToFloat64(GitHubRequests.WithLabelValues("user_repos", "200"))
	RecordGitHubRequest("user_repos", "200", 50*time.Millisecond)
	after := testutil.ToFloat64(GitHubRequests.WithLabelValues("user_repos", "200"))

	if after-before != 1 {
		t.Errorf("GitHubRequests delta = %g, want 1", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	RecordAPIRequest("GET", "/api/v1/recommendations", "200", 20*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))

	if after-before != 1 {
		t.Errorf("APIRequestsTotal delta = %g, want 1", after-before)
	}
}
