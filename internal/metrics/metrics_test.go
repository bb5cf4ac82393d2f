package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{analytics.Insufficient("kmeans", 3, 2), OutcomeInsufficientData},
		{analytics.Errorf("pca", analytics.ErrDimensionMismatch, "ragged"), OutcomeDimensionMismatch},
		{analytics.Errorf("dbscan", analytics.ErrInvalidParameter, "eps"), OutcomeInvalidParameter},
		{fmt.Errorf("predict: %w", analytics.ErrNotTrained), OutcomeNotTrained},
		{fmt.Errorf("x: %w", analytics.ErrUnknownAlgorithm), OutcomeUnknownAlgorithm},
		{errors.New("boom"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	start := time.Now()

	r.Observe("kmeans", start, nil)
	r.Observe("kmeans", start, nil)
	r.Observe("kmeans", start, analytics.Insufficient("kmeans", 3, 1))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("kmeans", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("kmeans", OutcomeInsufficientData)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_NilIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Observe("pca", time.Now(), nil)
		r.SetNetworks(3)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Observe("dbscan", time.Now(), nil)
	r.SetNetworks(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `vitalsight_algorithm_runs_total{algorithm="dbscan",outcome="ok"} 1`)
	assert.Contains(t, string(body), "vitalsight_networks 2")
	assert.Contains(t, string(body), "vitalsight_algorithm_duration_seconds_bucket")
}
