package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsight/vitalsight/internal/analytics/stats"
	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/models"
	"github.com/vitalsight/vitalsight/internal/services"
)

func TestReadTable_HeaderAndTimestamps(t *testing.T) {
	in := "time,heart_rate,spo2\n" +
		"2025-01-01T00:00:00Z,61,98\n" +
		"2025-01-01T01:00:00Z,64, 97\n"

	table, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"time", "heart_rate", "spo2"}, table.Header)
	require.Len(t, table.Timestamps, 2)
	assert.True(t, table.Timestamps[1].Equal(time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, [][]float64{{61, 98}, {64, 97}}, table.Rows)

	points, err := table.Series(1)
	require.NoError(t, err)
	assert.Equal(t, 97.0, points[1].Value)
	assert.True(t, points[1].Time.Equal(table.Timestamps[1]))
}

func TestReadTable_PlainNumbers(t *testing.T) {
	table, err := ReadTable(strings.NewReader("1,2\n3,4\n5,6\n"))
	require.NoError(t, err)

	assert.Nil(t, table.Header)
	assert.Nil(t, table.Timestamps)
	assert.Len(t, table.Rows, 3)

	points, err := table.Series(0)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, points[1].Time.Sub(points[0].Time))

	_, err = table.Column(2)
	assert.Error(t, err)
}

func TestReadTable_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"header only", "a,b\n"},
		{"bad cell", "1,2\n3,x\n"},
		{"ragged", "1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestRun(t *testing.T) {
	cfg := config.DefaultConfig()
	svc := services.NewAnalyticsService(logging.NewNop(), cfg.Analytics, nil)
	table, err := ReadTable(strings.NewReader("0,0\n0,1\n10,10\n10,11\n"))
	require.NoError(t, err)

	res, err := run(context.Background(), svc, table, options{op: "stats", column: 1})
	require.NoError(t, err)
	summary, ok := res.(stats.Summary)
	require.True(t, ok)
	assert.InDelta(t, 5.5, summary.Mean, 1e-9)

	res, err = run(context.Background(), svc, table, options{op: "kmeans", k: 2, seed: 1})
	require.NoError(t, err)
	km, ok := res.(*models.KMeansResponse)
	require.True(t, ok)
	assert.Equal(t, km.Assignments[0], km.Assignments[1])

	_, err = run(context.Background(), svc, table, options{op: "nope"})
	assert.Error(t, err)
}
