package neural

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/compression"
)

func trainedNetwork(t *testing.T) *Network {
	t.Helper()
	cfg := orConfig()
	cfg.HiddenSizes = []int{8}
	rng := analytics.NewRand(11)
	n, err := New(cfg, rng)
	require.NoError(t, err)
	_, err = n.Train(orSet(), TrainOptions{Epochs: 200, BatchSize: 4}, rng)
	require.NoError(t, err)
	return n
}

func TestNetwork_PredictRequiresTraining(t *testing.T) {
	n, err := New(orConfig(), analytics.NewRand(1))
	require.NoError(t, err)
	assert.False(t, n.Trained())

	_, err = n.Predict([]float64{0, 1}, PredictOptions{}, nil)
	assert.ErrorIs(t, err, analytics.ErrNotTrained)
}

func TestNetwork_PredictDeterministicWithoutDropout(t *testing.T) {
	n := trainedNetwork(t)
	assert.True(t, n.Trained())

	pred, err := n.Predict([]float64{1, 0}, PredictOptions{Samples: 20}, nil)
	require.NoError(t, err)

	acts, err := Forward(n.Config(), n.Parameters(), []float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, acts[len(acts)-1][0], pred.Output[0], 1e-12)
	assert.InDelta(t, 0, pred.Uncertainty, 1e-12)
	assert.InDelta(t, 1, pred.Confidence, 1e-12)
	assert.Equal(t, 20, pred.Samples)
}

func TestNetwork_PredictWithDropoutReportsUncertainty(t *testing.T) {
	n := trainedNetwork(t)

	pred, err := n.Predict([]float64{1, 0}, PredictOptions{Samples: 100, Dropout: 0.5}, analytics.NewRand(3))
	require.NoError(t, err)
	assert.Greater(t, pred.Uncertainty, 0.0)
	assert.GreaterOrEqual(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 1.0)
	assert.InDelta(t, 1-pred.Uncertainty, pred.Confidence, 1e-12)
}

func TestNetwork_PredictValidation(t *testing.T) {
	n := trainedNetwork(t)

	_, err := n.Predict([]float64{1}, PredictOptions{}, nil)
	assert.ErrorIs(t, err, analytics.ErrDimensionMismatch)

	_, err = n.Predict([]float64{1, 0}, PredictOptions{Dropout: 1}, nil)
	assert.ErrorIs(t, err, analytics.ErrInvalidParameter)
}

func TestNetwork_ExportImportRoundTrip(t *testing.T) {
	n := trainedNetwork(t)

	data, err := n.Export()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "config")
	assert.Contains(t, raw, "weights")
	assert.Contains(t, raw, "biases")
	assert.Contains(t, raw, "trained")

	restored, err := Import(data)
	require.NoError(t, err)
	assert.True(t, restored.Trained())
	assert.Equal(t, n.Config().Topology(), restored.Config().Topology())

	for _, input := range [][]float64{{0, 0}, {0, 1}, {0.25, 0.75}, {3, -2}} {
		want, err := n.Predict(input, PredictOptions{}, nil)
		require.NoError(t, err)
		got, err := restored.Predict(input, PredictOptions{}, nil)
		require.NoError(t, err)
		assert.Equal(t, want.Output, got.Output)
	}
}

func TestNetwork_CompressedRoundTrip(t *testing.T) {
	n := trainedNetwork(t)

	blob, err := n.ExportCompressed(compression.Snappy)
	require.NoError(t, err)
	assert.Equal(t, byte(compression.Snappy), blob[0])

	restored, err := ImportCompressed(blob)
	require.NoError(t, err)
	assert.Equal(t, n.Parameters().Weights, restored.Parameters().Weights)
	assert.Equal(t, n.Parameters().Biases, restored.Parameters().Biases)
}

func TestImport_Rejects(t *testing.T) {
	_, err := Import([]byte("{not json"))
	assert.ErrorIs(t, err, analytics.ErrInvalidParameter)

	n := trainedNetwork(t)
	s := n.Snapshot()
	s.Weights[0] = s.Weights[0][:1]
	data, err := json.Marshal(s)
	require.NoError(t, err)
	_, err = Import(data)
	assert.ErrorIs(t, err, analytics.ErrDimensionMismatch)

	s = n.Snapshot()
	s.Biases = s.Biases[:1]
	_, err = FromSnapshot(s)
	assert.ErrorIs(t, err, analytics.ErrDimensionMismatch)

	_, err = ImportCompressed(nil)
	assert.ErrorIs(t, err, analytics.ErrInvalidParameter)
}

func TestNetwork_UntrainedExportKeepsFlag(t *testing.T) {
	n, err := New(orConfig(), analytics.NewRand(1))
	require.NoError(t, err)

	data, err := n.Export()
	require.NoError(t, err)
	restored, err := Import(data)
	require.NoError(t, err)
	assert.False(t, restored.Trained())
}

func TestPassStats(t *testing.T) {
	mean, variance := passStats([]float64{1, 3})
	assert.InDelta(t, 2, mean, 1e-12)
	assert.InDelta(t, 2, variance, 1e-12)

	mean, variance = passStats([]float64{0.5, 0.5, 0.5, 1.5})
	assert.InDelta(t, 0.75, mean, 1e-12)
	assert.InDelta(t, 0.25, variance, 1e-12)

	mean, variance = passStats([]float64{0.4})
	assert.InDelta(t, 0.4, mean, 1e-12)
	assert.Equal(t, 0.0, variance)
}
