package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsight/vitalsight/internal/analytics/neural"
	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/metrics"
	"github.com/vitalsight/vitalsight/internal/models"
)

func newTestNetworkService(maxNetworks int) *NetworkService {
	cfg := config.DefaultConfig().Analytics
	cfg.Seed = 21
	cfg.Network.MaxNetworks = maxNetworks
	return NewNetworkService(logging.NewNop(), cfg, metrics.NewRecorder())
}

func orExamples() []neural.Example {
	return []neural.Example{
		{Input: []float64{0, 0}, Target: []float64{0}},
		{Input: []float64{0, 1}, Target: []float64{1}},
		{Input: []float64{1, 0}, Target: []float64{1}},
		{Input: []float64{1, 1}, Target: []float64{1}},
	}
}

func createOR(t *testing.T, svc *NetworkService) string {
	t.Helper()
	resp, err := svc.Create(context.Background(), models.CreateNetworkRequest{
		InputSize:    2,
		HiddenSizes:  []int{4},
		OutputSize:   1,
		LearningRate: 0.5,
		MinExamples:  4,
	})
	require.NoError(t, err)
	return resp.ID
}

func TestNetworkService_CreateAndGet(t *testing.T) {
	svc := newTestNetworkService(0)
	id := createOR(t, svc)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.False(t, got.Trained)
	assert.Equal(t, neural.Sigmoid, got.Config.Activation)
	assert.Equal(t, []int{4}, got.Config.HiddenSizes)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	requireCode(t, err, CodeModelNotFound)
	_, err = svc.Get(context.Background(), "4f1c9b0e-6c8e-4d1e-9a43-0d6d0c1e2b3a")
	requireCode(t, err, CodeModelNotFound)
}

func TestNetworkService_CreateRejectsBadConfig(t *testing.T) {
	svc := newTestNetworkService(0)

	_, err := svc.Create(context.Background(), models.CreateNetworkRequest{InputSize: 0, OutputSize: 1})
	requireCode(t, err, CodeInvalidParameter)

	_, err = svc.Create(context.Background(), models.CreateNetworkRequest{InputSize: 2, OutputSize: 1, Activation: "softplus"})
	requireCode(t, err, CodeInvalidParameter)
}

func TestNetworkService_TrainAndPredict(t *testing.T) {
	svc := newTestNetworkService(0)
	id := createOR(t, svc)

	_, err := svc.Predict(context.Background(), id, models.PredictRequest{Input: []float64{1, 0}})
	requireCode(t, err, CodeNotTrained)

	res, err := svc.Train(context.Background(), id, models.TrainRequest{
		Examples:  orExamples(),
		Epochs:    3000,
		BatchSize: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, id, res.ID)
	assert.True(t, res.Converged)

	for _, ex := range orExamples() {
		pred, err := svc.Predict(context.Background(), id, models.PredictRequest{Input: ex.Input})
		require.NoError(t, err)
		assert.InDelta(t, ex.Target[0], pred.Output[0], 0.2)
		assert.Equal(t, 0.0, pred.Uncertainty)
	}

	pred, err := svc.Predict(context.Background(), id, models.PredictRequest{Input: []float64{1, 0}, Dropout: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 30, pred.Samples)

	_, err = svc.Predict(context.Background(), id, models.PredictRequest{Input: []float64{1}})
	requireCode(t, err, CodeDimensionMismatch)
}

func TestNetworkService_TrainTooFewExamples(t *testing.T) {
	svc := newTestNetworkService(0)
	id := createOR(t, svc)

	_, err := svc.Train(context.Background(), id, models.TrainRequest{Examples: orExamples()[:2]})
	requireCode(t, err, CodeInsufficientData)

	got, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, got.Trained)
}

func TestNetworkService_ExportImport(t *testing.T) {
	svc := newTestNetworkService(0)
	id := createOR(t, svc)
	_, err := svc.Train(context.Background(), id, models.TrainRequest{Examples: orExamples(), Epochs: 200, BatchSize: 4})
	require.NoError(t, err)

	input := models.PredictRequest{Input: []float64{0, 1}}
	want, err := svc.Predict(context.Background(), id, input)
	require.NoError(t, err)

	for _, compressed := range []bool{false, true} {
		blob, err := svc.Export(context.Background(), id, compressed)
		require.NoError(t, err)
		if !compressed {
			assert.Equal(t, byte('{'), blob[0])
		}

		imported, err := svc.Import(context.Background(), blob)
		require.NoError(t, err)
		assert.NotEqual(t, id, imported.ID)
		assert.True(t, imported.Trained)

		got, err := svc.Predict(context.Background(), imported.ID, input)
		require.NoError(t, err)
		assert.InDeltaSlice(t, want.Output, got.Output, 1e-12)
	}

	_, err = svc.Import(context.Background(), nil)
	requireCode(t, err, CodeInvalidParameter)
	_, err = svc.Import(context.Background(), []byte("{not json"))
	requireCode(t, err, CodeInvalidParameter)
}

func TestNetworkService_ListDeleteAndCapacity(t *testing.T) {
	svc := newTestNetworkService(2)
	first := createOR(t, svc)
	second := createOR(t, svc)

	_, err := svc.Create(context.Background(), models.CreateNetworkRequest{InputSize: 1, OutputSize: 1})
	requireCode(t, err, CodeCapacityExceeded)

	list := svc.List(context.Background())
	require.Len(t, list.Networks, 2)
	ids := []string{list.Networks[0].ID, list.Networks[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)

	require.NoError(t, svc.Delete(context.Background(), first))
	requireCode(t, svc.Delete(context.Background(), first), CodeModelNotFound)
	assert.Len(t, svc.List(context.Background()).Networks, 1)

	createOR(t, svc)
}

func TestNetworkService_ConcurrentTraining(t *testing.T) {
	svc := newTestNetworkService(0)
	id := createOR(t, svc)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Train(context.Background(), id, models.TrainRequest{Examples: orExamples(), Epochs: 20, BatchSize: 2})
			errs <- err
			_, err = svc.Predict(context.Background(), id, models.PredictRequest{Input: []float64{1, 1}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
