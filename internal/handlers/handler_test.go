package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/models"
	"github.com/vitalsight/vitalsight/internal/services"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	logger := logging.NewNop()
	cfg := config.DefaultConfig().Analytics
	cfg.Seed = 42
	h := New(logger, "test",
		services.NewAnalyticsService(logger, cfg, nil),
		services.NewNetworkService(logger, cfg, nil))

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Post("/v1/statistics", h.Statistics)
	app.Post("/v1/correlation", h.Correlation)
	app.Post("/v1/cluster/kmeans", h.KMeans)
	app.Post("/v1/cluster/dbscan", h.DBSCAN)
	app.Post("/v1/pca", h.PCA)
	app.Post("/v1/forecast", h.Forecast)
	app.Post("/v1/anomalies", h.Anomalies)
	app.Post("/v1/networks/import", h.ImportNetwork)
	app.Post("/v1/networks", h.CreateNetwork)
	app.Get("/v1/networks", h.ListNetworks)
	app.Get("/v1/networks/:id", h.GetNetwork)
	app.Delete("/v1/networks/:id", h.DeleteNetwork)
	app.Post("/v1/networks/:id/train", h.TrainNetwork)
	app.Post("/v1/networks/:id/predict", h.PredictNetwork)
	app.Get("/v1/networks/:id/export", h.ExportNetwork)
	app.Use(h.NotFound)
	return app
}

// do sends body (JSON-encoded unless it is already []byte) and returns the
// status and raw response body.
func do(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode(t *testing.T, raw []byte, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func TestHandler_Health(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, fiber.StatusOK, status)

	var resp models.HealthResponse
	decode(t, raw, &resp)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, 0, resp.Networks)
	assert.Equal(t, 256, resp.MaxNetworks)
	assert.Contains(t, resp.Detectors, "moving_avg")
	assert.Contains(t, resp.Forecasters, "holt_winters")

	status, _ = do(t, app, http.MethodPost, "/v1/networks", models.CreateNetworkRequest{
		InputSize:   2,
		HiddenSizes: []int{3},
		OutputSize:  1,
	})
	require.Equal(t, fiber.StatusCreated, status)

	_, raw = do(t, app, http.MethodGet, "/health", nil)
	decode(t, raw, &resp)
	assert.Equal(t, 1, resp.Networks)
}

func TestHandler_NotFound(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodGet, "/v1/unknown", nil)
	require.Equal(t, fiber.StatusNotFound, status)

	var resp models.ErrorResponse
	decode(t, raw, &resp)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "/v1/unknown", resp.Error.Path)
}

func TestHandler_Statistics(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodPost, "/v1/statistics", models.StatisticsRequest{Values: []float64{2, 4, 4, 4, 5, 5, 7, 9}})
	require.Equal(t, fiber.StatusOK, status)

	var resp struct {
		Count             int     `json:"count"`
		Mean              float64 `json:"mean"`
		StandardDeviation float64 `json:"standard_deviation"`
	}
	decode(t, raw, &resp)
	assert.Equal(t, 8, resp.Count)
	assert.InDelta(t, 5.0, resp.Mean, 1e-9)
	assert.InDelta(t, 2.0, resp.StandardDeviation, 1e-9)
}

func TestHandler_InvalidBody(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodPost, "/v1/statistics", []byte(`{"values":`))
	require.Equal(t, fiber.StatusBadRequest, status)

	var resp models.ErrorResponse
	decode(t, raw, &resp)
	assert.Equal(t, "INVALID_REQUEST", resp.Error.Code)
}

func TestHandler_KMeans(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodPost, "/v1/cluster/kmeans", models.KMeansRequest{
		Data: [][]float64{{0, 0}, {0, 1}, {10, 10}, {10, 11}},
		K:    2,
		Seed: 7,
	})
	require.Equal(t, fiber.StatusOK, status)

	var resp struct {
		Assignments []int   `json:"assignments"`
		Silhouette  float64 `json:"silhouette"`
	}
	decode(t, raw, &resp)
	require.Len(t, resp.Assignments, 4)
	assert.Equal(t, resp.Assignments[0], resp.Assignments[1])
	assert.NotEqual(t, resp.Assignments[0], resp.Assignments[2])
	assert.Greater(t, resp.Silhouette, 0.8)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "insufficient data",
			path:   "/v1/cluster/kmeans",
			body:   models.KMeansRequest{Data: [][]float64{{1}, {2}}, K: 3},
			status: fiber.StatusBadRequest,
			code:   services.CodeInsufficientData,
		},
		{
			name:   "dimension mismatch",
			path:   "/v1/cluster/kmeans",
			body:   models.KMeansRequest{Data: [][]float64{{1, 2}, {1}}, K: 1},
			status: fiber.StatusBadRequest,
			code:   services.CodeDimensionMismatch,
		},
		{
			name:   "invalid parameter",
			path:   "/v1/pca",
			body:   models.PCARequest{Data: [][]float64{{1, 2}, {3, 4}, {5, 7}}, Components: 5},
			status: fiber.StatusBadRequest,
			code:   services.CodeInvalidParameter,
		},
		{
			name:   "unknown distance",
			path:   "/v1/cluster/dbscan",
			body:   models.DBSCANRequest{Data: [][]float64{{1}, {2}}, Distance: "chebyshev"},
			status: fiber.StatusBadRequest,
			code:   services.CodeUnknownAlgorithm,
		},
		{
			name:   "unknown anomaly method",
			path:   "/v1/anomalies",
			body:   models.AnomalyRequest{Method: "magic"},
			status: fiber.StatusBadRequest,
			code:   services.CodeUnknownAlgorithm,
		},
		{
			name:   "correlation length mismatch",
			path:   "/v1/correlation",
			body:   models.CorrelationRequest{X: []float64{1, 2, 3}, Y: []float64{1, 2}},
			status: fiber.StatusBadRequest,
			code:   services.CodeDimensionMismatch,
		},
	}

	app := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := do(t, app, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, status)

			var resp models.ErrorResponse
			decode(t, raw, &resp)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHandler_NetworkLifecycle(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodPost, "/v1/networks", models.CreateNetworkRequest{
		InputSize:   2,
		HiddenSizes: []int{4},
		OutputSize:  1,
		MinExamples: 1,
		Seed:        3,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created models.NetworkResponse
	decode(t, raw, &created)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Trained)
	base := "/v1/networks/" + created.ID

	status, raw = do(t, app, http.MethodPost, base+"/predict", models.PredictRequest{Input: []float64{0, 1}})
	require.Equal(t, fiber.StatusConflict, status)
	var notTrained models.ErrorResponse
	decode(t, raw, &notTrained)
	assert.Equal(t, services.CodeNotTrained, notTrained.Error.Code)

	status, raw = do(t, app, http.MethodPost, base+"/train", map[string]interface{}{
		"examples": []map[string][]float64{
			{"input": {0, 0}, "target": {0}},
			{"input": {0, 1}, "target": {1}},
			{"input": {1, 0}, "target": {1}},
			{"input": {1, 1}, "target": {1}},
		},
		"epochs":     50,
		"batch_size": 4,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))

	status, raw = do(t, app, http.MethodPost, base+"/predict", models.PredictRequest{Input: []float64{1, 1}})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var pred struct {
		Output []float64 `json:"output"`
	}
	decode(t, raw, &pred)
	assert.Len(t, pred.Output, 1)

	status, raw = do(t, app, http.MethodPost, base+"/predict", models.PredictRequest{Input: []float64{1}})
	assert.Equal(t, fiber.StatusBadRequest, status, string(raw))

	status, raw = do(t, app, http.MethodGet, base, nil)
	require.Equal(t, fiber.StatusOK, status)
	var fetched models.NetworkResponse
	decode(t, raw, &fetched)
	assert.True(t, fetched.Trained)

	status, _ = do(t, app, http.MethodDelete, base, nil)
	assert.Equal(t, fiber.StatusNoContent, status)
	status, _ = do(t, app, http.MethodGet, base, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandler_NetworkExportImport(t *testing.T) {
	app := newTestApp(t)

	status, raw := do(t, app, http.MethodPost, "/v1/networks", models.CreateNetworkRequest{
		InputSize:   3,
		HiddenSizes: []int{5, 4},
		OutputSize:  2,
		Activation:  "tanh",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created models.NetworkResponse
	decode(t, raw, &created)

	for _, compressed := range []bool{false, true} {
		path := "/v1/networks/" + created.ID + "/export"
		if compressed {
			path += "?compressed=true"
		}
		status, blob := do(t, app, http.MethodGet, path, nil)
		require.Equal(t, fiber.StatusOK, status)
		require.NotEmpty(t, blob)

		status, raw := do(t, app, http.MethodPost, "/v1/networks/import", blob)
		require.Equal(t, fiber.StatusCreated, status, string(raw))
		var imported models.NetworkResponse
		decode(t, raw, &imported)
		assert.NotEqual(t, created.ID, imported.ID)
		assert.Equal(t, created.Config.Topology(), imported.Config.Topology())
	}

	status, raw = do(t, app, http.MethodGet, "/v1/networks", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list models.NetworkListResponse
	decode(t, raw, &list)
	assert.Len(t, list.Networks, 3)

	status, _ = do(t, app, http.MethodPost, "/v1/networks/import", []byte("not a network"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandler_UnknownNetwork(t *testing.T) {
	app := newTestApp(t)

	for _, id := range []string{"not-a-uuid", "6f1c2a52-52a4-4b8a-9a0e-7f3a1b2c3d4e"} {
		status, raw := do(t, app, http.MethodGet, "/v1/networks/"+id, nil)
		assert.Equal(t, fiber.StatusNotFound, status)
		var resp models.ErrorResponse
		decode(t, raw, &resp)
		assert.Equal(t, services.CodeModelNotFound, resp.Error.Code)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusBadRequest, statusFor(services.CodeInvalidParameter))
	assert.Equal(t, fiber.StatusNotFound, statusFor(services.CodeModelNotFound))
	assert.Equal(t, fiber.StatusConflict, statusFor(services.CodeNotTrained))
	assert.Equal(t, fiber.StatusTooManyRequests, statusFor(services.CodeCapacityExceeded))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(services.CodeInternal))
}
