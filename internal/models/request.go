package models

import (
	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/neural"
)

// Zero-valued numeric fields fall back to the configured analytics defaults.

// StatisticsRequest represents a descriptive statistics request
type StatisticsRequest struct {
	Values []float64 `json:"values"`
}

// CorrelationRequest represents a Pearson correlation request
type CorrelationRequest struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// KMeansRequest represents a k-means clustering request
type KMeansRequest struct {
	Data          [][]float64 `json:"data"`
	K             int         `json:"k"`
	MaxIterations int         `json:"max_iterations,omitempty"`
	Tolerance     float64     `json:"tolerance,omitempty"`
	Seed          uint64      `json:"seed,omitempty"`
}

// DBSCANRequest represents a density clustering request
type DBSCANRequest struct {
	Data      [][]float64 `json:"data"`
	Epsilon   float64     `json:"epsilon,omitempty"`
	MinPoints int         `json:"min_points,omitempty"`
	Distance  string      `json:"distance,omitempty"` // euclidean, manhattan, cosine
}

// ElbowRequest represents a cluster-count selection request
type ElbowRequest struct {
	Data   [][]float64 `json:"data"`
	MaxK   int         `json:"max_k"`
	Trials int         `json:"trials,omitempty"`
	Seed   uint64      `json:"seed,omitempty"`
}

// PCARequest represents a principal component analysis request
type PCARequest struct {
	Data       [][]float64 `json:"data"`
	Components int         `json:"components"`
	Seed       uint64      `json:"seed,omitempty"`
}

// ForecastRequest represents a time-series forecast request
type ForecastRequest struct {
	Points         []analytics.TimeSeriesPoint `json:"points"`
	Method         string                      `json:"method,omitempty"` // sma, exponential, linear, holt_winters, auto
	Horizon        int                         `json:"horizon,omitempty"`
	Window         int                         `json:"window,omitempty"`
	Alpha          float64                     `json:"alpha,omitempty"`
	Beta           float64                     `json:"beta,omitempty"`
	Gamma          float64                     `json:"gamma,omitempty"`
	SeasonalPeriod int                         `json:"seasonal_period,omitempty"`
	Confidence     float64                     `json:"confidence,omitempty"`
	Interval       string                      `json:"interval,omitempty"` // Go duration, e.g. 24h; empty infers it
}

// DecomposeRequest represents a seasonal decomposition request
type DecomposeRequest struct {
	Points []analytics.TimeSeriesPoint `json:"points"`
	Period int                         `json:"period,omitempty"`
}

// AnomalyRequest represents an anomaly detection request
type AnomalyRequest struct {
	Points     []analytics.TimeSeriesPoint `json:"points"`
	Method     string                      `json:"method,omitempty"` // zscore, iqr, moving_avg
	Threshold  float64                     `json:"threshold,omitempty"`
	WindowSize int                         `json:"window_size,omitempty"`
}

// DownsampleRequest represents a series reduction request
type DownsampleRequest struct {
	Points    []analytics.TimeSeriesPoint `json:"points"`
	Mode      string                      `json:"mode,omitempty"` // auto, lttb, minmax, avg, m4, none
	Threshold int                         `json:"threshold,omitempty"`
}

// CreateNetworkRequest represents a request to build a new network
type CreateNetworkRequest struct {
	InputSize    int     `json:"input_size"`
	HiddenSizes  []int   `json:"hidden_sizes"`
	OutputSize   int     `json:"output_size"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Activation   string  `json:"activation,omitempty"`
	MinExamples  int     `json:"min_examples,omitempty"`
	Seed         uint64  `json:"seed,omitempty"`
}

// TrainRequest represents a training run request
type TrainRequest struct {
	Examples       []neural.Example `json:"examples"`
	Epochs         int              `json:"epochs,omitempty"`
	BatchSize      int              `json:"batch_size,omitempty"`
	ErrorThreshold float64          `json:"error_threshold,omitempty"`
	Seed           uint64           `json:"seed,omitempty"`
}

// PredictRequest represents a prediction request
type PredictRequest struct {
	Input   []float64 `json:"input"`
	Samples int       `json:"samples,omitempty"`
	Dropout float64   `json:"dropout,omitempty"`
	Seed    uint64    `json:"seed,omitempty"`
}
