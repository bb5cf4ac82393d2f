package models

import (
	"time"

	"github.com/vitalsight/vitalsight/internal/analytics/anomaly"
	"github.com/vitalsight/vitalsight/internal/analytics/cluster"
	"github.com/vitalsight/vitalsight/internal/analytics/neural"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Version     string   `json:"version"`
	Networks    int      `json:"networks"`
	MaxNetworks int      `json:"max_networks,omitempty"`
	Forecasters []string `json:"forecasters"`
	Detectors   []string `json:"detectors"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// CorrelationResponse represents a correlation result
type CorrelationResponse struct {
	Correlation float64 `json:"correlation"`
}

// KMeansResponse is a k-means result with its silhouette score
type KMeansResponse struct {
	*cluster.KMeansResult
	Silhouette float64 `json:"silhouette"`
}

// DBSCANResponse is a DBSCAN result with its noise points and silhouette score
type DBSCANResponse struct {
	*cluster.DBSCANResult
	Noise      []int   `json:"noise"`
	Silhouette float64 `json:"silhouette"`
}

// AnomalyResponse lists the flagged readings
type AnomalyResponse struct {
	Method    string            `json:"method"`
	Threshold float64           `json:"threshold"`
	Count     int               `json:"count"`
	Anomalies []anomaly.Anomaly `json:"anomalies"`
}

// NetworkResponse describes a network held by the service
type NetworkResponse struct {
	ID        string        `json:"id"`
	Config    neural.Config `json:"config"`
	Trained   bool          `json:"trained"`
	CreatedAt time.Time     `json:"created_at"`
}

// NetworkListResponse lists the networks held by the service
type NetworkListResponse struct {
	Networks []NetworkResponse `json:"networks"`
}

// TrainResponse represents the outcome of a training run
type TrainResponse struct {
	ID string `json:"id"`
	*neural.TrainResult
}
