// Package anomaly flags unusual readings in a time series. Every detector
// compares each reading with a baseline and grades its deviation into
// mild, moderate and severe tiers by multiples of the configured threshold.
//
// Readings whose value is NaN are treated as missing: they take no part in
// the baseline and are never flagged.
package anomaly

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// AnomalyType represents the type of anomaly detected
type AnomalyType string

const (
	AnomalyTypeSpike AnomalyType = "spike" // Above the expected range
	AnomalyTypeDrop  AnomalyType = "drop"  // Below the expected range
)

// Severity grades how far past the threshold a reading lies.
type Severity string

const (
	SeverityMild     Severity = "mild"     // >= 1× threshold
	SeverityModerate Severity = "moderate" // >= 1.5× threshold
	SeveritySevere   Severity = "severe"   // >= 2× threshold
)

// SeverityFor grades a deviation against threshold. Deviations below the
// threshold have no severity.
func SeverityFor(deviation, threshold float64) Severity {
	d := math.Abs(deviation)
	switch {
	case d >= 2*threshold:
		return SeveritySevere
	case d >= 1.5*threshold:
		return SeverityModerate
	case d >= threshold:
		return SeverityMild
	default:
		return ""
	}
}

// Range represents expected value range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// Anomaly is one flagged reading. It is derived on every call and never stored.
type Anomaly struct {
	Index     int         `json:"index"`
	Time      time.Time   `json:"time"`
	Value     float64     `json:"value"`
	Expected  float64     `json:"expected"`  // Baseline value the reading was compared with
	Deviation float64     `json:"deviation"` // Signed distance from Expected in baseline std units
	Severity  Severity    `json:"severity"`
	Type      AnomalyType `json:"type"`
	Range     *Range      `json:"range,omitempty"`
	Algorithm string      `json:"algorithm"`
}

// DetectorConfig holds configuration for anomaly detection
type DetectorConfig struct {
	// Threshold in standard deviations for zscore and moving_avg
	Threshold float64

	// Multiplier k for the IQR fences [q1 - k·iqr, q3 + k·iqr]
	IQRMultiplier float64

	// WindowSize for the moving_avg baseline
	WindowSize int

	// MinDataPoints minimum number of present readings required
	MinDataPoints int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:     2.5,
		IQRMultiplier: 1.5,
		WindowSize:    7,
		MinDataPoints: 3,
	}
}

// AnomalyDetector interface for all anomaly detection algorithms
type AnomalyDetector interface {
	// Name returns the algorithm name
	Name() string

	// Detect returns the flagged readings in index order
	Detect(data []DataPoint, config DetectorConfig) ([]Anomaly, error)
}

// Registry holds available anomaly detectors
var detectorRegistry = make(map[string]AnomalyDetector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector AnomalyDetector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (AnomalyDetector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("%w: anomaly detector %q", analytics.ErrUnknownAlgorithm, name)
}

// ListDetectors returns the registered detector names in sorted order
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectAnomalies is a helper function to detect anomalies using specified algorithm
func DetectAnomalies(algorithm string, data []DataPoint, config DetectorConfig) ([]Anomaly, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}
	return detector.Detect(data, config)
}

// present returns the indices of non-NaN readings and their values.
func present(data []DataPoint) ([]int, []float64) {
	indices := make([]int, 0, len(data))
	values := make([]float64, 0, len(data))
	for i, dp := range data {
		if math.IsNaN(dp.Value) {
			continue
		}
		indices = append(indices, i)
		values = append(values, dp.Value)
	}
	return indices, values
}

// checkInput validates the threshold and the number of present readings.
func checkInput(op string, values []float64, config DetectorConfig) error {
	if config.Threshold <= 0 || math.IsNaN(config.Threshold) {
		return analytics.Errorf(op, analytics.ErrInvalidParameter, "threshold must be positive, got %v", config.Threshold)
	}
	need := max(config.MinDataPoints, 2)
	if len(values) < need {
		return analytics.Insufficient(op, need, len(values))
	}
	return nil
}

func typeOf(value, expected float64) AnomalyType {
	if value > expected {
		return AnomalyTypeSpike
	}
	return AnomalyTypeDrop
}
