package anomaly

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

func createTestDataPoints(values []float64) []DataPoint {
	points := make([]DataPoint, len(values))
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		points[i] = DataPoint{
			Time:  baseTime.Add(time.Duration(i) * 24 * time.Hour),
			Value: v,
		}
	}
	return points
}

// waveWithSpike returns a 30-point wave with index 15 replaced by a value
// five baseline standard deviations above the baseline mean.
func waveWithSpike() []float64 {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 10 + 2*math.Sin(float64(i)*0.7)
	}
	mean, stdDev := stats.MeanStdDev(values)
	values[15] = mean + 5*stdDev + 0.01
	return values
}

func TestZScoreDetector_FlagsInjectedSpike(t *testing.T) {
	data := createTestDataPoints(waveWithSpike())

	results, err := (&ZScoreDetector{}).Detect(data, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected exactly one anomaly, got %d", len(results))
	}

	a := results[0]
	if a.Index != 15 {
		t.Errorf("Expected anomaly at index 15, got %d", a.Index)
	}
	if !a.Time.Equal(data[15].Time) {
		t.Errorf("Expected time %v, got %v", data[15].Time, a.Time)
	}
	if a.Type != AnomalyTypeSpike {
		t.Errorf("Expected type spike, got %s", a.Type)
	}
	if a.Deviation < 2.5 {
		t.Errorf("Expected deviation >= 2.5, got %f", a.Deviation)
	}
	if a.Severity == "" {
		t.Error("Expected a severity tier")
	}
	if a.Algorithm != "zscore" {
		t.Errorf("Expected algorithm zscore, got %s", a.Algorithm)
	}
	if a.Range == nil || a.Value <= a.Range.Max {
		t.Errorf("Expected value above the expected range, got %+v", a.Range)
	}
}

func TestZScoreDetector_ConstantSeries(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 42
	}

	for _, name := range ListDetectors() {
		t.Run(name, func(t *testing.T) {
			results, err := DetectAnomalies(name, createTestDataPoints(values), DefaultConfig())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("Expected no anomalies in a constant series, got %d", len(results))
			}
		})
	}
}

func TestZScoreDetector_Drop(t *testing.T) {
	values := []float64{50, 51, 49, 50, 52, 48, 50, 51, 49, 50, 0, 50}
	results, err := (&ZScoreDetector{}).Detect(createTestDataPoints(values), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Index != 10 {
		t.Fatalf("Expected a single anomaly at index 10, got %+v", results)
	}
	if results[0].Type != AnomalyTypeDrop {
		t.Errorf("Expected type drop, got %s", results[0].Type)
	}
	if results[0].Deviation >= 0 {
		t.Errorf("Expected negative deviation, got %f", results[0].Deviation)
	}
}

func TestZScoreDetector_MissingValuesAreAbsent(t *testing.T) {
	values := waveWithSpike()
	values[3] = math.NaN()
	values[20] = math.NaN()

	results, err := (&ZScoreDetector{}).Detect(createTestDataPoints(values), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range results {
		if math.IsNaN(a.Value) {
			t.Errorf("Missing value flagged at index %d", a.Index)
		}
	}
	if len(results) != 1 || results[0].Index != 15 {
		t.Errorf("Expected the spike at its original index 15, got %+v", results)
	}
}

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		deviation float64
		want      Severity
	}{
		{2.4, ""},
		{2.5, SeverityMild},
		{-3.0, SeverityMild},
		{3.75, SeverityModerate},
		{4.9, SeverityModerate},
		{5.0, SeveritySevere},
		{-12, SeveritySevere},
	}

	for _, tt := range tests {
		if got := SeverityFor(tt.deviation, 2.5); got != tt.want {
			t.Errorf("SeverityFor(%v, 2.5) = %q, want %q", tt.deviation, got, tt.want)
		}
	}
}

func TestIQRDetector_Detect(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 100}
	results, err := (&IQRDetector{}).Detect(createTestDataPoints(values), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected one anomaly, got %d", len(results))
	}

	a := results[0]
	if a.Index != 11 || a.Type != AnomalyTypeSpike {
		t.Errorf("Expected spike at index 11, got index %d type %s", a.Index, a.Type)
	}
	// q1 = 4, q3 = 10, fences at -5 and 19
	if a.Range.Min != -5 || a.Range.Max != 19 {
		t.Errorf("Expected fences [-5, 19], got [%v, %v]", a.Range.Min, a.Range.Max)
	}
	if a.Expected != 6.5 {
		t.Errorf("Expected median 6.5, got %v", a.Expected)
	}
	// (100 - 10) / 6 = 15 IQRs past q3
	if a.Severity != SeveritySevere {
		t.Errorf("Expected severe, got %s", a.Severity)
	}
}

func TestIQRDetector_ZeroSpread(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5, 5, 9}
	results, err := (&IQRDetector{}).Detect(createTestDataPoints(values), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Index != 7 {
		t.Fatalf("Expected a single anomaly at index 7, got %+v", results)
	}
	if results[0].Severity != SeveritySevere {
		t.Errorf("Expected severe, got %s", results[0].Severity)
	}
}

func TestCalculateIQR(t *testing.T) {
	q1, q3, iqr := CalculateIQR([]float64{8, 1, 4, 2, 6, 3, 7, 5})
	if q1 != 3 || q3 != 7 || iqr != 4 {
		t.Errorf("Expected (3, 7, 4), got (%v, %v, %v)", q1, q3, iqr)
	}

	q1, q3, iqr = CalculateIQR(nil)
	if q1 != 0 || q3 != 0 || iqr != 0 {
		t.Errorf("Expected zeros for empty input, got (%v, %v, %v)", q1, q3, iqr)
	}
}

func TestMovingAverageDetector_FollowsTrend(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		sign := -1.0
		if i%2 == 1 {
			sign = 1
		}
		values[i] = 0.2*float64(i) + sign
	}
	values[10] = 20

	config := DefaultConfig()
	results, err := (&MovingAverageDetector{}).Detect(createTestDataPoints(values), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Index != 10 {
		t.Fatalf("Expected a single anomaly at index 10, got %+v", results)
	}
	if math.Abs(results[0].Expected-7.0/3) > 1e-9 {
		t.Errorf("Expected local mean 7/3, got %v", results[0].Expected)
	}
	if results[0].Severity != SeveritySevere {
		t.Errorf("Expected severe, got %s", results[0].Severity)
	}
}

func TestDetectors_InputErrors(t *testing.T) {
	short := createTestDataPoints([]float64{1, 2})
	enough := createTestDataPoints([]float64{1, 2, 3, 4})

	for _, name := range ListDetectors() {
		t.Run(name, func(t *testing.T) {
			_, err := DetectAnomalies(name, short, DefaultConfig())
			if !errors.Is(err, analytics.ErrInsufficientData) {
				t.Errorf("Expected ErrInsufficientData, got %v", err)
			}

			_, err = DetectAnomalies(name, createTestDataPoints([]float64{1, math.NaN(), math.NaN(), 2}), DefaultConfig())
			if !errors.Is(err, analytics.ErrInsufficientData) {
				t.Errorf("Expected ErrInsufficientData when missing values leave too few readings, got %v", err)
			}

			if name == "iqr" {
				return
			}
			config := DefaultConfig()
			config.Threshold = 0
			_, err = DetectAnomalies(name, enough, config)
			if !errors.Is(err, analytics.ErrInvalidParameter) {
				t.Errorf("Expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	want := []string{"iqr", "moving_avg", "zscore"}
	got := ListDetectors()
	if len(got) != len(want) {
		t.Fatalf("Expected detectors %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected detectors %v, got %v", want, got)
		}
	}

	if _, err := GetDetector("nope"); !errors.Is(err, analytics.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := DetectAnomalies("nope", nil, DefaultConfig()); !errors.Is(err, analytics.ErrUnknownAlgorithm) {
		t.Errorf("Expected ErrUnknownAlgorithm, got %v", err)
	}
}
