package anomaly

import (
	"math"

	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// IQRDetector detects anomalies using Interquartile Range (IQR) method
// IQR is robust to outliers compared to Z-Score
// Anomalies are points outside [Q1 - k*IQR, Q3 + k*IQR] where k is typically 1.5
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// Detect flags readings outside the IQR fences. Severity grades the distance
// past the nearer quartile, in IQR units, against the multiplier; when the
// IQR is zero every reading outside the fences is severe.
func (iqr *IQRDetector) Detect(data []DataPoint, config DetectorConfig) ([]Anomaly, error) {
	const op = "iqr"

	multiplier := config.IQRMultiplier
	if multiplier <= 0 {
		multiplier = 1.5
	}
	indices, values := present(data)
	cfg := config
	cfg.Threshold = multiplier
	if err := checkInput(op, values, cfg); err != nil {
		return nil, err
	}

	q1, q3, iqrValue := CalculateIQR(values)
	lower := q1 - multiplier*iqrValue
	upper := q3 + multiplier*iqrValue
	median := stats.Median(values)
	_, stdDev := stats.MeanStdDev(values)

	var results []Anomaly
	for k, v := range values {
		if v >= lower && v <= upper {
			continue
		}

		severity := SeveritySevere
		if iqrValue > 0 {
			distance := math.Max(q1-v, v-q3) / iqrValue
			severity = SeverityFor(distance, multiplier)
		}

		i := indices[k]
		results = append(results, Anomaly{
			Index:     i,
			Time:      data[i].Time,
			Value:     v,
			Expected:  median,
			Deviation: stats.ZScore(v, median, stdDev),
			Severity:  severity,
			Type:      typeOf(v, median),
			Range:     &Range{Min: lower, Max: upper},
			Algorithm: iqr.Name(),
		})
	}
	return results, nil
}

// CalculateIQR returns the index-based Q1, Q3 and their difference.
func CalculateIQR(values []float64) (q1, q3, iqr float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	q1, q3 = stats.Quartiles(values)
	return q1, q3, q3 - q1
}
