package anomaly

import (
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// ZScoreDetector flags readings whose z-score against the whole series'
// mean and population standard deviation reaches the threshold.
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// Detect finds anomalies using Z-Score method. A series without variation
// has no anomalies.
func (z *ZScoreDetector) Detect(data []DataPoint, config DetectorConfig) ([]Anomaly, error) {
	indices, values := present(data)
	if err := checkInput("zscore", values, config); err != nil {
		return nil, err
	}

	mean, stdDev := stats.MeanStdDev(values)
	if stdDev == 0 {
		return nil, nil
	}

	expectedRange := &Range{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	var results []Anomaly
	for k, v := range values {
		score := stats.ZScore(v, mean, stdDev)
		severity := SeverityFor(score, config.Threshold)
		if severity == "" {
			continue
		}
		i := indices[k]
		results = append(results, Anomaly{
			Index:     i,
			Time:      data[i].Time,
			Value:     v,
			Expected:  mean,
			Deviation: score,
			Severity:  severity,
			Type:      typeOf(v, mean),
			Range:     expectedRange,
			Algorithm: z.Name(),
		})
	}
	return results, nil
}
