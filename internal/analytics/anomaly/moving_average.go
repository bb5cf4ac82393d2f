package anomaly

import (
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// MovingAverageDetector compares each reading with the mean and standard
// deviation of its centered neighbourhood, excluding the reading itself.
// It suits trending series where a global baseline drifts.
type MovingAverageDetector struct{}

func init() {
	RegisterDetector("moving_avg", &MovingAverageDetector{})
}

// Name returns the algorithm name
func (ma *MovingAverageDetector) Name() string {
	return "moving_avg"
}

// Detect finds anomalies using moving average method. Windows without
// variation flag nothing.
func (ma *MovingAverageDetector) Detect(data []DataPoint, config DetectorConfig) ([]Anomaly, error) {
	indices, values := present(data)
	if err := checkInput("moving_avg", values, config); err != nil {
		return nil, err
	}

	windowSize := config.WindowSize
	if windowSize <= 0 {
		windowSize = 7
	}
	if windowSize > len(values) {
		windowSize = len(values)
	}
	half := max(windowSize/2, 1)

	var results []Anomaly
	neighbours := make([]float64, 0, 2*half)
	for k, v := range values {
		neighbours = neighbours[:0]
		for j := max(0, k-half); j <= min(len(values)-1, k+half); j++ {
			if j != k {
				neighbours = append(neighbours, values[j])
			}
		}

		localMean, localStdDev := stats.MeanStdDev(neighbours)
		score := stats.ZScore(v, localMean, localStdDev)
		severity := SeverityFor(score, config.Threshold)
		if severity == "" {
			continue
		}

		i := indices[k]
		results = append(results, Anomaly{
			Index:     i,
			Time:      data[i].Time,
			Value:     v,
			Expected:  localMean,
			Deviation: score,
			Severity:  severity,
			Type:      typeOf(v, localMean),
			Range: &Range{
				Min: localMean - config.Threshold*localStdDev,
				Max: localMean + config.Threshold*localStdDev,
			},
			Algorithm: ma.Name(),
		})
	}
	return results, nil
}
