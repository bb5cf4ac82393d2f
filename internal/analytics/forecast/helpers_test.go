package forecast

import (
	"math"
	"time"
)

// Common test data and helpers for all forecast tests

var (
	testBaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	testInterval = 24 * time.Hour
)

// generateLinearData creates test data with linear pattern: y = slope * x + intercept
func generateLinearData(n int, slope, intercept float64) []DataPoint {
	data := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: slope*float64(i) + intercept,
		}
	}
	return data
}

// generateSeasonalTestData creates a trendless sine wave around 50
func generateSeasonalTestData(n int, period int) []DataPoint {
	data := make([]DataPoint, n)
	for i := 0; i < n; i++ {
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: 50 + 10*math.Sin(2*math.Pi*float64(i%period)/float64(period)),
		}
	}
	return data
}

// generateConstantData creates n points all equal to value
func generateConstantData(n int, value float64) []DataPoint {
	return generateLinearData(n, 0, value)
}

func valuesOf(data []DataPoint) []float64 {
	out := make([]float64, len(data))
	for i, p := range data {
		out[i] = p.Value
	}
	return out
}
