// Package stats provides the statistical primitives used by every other
// analytics component. All functions are pure and O(n) (quantiles sort a copy).
// Variance and standard deviation are population statistics (÷n).
//
// Degenerate input never raises: empty slices, zero variance and mismatched
// lengths produce a neutral value (0) instead of an error or NaN.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for a slice of values.
type Summary struct {
	Count             int     `json:"count"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standard_deviation"`
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Q1                float64 `json:"q1"`
	Q3                float64 `json:"q3"`
	IQR               float64 `json:"iqr"`
}

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Variance returns the population variance of values.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(values, nil)
	return variance
}

// StandardDeviation returns sqrt(Variance(values)).
func StandardDeviation(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// MeanStdDev returns the mean and population standard deviation in one pass.
func MeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(values, nil)
	return mean, math.Sqrt(variance)
}

// sortedCopy returns an ascending copy; the input is not modified.
func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}

// Percentile returns sorted[floor(n*p)] clamped to the last index.
// Index-based, not interpolated, to stay consistent with Quartiles.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return indexQuantile(sortedCopy(values), p)
}

func indexQuantile(sorted []float64, p float64) float64 {
	idx := int(math.Floor(float64(len(sorted)) * p))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Quartiles returns q1 = sorted[floor(n*0.25)] and q3 = sorted[floor(n*0.75)].
func Quartiles(values []float64) (q1, q3 float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := sortedCopy(values)
	return indexQuantile(sorted, 0.25), indexQuantile(sorted, 0.75)
}

// Median returns the middle value, averaging the two middle values for even n.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return median(sortedCopy(values))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CalculateStatistics computes a Summary for values.
func CalculateStatistics(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := sortedCopy(values)
	mean, variance := stat.PopMeanVariance(values, nil)
	q1 := indexQuantile(sorted, 0.25)
	q3 := indexQuantile(sorted, 0.75)

	return Summary{
		Count:             len(values),
		Mean:              mean,
		Median:            median(sorted),
		Variance:          variance,
		StandardDeviation: math.Sqrt(variance),
		Min:               sorted[0],
		Max:               sorted[len(sorted)-1],
		Q1:                q1,
		Q3:                q3,
		IQR:               q3 - q1,
	}
}

// Correlation returns the Pearson coefficient of x and y, clamped to [-1, 1].
// Returns 0 when the lengths differ, when n < 2, or when either side has zero variance.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	if Variance(x) == 0 || Variance(y) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return Clamp(r, -1, 1)
}

// ZScore returns (value-mean)/stdDev, or 0 when stdDev is 0.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// Standardize returns the z-score of every value against the slice's own
// mean and population standard deviation.
func Standardize(values []float64) []float64 {
	mean, stdDev := MeanStdDev(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = ZScore(v, mean, stdDev)
	}
	return out
}

// Normalize rescales values to [0, 1] (min-max). A constant slice maps to zeros.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// Clamp restricts val to the range [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(val, hi))
}
