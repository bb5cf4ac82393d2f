// Package analytics provides the types shared by the numeric analytics core:
// time-series points and series, dataset validation, the error kinds every
// algorithm reports, and the injectable random source.
package analytics

import (
	"math"
	"sort"
	"time"
)

// TimeSeriesPoint represents a single time-series data point with time and value.
// This is the common type used across all analytics packages (forecast, anomaly, etc.)
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is a chronologically sorted sequence of points.
// New points are merged in timestamp order; existing points are never overwritten.
type Series []TimeSeriesPoint

// NewSeries builds a sorted series from points in any order.
func NewSeries(points ...TimeSeriesPoint) Series {
	return Series(nil).AddData(points...)
}

// AddData merges points into the series and returns the re-sorted result.
// Points sharing a timestamp keep their insertion order.
func (s Series) AddData(points ...TimeSeriesPoint) Series {
	merged := make(Series, 0, len(s)+len(points))
	merged = append(merged, s...)
	merged = append(merged, points...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.Before(merged[j].Time)
	})
	return merged
}

// Values extracts just the values from the time series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Times extracts just the times from the time series
func (s Series) Times() []time.Time {
	times := make([]time.Time, len(s))
	for i, p := range s {
		times[i] = p.Time
	}
	return times
}

// Len returns the number of data points
func (s Series) Len() int {
	return len(s)
}

// Interval returns the spacing between the first two points, or zero.
func (s Series) Interval() time.Duration {
	if len(s) < 2 {
		return 0
	}
	return s[1].Time.Sub(s[0].Time)
}

// Mean calculates the mean of all values
func (s Series) Mean() float64 {
	if len(s) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range s {
		sum += p.Value
	}
	return sum / float64(len(s))
}

// StdDev calculates the population standard deviation of all values
func (s Series) StdDev() float64 {
	if len(s) == 0 {
		return 0
	}
	mean := s.Mean()
	sumSq := 0.0
	for _, p := range s {
		diff := p.Value - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(s)))
}

// ValidateDataset checks that data is non-empty and that every vector has the
// same length. It returns that common dimensionality.
func ValidateDataset(op string, data [][]float64) (int, error) {
	if len(data) == 0 {
		return 0, Insufficient(op, 1, 0)
	}
	dims := len(data[0])
	if dims == 0 {
		return 0, Errorf(op, ErrDimensionMismatch, "vectors must have at least one dimension")
	}
	for i, v := range data {
		if len(v) != dims {
			return 0, Errorf(op, ErrDimensionMismatch, "vector %d has %d dimensions, expected %d", i, len(v), dims)
		}
	}
	return dims, nil
}

// CloneDataset returns a deep copy so algorithms never alias caller input.
func CloneDataset(data [][]float64) [][]float64 {
	out := make([][]float64, len(data))
	for i, v := range data {
		out[i] = append([]float64(nil), v...)
	}
	return out
}
