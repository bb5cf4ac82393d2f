// Package downsample reduces long vital-sign series to a target point count
// for display while keeping their visual shape.
package downsample

import (
	"math"
	"strings"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// Mode represents the downsampling mode
type Mode string

const (
	// ModeNone returns the series unchanged
	ModeNone Mode = "none"
	// ModeAuto picks an algorithm from the shape of the data
	ModeAuto Mode = "auto"
	// ModeLTTB uses Largest-Triangle-Three-Buckets
	ModeLTTB Mode = "lttb"
	// ModeMinMax keeps min and max values per bucket (preserves peaks/spikes)
	ModeMinMax Mode = "minmax"
	// ModeAverage replaces each bucket by its mean
	ModeAverage Mode = "avg"
	// ModeM4 keeps First, Min, Max, Last per bucket
	ModeM4 Mode = "m4"
)

// DefaultThreshold is the target point count when none is given
const DefaultThreshold = 1000

// ValidModes returns all valid downsampling modes
func ValidModes() []Mode {
	return []Mode{ModeNone, ModeAuto, ModeLTTB, ModeMinMax, ModeAverage, ModeM4}
}

// ParseMode resolves a case-insensitive mode name. Empty means ModeAuto.
func ParseMode(name string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(name)))
	if m == "" {
		return ModeAuto, nil
	}
	for _, valid := range ValidModes() {
		if m == valid {
			return m, nil
		}
	}
	return "", analytics.Errorf("downsample", analytics.ErrUnknownAlgorithm, "unknown mode %q", name)
}

// Result is a downsampled series and the algorithm that produced it.
type Result struct {
	Mode          Mode                        `json:"mode"`
	OriginalCount int                         `json:"original_count"`
	Points        []analytics.TimeSeriesPoint `json:"points"`
}

// Downsample reduces series to about threshold points. NaN readings are
// dropped first; a series already within the threshold is returned as is.
// Auto mode resolves to a concrete algorithm, reported in Result.Mode.
// Every mode except ModeAverage returns original readings.
func Downsample(series []analytics.TimeSeriesPoint, mode Mode, threshold int) (*Result, error) {
	const op = "downsample"

	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 2 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "threshold must be at least 2, got %d", threshold)
	}

	points := make([]analytics.TimeSeriesPoint, 0, len(series))
	for _, p := range series {
		if !math.IsNaN(p.Value) {
			points = append(points, p)
		}
	}
	res := &Result{Mode: mode, OriginalCount: len(series), Points: points}

	if mode == ModeNone || len(points) <= threshold {
		if mode == ModeAuto {
			res.Mode = ModeNone
		}
		return res, nil
	}
	if mode == ModeAuto {
		mode = detectBestAlgorithm(points)
		res.Mode = mode
	}

	var sampled []int
	switch mode {
	case ModeLTTB:
		sampled = lttb(points, threshold)
	case ModeMinMax:
		sampled = minmax(points, threshold)
	case ModeM4:
		sampled = m4(points, threshold)
	case ModeAverage:
		res.Points = average(points, threshold)
		return res, nil
	default:
		return nil, analytics.Errorf(op, analytics.ErrUnknownAlgorithm, "unknown mode %q", mode)
	}

	res.Points = make([]analytics.TimeSeriesPoint, len(sampled))
	for i, idx := range sampled {
		res.Points[i] = points[idx]
	}
	return res, nil
}

// detectBestAlgorithm selects MinMax for spiky data, M4 for moderately
// spiky data and LTTB for smooth data. Very large smooth series use Average.
func detectBestAlgorithm(points []analytics.TimeSeriesPoint) Mode {
	spikiness := calculateSpikiness(points)
	switch {
	case spikiness > 0.2:
		return ModeMinMax
	case len(points) > 100000:
		return ModeAverage
	case spikiness > 0.1:
		return ModeM4
	default:
		return ModeLTTB
	}
}

// calculateSpikiness returns a value in [0, 1] combining the share of points
// beyond two standard deviations with the share of steps larger than one.
func calculateSpikiness(points []analytics.TimeSeriesPoint) float64 {
	if len(points) < 10 {
		return 0
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	mean, stdDev := stats.MeanStdDev(values)
	if stdDev == 0 {
		return 0
	}

	spikes := 0
	steps := 0
	for i, v := range values {
		if math.Abs(v-mean) > 2*stdDev {
			spikes++
		}
		if i > 0 && math.Abs(v-values[i-1]) > stdDev {
			steps++
		}
	}

	absolute := float64(spikes) / float64(len(values))
	derivative := float64(steps) / float64(len(values)-1)

	// Steps weigh more since they dominate the rendered shape.
	return math.Min((absolute+1.5*derivative)/2.5, 1)
}

// lttb returns the indices kept by Largest-Triangle-Three-Buckets. The first
// and last points are always kept.
func lttb(data []analytics.TimeSeriesPoint, threshold int) []int {
	n := len(data)
	if threshold <= 2 {
		return []int{0, n - 1}
	}

	sampled := make([]int, 0, threshold)
	sampled = append(sampled, 0)

	bucketSize := float64(n-2) / float64(threshold-2)
	a := 0

	for i := 0; i < threshold-2; i++ {
		// Average of the next bucket
		avgStart := int(math.Floor(float64(i+1)*bucketSize)) + 1
		avgEnd := min(int(math.Floor(float64(i+2)*bucketSize))+1, n)

		avgX, avgY := 0.0, 0.0
		for j := avgStart; j < avgEnd; j++ {
			avgX += float64(j)
			avgY += data[j].Value
		}
		avgLen := float64(avgEnd - avgStart)
		avgX /= avgLen
		avgY /= avgLen

		rangeStart := int(math.Floor(float64(i)*bucketSize)) + 1
		rangeEnd := int(math.Floor(float64(i+1)*bucketSize)) + 1

		ax, ay := float64(a), data[a].Value
		maxArea := -1.0
		next := rangeStart
		for j := rangeStart; j < rangeEnd; j++ {
			area := math.Abs((ax-avgX)*(data[j].Value-ay)-(ax-float64(j))*(avgY-ay)) * 0.5
			if area > maxArea {
				maxArea = area
				next = j
			}
		}

		sampled = append(sampled, next)
		a = next
	}

	return append(sampled, n-1)
}

// buckets splits n points into count contiguous [start, end) ranges
func buckets(n, count int) [][2]int {
	count = max(count, 1)
	size := float64(n) / float64(count)
	out := make([][2]int, 0, count)
	for i := 0; i < count; i++ {
		start := int(float64(i) * size)
		end := min(int(float64(i+1)*size), n)
		if start < end {
			out = append(out, [2]int{start, end})
		}
	}
	return out
}

// extremes returns the indices of the minimum and maximum in data[start:end]
func extremes(data []analytics.TimeSeriesPoint, start, end int) (lo, hi int) {
	lo, hi = start, start
	for j := start + 1; j < end; j++ {
		if data[j].Value < data[lo].Value {
			lo = j
		}
		if data[j].Value > data[hi].Value {
			hi = j
		}
	}
	return lo, hi
}

// minmax keeps the minimum and maximum of threshold/2 buckets in time order
func minmax(data []analytics.TimeSeriesPoint, threshold int) []int {
	sampled := make([]int, 0, threshold)
	for _, b := range buckets(len(data), threshold/2) {
		lo, hi := extremes(data, b[0], b[1])
		if lo > hi {
			lo, hi = hi, lo
		}
		sampled = append(sampled, lo)
		if hi != lo {
			sampled = append(sampled, hi)
		}
	}
	return sampled
}

// m4 keeps first, min, max and last of threshold/4 buckets in time order
func m4(data []analytics.TimeSeriesPoint, threshold int) []int {
	sampled := make([]int, 0, threshold)
	for _, b := range buckets(len(data), threshold/4) {
		first, last := b[0], b[1]-1
		lo, hi := extremes(data, b[0], b[1])
		if lo > hi {
			lo, hi = hi, lo
		}
		prev := -1
		for _, idx := range []int{first, lo, hi, last} {
			if idx > prev {
				sampled = append(sampled, idx)
				prev = idx
			}
		}
	}
	return sampled
}

// average replaces each of threshold buckets by its mean, stamped with the
// time of the bucket's middle point
func average(data []analytics.TimeSeriesPoint, threshold int) []analytics.TimeSeriesPoint {
	out := make([]analytics.TimeSeriesPoint, 0, threshold)
	for _, b := range buckets(len(data), threshold) {
		sum := 0.0
		for j := b[0]; j < b[1]; j++ {
			sum += data[j].Value
		}
		count := b[1] - b[0]
		out = append(out, analytics.TimeSeriesPoint{
			Time:  data[b[0]+count/2].Time,
			Value: sum / float64(count),
		})
	}
	return out
}
