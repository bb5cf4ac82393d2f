// Package distance provides the distance and similarity kernels used by clustering.
// Callers are expected to pass vectors of equal length; the clustering entry points
// validate datasets before any kernel runs.
package distance

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// Func measures the distance between two n-dimensional vectors.
type Func func(a, b []float64) float64

// Kernel names accepted by ByName.
const (
	NameEuclidean = "euclidean"
	NameManhattan = "manhattan"
	NameCosine    = "cosine"
)

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SquaredEuclidean returns the squared L2 distance, avoiding the square root.
func SquaredEuclidean(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Manhattan returns the L1 distance between a and b.
func Manhattan(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// CosineSimilarity returns a·b / (|a||b|). A zero-norm vector has similarity 0.
func CosineSimilarity(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	return math.Max(-1, math.Min(1, sim))
}

// CosineDistance returns 1 - CosineSimilarity(a, b).
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}

// ByName resolves a kernel by name; the empty name means Euclidean.
func ByName(name string) (Func, error) {
	switch name {
	case "", NameEuclidean:
		return Euclidean, nil
	case NameManhattan:
		return Manhattan, nil
	case NameCosine:
		return CosineDistance, nil
	default:
		return nil, fmt.Errorf("distance %q: %w", name, analytics.ErrUnknownAlgorithm)
	}
}
