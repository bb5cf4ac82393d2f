package cluster

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/distance"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// KMeansConfig holds configuration for k-means
type KMeansConfig struct {
	K             int     // Number of clusters
	MaxIterations int     // Cap on Lloyd iterations
	Tolerance     float64 // Stop once no centroid moves further than this

	Logger *logging.Logger // Optional; nil is silent
}

// DefaultKMeansConfig returns default k-means configuration
func DefaultKMeansConfig() KMeansConfig {
	return KMeansConfig{
		K:             3,
		MaxIterations: 100,
		Tolerance:     1e-4,
	}
}

// KMeansResult is the outcome of one k-means fit.
type KMeansResult struct {
	Assignments []int     `json:"assignments"`
	Clusters    []Cluster `json:"clusters"`
	Inertia     float64   `json:"inertia"`
	Iterations  int       `json:"iterations"`
	Converged   bool      `json:"converged"`
}

// Centroids returns the final centroid of every cluster, in cluster order.
func (r *KMeansResult) Centroids() [][]float64 {
	out := make([][]float64, len(r.Clusters))
	for i, c := range r.Clusters {
		out[i] = c.Centroid
	}
	return out
}

// Predict assigns x to the nearest final centroid.
func (r *KMeansResult) Predict(x []float64) (int, error) {
	if len(r.Clusters) == 0 {
		return 0, analytics.ErrNotTrained
	}
	if len(x) != len(r.Clusters[0].Centroid) {
		return 0, analytics.Errorf("kmeans predict", analytics.ErrDimensionMismatch,
			"got %d dimensions, expected %d", len(x), len(r.Clusters[0].Centroid))
	}
	idx, _ := nearest(x, r.Centroids())
	return idx, nil
}

// KMeans partitions data into cfg.K clusters using k-means++ seeding followed by
// Lloyd iterations. It stops when the largest centroid displacement falls below
// cfg.Tolerance or after cfg.MaxIterations, whichever comes first.
func KMeans(data [][]float64, cfg KMeansConfig, rng *rand.Rand) (*KMeansResult, error) {
	const op = "kmeans"

	if cfg.K <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "k must be positive, got %d", cfg.K)
	}
	if _, err := analytics.ValidateDataset(op, data); err != nil {
		return nil, err
	}
	if len(data) < cfg.K {
		return nil, analytics.Insufficient(op, cfg.K, len(data))
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 100
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-4
	}
	rng = analytics.OrDefault(rng)
	logger := logging.OrNop(cfg.Logger)

	centroids := seedPlusPlus(data, cfg.K, rng)
	assignments := make([]int, len(data))

	iterations := 0
	converged := false
	for iterations < cfg.MaxIterations {
		iterations++
		assign(data, centroids, assignments)

		updated := updateCentroids(data, assignments, cfg.K, rng)
		shift := 0.0
		for c := range centroids {
			shift = math.Max(shift, distance.Euclidean(centroids[c], updated[c]))
		}
		centroids = updated

		if shift < cfg.Tolerance {
			converged = true
			break
		}
	}

	// Labels must reflect the final centroids, not the ones from the last assignment step.
	inertia := assign(data, centroids, assignments)

	clusters := make([]Cluster, cfg.K)
	grouped := buildClusters(data, assignments, cfg.K)
	for c := range clusters {
		clusters[c] = grouped[c]
		clusters[c].Centroid = centroids[c]
		if n := len(grouped[c].Members); n > 0 {
			sum := 0.0
			for _, m := range grouped[c].Members {
				sum += distance.SquaredEuclidean(data[m], centroids[c])
			}
			clusters[c].Variance = sum / float64(n)
		}
	}

	logger.Debug("KMeans finished",
		"k", cfg.K,
		"points", len(data),
		"iterations", iterations,
		"converged", converged,
		"inertia", inertia)

	return &KMeansResult{
		Assignments: assignments,
		Clusters:    clusters,
		Inertia:     inertia,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// seedPlusPlus picks k initial centroids: the first uniformly at random, each
// following one with probability proportional to its squared distance from the
// nearest centroid chosen so far.
func seedPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), data[rng.IntN(n)]...))

	weights := make([]float64, n)
	for i := range data {
		weights[i] = distance.SquaredEuclidean(data[i], centroids[0])
	}

	for len(centroids) < k {
		next := sampleWeighted(weights, rng)
		centroid := append([]float64(nil), data[next]...)
		centroids = append(centroids, centroid)

		for i := range data {
			if d := distance.SquaredEuclidean(data[i], centroid); d < weights[i] {
				weights[i] = d
			}
		}
	}
	return centroids
}

// sampleWeighted draws an index from the cumulative distribution of weights.
// With all weights zero (duplicate points) it falls back to a uniform draw.
func sampleWeighted(weights []float64, rng *rand.Rand) int {
	total := floats.Sum(weights)
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	target := rng.Float64() * total
	cumulative := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		last = i
		if cumulative > target {
			return i
		}
	}
	return last
}

// assign labels every point with its nearest centroid and returns the inertia.
func assign(data [][]float64, centroids [][]float64, assignments []int) float64 {
	inertia := 0.0
	for i, point := range data {
		c, d := nearest(point, centroids)
		assignments[i] = c
		inertia += d
	}
	return inertia
}

// updateCentroids recomputes each centroid as the mean of its members.
// An empty cluster is reseeded with a uniformly random dataset point.
func updateCentroids(data [][]float64, assignments []int, k int, rng *rand.Rand) [][]float64 {
	dims := len(data[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	for i, c := range assignments {
		floats.Add(sums[c], data[i])
		counts[c]++
	}
	for c := range sums {
		if counts[c] == 0 {
			sums[c] = append(sums[c][:0], data[rng.IntN(len(data))]...)
			continue
		}
		floats.Scale(1/float64(counts[c]), sums[c])
	}
	return sums
}
