package cluster

import (
	"math"
	"math/rand/v2"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/distance"
)

// ElbowResult holds the averaged inertia curve for k = 1..MaxK.
// Inertias[i] and Scores[i] belong to k = i+1.
type ElbowResult struct {
	Inertias []float64 `json:"inertias"`
	Scores   []float64 `json:"scores"`
	BestK    int       `json:"best_k"`
}

// Elbow runs k-means for every k in 1..maxK (capped at len(data)), averages the
// inertia over trials runs per k, and picks the k with the largest second
// difference I(k-1) - 2·I(k) + I(k+1). With fewer than three points on the
// curve no elbow exists and BestK is 1.
func Elbow(data [][]float64, maxK, trials int, cfg KMeansConfig, rng *rand.Rand) (*ElbowResult, error) {
	const op = "elbow"

	if maxK <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "max k must be positive, got %d", maxK)
	}
	if _, err := analytics.ValidateDataset(op, data); err != nil {
		return nil, err
	}
	if maxK > len(data) {
		maxK = len(data)
	}
	if trials <= 0 {
		trials = 3
	}
	rng = analytics.OrDefault(rng)

	inertias := make([]float64, maxK)
	for k := 1; k <= maxK; k++ {
		run := cfg
		run.K = k
		total := 0.0
		for t := 0; t < trials; t++ {
			res, err := KMeans(data, run, rng)
			if err != nil {
				return nil, err
			}
			total += res.Inertia
		}
		inertias[k-1] = total / float64(trials)
	}

	scores := make([]float64, maxK)
	bestK := 1
	bestScore := math.Inf(-1)
	for i := 1; i < maxK-1; i++ {
		scores[i] = inertias[i-1] - 2*inertias[i] + inertias[i+1]
		if scores[i] > bestScore {
			bestScore = scores[i]
			bestK = i + 1
		}
	}

	return &ElbowResult{
		Inertias: inertias,
		Scores:   scores,
		BestK:    bestK,
	}, nil
}

// SilhouetteSamples returns the silhouette of every point under labels, using
// Euclidean distance. Noise points (label < 0) and members of singleton
// clusters score 0, as does every point when fewer than two clusters exist.
func SilhouetteSamples(data [][]float64, labels []int) ([]float64, error) {
	const op = "silhouette"

	if _, err := analytics.ValidateDataset(op, data); err != nil {
		return nil, err
	}
	if len(labels) != len(data) {
		return nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
			"%d labels for %d points", len(labels), len(data))
	}

	members := make(map[int][]int)
	for i, l := range labels {
		if l >= 0 {
			members[l] = append(members[l], i)
		}
	}

	scores := make([]float64, len(data))
	if len(members) < 2 {
		return scores, nil
	}

	for i, own := range labels {
		if own < 0 || len(members[own]) < 2 {
			continue
		}

		a := meanDistance(data, i, members[own], true)
		b := math.Inf(1)
		for l, idx := range members {
			if l == own {
				continue
			}
			b = math.Min(b, meanDistance(data, i, idx, false))
		}

		if denom := math.Max(a, b); denom > 0 {
			scores[i] = (b - a) / denom
		}
	}
	return scores, nil
}

// Silhouette returns the mean silhouette over all non-noise points.
func Silhouette(data [][]float64, labels []int) (float64, error) {
	scores, err := SilhouetteSamples(data, labels)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	count := 0
	for i, s := range scores {
		if labels[i] < 0 {
			continue
		}
		sum += s
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// meanDistance averages the distance from point i to the given indices,
// skipping i itself when excludeSelf is set.
func meanDistance(data [][]float64, i int, indices []int, excludeSelf bool) float64 {
	sum := 0.0
	count := 0
	for _, j := range indices {
		if excludeSelf && j == i {
			continue
		}
		sum += distance.Euclidean(data[i], data[j])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
