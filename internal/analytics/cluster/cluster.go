// Package cluster implements the unsupervised clustering engine: k-means with
// k-means++ seeding, DBSCAN, and the elbow / silhouette model-selection helpers.
//
// Every entry point validates its dataset (non-empty, consistent dimensionality)
// and never mutates caller-owned vectors. Randomness is drawn only from the
// *rand.Rand passed in, so a seeded source makes results reproducible.
package cluster

import (
	"gonum.org/v1/gonum/floats"

	"github.com/vitalsight/vitalsight/internal/analytics/distance"
)

// Noise is the DBSCAN label for points that belong to no cluster.
const Noise = -1

// Cluster is one group of a partition.
type Cluster struct {
	ID       int       `json:"id"`
	Centroid []float64 `json:"centroid"`
	Members  []int     `json:"members"`
	// Variance is the mean squared distance from the members to the centroid.
	Variance float64 `json:"variance"`
}

// Size returns the member count.
func (c Cluster) Size() int {
	return len(c.Members)
}

// buildClusters groups indices by label (labels < 0 are skipped) and computes
// each group's centroid and variance. Groups are ordered by label.
func buildClusters(data [][]float64, labels []int, numClusters int) []Cluster {
	dims := len(data[0])
	clusters := make([]Cluster, numClusters)
	for id := range clusters {
		clusters[id] = Cluster{
			ID:       id,
			Centroid: make([]float64, dims),
			Members:  []int{},
		}
	}
	for i, label := range labels {
		if label < 0 {
			continue
		}
		clusters[label].Members = append(clusters[label].Members, i)
		floats.Add(clusters[label].Centroid, data[i])
	}
	for id := range clusters {
		c := &clusters[id]
		if len(c.Members) == 0 {
			continue
		}
		floats.Scale(1/float64(len(c.Members)), c.Centroid)
		sum := 0.0
		for _, m := range c.Members {
			sum += distance.SquaredEuclidean(data[m], c.Centroid)
		}
		c.Variance = sum / float64(len(c.Members))
	}
	return clusters
}

// nearest returns the index of the closest centroid and the squared distance to it.
// Ties go to the lowest index.
func nearest(point []float64, centroids [][]float64) (int, float64) {
	best := 0
	bestDist := distance.SquaredEuclidean(point, centroids[0])
	for c := 1; c < len(centroids); c++ {
		if d := distance.SquaredEuclidean(point, centroids[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}
