package cluster

import (
	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/distance"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// unclassified marks points DBSCAN has not reached yet.
const unclassified = -2

// DBSCANConfig holds configuration for density clustering
type DBSCANConfig struct {
	Epsilon   float64       // Neighbourhood radius
	MinPoints int           // Neighbourhood size (including the point itself) that makes a core point
	Distance  distance.Func // Defaults to Euclidean

	Logger *logging.Logger
}

// DefaultDBSCANConfig returns default DBSCAN configuration
func DefaultDBSCANConfig() DBSCANConfig {
	return DBSCANConfig{
		Epsilon:   0.5,
		MinPoints: 4,
		Distance:  distance.Euclidean,
	}
}

// DBSCANResult is the outcome of one DBSCAN run.
type DBSCANResult struct {
	Labels      []int     `json:"labels"` // Cluster id per point, Noise (-1) for noise
	CorePoints  []int     `json:"core_points"`
	NumClusters int       `json:"num_clusters"`
	Clusters    []Cluster `json:"clusters"`
}

// NoisePoints returns the indices labelled Noise.
func (r *DBSCANResult) NoisePoints() []int {
	var out []int
	for i, l := range r.Labels {
		if l == Noise {
			out = append(out, i)
		}
	}
	return out
}

// DBSCAN clusters data by density. Points whose neighbourhood holds fewer than
// MinPoints members are provisionally noise; they become border points when a
// later cluster reaches them, but expansion never continues from a border point.
func DBSCAN(data [][]float64, cfg DBSCANConfig) (*DBSCANResult, error) {
	const op = "dbscan"

	if cfg.Epsilon <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "epsilon must be positive, got %v", cfg.Epsilon)
	}
	if cfg.MinPoints < 1 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "min points must be at least 1, got %d", cfg.MinPoints)
	}
	if _, err := analytics.ValidateDataset(op, data); err != nil {
		return nil, err
	}
	dist := cfg.Distance
	if dist == nil {
		dist = distance.Euclidean
	}

	n := len(data)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = unclassified
	}
	isCore := make([]bool, n)

	region := func(p int) []int {
		var neighbours []int
		for q := 0; q < n; q++ {
			if dist(data[p], data[q]) <= cfg.Epsilon {
				neighbours = append(neighbours, q)
			}
		}
		return neighbours
	}

	clusterID := 0
	for p := 0; p < n; p++ {
		if labels[p] != unclassified {
			continue
		}
		neighbours := region(p)
		if len(neighbours) < cfg.MinPoints {
			labels[p] = Noise
			continue
		}

		labels[p] = clusterID
		isCore[p] = true
		queue := append([]int(nil), neighbours...)
		for len(queue) > 0 {
			q := queue[0]
			queue = queue[1:]

			if labels[q] == Noise {
				// Border point: absorbed, not expanded.
				labels[q] = clusterID
				continue
			}
			if labels[q] != unclassified {
				continue
			}
			labels[q] = clusterID

			qNeighbours := region(q)
			if len(qNeighbours) >= cfg.MinPoints {
				isCore[q] = true
				queue = append(queue, qNeighbours...)
			}
		}
		clusterID++
	}

	var core []int
	for i, c := range isCore {
		if c {
			core = append(core, i)
		}
	}

	logging.OrNop(cfg.Logger).Debug("DBSCAN finished",
		"points", n,
		"clusters", clusterID,
		"core_points", len(core))

	return &DBSCANResult{
		Labels:      labels,
		CorePoints:  core,
		NumClusters: clusterID,
		Clusters:    buildClusters(data, labels, clusterID),
	}, nil
}
