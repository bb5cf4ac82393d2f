// Package pca reduces dimensionality with principal component analysis. The
// covariance eigenvectors are extracted one at a time by power iteration, with
// deflation between components.
package pca

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// Config holds configuration for a PCA fit
type Config struct {
	Components    int     // Number of components to retain (1..d)
	Tolerance     float64 // Power iteration stops once the vector moves less than this
	MaxIterations int     // Power iteration cap per component

	Logger *logging.Logger
}

// DefaultConfig returns default PCA configuration
func DefaultConfig() Config {
	return Config{
		Components:    2,
		Tolerance:     1e-4,
		MaxIterations: 1000,
	}
}

// Component is one principal axis.
type Component struct {
	Vector            []float64 `json:"vector"`
	ExplainedVariance float64   `json:"explained_variance"`
}

// Result is a fitted PCA model together with the projected training data.
type Result struct {
	Components             []Component `json:"components"`
	ExplainedVariance      []float64   `json:"explained_variance"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
	Mean                   []float64   `json:"mean"`
	Transformed            [][]float64 `json:"transformed"`
}

// Fit centers data, builds its unbiased covariance matrix and extracts
// cfg.Components eigenvectors ordered by descending eigenvalue magnitude.
func Fit(data [][]float64, cfg Config, rng *rand.Rand) (*Result, error) {
	const op = "pca"

	dims, err := analytics.ValidateDataset(op, data)
	if err != nil {
		return nil, err
	}
	if cfg.Components <= 0 || cfg.Components > dims {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter,
			"components must be in [1, %d], got %d", dims, cfg.Components)
	}
	n := len(data)
	if n < 2 {
		return nil, analytics.Insufficient(op, 2, n)
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-4
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 1000
	}
	rng = analytics.OrDefault(rng)
	logger := logging.OrNop(cfg.Logger)

	flat := make([]float64, 0, n*dims)
	for _, row := range data {
		flat = append(flat, row...)
	}
	x := mat.NewDense(n, dims, flat)

	mean := make([]float64, dims)
	for j := range mean {
		mean[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}

	cov := mat.NewSymDense(dims, nil)
	stat.CovarianceMatrix(cov, x, nil)

	total := 0.0
	for i := 0; i < dims; i++ {
		total += cov.At(i, i)
	}

	components := make([]Component, 0, cfg.Components)
	for c := 0; c < cfg.Components; c++ {
		vector, value, iterations := powerIteration(cov, cfg.Tolerance, cfg.MaxIterations, rng)
		components = append(components, Component{Vector: vector, ExplainedVariance: value})

		// Remove the found direction so the next pass converges to the next eigenvalue.
		cov.SymRankOne(cov, -value, mat.NewVecDense(dims, vector))

		logger.Debug("PCA component extracted",
			"component", c,
			"eigenvalue", value,
			"iterations", iterations)
	}

	sort.SliceStable(components, func(i, j int) bool {
		return math.Abs(components[i].ExplainedVariance) > math.Abs(components[j].ExplainedVariance)
	})

	res := &Result{
		Components:             components,
		ExplainedVariance:      make([]float64, len(components)),
		ExplainedVarianceRatio: make([]float64, len(components)),
		Mean:                   mean,
	}
	for i, c := range components {
		res.ExplainedVariance[i] = c.ExplainedVariance
		if total > 0 {
			res.ExplainedVarianceRatio[i] = c.ExplainedVariance / total
		}
	}
	res.Transformed = res.project(data)
	return res, nil
}

// powerIteration finds the dominant eigenpair of a. It returns the unit
// eigenvector, its Rayleigh quotient and the number of iterations used.
func powerIteration(a *mat.SymDense, tol float64, maxIter int, rng *rand.Rand) ([]float64, float64, int) {
	dims, _ := a.Dims()

	v := mat.NewVecDense(dims, nil)
	for i := 0; i < dims; i++ {
		v.SetVec(i, rng.Float64()*2-1)
	}
	if norm := mat.Norm(v, 2); norm > 0 {
		v.ScaleVec(1/norm, v)
	} else {
		v.SetVec(0, 1)
	}

	w := mat.NewVecDense(dims, nil)
	diff := mat.NewVecDense(dims, nil)
	iterations := 0
	for iterations < maxIter {
		iterations++
		w.MulVec(a, v)
		norm := mat.Norm(w, 2)
		if norm == 0 {
			// v lies in the null space: eigenvalue zero.
			break
		}
		w.ScaleVec(1/norm, w)

		diff.SubVec(w, v)
		moved := mat.Norm(diff, 2)
		diff.AddVec(w, v)
		flipped := mat.Norm(diff, 2)

		v.CopyVec(w)
		if moved < tol || flipped < tol {
			break
		}
	}

	av := mat.NewVecDense(dims, nil)
	av.MulVec(a, v)
	value := mat.Dot(v, av)

	vector := make([]float64, dims)
	for i := range vector {
		vector[i] = v.AtVec(i)
	}
	orient(vector)
	return vector, value, iterations
}

// orient flips the sign of v so its largest-magnitude entry is positive.
// Eigenvectors are defined up to sign; this keeps results comparable across runs.
func orient(v []float64) {
	largest := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[largest]) {
			largest = i
		}
	}
	if v[largest] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

// Transform projects data onto the fitted components.
func (r *Result) Transform(data [][]float64) ([][]float64, error) {
	dims, err := analytics.ValidateDataset("pca transform", data)
	if err != nil {
		return nil, err
	}
	if dims != len(r.Mean) {
		return nil, analytics.Errorf("pca transform", analytics.ErrDimensionMismatch,
			"got %d dimensions, model has %d", dims, len(r.Mean))
	}
	return r.project(data), nil
}

// InverseTransform maps projected scores back into the original space.
// With fewer components than dimensions the reconstruction is approximate.
func (r *Result) InverseTransform(projected [][]float64) ([][]float64, error) {
	c, err := analytics.ValidateDataset("pca inverse transform", projected)
	if err != nil {
		return nil, err
	}
	if c != len(r.Components) {
		return nil, analytics.Errorf("pca inverse transform", analytics.ErrDimensionMismatch,
			"got %d scores, model has %d components", c, len(r.Components))
	}

	scores := mat.NewDense(len(projected), c, flatten(projected))
	var out mat.Dense
	out.Mul(scores, r.componentMatrix().T())

	rows, dims := out.Dims()
	result := make([][]float64, rows)
	for i := range result {
		row := mat.Row(nil, i, &out)
		for j := 0; j < dims; j++ {
			row[j] += r.Mean[j]
		}
		result[i] = row
	}
	return result, nil
}

// project centers data with the stored mean and multiplies by the component matrix.
func (r *Result) project(data [][]float64) [][]float64 {
	dims := len(r.Mean)
	centered := make([]float64, 0, len(data)*dims)
	for _, row := range data {
		for j, v := range row {
			centered = append(centered, v-r.Mean[j])
		}
	}

	var out mat.Dense
	out.Mul(mat.NewDense(len(data), dims, centered), r.componentMatrix())

	result := make([][]float64, len(data))
	for i := range result {
		result[i] = mat.Row(nil, i, &out)
	}
	return result
}

// componentMatrix returns the d×c matrix whose columns are the components.
func (r *Result) componentMatrix() *mat.Dense {
	dims := len(r.Mean)
	w := mat.NewDense(dims, len(r.Components), nil)
	for j, c := range r.Components {
		w.SetCol(j, c.Vector)
	}
	return w
}

func flatten(data [][]float64) []float64 {
	out := make([]float64, 0, len(data)*len(data[0]))
	for _, row := range data {
		out = append(out, row...)
	}
	return out
}
