package neural

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// Example is one (input, target) training pair.
type Example struct {
	Input  []float64 `json:"input"`
	Target []float64 `json:"target"`
}

// TrainingSet is an ordered collection of examples; Train shuffles it per epoch.
type TrainingSet []Example

// TrainOptions controls a training run
type TrainOptions struct {
	Epochs         int     // Upper bound on passes over the training set
	BatchSize      int     // Examples per gradient step
	ErrorThreshold float64 // Stop once an epoch's mean squared error drops below this
}

// DefaultTrainOptions returns default training options
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Epochs:         1000,
		BatchSize:      32,
		ErrorThreshold: 0.001,
	}
}

// TrainResult summarises a training run.
type TrainResult struct {
	FinalError   float64   `json:"final_error"`
	ErrorHistory []float64 `json:"error_history"`
	Epochs       int       `json:"epochs"`
	Converged    bool      `json:"converged"`
}

// Train runs mini-batch gradient descent on a copy of params and returns the
// updated parameters. Each epoch visits the examples in a fresh random order;
// after every batch each weight moves by learningRate·gradient/batchLen.
func Train(cfg Config, params Parameters, set TrainingSet, opts TrainOptions, rng *rand.Rand) (Parameters, *TrainResult, error) {
	const op = "train"

	if err := cfg.Validate(); err != nil {
		return Parameters{}, nil, err
	}
	if !params.matches(cfg) {
		return Parameters{}, nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
			"parameters do not match topology %v", cfg.Topology())
	}
	minExamples := cfg.MinExamples
	if minExamples < 1 {
		minExamples = 1
	}
	if len(set) < minExamples {
		return Parameters{}, nil, analytics.Insufficient(op, minExamples, len(set))
	}
	for i, ex := range set {
		if len(ex.Input) != cfg.InputSize || len(ex.Target) != cfg.OutputSize {
			return Parameters{}, nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
				"example %d has %d inputs and %d targets, expected %d and %d",
				i, len(ex.Input), len(ex.Target), cfg.InputSize, cfg.OutputSize)
		}
	}

	defaults := DefaultTrainOptions()
	if opts.Epochs <= 0 {
		opts.Epochs = defaults.Epochs
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.ErrorThreshold <= 0 {
		opts.ErrorThreshold = defaults.ErrorThreshold
	}
	rng = analytics.OrDefault(rng)
	logger := logging.OrNop(cfg.Logger)

	p := params.Clone()
	grad := newLayout(p.layers)
	result := &TrainResult{ErrorHistory: make([]float64, 0, opts.Epochs)}

	for epoch := 1; epoch <= opts.Epochs; epoch++ {
		order := rng.Perm(len(set))
		sumSq := 0.0

		for start := 0; start < len(order); start += opts.BatchSize {
			end := min(start+opts.BatchSize, len(order))

			clear(grad.Weights)
			clear(grad.Biases)
			for _, idx := range order[start:end] {
				sumSq += backprop(cfg.Activation, p, grad, set[idx])
			}

			step := cfg.LearningRate / float64(end-start)
			floats.AddScaled(p.Weights, step, grad.Weights)
			floats.AddScaled(p.Biases, step, grad.Biases)
		}

		mse := sumSq / float64(len(set)*cfg.OutputSize)
		result.ErrorHistory = append(result.ErrorHistory, mse)
		result.FinalError = mse
		result.Epochs = epoch

		if mse < opts.ErrorThreshold {
			result.Converged = true
			logger.Debug("Training stopped early",
				"epoch", epoch,
				"mse", mse)
			break
		}
	}

	logger.Debug("Training finished",
		"examples", len(set),
		"epochs", result.Epochs,
		"final_error", result.FinalError)

	return p, result, nil
}

// backprop accumulates one example's gradient into grad and returns its
// summed squared error. Deltas follow error = target - output, so adding the
// gradient descends the squared error.
func backprop(act Activation, p, grad Parameters, ex Example) float64 {
	activations := forward(act, p, ex.Input, 0, nil)
	last := len(activations) - 1
	output := activations[last]

	delta := make([]float64, len(output))
	sumSq := 0.0
	for j, y := range output {
		e := ex.Target[j] - y
		sumSq += e * e
		delta[j] = e * act.Derivative(y)
	}

	for l := p.Transitions() - 1; l >= 0; l-- {
		deltaVec := mat.NewVecDense(len(delta), delta)
		inputVec := mat.NewVecDense(len(activations[l]), activations[l])

		gw := grad.WeightMatrix(l)
		gw.RankOne(gw, 1, deltaVec, inputVec)
		floats.Add(grad.Bias(l), delta)

		if l == 0 {
			break
		}
		prev := make([]float64, len(activations[l]))
		prevVec := mat.NewVecDense(len(prev), prev)
		prevVec.MulVec(p.WeightMatrix(l).T(), deltaVec)
		for i, y := range activations[l] {
			prev[i] *= act.Derivative(y)
		}
		delta = prev
	}
	return sumSq
}
