// Package neural implements a small feed-forward network trained by mini-batch
// backpropagation.
//
// The model is split into an immutable Config (topology, learning rate and
// activation) and Parameters, which hold every weight and bias in two flat
// buffers. Train consumes Parameters and returns the updated set; Network
// bundles both for callers that want a single owner.
package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// Config describes a network topology and how it learns.
type Config struct {
	InputSize    int        `json:"input_size"`
	HiddenSizes  []int      `json:"hidden_sizes"`
	OutputSize   int        `json:"output_size"`
	LearningRate float64    `json:"learning_rate"`
	Activation   Activation `json:"activation"`

	// MinExamples is the smallest training set Train accepts.
	MinExamples int `json:"min_examples"`

	Logger *logging.Logger `json:"-"`
}

// DefaultConfig returns a 1-hidden-layer sigmoid network configuration.
func DefaultConfig(inputSize, outputSize int) Config {
	return Config{
		InputSize:    inputSize,
		HiddenSizes:  []int{8},
		OutputSize:   outputSize,
		LearningRate: 0.1,
		Activation:   Sigmoid,
		MinExamples:  10,
	}
}

// Topology returns the layer sizes [input, hidden..., output].
func (c Config) Topology() []int {
	layers := make([]int, 0, len(c.HiddenSizes)+2)
	layers = append(layers, c.InputSize)
	layers = append(layers, c.HiddenSizes...)
	return append(layers, c.OutputSize)
}

// Validate checks sizes, learning rate and activation.
func (c Config) Validate() error {
	const op = "network config"
	for i, size := range c.Topology() {
		if size <= 0 {
			return analytics.Errorf(op, analytics.ErrInvalidParameter, "layer %d has size %d", i, size)
		}
	}
	if c.LearningRate <= 0 || math.IsNaN(c.LearningRate) || math.IsInf(c.LearningRate, 0) {
		return analytics.Errorf(op, analytics.ErrInvalidParameter, "learning rate must be positive, got %v", c.LearningRate)
	}
	if c.MinExamples < 0 {
		return analytics.Errorf(op, analytics.ErrInvalidParameter, "min examples must not be negative, got %d", c.MinExamples)
	}
	if err := c.Activation.validate(); err != nil {
		return analytics.Errorf(op, analytics.ErrInvalidParameter, "%v", err)
	}
	return nil
}

// Parameters holds the weights and biases of every layer transition in two
// contiguous buffers. Transition l has a [size(l+1) × size(l)] row-major
// weight block and a size(l+1) bias block.
type Parameters struct {
	Weights []float64
	Biases  []float64

	layers   []int
	wOffsets []int
	bOffsets []int
}

// newLayout allocates zeroed parameters for the given topology.
func newLayout(layers []int) Parameters {
	p := Parameters{
		layers:   append([]int(nil), layers...),
		wOffsets: make([]int, len(layers)),
		bOffsets: make([]int, len(layers)),
	}
	w, b := 0, 0
	for l := 0; l < len(layers)-1; l++ {
		p.wOffsets[l] = w
		p.bOffsets[l] = b
		w += layers[l+1] * layers[l]
		b += layers[l+1]
	}
	p.wOffsets[len(layers)-1] = w
	p.bOffsets[len(layers)-1] = b
	p.Weights = make([]float64, w)
	p.Biases = make([]float64, b)
	return p
}

// NewParameters draws Xavier-uniform weights and biases for cfg's topology:
// every value of transition l lies in [-s, s] with s = sqrt(2/(fan_in+fan_out)).
func NewParameters(cfg Config, rng *rand.Rand) (Parameters, error) {
	if err := cfg.Validate(); err != nil {
		return Parameters{}, err
	}
	rng = analytics.OrDefault(rng)

	p := newLayout(cfg.Topology())
	for l := 0; l < p.Transitions(); l++ {
		scale := math.Sqrt(2 / float64(p.layers[l]+p.layers[l+1]))
		for i := p.wOffsets[l]; i < p.wOffsets[l+1]; i++ {
			p.Weights[i] = (rng.Float64()*2 - 1) * scale
		}
		for i := p.bOffsets[l]; i < p.bOffsets[l+1]; i++ {
			p.Biases[i] = (rng.Float64()*2 - 1) * scale
		}
	}
	return p, nil
}

// Transitions returns the number of weight layers.
func (p Parameters) Transitions() int {
	if len(p.layers) == 0 {
		return 0
	}
	return len(p.layers) - 1
}

// Layers returns a copy of the topology the parameters were laid out for.
func (p Parameters) Layers() []int {
	return append([]int(nil), p.layers...)
}

// WeightMatrix returns a [size(l+1) × size(l)] view over transition l's
// weights. Writes through the view modify the parameters.
func (p Parameters) WeightMatrix(l int) *mat.Dense {
	return mat.NewDense(p.layers[l+1], p.layers[l], p.Weights[p.wOffsets[l]:p.wOffsets[l+1]])
}

// Bias returns transition l's bias block, sharing storage with p.
func (p Parameters) Bias(l int) []float64 {
	return p.Biases[p.bOffsets[l]:p.bOffsets[l+1]]
}

// Weight returns the weight from neuron col of layer l to neuron row of layer l+1.
func (p Parameters) Weight(l, row, col int) float64 {
	return p.Weights[p.wOffsets[l]+row*p.layers[l]+col]
}

// Clone returns a deep copy.
func (p Parameters) Clone() Parameters {
	return Parameters{
		Weights:  append([]float64(nil), p.Weights...),
		Biases:   append([]float64(nil), p.Biases...),
		layers:   append([]int(nil), p.layers...),
		wOffsets: append([]int(nil), p.wOffsets...),
		bOffsets: append([]int(nil), p.bOffsets...),
	}
}

// matches reports whether p was laid out for cfg's topology.
func (p Parameters) matches(cfg Config) bool {
	layers := cfg.Topology()
	if len(layers) != len(p.layers) {
		return false
	}
	for i := range layers {
		if layers[i] != p.layers[i] {
			return false
		}
	}
	return true
}

// Forward runs input through the network and returns every layer's
// activations, input first and output last.
func Forward(cfg Config, p Parameters, input []float64) ([][]float64, error) {
	if !p.matches(cfg) {
		return nil, analytics.Errorf("forward", analytics.ErrDimensionMismatch, "parameters do not match topology %v", cfg.Topology())
	}
	if len(input) != cfg.InputSize {
		return nil, analytics.Errorf("forward", analytics.ErrDimensionMismatch,
			"input has %d values, expected %d", len(input), cfg.InputSize)
	}
	return forward(cfg.Activation, p, input, 0, nil), nil
}

// forward is the unchecked forward pass. With dropout > 0 each hidden unit is
// zeroed with that probability and survivors are scaled by 1/(1-dropout).
func forward(act Activation, p Parameters, input []float64, dropout float64, rng *rand.Rand) [][]float64 {
	activations := make([][]float64, 0, len(p.layers))
	activations = append(activations, append([]float64(nil), input...))

	for l := 0; l < p.Transitions(); l++ {
		out := make([]float64, p.layers[l+1])
		z := mat.NewVecDense(len(out), out)
		z.MulVec(p.WeightMatrix(l), mat.NewVecDense(len(activations[l]), activations[l]))

		bias := p.Bias(l)
		hidden := l < p.Transitions()-1
		for j := range out {
			out[j] = act.Apply(out[j] + bias[j])
			if hidden && dropout > 0 {
				if rng.Float64() < dropout {
					out[j] = 0
				} else {
					out[j] /= 1 - dropout
				}
			}
		}
		activations = append(activations, out)
	}
	return activations
}
