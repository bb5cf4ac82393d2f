package neural

import (
	"encoding/json"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/compression"
)

// Network owns a configuration and its trained parameters. It is not safe
// for concurrent use; callers serialise access or keep one per owner.
type Network struct {
	config  Config
	params  Parameters
	trained bool
}

// New builds a network with Xavier-initialised parameters.
func New(cfg Config, rng *rand.Rand) (*Network, error) {
	if cfg.Activation == "" {
		cfg.Activation = Sigmoid
	}
	cfg.HiddenSizes = append([]int(nil), cfg.HiddenSizes...)
	params, err := NewParameters(cfg, rng)
	if err != nil {
		return nil, err
	}
	return &Network{config: cfg, params: params}, nil
}

// Config returns the network configuration.
func (n *Network) Config() Config {
	cfg := n.config
	cfg.HiddenSizes = append([]int(nil), n.config.HiddenSizes...)
	return cfg
}

// Parameters returns a copy of the current weights and biases.
func (n *Network) Parameters() Parameters {
	return n.params.Clone()
}

// Trained reports whether Train has completed at least once.
func (n *Network) Trained() bool {
	return n.trained
}

// Train fits the network in place.
func (n *Network) Train(set TrainingSet, opts TrainOptions, rng *rand.Rand) (*TrainResult, error) {
	params, result, err := Train(n.config, n.params, set, opts, rng)
	if err != nil {
		return nil, err
	}
	n.params = params
	n.trained = true
	return result, nil
}

// PredictOptions controls Monte-Carlo prediction.
type PredictOptions struct {
	Samples int     // Forward passes to average; <= 0 means 1
	Dropout float64 // Hidden-unit drop probability per pass, in [0, 1)
}

// Prediction is the averaged output of one or more forward passes.
type Prediction struct {
	Output      []float64 `json:"output"`
	Uncertainty float64   `json:"uncertainty"`
	Confidence  float64   `json:"confidence"`
	Samples     int       `json:"samples"`
}

// Predict runs the forward pass opts.Samples times and averages the outputs.
// Uncertainty is the mean across outputs of the per-output sample variance;
// confidence is 1 - uncertainty clamped to [0, 1]. Without dropout every pass
// is identical and uncertainty is 0.
func (n *Network) Predict(input []float64, opts PredictOptions, rng *rand.Rand) (*Prediction, error) {
	const op = "predict"

	if !n.trained {
		return nil, analytics.ErrNotTrained
	}
	if len(input) != n.config.InputSize {
		return nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
			"input has %d values, expected %d", len(input), n.config.InputSize)
	}
	if opts.Dropout < 0 || opts.Dropout >= 1 || math.IsNaN(opts.Dropout) {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "dropout must be in [0, 1), got %v", opts.Dropout)
	}
	samples := opts.Samples
	if samples <= 0 {
		samples = 1
	}
	if opts.Dropout > 0 {
		rng = analytics.OrDefault(rng)
	}

	outputs := make([][]float64, n.config.OutputSize)
	for j := range outputs {
		outputs[j] = make([]float64, samples)
	}
	for s := 0; s < samples; s++ {
		activations := forward(n.config.Activation, n.params, input, opts.Dropout, rng)
		for j, v := range activations[len(activations)-1] {
			outputs[j][s] = v
		}
	}

	pred := &Prediction{
		Output:  make([]float64, n.config.OutputSize),
		Samples: samples,
	}
	for j, values := range outputs {
		mean, variance := passStats(values)
		pred.Output[j] = mean
		pred.Uncertainty += variance
	}
	pred.Uncertainty /= float64(n.config.OutputSize)
	pred.Confidence = math.Max(0, math.Min(1, 1-pred.Uncertainty))
	return pred, nil
}

// passStats returns the mean and sample variance of the Monte-Carlo
// outputs. A single pass has no spread.
func passStats(values []float64) (mean, variance float64) {
	if len(values) < 2 {
		return stat.Mean(values, nil), 0
	}
	return stat.MeanVariance(values, nil)
}

// Snapshot is the serialised form of a network: configuration, per-layer
// weight matrices and bias vectors, and the trained flag.
type Snapshot struct {
	Config  Config        `json:"config"`
	Weights [][][]float64 `json:"weights"`
	Biases  [][]float64   `json:"biases"`
	Trained bool          `json:"trained"`
}

// Snapshot captures the network state.
func (n *Network) Snapshot() Snapshot {
	s := Snapshot{
		Config:  n.Config(),
		Weights: make([][][]float64, n.params.Transitions()),
		Biases:  make([][]float64, n.params.Transitions()),
		Trained: n.trained,
	}
	for l := range s.Weights {
		rows, cols := n.params.layers[l+1], n.params.layers[l]
		s.Weights[l] = make([][]float64, rows)
		for r := 0; r < rows; r++ {
			s.Weights[l][r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				s.Weights[l][r][c] = n.params.Weight(l, r, c)
			}
		}
		s.Biases[l] = append([]float64(nil), n.params.Bias(l)...)
	}
	return s
}

// FromSnapshot rebuilds a network, checking every block against the topology.
func FromSnapshot(s Snapshot) (*Network, error) {
	const op = "import"

	cfg := s.Config
	if cfg.Activation == "" {
		cfg.Activation = Sigmoid
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := newLayout(cfg.Topology())
	if len(s.Weights) != p.Transitions() || len(s.Biases) != p.Transitions() {
		return nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
			"snapshot has %d weight and %d bias layers, topology needs %d",
			len(s.Weights), len(s.Biases), p.Transitions())
	}
	for l := 0; l < p.Transitions(); l++ {
		rows, cols := p.layers[l+1], p.layers[l]
		if len(s.Weights[l]) != rows || len(s.Biases[l]) != rows {
			return nil, analytics.Errorf(op, analytics.ErrDimensionMismatch, "layer %d must have %d rows", l, rows)
		}
		w := p.WeightMatrix(l)
		for r := 0; r < rows; r++ {
			if len(s.Weights[l][r]) != cols {
				return nil, analytics.Errorf(op, analytics.ErrDimensionMismatch,
					"layer %d row %d has %d columns, expected %d", l, r, len(s.Weights[l][r]), cols)
			}
			w.SetRow(r, s.Weights[l][r])
		}
		copy(p.Bias(l), s.Biases[l])
	}
	return &Network{config: cfg, params: p, trained: s.Trained}, nil
}

// Export serialises the network as JSON.
func (n *Network) Export() ([]byte, error) {
	return json.Marshal(n.Snapshot())
}

// Import reconstructs a network from Export output.
func Import(data []byte) (*Network, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, analytics.Errorf("import", analytics.ErrInvalidParameter, "decode snapshot: %v", err)
	}
	return FromSnapshot(s)
}

// ExportCompressed serialises the network as JSON sealed with algo.
func (n *Network) ExportCompressed(algo compression.Algorithm) ([]byte, error) {
	data, err := n.Export()
	if err != nil {
		return nil, err
	}
	return compression.Seal(algo, data)
}

// ImportCompressed reverses ExportCompressed.
func ImportCompressed(blob []byte) (*Network, error) {
	data, _, err := compression.Open(blob)
	if err != nil {
		return nil, analytics.Errorf("import", analytics.ErrInvalidParameter, "open blob: %v", err)
	}
	return Import(data)
}
