package neural

import (
	"fmt"
	"math"
	"strings"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// Activation names a neuron transfer function.
type Activation string

const (
	Sigmoid Activation = "sigmoid"
	ReLU    Activation = "relu"
	Tanh    Activation = "tanh"
)

// ParseActivation resolves a case-insensitive activation name. Empty means Sigmoid.
func ParseActivation(name string) (Activation, error) {
	switch a := Activation(strings.ToLower(strings.TrimSpace(name))); a {
	case "":
		return Sigmoid, nil
	case Sigmoid, ReLU, Tanh:
		return a, nil
	default:
		return "", analytics.Errorf("activation", analytics.ErrInvalidParameter, "unknown activation %q", name)
	}
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a {
	case ReLU:
		return math.Max(0, x)
	case Tanh:
		return math.Tanh(x)
	default:
		return 1 / (1 + math.Exp(-x))
	}
}

// Derivative returns the slope of the activation expressed in terms of its
// output y = Apply(x), which is all backpropagation keeps per layer.
func (a Activation) Derivative(y float64) float64 {
	switch a {
	case ReLU:
		if y > 0 {
			return 1
		}
		return 0
	case Tanh:
		return 1 - y*y
	default:
		return y * (1 - y)
	}
}

func (a Activation) String() string {
	return string(a)
}

func (a Activation) validate() error {
	switch a {
	case Sigmoid, ReLU, Tanh:
		return nil
	default:
		return fmt.Errorf("%w: unknown activation %q", analytics.ErrInvalidParameter, string(a))
	}
}
