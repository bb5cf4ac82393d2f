package analytics

import (
	"errors"
	"fmt"
)

// Error kinds reported by the analytics core. Callers match them with errors.Is;
// the returned errors carry the failing operation and detail as context.
var (
	// ErrInsufficientData is returned when a dataset or series is smaller than
	// an algorithm requires (k > n, short training set, series < 2×period).
	ErrInsufficientData = errors.New("analytics: insufficient data")

	// ErrDimensionMismatch is returned when vectors within one call disagree in length.
	ErrDimensionMismatch = errors.New("analytics: dimension mismatch")

	// ErrInvalidParameter is returned for out-of-range configuration values.
	ErrInvalidParameter = errors.New("analytics: invalid parameter")

	// ErrNotTrained is returned when a model is used before training.
	ErrNotTrained = errors.New("analytics: model not trained")

	// ErrUnknownAlgorithm is returned by the forecaster and detector registries.
	ErrUnknownAlgorithm = errors.New("analytics: unknown algorithm")
)

// InsufficientDataError names the operation and the size it needed.
type InsufficientDataError struct {
	Op   string
	Need int
	Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data points: need %d, have %d", e.Op, e.Need, e.Have)
}

// Is makes errors.Is(err, ErrInsufficientData) hold.
func (e *InsufficientDataError) Is(target error) bool {
	return target == ErrInsufficientData
}

// Insufficient builds an *InsufficientDataError.
func Insufficient(op string, need, have int) error {
	return &InsufficientDataError{Op: op, Need: need, Have: have}
}

// Errorf wraps kind with the operation name and a formatted detail message.
func Errorf(op string, kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w: %s", op, kind, fmt.Sprintf(format, args...))
}
