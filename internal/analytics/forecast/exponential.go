package forecast

import (
	"math"
)

// ExponentialSmoothingForecaster implements Simple Exponential Smoothing forecasting
type ExponentialSmoothingForecaster struct{}

// NewExponentialSmoothingForecaster creates a new Exponential Smoothing forecaster
func NewExponentialSmoothingForecaster() *ExponentialSmoothingForecaster {
	return &ExponentialSmoothingForecaster{}
}

func init() {
	RegisterForecaster("exponential", NewExponentialSmoothingForecaster())
}

// Name returns the algorithm name
func (f *ExponentialSmoothingForecaster) Name() string {
	return "exponential"
}

// Forecast projects the final smoothed level across the horizon, widening the
// interval with the square root of the step.
func (f *ExponentialSmoothingForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	series, err := prepare("exponential forecast", data, config, 1)
	if err != nil {
		return nil, err
	}
	values := series.Values()

	alpha := config.Alpha
	if alpha <= 0 || alpha > 1 {
		alpha = 0.3
	}

	ema, err := ExponentialMovingAverage(values, alpha)
	if err != nil {
		return nil, err
	}

	// One-step-ahead: the value at i is predicted by the level after i-1.
	fitted := make([]float64, len(values))
	fitted[0] = values[0]
	copy(fitted[1:], ema[:len(ema)-1])

	forecastValue := ema[len(ema)-1]
	forecasts := make([]float64, config.Horizon)
	for i := range forecasts {
		forecasts[i] = forecastValue
	}

	stdError := residualStdError(values, fitted, 1)
	return buildResult(series, config, fitted, forecasts,
		func(h int) float64 { return stdError * math.Sqrt(float64(h)) },
		ModelInfo{
			Algorithm:  "exponential",
			Parameters: map[string]interface{}{"alpha": alpha},
		}), nil
}
