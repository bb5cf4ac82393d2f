package forecast

import (
	"math"
)

// LinearRegressionForecaster implements Linear Regression forecasting
type LinearRegressionForecaster struct{}

// NewLinearRegressionForecaster creates a new Linear Regression forecaster
func NewLinearRegressionForecaster() *LinearRegressionForecaster {
	return &LinearRegressionForecaster{}
}

func init() {
	RegisterForecaster("linear", NewLinearRegressionForecaster())
}

// Name returns the algorithm name
func (f *LinearRegressionForecaster) Name() string {
	return "linear"
}

// Forecast extrapolates the least-squares line fitted over point index.
func (f *LinearRegressionForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	series, err := prepare("linear forecast", data, config, 2)
	if err != nil {
		return nil, err
	}
	values := series.Values()

	slope, intercept, err := LinearRegression(values)
	if err != nil {
		return nil, err
	}
	forecasts, err := LinearForecast(values, config.Horizon)
	if err != nil {
		return nil, err
	}

	fitted := make([]float64, len(values))
	for i := range values {
		fitted[i] = intercept + slope*float64(i)
	}

	n := float64(len(values))
	meanX := (n - 1) / 2
	sxx := n * (n*n - 1) / 12 // Σ(x - meanX)² for x = 0..n-1
	stdError := residualStdError(values, fitted, 2)

	return buildResult(series, config, fitted, forecasts,
		func(h int) float64 {
			// Standard error grows with distance from the fitted range.
			xDiff := n - 1 + float64(h) - meanX
			return stdError * math.Sqrt(1+1/n+xDiff*xDiff/sxx)
		},
		ModelInfo{
			Algorithm: "linear",
			Parameters: map[string]interface{}{
				"slope":     slope,
				"intercept": intercept,
			},
		}), nil
}
