package forecast

import (
	"math"
)

// HoltWintersForecaster implements additive Holt-Winters (Triple Exponential Smoothing) forecasting
type HoltWintersForecaster struct{}

// NewHoltWintersForecaster creates a new Holt-Winters forecaster
func NewHoltWintersForecaster() *HoltWintersForecaster {
	return &HoltWintersForecaster{}
}

func init() {
	RegisterForecaster("holt_winters", NewHoltWintersForecaster())
}

// Name returns the algorithm name
func (f *HoltWintersForecaster) Name() string {
	return "holt_winters"
}

// Forecast requires at least two full seasons of data.
func (f *HoltWintersForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	period := config.SeasonalPeriod
	series, err := prepare("holt-winters forecast", data, config, 2*max(period, 2))
	if err != nil {
		return nil, err
	}
	values := series.Values()

	params := HoltWintersParams{
		Alpha:  config.Alpha,
		Beta:   config.Beta,
		Gamma:  config.Gamma,
		Period: period,
	}
	if params.Alpha <= 0 || params.Alpha > 1 {
		params.Alpha = 0.3
	}
	if params.Beta < 0 || params.Beta > 1 {
		params.Beta = 0.1
	}
	if params.Gamma < 0 || params.Gamma > 1 {
		params.Gamma = 0.1
	}

	hw, err := HoltWinters(values, params, config.Horizon)
	if err != nil {
		return nil, err
	}

	stdError := residualStdError(values, hw.Fitted, 1)
	return buildResult(series, config, hw.Fitted, hw.Forecast,
		func(h int) float64 { return stdError * math.Sqrt(float64(h)) },
		ModelInfo{
			Algorithm: "holt_winters",
			Parameters: map[string]interface{}{
				"alpha":  params.Alpha,
				"beta":   params.Beta,
				"gamma":  params.Gamma,
				"period": period,
			},
		}), nil
}
