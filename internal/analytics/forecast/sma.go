package forecast

// SMAForecaster implements Simple Moving Average forecasting
type SMAForecaster struct{}

// NewSMAForecaster creates a new SMA forecaster
func NewSMAForecaster() *SMAForecaster {
	return &SMAForecaster{}
}

func init() {
	RegisterForecaster("sma", NewSMAForecaster())
}

// Name returns the algorithm name
func (f *SMAForecaster) Name() string {
	return "sma"
}

// Forecast projects the mean of the last window flat across the horizon.
// Fitted values use a trailing window that grows to full size over the first points.
func (f *SMAForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	series, err := prepare("sma forecast", data, config, 1)
	if err != nil {
		return nil, err
	}
	values := series.Values()

	windowSize := config.WindowSize
	if windowSize <= 0 {
		windowSize = 7
	}
	if windowSize > len(values) {
		windowSize = len(values)
	}

	fitted := make([]float64, len(values))
	for i := range values {
		start := max(0, i-windowSize+1)
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		fitted[i] = sum / float64(i-start+1)
	}

	averages, err := MovingAverage(values, windowSize)
	if err != nil {
		return nil, err
	}
	forecastValue := averages[len(averages)-1]

	forecasts := make([]float64, config.Horizon)
	for i := range forecasts {
		forecasts[i] = forecastValue
	}

	stdError := residualStdError(values, fitted, 1)
	return buildResult(series, config, fitted, forecasts,
		func(int) float64 { return stdError },
		ModelInfo{
			Algorithm:  "sma",
			Parameters: map[string]interface{}{"window_size": windowSize},
		}), nil
}
