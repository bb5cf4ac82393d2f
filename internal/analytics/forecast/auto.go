package forecast

import (
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// AutoForecaster automatically selects the best forecasting algorithm
type AutoForecaster struct{}

// NewAutoForecaster creates a new Auto forecaster
func NewAutoForecaster() *AutoForecaster {
	return &AutoForecaster{}
}

func init() {
	RegisterForecaster("auto", NewAutoForecaster())
}

// Name returns the algorithm name
func (f *AutoForecaster) Name() string {
	return "auto"
}

// Forecast picks Holt-Winters for seasonal data with two full seasons, linear
// regression for trending data, exponential smoothing for longer flat series
// and SMA otherwise. When the configured seasonal period shows no
// seasonality, the dominant period of the spectrum is tried instead.
func (f *AutoForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	series, err := prepare("auto forecast", data, config, 1)
	if err != nil {
		return nil, err
	}
	values := series.Values()

	if !detectSeasonality(values, config.SeasonalPeriod) {
		if p := DominantPeriod(values); p != config.SeasonalPeriod && detectSeasonality(values, p) {
			config.SeasonalPeriod = p
		}
	}

	var selected Forecaster
	switch {
	case detectSeasonality(values, config.SeasonalPeriod):
		selected = NewHoltWintersForecaster()
	case detectTrend(values):
		selected = NewLinearRegressionForecaster()
	case len(values) >= 20:
		selected = NewExponentialSmoothingForecaster()
	default:
		selected = NewSMAForecaster()
	}

	result, err := selected.Forecast(data, config)
	if err != nil {
		return nil, err
	}

	result.ModelInfo.Algorithm = selected.Name() + " (auto-selected)"
	return result, nil
}

// detectTrend reports a significant linear trend: |r(index, value)| > 0.5.
func detectTrend(values []float64) bool {
	if len(values) < 5 {
		return false
	}
	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}
	r := stats.Correlation(index, values)
	return r > 0.5 || r < -0.5
}

// detectSeasonality reports an autocorrelation above 0.5 at lag period,
// requiring two full seasons.
func detectSeasonality(values []float64, period int) bool {
	n := len(values)
	if period <= 1 || n < period*2 {
		return false
	}

	mean := stats.Mean(values)
	numerator := 0.0
	denominator := 0.0
	for i := period; i < n; i++ {
		a := values[i] - mean
		b := values[i-period] - mean
		numerator += a * b
		denominator += a * a
	}

	if denominator == 0 {
		return false
	}
	return numerator/denominator > 0.5
}
