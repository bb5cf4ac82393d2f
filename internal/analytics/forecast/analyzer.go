package forecast

import (
	"github.com/vitalsight/vitalsight/internal/analytics"
)

// Analyzer holds a growing series and runs the forecasting functions over it.
// It is not safe for concurrent use.
type Analyzer struct {
	series analytics.Series
	config ForecastConfig
}

// NewAnalyzer creates an analyzer seeded with points in any order.
func NewAnalyzer(config ForecastConfig, points ...DataPoint) *Analyzer {
	return &Analyzer{
		series: analytics.NewSeries(points...),
		config: config,
	}
}

// AddData merges points into the series in timestamp order.
func (a *Analyzer) AddData(points ...DataPoint) {
	a.series = a.series.AddData(points...)
}

// Series returns a copy of the current series.
func (a *Analyzer) Series() analytics.Series {
	return append(analytics.Series(nil), a.series...)
}

// Len returns the number of points held.
func (a *Analyzer) Len() int {
	return a.series.Len()
}

// MovingAverage runs MovingAverage over the series values.
func (a *Analyzer) MovingAverage(window int) ([]float64, error) {
	return MovingAverage(a.series.Values(), window)
}

// ExponentialMovingAverage runs ExponentialMovingAverage over the series values.
func (a *Analyzer) ExponentialMovingAverage(alpha float64) ([]float64, error) {
	return ExponentialMovingAverage(a.series.Values(), alpha)
}

// LinearForecast extrapolates the series trend line steps points ahead.
func (a *Analyzer) LinearForecast(steps int) ([]float64, error) {
	return LinearForecast(a.series.Values(), steps)
}

// Decompose splits the series into trend, seasonal and residual components.
func (a *Analyzer) Decompose(period int) (*Decomposition, error) {
	return Decompose(a.series.Values(), period)
}

// HoltWinters runs additive Holt-Winters over the series values.
func (a *Analyzer) HoltWinters(params HoltWintersParams, steps int) (*HoltWintersResult, error) {
	return HoltWinters(a.series.Values(), params, steps)
}

// Forecast runs the named registered forecaster with the analyzer's configuration.
func (a *Analyzer) Forecast(method string) (*ForecastResult, error) {
	f, err := GetForecaster(method)
	if err != nil {
		return nil, err
	}
	return f.Forecast(a.series, a.config)
}

// Trend classifies the series direction.
func (a *Analyzer) Trend() Trend {
	return TrendDirection(a.series.Values())
}

// Volatility returns the std of successive differences.
func (a *Analyzer) Volatility() float64 {
	return Volatility(a.series.Values())
}
