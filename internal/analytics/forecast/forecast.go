// Package forecast implements time-series smoothing, decomposition and
// forecasting: moving averages, exponential smoothing, least-squares trend
// extrapolation and additive Holt-Winters. The pure functions operate on value
// slices; the Forecaster registry wraps them for timestamped series.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
	"github.com/vitalsight/vitalsight/internal/logging"
)

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// Trend is the overall direction of a series.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ForecastPoint represents a single forecast prediction
type ForecastPoint struct {
	Offset     int       `json:"offset"` // Steps past the last observation, starting at 1
	Time       time.Time `json:"time"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
	Confidence float64   `json:"confidence"` // 1 at a zero-width interval, falling as it widens
}

// ModelInfo contains metadata about the forecast model
type ModelInfo struct {
	Algorithm  string                 `json:"algorithm"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	MAPE       float64                `json:"mape,omitempty"` // Mean Absolute Percentage Error
	MAE        float64                `json:"mae,omitempty"`  // Mean Absolute Error
	RMSE       float64                `json:"rmse,omitempty"` // Root Mean Squared Error
	DataPoints int                    `json:"data_points"`    // Number of data points used
}

// ForecastResult contains the forecast predictions and model information
type ForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Fitted      []float64       `json:"fitted,omitempty"`    // Fitted values for historical data
	Residuals   []float64       `json:"residuals,omitempty"` // Residuals (actual - fitted)
	Trend       Trend           `json:"trend"`
	Volatility  float64         `json:"volatility"` // Std of successive differences
	ModelInfo   ModelInfo       `json:"model_info"`
}

// ForecastConfig holds configuration for forecasting
type ForecastConfig struct {
	Horizon        int           // Number of periods to forecast
	WindowSize     int           // Window size for moving average methods
	Alpha          float64       // Level smoothing factor (0-1]
	Beta           float64       // Trend smoothing factor for Holt-Winters [0-1]
	Gamma          float64       // Seasonal smoothing factor for Holt-Winters [0-1]
	SeasonalPeriod int           // Period for seasonal decomposition
	Confidence     float64       // Confidence level for prediction intervals (0-1)
	MinDataPoints  int           // Minimum data points required
	Interval       time.Duration // Time interval between data points; 0 infers it from the data

	Logger *logging.Logger
}

// DefaultForecastConfig returns default forecast configuration
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:        7,         // One week of daily readings
		WindowSize:     7,         // 7-point moving average
		Alpha:          0.3,       // Exponential smoothing factor
		Beta:           0.1,       // Trend smoothing factor
		Gamma:          0.1,       // Seasonal smoothing factor
		SeasonalPeriod: 7,         // Weekly seasonality on daily data
		Confidence:     0.95,      // 95% confidence interval
		MinDataPoints:  10,        // Need at least 10 points
		Interval:       24 * time.Hour,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast generates predictions for future time periods
	Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error)
}

// Registry holds available forecasters
var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("%w: forecaster %q", analytics.ErrUnknownAlgorithm, name)
}

// ListForecasters returns the registered forecaster names in sorted order
func ListForecasters() []string {
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateMAPE calculates Mean Absolute Percentage Error
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] != 0 {
			sum += math.Abs((actual[i] - predicted[i]) / actual[i])
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// CalculateRMSE calculates Root Mean Squared Error
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	for i := range actual {
		diff := actual[i] - predicted[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// zScore maps a confidence level in (0, 1) onto the two-sided normal
// quantile. Levels outside that range use 0.95.
func zScore(confidence float64) float64 {
	if !(confidence > 0 && confidence < 1) {
		confidence = 0.95
	}
	return distuv.UnitNormal.Quantile(0.5 + confidence/2)
}

// calculatePredictionInterval calculates prediction interval bounds
func calculatePredictionInterval(value, stdError, confidence float64) (lower, upper float64) {
	margin := zScore(confidence) * stdError
	return value - margin, value + margin
}

// intervalConfidence turns an interval half-width into a [0, 1] score.
func intervalConfidence(value, halfWidth float64) float64 {
	if halfWidth <= 0 {
		return 1
	}
	return stats.Clamp(1-halfWidth/(math.Abs(value)+halfWidth), 0, 1)
}

// TrendDirection classifies a series as rising, falling or flat. The series
// is flat when the least-squares change over its length is under half a
// standard deviation.
func TrendDirection(values []float64) Trend {
	if len(values) < 2 {
		return TrendStable
	}
	slope, _, err := LinearRegression(values)
	if err != nil {
		return TrendStable
	}
	change := slope * float64(len(values)-1)
	std := stats.StandardDeviation(values)
	if std == 0 || math.Abs(change) < 0.5*std {
		return TrendStable
	}
	if change > 0 {
		return TrendUp
	}
	return TrendDown
}

// Volatility returns the population standard deviation of successive differences.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}
	return stats.StandardDeviation(diffs)
}

// prepare sorts data chronologically and enforces the configured minimum.
func prepare(op string, data []DataPoint, config ForecastConfig, floor int) (analytics.Series, error) {
	if config.Horizon <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "horizon must be positive, got %d", config.Horizon)
	}
	need := max(config.MinDataPoints, floor)
	if len(data) < need {
		return nil, analytics.Insufficient(op, need, len(data))
	}
	return analytics.NewSeries(data...), nil
}

// stepStdError returns the error scale h steps ahead.
type stepStdError func(h int) float64

// buildResult assembles a ForecastResult from fitted values and point forecasts.
func buildResult(series analytics.Series, config ForecastConfig, fitted, forecasts []float64, stdErr stepStdError, info ModelInfo) *ForecastResult {
	actual := series.Values()
	residuals := make([]float64, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - fitted[i]
	}

	interval := config.Interval
	if interval == 0 {
		interval = series.Interval()
	}
	lastTime := series[len(series)-1].Time

	predictions := make([]ForecastPoint, len(forecasts))
	for i, value := range forecasts {
		h := i + 1
		lower, upper := calculatePredictionInterval(value, stdErr(h), config.Confidence)
		predictions[i] = ForecastPoint{
			Offset:     h,
			Time:       lastTime.Add(interval * time.Duration(h)),
			Value:      value,
			LowerBound: lower,
			UpperBound: upper,
			Confidence: intervalConfidence(value, (upper-lower)/2),
		}
	}

	info.MAPE = CalculateMAPE(actual, fitted)
	info.MAE = CalculateMAE(actual, fitted)
	info.RMSE = CalculateRMSE(actual, fitted)
	info.DataPoints = len(actual)

	logging.OrNop(config.Logger).Debug("Forecast generated",
		"algorithm", info.Algorithm,
		"data_points", len(actual),
		"horizon", len(forecasts),
		"rmse", info.RMSE)

	return &ForecastResult{
		Predictions: predictions,
		Fitted:      fitted,
		Residuals:   residuals,
		Trend:       TrendDirection(actual),
		Volatility:  Volatility(actual),
		ModelInfo:   info,
	}
}

// residualStdError is sqrt(SSE / (n - dof)), or 0 when n <= dof.
func residualStdError(actual, fitted []float64, dof int) float64 {
	n := len(actual)
	if n <= dof {
		return 0
	}
	sse := 0.0
	for i := range actual {
		d := actual[i] - fitted[i]
		sse += d * d
	}
	return math.Sqrt(sse / float64(n-dof))
}
