package forecast

import (
	"math"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

// MovingAverage returns the trailing mean of every full window of size w:
// result[i] averages values[i..i+w-1], so len(result) = n-w+1.
func MovingAverage(values []float64, w int) ([]float64, error) {
	const op = "moving average"
	if w <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "window must be positive, got %d", w)
	}
	if len(values) < w {
		return nil, analytics.Insufficient(op, w, len(values))
	}

	out := make([]float64, len(values)-w+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= w {
			sum -= values[i-w]
		}
		if i >= w-1 {
			out[i-w+1] = sum / float64(w)
		}
	}
	return out, nil
}

// ExponentialMovingAverage smooths values with factor alpha in (0, 1]:
// ema[0] = values[0], ema[i] = alpha·values[i] + (1-alpha)·ema[i-1].
func ExponentialMovingAverage(values []float64, alpha float64) ([]float64, error) {
	const op = "exponential moving average"
	if !(alpha > 0 && alpha <= 1) {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "alpha must be in (0, 1], got %v", alpha)
	}
	if len(values) == 0 {
		return nil, analytics.Insufficient(op, 1, 0)
	}

	ema := make([]float64, len(values))
	ema[0] = values[0]
	for i := 1; i < len(values); i++ {
		ema[i] = alpha*values[i] + (1-alpha)*ema[i-1]
	}
	return ema, nil
}

// LinearRegression fits value = intercept + slope·index by least squares.
func LinearRegression(values []float64) (slope, intercept float64, err error) {
	n := len(values)
	if n < 2 {
		return 0, 0, analytics.Insufficient("linear regression", 2, n)
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumX2 += x * x
	}

	fn := float64(n)
	denominator := fn*sumX2 - sumX*sumX
	slope = (fn*sumXY - sumX*sumY) / denominator
	intercept = (sumY - slope*sumX) / fn
	return slope, intercept, nil
}

// LinearForecast extrapolates the least-squares line to indices n..n+steps-1.
func LinearForecast(values []float64, steps int) ([]float64, error) {
	if steps <= 0 {
		return nil, analytics.Errorf("linear forecast", analytics.ErrInvalidParameter, "steps must be positive, got %d", steps)
	}
	slope, intercept, err := LinearRegression(values)
	if err != nil {
		return nil, err
	}
	out := make([]float64, steps)
	for h := range out {
		out[h] = intercept + slope*float64(len(values)+h)
	}
	return out, nil
}

// Decomposition splits a series into trend, seasonal and residual parts with
// values[i] = Trend[i] + Seasonal[i] + Residual[i].
type Decomposition struct {
	Period   int       `json:"period"`
	Trend    []float64 `json:"trend"`
	Seasonal []float64 `json:"seasonal"` // Seasonal index repeated over the series
	Residual []float64 `json:"residual"`
	Indices  []float64 `json:"indices"` // One seasonal index per phase
}

// Decompose performs additive seasonal decomposition. The trend is a centered
// moving average of window period (a 2×period average for even periods);
// points without a full window keep their raw value as trend. The seasonal
// index of each phase is the mean of value-trend over points i with
// i mod period equal to that phase.
func Decompose(values []float64, period int) (*Decomposition, error) {
	const op = "decompose"
	if period < 2 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "period must be at least 2, got %d", period)
	}
	n := len(values)
	if n < 2*period {
		return nil, analytics.Insufficient(op, 2*period, n)
	}

	trend := centeredMovingAverage(values, period)

	indices := make([]float64, period)
	counts := make([]int, period)
	for i, v := range values {
		indices[i%period] += v - trend[i]
		counts[i%period]++
	}
	for phase := range indices {
		indices[phase] /= float64(counts[phase])
	}

	d := &Decomposition{
		Period:   period,
		Trend:    trend,
		Seasonal: make([]float64, n),
		Residual: make([]float64, n),
		Indices:  indices,
	}
	for i, v := range values {
		d.Seasonal[i] = indices[i%period]
		d.Residual[i] = v - trend[i] - d.Seasonal[i]
	}
	return d, nil
}

func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	half := period / 2
	trend := make([]float64, n)
	for i := range values {
		if i < half || i+half >= n {
			trend[i] = values[i]
			continue
		}
		if period%2 == 1 {
			sum := 0.0
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			trend[i] = sum / float64(period)
			continue
		}
		sum := 0.5*values[i-half] + 0.5*values[i+half]
		for j := i - half + 1; j < i+half; j++ {
			sum += values[j]
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// HoltWintersParams are the additive Holt-Winters smoothing factors.
type HoltWintersParams struct {
	Alpha  float64 `json:"alpha"`  // Level
	Beta   float64 `json:"beta"`   // Trend
	Gamma  float64 `json:"gamma"`  // Seasonal
	Period int     `json:"period"` // Season length
}

// HoltWintersResult carries the forecast and the final model state.
type HoltWintersResult struct {
	Forecast []float64 `json:"forecast"`
	Fitted   []float64 `json:"fitted"` // One-step-ahead predictions over the history
	Level    float64   `json:"level"`
	Trend    float64   `json:"trend"`
	Seasonal []float64 `json:"seasonal"` // Final seasonal index per phase
}

// HoltWinters runs additive triple exponential smoothing. Level starts at
// values[0], trend at 0 and the seasonal indices at those of Decompose.
// The forecast h steps ahead is level + h·trend + seasonal[(n+h-1) mod period].
func HoltWinters(values []float64, params HoltWintersParams, steps int) (*HoltWintersResult, error) {
	const op = "holt-winters"
	for name, v := range map[string]float64{"alpha": params.Alpha, "beta": params.Beta, "gamma": params.Gamma} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "%s must be in [0, 1], got %v", name, v)
		}
	}
	if steps <= 0 {
		return nil, analytics.Errorf(op, analytics.ErrInvalidParameter, "steps must be positive, got %d", steps)
	}
	decomposition, err := Decompose(values, params.Period)
	if err != nil {
		return nil, err
	}

	p := params.Period
	seasonal := append([]float64(nil), decomposition.Indices...)
	level := values[0]
	trend := 0.0

	fitted := make([]float64, len(values))
	fitted[0] = values[0]
	for i := 1; i < len(values); i++ {
		phase := i % p
		s := seasonal[phase]
		fitted[i] = level + trend + s

		prevLevel := level
		level = params.Alpha*(values[i]-s) + (1-params.Alpha)*(level+trend)
		trend = params.Beta*(level-prevLevel) + (1-params.Beta)*trend
		seasonal[phase] = params.Gamma*(values[i]-level) + (1-params.Gamma)*s
	}

	n := len(values)
	forecast := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		forecast[h-1] = level + float64(h)*trend + seasonal[(n+h-1)%p]
	}

	return &HoltWintersResult{
		Forecast: forecast,
		Fitted:   fitted,
		Level:    level,
		Trend:    trend,
		Seasonal: seasonal,
	}, nil
}
