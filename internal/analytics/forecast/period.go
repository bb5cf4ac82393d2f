package forecast

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/vitalsight/vitalsight/internal/analytics/stats"
)

// DominantPeriod estimates the seasonal period of values from the strongest
// frequency in the spectrum of the linearly detrended series. It returns 0
// when the series is too short or has no variation beyond its trend.
// Candidate periods range from 2 to n/2.
func DominantPeriod(values []float64) int {
	n := len(values)
	if n < 4 {
		return 0
	}

	slope, intercept, err := LinearRegression(values)
	if err != nil {
		return 0
	}
	residuals := make([]float64, n)
	for i, v := range values {
		residuals[i] = v - (intercept + slope*float64(i))
	}
	if stats.Variance(residuals) <= 1e-12*(1+stats.Variance(values)) {
		return 0
	}

	spectrum := fft.FFTReal(residuals)
	best, bestPower := 0, 0.0
	for k := 2; k <= n/2; k++ {
		if power := cmplx.Abs(spectrum[k]); power > bestPower {
			best, bestPower = k, power
		}
	}
	if best == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(best)))
}
