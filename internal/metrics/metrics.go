// Package metrics records prometheus counters and histograms for every
// algorithm run served by the service layer.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitalsight/vitalsight/internal/analytics"
)

const namespace = "vitalsight"

// Outcome labels
const (
	OutcomeOK                = "ok"
	OutcomeInsufficientData  = "insufficient_data"
	OutcomeDimensionMismatch = "dimension_mismatch"
	OutcomeInvalidParameter  = "invalid_parameter"
	OutcomeNotTrained        = "not_trained"
	OutcomeUnknownAlgorithm  = "unknown_algorithm"
	OutcomeError             = "error"
)

// Recorder owns the algorithm collectors and the registry they live in.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	networks prometheus.Gauge
}

// NewRecorder creates a recorder on a fresh registry that also carries the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "algorithm_runs_total",
				Help:      "Algorithm runs by outcome.",
			}, []string{"algorithm", "outcome"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "algorithm_duration_seconds",
				Help:      "Wall time of algorithm runs.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
			}, []string{"algorithm"}),
		networks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "networks",
				Help:      "Neural networks held in memory.",
			}),
	}

	r.registry.MustRegister(
		r.runs,
		r.duration,
		r.networks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records one run of algorithm that started at start and ended with err.
// A nil recorder ignores the call.
func (r *Recorder) Observe(algorithm string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(algorithm, Outcome(err)).Inc()
	r.duration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
}

// SetNetworks records the number of networks in the registry
func (r *Recorder) SetNetworks(n int) {
	if r == nil {
		return
	}
	r.networks.Set(float64(n))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Outcome maps an error onto its outcome label
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, analytics.ErrInsufficientData):
		return OutcomeInsufficientData
	case errors.Is(err, analytics.ErrDimensionMismatch):
		return OutcomeDimensionMismatch
	case errors.Is(err, analytics.ErrInvalidParameter):
		return OutcomeInvalidParameter
	case errors.Is(err, analytics.ErrNotTrained):
		return OutcomeNotTrained
	case errors.Is(err, analytics.ErrUnknownAlgorithm):
		return OutcomeUnknownAlgorithm
	default:
		return OutcomeError
	}
}
