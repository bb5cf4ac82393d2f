package services

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/anomaly"
	"github.com/vitalsight/vitalsight/internal/analytics/cluster"
	"github.com/vitalsight/vitalsight/internal/analytics/distance"
	"github.com/vitalsight/vitalsight/internal/analytics/downsample"
	"github.com/vitalsight/vitalsight/internal/analytics/forecast"
	"github.com/vitalsight/vitalsight/internal/analytics/pca"
	"github.com/vitalsight/vitalsight/internal/analytics/stats"
	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/metrics"
	"github.com/vitalsight/vitalsight/internal/models"
)

// AnalyticsService runs the stateless core algorithms. Every call works on
// its own copy of the request data and its own random source.
type AnalyticsService struct {
	logger  *logging.Logger
	cfg     config.AnalyticsConfig
	metrics *metrics.Recorder
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(logger *logging.Logger, cfg config.AnalyticsConfig, recorder *metrics.Recorder) *AnalyticsService {
	return &AnalyticsService{
		logger:  logging.OrNop(logger),
		cfg:     cfg,
		metrics: recorder,
	}
}

// seededRand returns a source seeded by the request, then by the configured
// seed; zero for both seeds from the clock.
func seededRand(requestSeed, configSeed uint64) *rand.Rand {
	if requestSeed == 0 {
		requestSeed = configSeed
	}
	return analytics.NewRand(requestSeed)
}

// observe records the run of algorithm and converts its error.
func observe(ctx context.Context, logger *logging.Logger, recorder *metrics.Recorder, algorithm string, start time.Time, err error) error {
	recorder.Observe(algorithm, start, err)
	log := logger.WithContext(ctx)
	if err != nil {
		log.Warn("Algorithm rejected input", "algorithm", algorithm, "error", err)
		return FromError(err)
	}
	log.Debug("Algorithm finished", "algorithm", algorithm, "duration", time.Since(start))
	return nil
}

func (s *AnalyticsService) observe(ctx context.Context, algorithm string, start time.Time, err error) error {
	return observe(ctx, s.logger, s.metrics, algorithm, start, err)
}

// Statistics summarises values. Empty input yields a zero summary.
func (s *AnalyticsService) Statistics(ctx context.Context, req models.StatisticsRequest) (stats.Summary, error) {
	start := time.Now()
	summary := stats.CalculateStatistics(req.Values)
	return summary, s.observe(ctx, "statistics", start, nil)
}

// Correlation computes the Pearson correlation of x and y. Unlike the core
// primitive, which degrades to 0, series of different lengths are rejected.
func (s *AnalyticsService) Correlation(ctx context.Context, req models.CorrelationRequest) (*models.CorrelationResponse, error) {
	start := time.Now()
	if len(req.X) != len(req.Y) {
		err := analytics.Errorf("correlation", analytics.ErrDimensionMismatch, "x has %d values, y has %d", len(req.X), len(req.Y))
		return nil, s.observe(ctx, "correlation", start, err)
	}
	resp := &models.CorrelationResponse{Correlation: stats.Correlation(req.X, req.Y)}
	return resp, s.observe(ctx, "correlation", start, nil)
}

// KMeans clusters the request data and scores the partition.
func (s *AnalyticsService) KMeans(ctx context.Context, req models.KMeansRequest) (*models.KMeansResponse, error) {
	start := time.Now()

	cfg := cluster.DefaultKMeansConfig()
	cfg.K = req.K
	cfg.MaxIterations = orInt(req.MaxIterations, s.cfg.Clustering.MaxIterations)
	cfg.Tolerance = orFloat(req.Tolerance, s.cfg.Clustering.Tolerance)
	cfg.Logger = s.logger

	res, err := cluster.KMeans(req.Data, cfg, seededRand(req.Seed, s.cfg.Seed))
	if err != nil {
		return nil, s.observe(ctx, "kmeans", start, err)
	}
	score, err := cluster.Silhouette(req.Data, res.Assignments)
	if err != nil {
		return nil, s.observe(ctx, "kmeans", start, err)
	}
	return &models.KMeansResponse{KMeansResult: res, Silhouette: score}, s.observe(ctx, "kmeans", start, nil)
}

// DBSCAN clusters the request data by density.
func (s *AnalyticsService) DBSCAN(ctx context.Context, req models.DBSCANRequest) (*models.DBSCANResponse, error) {
	start := time.Now()

	cfg := cluster.DefaultDBSCANConfig()
	cfg.Epsilon = orFloat(req.Epsilon, s.cfg.Clustering.DBSCANEpsilon)
	cfg.MinPoints = orInt(req.MinPoints, s.cfg.Clustering.DBSCANMinPoints)
	cfg.Logger = s.logger
	if req.Distance != "" {
		dist, err := distance.ByName(req.Distance)
		if err != nil {
			return nil, s.observe(ctx, "dbscan", start, err)
		}
		cfg.Distance = dist
	}

	res, err := cluster.DBSCAN(req.Data, cfg)
	if err != nil {
		return nil, s.observe(ctx, "dbscan", start, err)
	}
	score, err := cluster.Silhouette(req.Data, res.Labels)
	if err != nil {
		return nil, s.observe(ctx, "dbscan", start, err)
	}
	noise := res.NoisePoints()
	if noise == nil {
		noise = []int{}
	}
	return &models.DBSCANResponse{DBSCANResult: res, Noise: noise, Silhouette: score}, s.observe(ctx, "dbscan", start, nil)
}

// Elbow picks a cluster count for the request data.
func (s *AnalyticsService) Elbow(ctx context.Context, req models.ElbowRequest) (*cluster.ElbowResult, error) {
	start := time.Now()

	cfg := cluster.DefaultKMeansConfig()
	cfg.MaxIterations = s.cfg.Clustering.MaxIterations
	cfg.Tolerance = s.cfg.Clustering.Tolerance

	trials := orInt(req.Trials, s.cfg.Clustering.ElbowTrials)
	res, err := cluster.Elbow(req.Data, req.MaxK, trials, cfg, seededRand(req.Seed, s.cfg.Seed))
	return res, s.observe(ctx, "elbow", start, err)
}

// PCA reduces the request data. Components defaults to min(2, dims).
func (s *AnalyticsService) PCA(ctx context.Context, req models.PCARequest) (*pca.Result, error) {
	start := time.Now()

	cfg := pca.DefaultConfig()
	cfg.Tolerance = s.cfg.PCA.Tolerance
	cfg.MaxIterations = s.cfg.PCA.MaxIterations
	cfg.Logger = s.logger
	cfg.Components = req.Components
	if cfg.Components == 0 {
		cfg.Components = 2
		if len(req.Data) > 0 && len(req.Data[0]) < 2 {
			cfg.Components = len(req.Data[0])
		}
	}

	res, err := pca.Fit(req.Data, cfg, seededRand(req.Seed, s.cfg.Seed))
	if err != nil {
		return nil, s.observe(ctx, "pca", start, err)
	}
	return res, s.observe(ctx, "pca", start, nil)
}

// Forecast runs the requested forecaster, "auto" when none is named.
func (s *AnalyticsService) Forecast(ctx context.Context, req models.ForecastRequest) (*forecast.ForecastResult, error) {
	start := time.Now()
	method := req.Method
	if method == "" {
		method = "auto"
	}

	forecaster, err := forecast.GetForecaster(method)
	if err != nil {
		return nil, s.observe(ctx, "forecast", start, err)
	}

	f := s.cfg.Forecast
	cfg := forecast.DefaultForecastConfig()
	cfg.Horizon = orInt(req.Horizon, f.Horizon)
	cfg.WindowSize = orInt(req.Window, f.Window)
	cfg.Alpha = orFloat(req.Alpha, f.Alpha)
	cfg.Beta = orFloat(req.Beta, f.Beta)
	cfg.Gamma = orFloat(req.Gamma, f.Gamma)
	cfg.SeasonalPeriod = orInt(req.SeasonalPeriod, f.SeasonalPeriod)
	cfg.Confidence = orFloat(req.Confidence, f.Confidence)
	cfg.Interval = 0
	cfg.Logger = s.logger
	if req.Interval != "" {
		interval, err := time.ParseDuration(req.Interval)
		if err != nil || interval <= 0 {
			err = analytics.Errorf("forecast", analytics.ErrInvalidParameter, "interval %q is not a positive duration", req.Interval)
			return nil, s.observe(ctx, method, start, err)
		}
		cfg.Interval = interval
	}

	res, err := forecaster.Forecast(req.Points, cfg)
	if err != nil {
		return nil, s.observe(ctx, method, start, err)
	}
	return res, s.observe(ctx, method, start, nil)
}

// Decompose splits the series, sorted by time, into trend, seasonal and
// residual parts.
func (s *AnalyticsService) Decompose(ctx context.Context, req models.DecomposeRequest) (*forecast.Decomposition, error) {
	start := time.Now()
	period := orInt(req.Period, s.cfg.Forecast.SeasonalPeriod)
	res, err := forecast.Decompose(analytics.NewSeries(req.Points...).Values(), period)
	if err != nil {
		return nil, s.observe(ctx, "decompose", start, err)
	}
	return res, s.observe(ctx, "decompose", start, nil)
}

// Anomalies flags unusual readings, "zscore" when no method is named.
// Detection runs in time order; indices refer to the request order.
func (s *AnalyticsService) Anomalies(ctx context.Context, req models.AnomalyRequest) (*models.AnomalyResponse, error) {
	start := time.Now()
	method := req.Method
	if method == "" {
		method = "zscore"
	}

	cfg := anomaly.DefaultConfig()
	cfg.Threshold = orFloat(req.Threshold, s.cfg.Anomaly.Threshold)
	cfg.IQRMultiplier = orFloat(s.cfg.Anomaly.IQRMultiplier, cfg.IQRMultiplier)
	cfg.WindowSize = orInt(req.WindowSize, s.cfg.Anomaly.WindowSize)

	detector, err := anomaly.GetDetector(method)
	if err != nil {
		return nil, s.observe(ctx, "anomaly", start, err)
	}
	order := chronological(req.Points)
	sorted := make([]analytics.TimeSeriesPoint, len(order))
	for k, i := range order {
		sorted[k] = req.Points[i]
	}
	found, err := detector.Detect(sorted, cfg)
	if err != nil {
		return nil, s.observe(ctx, "anomaly_"+method, start, err)
	}
	if found == nil {
		found = []anomaly.Anomaly{}
	}
	for k := range found {
		found[k].Index = order[found[k].Index]
	}
	resp := &models.AnomalyResponse{
		Method:    method,
		Threshold: cfg.Threshold,
		Count:     len(found),
		Anomalies: found,
	}
	return resp, s.observe(ctx, "anomaly_"+method, start, nil)
}

// chronological returns the request indices of points ordered by time.
// Points sharing a timestamp keep their request order.
func chronological(points []analytics.TimeSeriesPoint) []int {
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return points[order[a]].Time.Before(points[order[b]].Time)
	})
	return order
}

// Downsample reduces the series, sorted by time, for display.
func (s *AnalyticsService) Downsample(ctx context.Context, req models.DownsampleRequest) (*downsample.Result, error) {
	start := time.Now()
	name := req.Mode
	if name == "" {
		name = s.cfg.Downsample.Mode
	}
	mode, err := downsample.ParseMode(name)
	if err != nil {
		return nil, s.observe(ctx, "downsample", start, err)
	}

	res, err := downsample.Downsample(analytics.NewSeries(req.Points...), mode, orInt(req.Threshold, s.cfg.Downsample.Threshold))
	if err != nil {
		return nil, s.observe(ctx, "downsample", start, err)
	}
	s.logger.WithContext(ctx).Debug("Series downsampled",
		"mode", res.Mode,
		"points_in", res.OriginalCount,
		"points_out", len(res.Points))
	return res, s.observe(ctx, "downsample", start, nil)
}

func orInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func orFloat(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}
