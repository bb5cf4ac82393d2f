package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/models"
	"github.com/vitalsight/vitalsight/internal/services"
)

type options struct {
	op         string
	column     int
	k          int
	maxK       int
	epsilon    float64
	minPoints  int
	distance   string
	components int
	method     string
	horizon    int
	period     int
	threshold  float64
	points     int
	seed       uint64
}

func main() {
	input := flag.String("input", "", "Path to CSV file (- for stdin)")
	configPath := flag.String("config", "", "Path to configuration file")
	verbose := flag.Bool("v", false, "Log debug output to stderr")

	var opts options
	flag.StringVar(&opts.op, "op", "stats", "Operation: stats, kmeans, elbow, dbscan, pca, forecast, decompose, anomalies, downsample")
	flag.IntVar(&opts.column, "column", 0, "Value column for series operations (0 = first numeric column)")
	flag.IntVar(&opts.k, "k", 3, "Cluster count for kmeans")
	flag.IntVar(&opts.maxK, "max-k", 10, "Largest k tried by elbow")
	flag.Float64Var(&opts.epsilon, "epsilon", 0, "DBSCAN neighbourhood radius")
	flag.IntVar(&opts.minPoints, "min-points", 0, "DBSCAN core point threshold")
	flag.StringVar(&opts.distance, "distance", "", "DBSCAN distance: euclidean, manhattan, cosine")
	flag.IntVar(&opts.components, "components", 0, "PCA component count")
	flag.StringVar(&opts.method, "method", "", "Forecast or anomaly method")
	flag.IntVar(&opts.horizon, "horizon", 0, "Forecast horizon")
	flag.IntVar(&opts.period, "period", 0, "Seasonal period for decompose")
	flag.Float64Var(&opts.threshold, "threshold", 0, "Anomaly threshold")
	flag.IntVar(&opts.points, "points", 0, "Target point count for downsample")
	flag.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 = configured seed)")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: -input parameter is required")
		flag.Usage()
		os.Exit(2)
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := logging.NewWithWriter(os.Stderr, level)
	cfg := config.LoadOrDefault(*configPath)

	in := io.Reader(os.Stdin)
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Fatal("Failed to open input", "path", *input, "error", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	table, err := ReadTable(in)
	if err != nil {
		logger.Fatal("Failed to read CSV", "path", *input, "error", err)
	}
	logger.Debug("Loaded CSV", "rows", len(table.Rows), "timestamps", table.Timestamps != nil)

	svc := services.NewAnalyticsService(logger, cfg.Analytics, nil)
	result, err := run(context.Background(), svc, table, opts)
	if err != nil {
		logger.Fatal("Operation failed", "op", opts.op, "error", services.FromError(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("Failed to write result", "error", err)
	}
}

// run dispatches one operation against the loaded table
func run(ctx context.Context, svc *services.AnalyticsService, table *Table, opts options) (interface{}, error) {
	switch opts.op {
	case "stats":
		values, err := table.Column(opts.column)
		if err != nil {
			return nil, err
		}
		return svc.Statistics(ctx, models.StatisticsRequest{Values: values})
	case "kmeans":
		return svc.KMeans(ctx, models.KMeansRequest{Data: table.Rows, K: opts.k, Seed: opts.seed})
	case "elbow":
		return svc.Elbow(ctx, models.ElbowRequest{Data: table.Rows, MaxK: opts.maxK, Seed: opts.seed})
	case "dbscan":
		return svc.DBSCAN(ctx, models.DBSCANRequest{
			Data:      table.Rows,
			Epsilon:   opts.epsilon,
			MinPoints: opts.minPoints,
			Distance:  opts.distance,
		})
	case "pca":
		return svc.PCA(ctx, models.PCARequest{Data: table.Rows, Components: opts.components, Seed: opts.seed})
	case "forecast":
		points, err := table.Series(opts.column)
		if err != nil {
			return nil, err
		}
		return svc.Forecast(ctx, models.ForecastRequest{Points: points, Method: opts.method, Horizon: opts.horizon})
	case "decompose":
		points, err := table.Series(opts.column)
		if err != nil {
			return nil, err
		}
		return svc.Decompose(ctx, models.DecomposeRequest{Points: points, Period: opts.period})
	case "anomalies":
		points, err := table.Series(opts.column)
		if err != nil {
			return nil, err
		}
		return svc.Anomalies(ctx, models.AnomalyRequest{Points: points, Method: opts.method, Threshold: opts.threshold})
	case "downsample":
		points, err := table.Series(opts.column)
		if err != nil {
			return nil, err
		}
		return svc.Downsample(ctx, models.DownsampleRequest{Points: points, Mode: opts.method, Threshold: opts.points})
	default:
		return nil, fmt.Errorf("unknown operation %q", opts.op)
	}
}
