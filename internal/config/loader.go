package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/vitalsight")
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides, e.g. VITALSIGHT_SERVER_HTTP_PORT
	v.SetEnvPrefix("VITALSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	// Server defaults
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)

	v.SetDefault("auth.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	// Analytics defaults
	a := d.Analytics
	v.SetDefault("analytics.seed", a.Seed)
	v.SetDefault("analytics.clustering.max_iterations", a.Clustering.MaxIterations)
	v.SetDefault("analytics.clustering.tolerance", a.Clustering.Tolerance)
	v.SetDefault("analytics.clustering.elbow_trials", a.Clustering.ElbowTrials)
	v.SetDefault("analytics.clustering.dbscan_epsilon", a.Clustering.DBSCANEpsilon)
	v.SetDefault("analytics.clustering.dbscan_min_points", a.Clustering.DBSCANMinPoints)
	v.SetDefault("analytics.pca.tolerance", a.PCA.Tolerance)
	v.SetDefault("analytics.pca.max_iterations", a.PCA.MaxIterations)
	v.SetDefault("analytics.network.learning_rate", a.Network.LearningRate)
	v.SetDefault("analytics.network.epochs", a.Network.Epochs)
	v.SetDefault("analytics.network.batch_size", a.Network.BatchSize)
	v.SetDefault("analytics.network.error_threshold", a.Network.ErrorThreshold)
	v.SetDefault("analytics.network.min_examples", a.Network.MinExamples)
	v.SetDefault("analytics.network.activation", a.Network.Activation)
	v.SetDefault("analytics.network.samples", a.Network.Samples)
	v.SetDefault("analytics.network.max_networks", a.Network.MaxNetworks)
	v.SetDefault("analytics.forecast.horizon", a.Forecast.Horizon)
	v.SetDefault("analytics.forecast.window", a.Forecast.Window)
	v.SetDefault("analytics.forecast.alpha", a.Forecast.Alpha)
	v.SetDefault("analytics.forecast.beta", a.Forecast.Beta)
	v.SetDefault("analytics.forecast.gamma", a.Forecast.Gamma)
	v.SetDefault("analytics.forecast.seasonal_period", a.Forecast.SeasonalPeriod)
	v.SetDefault("analytics.forecast.confidence", a.Forecast.Confidence)
	v.SetDefault("analytics.anomaly.threshold", a.Anomaly.Threshold)
	v.SetDefault("analytics.anomaly.iqr_multiplier", a.Anomaly.IQRMultiplier)
	v.SetDefault("analytics.anomaly.window_size", a.Anomaly.WindowSize)
	v.SetDefault("analytics.downsample.mode", a.Downsample.Mode)
	v.SetDefault("analytics.downsample.threshold", a.Downsample.Threshold)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		// Return default configuration
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     5555,
			BodyLimit:    8 * 1024 * 1024,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Analytics: AnalyticsConfig{
			Clustering: ClusteringConfig{
				MaxIterations:   100,
				Tolerance:       1e-4,
				ElbowTrials:     3,
				DBSCANEpsilon:   0.5,
				DBSCANMinPoints: 4,
			},
			PCA: PCAConfig{
				Tolerance:     1e-4,
				MaxIterations: 1000,
			},
			Network: NetworkConfig{
				LearningRate:   0.1,
				Epochs:         1000,
				BatchSize:      32,
				ErrorThreshold: 0.001,
				MinExamples:    10,
				Activation:     "sigmoid",
				Samples:        30,
				MaxNetworks:    256,
			},
			Forecast: ForecastConfig{
				Horizon:        7,
				Window:         7,
				Alpha:          0.3,
				Beta:           0.1,
				Gamma:          0.1,
				SeasonalPeriod: 7,
				Confidence:     0.95,
			},
			Anomaly: AnomalyConfig{
				Threshold:     2.5,
				IQRMultiplier: 1.5,
				WindowSize:    7,
			},
			Downsample: DownsampleConfig{
				Mode:      "auto",
				Threshold: 1000,
			},
		},
	}
}
