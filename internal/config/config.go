package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address for server (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	BodyLimit    int           `mapstructure:"body_limit"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// AnalyticsConfig holds the defaults applied to requests that leave a
// parameter unset.
type AnalyticsConfig struct {
	// Seed for the random source; 0 seeds from the clock on every request
	Seed       uint64           `mapstructure:"seed"`
	Clustering ClusteringConfig `mapstructure:"clustering"`
	PCA        PCAConfig        `mapstructure:"pca"`
	Network    NetworkConfig    `mapstructure:"network"`
	Forecast   ForecastConfig   `mapstructure:"forecast"`
	Anomaly    AnomalyConfig    `mapstructure:"anomaly"`
	Downsample DownsampleConfig `mapstructure:"downsample"`
}

// ClusteringConfig for k-means, elbow and DBSCAN
type ClusteringConfig struct {
	MaxIterations   int     `mapstructure:"max_iterations"`
	Tolerance       float64 `mapstructure:"tolerance"`
	ElbowTrials     int     `mapstructure:"elbow_trials"`
	DBSCANEpsilon   float64 `mapstructure:"dbscan_epsilon"`
	DBSCANMinPoints int     `mapstructure:"dbscan_min_points"`
}

// PCAConfig for power iteration
type PCAConfig struct {
	Tolerance     float64 `mapstructure:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations"`
}

// NetworkConfig for neural network training and prediction
type NetworkConfig struct {
	LearningRate   float64 `mapstructure:"learning_rate"`
	Epochs         int     `mapstructure:"epochs"`
	BatchSize      int     `mapstructure:"batch_size"`
	ErrorThreshold float64 `mapstructure:"error_threshold"`
	MinExamples    int     `mapstructure:"min_examples"`
	Activation     string  `mapstructure:"activation"` // sigmoid, relu, tanh
	Samples        int     `mapstructure:"samples"`    // Monte-Carlo prediction passes
	MaxNetworks    int     `mapstructure:"max_networks"`
}

// ForecastConfig for the time-series forecasters
type ForecastConfig struct {
	Horizon        int     `mapstructure:"horizon"`
	Window         int     `mapstructure:"window"`
	Alpha          float64 `mapstructure:"alpha"`
	Beta           float64 `mapstructure:"beta"`
	Gamma          float64 `mapstructure:"gamma"`
	SeasonalPeriod int     `mapstructure:"seasonal_period"`
	Confidence     float64 `mapstructure:"confidence"`
}

// AnomalyConfig for the anomaly detectors
type AnomalyConfig struct {
	Threshold     float64 `mapstructure:"threshold"`
	IQRMultiplier float64 `mapstructure:"iqr_multiplier"`
	WindowSize    int     `mapstructure:"window_size"`
}

// DownsampleConfig for series reduction
type DownsampleConfig struct {
	Mode      string `mapstructure:"mode"` // auto, lttb, minmax, avg, m4, none
	Threshold int    `mapstructure:"threshold"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.BodyLimit < 0 {
		return fmt.Errorf("body_limit cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// Validate validates metrics configuration
func (c *MetricsConfig) Validate() error {
	if c.Enabled && (c.Path == "" || c.Path[0] != '/') {
		return fmt.Errorf("metrics.path must start with '/'")
	}
	return nil
}

// Validate validates the analytics defaults
func (c *AnalyticsConfig) Validate() error {
	cl := c.Clustering
	if cl.MaxIterations < 1 {
		return fmt.Errorf("clustering.max_iterations must be at least 1")
	}
	if cl.Tolerance < 0 {
		return fmt.Errorf("clustering.tolerance cannot be negative")
	}
	if cl.DBSCANEpsilon <= 0 {
		return fmt.Errorf("clustering.dbscan_epsilon must be positive")
	}
	if cl.DBSCANMinPoints < 1 {
		return fmt.Errorf("clustering.dbscan_min_points must be at least 1")
	}

	if c.PCA.MaxIterations < 1 || c.PCA.Tolerance <= 0 {
		return fmt.Errorf("pca.max_iterations and pca.tolerance must be positive")
	}

	n := c.Network
	if n.LearningRate <= 0 {
		return fmt.Errorf("network.learning_rate must be positive")
	}
	if n.Epochs < 1 || n.BatchSize < 1 {
		return fmt.Errorf("network.epochs and network.batch_size must be at least 1")
	}
	switch n.Activation {
	case "sigmoid", "relu", "tanh":
	default:
		return fmt.Errorf("network.activation must be one of: sigmoid, relu, tanh")
	}

	f := c.Forecast
	if f.Horizon < 1 {
		return fmt.Errorf("forecast.horizon must be at least 1")
	}
	for name, v := range map[string]float64{"alpha": f.Alpha, "beta": f.Beta, "gamma": f.Gamma} {
		if v < 0 || v > 1 {
			return fmt.Errorf("forecast.%s must be within [0, 1]", name)
		}
	}
	if f.Confidence <= 0 || f.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be within (0, 1)")
	}

	if c.Anomaly.Threshold <= 0 {
		return fmt.Errorf("anomaly.threshold must be positive")
	}

	switch c.Downsample.Mode {
	case "auto", "lttb", "minmax", "avg", "m4", "none":
	default:
		return fmt.Errorf("downsample.mode must be one of: auto, lttb, minmax, avg, m4, none")
	}
	if c.Downsample.Threshold < 2 {
		return fmt.Errorf("downsample.threshold must be at least 2")
	}

	return nil
}
