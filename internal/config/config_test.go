package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid http port",
			mutate:  func(c *Config) { c.Server.HTTPPort = 0 },
			wantErr: true,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "invalid logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "relative metrics path",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: true,
		},
		{
			name:    "metrics path ignored when disabled",
			mutate:  func(c *Config) { c.Metrics.Enabled = false; c.Metrics.Path = "" },
			wantErr: false,
		},
		{
			name:    "non-positive dbscan epsilon",
			mutate:  func(c *Config) { c.Analytics.Clustering.DBSCANEpsilon = 0 },
			wantErr: true,
		},
		{
			name:    "unknown activation",
			mutate:  func(c *Config) { c.Analytics.Network.Activation = "softmax" },
			wantErr: true,
		},
		{
			name:    "alpha out of range",
			mutate:  func(c *Config) { c.Analytics.Forecast.Alpha = 1.5 },
			wantErr: true,
		},
		{
			name:    "confidence of one",
			mutate:  func(c *Config) { c.Analytics.Forecast.Confidence = 1 },
			wantErr: true,
		},
		{
			name:    "zero anomaly threshold",
			mutate:  func(c *Config) { c.Analytics.Anomaly.Threshold = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.HTTPPort != 5555 {
		t.Errorf("expected HTTPPort 5555, got %d", cfg.Server.HTTPPort)
	}

	if cfg.Analytics.PCA.Tolerance != 1e-4 || cfg.Analytics.PCA.MaxIterations != 1000 {
		t.Errorf("unexpected PCA defaults: %+v", cfg.Analytics.PCA)
	}

	if cfg.Analytics.Network.ErrorThreshold != 0.001 || cfg.Analytics.Network.MinExamples != 10 {
		t.Errorf("unexpected network defaults: %+v", cfg.Analytics.Network)
	}

	if cfg.Analytics.Anomaly.Threshold != 2.5 {
		t.Errorf("expected anomaly threshold 2.5, got %v", cfg.Analytics.Anomaly.Threshold)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.IsProduction() {
		t.Error("default config should be production mode")
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	if !cfg.IsDevelopment() {
		t.Error("config with debug/console should be development mode")
	}

	if addr := cfg.GetServerAddress(); addr != "0.0.0.0:5555" {
		t.Errorf("expected '0.0.0.0:5555', got %s", addr)
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  http_port: 7000
  read_timeout: 5s
logging:
  level: debug
  format: console
analytics:
  seed: 42
  forecast:
    horizon: 14
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VITALSIGHT_ANALYTICS_ANOMALY_THRESHOLD", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("expected HTTPPort 7000, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Analytics.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Analytics.Seed)
	}
	if cfg.Analytics.Forecast.Horizon != 14 {
		t.Errorf("expected horizon 14, got %d", cfg.Analytics.Forecast.Horizon)
	}
	// Untouched keys keep their defaults
	if cfg.Analytics.Forecast.Alpha != 0.3 {
		t.Errorf("expected default alpha 0.3, got %v", cfg.Analytics.Forecast.Alpha)
	}
	if cfg.Analytics.Anomaly.Threshold != 3 {
		t.Errorf("expected threshold 3 from environment, got %v", cfg.Analytics.Anomaly.Threshold)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown logging level")
	}

	cfg := LoadOrDefault(path)
	if cfg.Logging.Level != "info" {
		t.Errorf("LoadOrDefault should fall back to defaults, got level %s", cfg.Logging.Level)
	}
}
