// Package config loads the pipeline configuration from environment
// variables (prefix MACRO) layered over an optional config.yaml file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Storage    StorageConfig    `yaml:"storage" envconfig:"STORAGE"`
	Collector  CollectorConfig  `yaml:"collector" envconfig:"COLLECTOR"`
	Pipeline   PipelineConfig   `yaml:"pipeline" envconfig:"PIPELINE"`
	Validation ValidationConfig `yaml:"validation" envconfig:"VALIDATION"`
	Metrics    MetricsConfig    `yaml:"metrics" envconfig:"METRICS"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// StorageConfig configures the object store root and per-layer formats.
type StorageConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	BronzeFormat string `yaml:"bronze_format" envconfig:"BRONZE_FORMAT" validate:"oneof=csv"`
	SilverFormat string `yaml:"silver_format" envconfig:"SILVER_FORMAT" validate:"oneof=parquet csv"`
	GoldFormat   string `yaml:"gold_format" envconfig:"GOLD_FORMAT" validate:"oneof=parquet"`
}

// CollectorConfig configures the raw data collectors.
type CollectorConfig struct {
	BCBBaseURL     string        `yaml:"bcb_base_url" envconfig:"BCB_BASE_URL" validate:"url"`
	IBGEBaseURL    string        `yaml:"ibge_base_url" envconfig:"IBGE_BASE_URL" validate:"url"`
	WindowDays     int           `yaml:"window_days" envconfig:"WINDOW_DAYS" validate:"min=1"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" validate:"gt=0"`
	MaxConcurrent  int           `yaml:"max_concurrent" envconfig:"MAX_CONCURRENT" validate:"min=1"`
}

// PipelineConfig configures the refinement orchestrator and gold aggregator.
type PipelineConfig struct {
	RetryAttempts int           `yaml:"retry_attempts" envconfig:"RETRY_ATTEMPTS" validate:"min=1"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY"`
	Strict        bool          `yaml:"strict" envconfig:"STRICT"`
}

// ValidationConfig configures the advisory data-quality checks.
type ValidationConfig struct {
	NullRatioThreshold float64 `yaml:"null_ratio_threshold" envconfig:"NULL_RATIO_THRESHOLD" validate:"gte=0,lte=1"`
	Strict             bool    `yaml:"strict" envconfig:"STRICT"`
}

// MetricsConfig configures the optional Pushgateway export for batch runs.
type MetricsConfig struct {
	PushURL string `yaml:"push_url" envconfig:"PUSH_URL"`
	Job     string `yaml:"job" envconfig:"JOB"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Load loads configuration by layering an optional yaml file and then
// environment variables over the defaults. Environment variables take
// precedence over file values.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("MACRO", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// configFilePath returns the path to the config file, if one exists
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration without consulting the
// environment. Used by tests and as a fallback when Load fails.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DataDir:      "data",
			BronzeFormat: "csv",
			SilverFormat: "parquet",
			GoldFormat:   "parquet",
		},
		Collector: CollectorConfig{
			BCBBaseURL:     "https://api.bcb.gov.br",
			IBGEBaseURL:    "https://servicodados.ibge.gov.br",
			WindowDays:     730,
			RequestTimeout: 30 * time.Second,
			RequestsPerSec: 2,
			MaxConcurrent:  3,
		},
		Pipeline: PipelineConfig{
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
			Strict:        false,
		},
		Validation: ValidationConfig{
			NullRatioThreshold: 0.10,
			Strict:             false,
		},
		Metrics: MetricsConfig{
			Job: "macro-etl",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "both",
			FilePath: "logs/app.log",
		},
	}
}
