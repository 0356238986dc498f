package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "csv", cfg.Storage.BronzeFormat)
	assert.Equal(t, "parquet", cfg.Storage.SilverFormat)
	assert.Equal(t, 3, cfg.Pipeline.RetryAttempts)
	assert.Equal(t, 2*time.Second, cfg.Pipeline.RetryDelay)
	assert.Equal(t, 0.10, cfg.Validation.NullRatioThreshold)
	assert.False(t, cfg.Pipeline.Strict)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MACRO_STORAGE_DATA_DIR", t.TempDir())
	t.Setenv("MACRO_PIPELINE_RETRY_ATTEMPTS", "5")
	t.Setenv("MACRO_VALIDATION_STRICT", "true")
	t.Setenv("MACRO_STORAGE_SILVER_FORMAT", "csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pipeline.RetryAttempts)
	assert.True(t, cfg.Validation.Strict)
	assert.Equal(t, "csv", cfg.Storage.SilverFormat)
	// Untouched fields keep their defaults.
	assert.Equal(t, "csv", cfg.Storage.BronzeFormat)
	assert.Equal(t, 730, cfg.Collector.WindowDays)
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "bad silver format",
			mutate: func(c *Config) { c.Storage.SilverFormat = "xlsx" },
		},
		{
			name:   "null ratio above one",
			mutate: func(c *Config) { c.Validation.NullRatioThreshold = 1.5 },
		},
		{
			name:   "zero retry attempts",
			mutate: func(c *Config) { c.Pipeline.RetryAttempts = 0 },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "trace" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
