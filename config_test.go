// FILE: driftlake/logship/config_test.go
package logship

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, "./logdata", cfg.Directory)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, int64(1024), cfg.BufferSize)
	assert.Equal(t, defaultMaxPayloadBytes, cfg.MaxPayloadBytes)
	assert.Equal(t, defaultMinPayloadBytes, cfg.MinPayloadBytes)
	assert.Equal(t, defaultPayloadBudgetBytes, cfg.PayloadBudgetBytes)
	assert.Equal(t, 72.0, cfg.ReportTTLHrs)
	assert.Equal(t, int64(60), cfg.HarvestPeriodS)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigReturnsCopy(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg1.Level = LevelError
	cfg1.Directory = "/changed"

	cfg2 := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg2.Level)
	assert.Equal(t, "./logdata", cfg2.Directory)
}

func TestNewConfigFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.toml")

	tomlContent := `
[logship]
  level = 8
  directory = "/custom/logdata"
  enabled = false
  buffer_size = 256
  max_payload_bytes = 2097152
  min_payload_bytes = 1024
  payload_budget_bytes = 65536
  report_ttl_hrs = 24.0
  harvest_period_s = 30
  flush_timeout_ms = 500
  collector_url = "https://collector.example.com/logs"
  internal_errors_to_stderr = true
`
	require.NoError(t, os.WriteFile(configPath, []byte(tomlContent), 0644))

	cfg, err := NewConfigFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, LevelError, cfg.Level)
	assert.Equal(t, "/custom/logdata", cfg.Directory)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, int64(256), cfg.BufferSize)
	assert.Equal(t, int64(2097152), cfg.MaxPayloadBytes)
	assert.Equal(t, int64(1024), cfg.MinPayloadBytes)
	assert.Equal(t, int64(65536), cfg.PayloadBudgetBytes)
	assert.Equal(t, 24.0, cfg.ReportTTLHrs)
	assert.Equal(t, int64(30), cfg.HarvestPeriodS)
	assert.Equal(t, int64(500), cfg.FlushTimeoutMs)
	assert.Equal(t, "https://collector.example.com/logs", cfg.CollectorURL)
	assert.True(t, cfg.InternalErrorsToStderr)
}

func TestNewConfigFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "partial_config.toml")

	// Unset keys keep their defaults
	tomlContent := `
[logship]
  level = -4
  directory = "/partial/logdata"
`
	require.NoError(t, os.WriteFile(configPath, []byte(tomlContent), 0644))

	cfg, err := NewConfigFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, LevelDebug, cfg.Level)
	assert.Equal(t, "/partial/logdata", cfg.Directory)
	assert.Equal(t, int64(1024), cfg.BufferSize)
	assert.Equal(t, defaultMaxPayloadBytes, cfg.MaxPayloadBytes)
}

func TestNewConfigFromFileMissing(t *testing.T) {
	// A missing file yields the defaults, not an error
	cfg, err := NewConfigFromFile(filepath.Join(t.TempDir(), "does_not_exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, cfg.Level)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty directory", func(c *Config) { c.Directory = "  " }},
		{"zero buffer size", func(c *Config) { c.BufferSize = 0 }},
		{"negative buffer size", func(c *Config) { c.BufferSize = -1 }},
		{"zero max payload", func(c *Config) { c.MaxPayloadBytes = 0 }},
		{"zero payload budget", func(c *Config) { c.PayloadBudgetBytes = 0 }},
		{"negative min payload", func(c *Config) { c.MinPayloadBytes = -1 }},
		{"min above max", func(c *Config) { c.MinPayloadBytes = c.MaxPayloadBytes + 1 }},
		{"negative ttl", func(c *Config) { c.ReportTTLHrs = -1 }},
		{"negative harvest period", func(c *Config) { c.HarvestPeriodS = -1 }},
		{"zero flush timeout", func(c *Config) { c.FlushTimeoutMs = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Directory = "/original"

	clone := cfg.Clone()
	clone.Directory = "/mutated"
	clone.Level = LevelError

	assert.Equal(t, "/original", cfg.Directory)
	assert.Equal(t, LevelInfo, cfg.Level)
}

func TestLevelConversion(t *testing.T) {
	for str, want := range map[string]int64{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		" warn": LevelWarn,
		"Error": LevelError,
	} {
		got, err := Level(str)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Level("verbose")
	assert.Error(t, err)
}
