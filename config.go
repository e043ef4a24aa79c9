// FILE: driftlake/logship/config.go
package logship

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/lixenwraith/config"
)

// Config holds all shipper configuration values
type Config struct {
	// Basic settings
	Level     int64  `toml:"level"`     // Minimum severity accepted by the logger
	Directory string `toml:"directory"` // Log data store directory
	Enabled   bool   `toml:"enabled"`   // Remote log reporting on/off

	// Buffer and size limits
	BufferSize         int64 `toml:"buffer_size"`          // Append queue capacity
	MaxPayloadBytes    int64 `toml:"max_payload_bytes"`    // Hard ceiling per rollup archive
	MinPayloadBytes    int64 `toml:"min_payload_bytes"`    // Skip archiving below this total
	PayloadBudgetBytes int64 `toml:"payload_budget_bytes"` // Working file size forcing rotation

	// Timers
	ReportTTLHrs   float64 `toml:"report_ttl_hrs"`   // Hours before closed files expire
	HarvestPeriodS int64   `toml:"harvest_period_s"` // Harvest driver period (0=no driver)
	FlushTimeoutMs int64   `toml:"flush_timeout_ms"` // Default flush wait

	// Upload settings
	CollectorURL string `toml:"collector_url"` // Archive upload endpoint ("" = keep local)

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:     LevelInfo,
	Directory: "./logdata",
	Enabled:   true,

	BufferSize:         1024,
	MaxPayloadBytes:    defaultMaxPayloadBytes,
	MinPayloadBytes:    defaultMinPayloadBytes,
	PayloadBudgetBytes: defaultPayloadBudgetBytes,

	ReportTTLHrs:   72.0,
	HarvestPeriodS: 60,
	FlushTimeoutMs: 1000,

	CollectorURL: "",

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from a TOML file and returns a validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct("logship.", *cfg); err != nil {
		return nil, fmt.Errorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	// Extract values into our Config struct
	if err := extractConfig(loader, "logship.", cfg); err != nil {
		return nil, fmt.Errorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		key := prefix + tomlTag
		val, found := loader.Get(key)
		if !found {
			continue // Use default value
		}

		if err := setFieldValue(fieldValue, val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		floatVal, ok := value.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", value)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory) == "" {
		return fmt.Errorf("%w: directory cannot be empty", ErrConfiguration)
	}

	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer_size must be positive: %d", ErrConfiguration, c.BufferSize)
	}

	if c.MaxPayloadBytes <= 0 || c.PayloadBudgetBytes <= 0 {
		return fmt.Errorf("%w: payload sizes must be positive", ErrConfiguration)
	}

	if c.MinPayloadBytes < 0 {
		return fmt.Errorf("%w: min_payload_bytes cannot be negative: %d", ErrConfiguration, c.MinPayloadBytes)
	}

	if c.MinPayloadBytes > c.MaxPayloadBytes {
		return fmt.Errorf("%w: min_payload_bytes (%d) cannot exceed max_payload_bytes (%d)",
			ErrConfiguration, c.MinPayloadBytes, c.MaxPayloadBytes)
	}

	if c.ReportTTLHrs < 0 {
		return fmt.Errorf("%w: report_ttl_hrs cannot be negative: %f", ErrConfiguration, c.ReportTTLHrs)
	}

	if c.HarvestPeriodS < 0 {
		return fmt.Errorf("%w: harvest_period_s cannot be negative: %d", ErrConfiguration, c.HarvestPeriodS)
	}

	if c.FlushTimeoutMs <= 0 {
		return fmt.Errorf("%w: flush_timeout_ms must be positive: %d", ErrConfiguration, c.FlushTimeoutMs)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}
