package compat

import (
	"fmt"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/driftlake/logship"
)

// Compile-time interface compliance check
var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter wraps logship.Logger to implement fasthttp's Logger interface
type FastHTTPAdapter struct {
	logger        *logship.Logger
	defaultLevel  int64
	levelDetector func(string) int64 // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *logship.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  logship.LevelInfo,
		levelDetector: DetectLogLevel, // Default level detection
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the default log level for Printf calls
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	// Detect log level from message content
	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected := a.levelDetector(msg); detected != 0 {
			level = detected
		}
	}

	a.logger.LogAttributes(level, msg, map[string]any{"source": "fasthttp"})
}

// DetectLogLevel attempts to detect log level from message content
func DetectLogLevel(msg string) int64 {
	msgLower := strings.ToLower(msg)

	// Check for error indicators
	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return logship.LevelError
	}

	// Check for warning indicators
	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "warning") ||
		strings.Contains(msgLower, "deprecated") {
		return logship.LevelWarn
	}

	// Check for debug indicators
	if strings.Contains(msgLower, "debug") ||
		strings.Contains(msgLower, "trace") {
		return logship.LevelDebug
	}

	// Default to info level
	return logship.LevelInfo
}
