package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/panjf2000/gnet/v2/pkg/logging"

	"github.com/driftlake/logship"
)

// Compile-time interface compliance check
var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter wraps logship.Logger to implement gnet logging.Logger interface,
// routing framework logs into the shipper's buffered writer
type GnetAdapter struct {
	logger       *logship.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *logship.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.LogAttributes(logship.LevelDebug, fmt.Sprintf(format, args...), map[string]any{"source": "gnet"})
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.LogAttributes(logship.LevelInfo, fmt.Sprintf(format, args...), map[string]any{"source": "gnet"})
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.LogAttributes(logship.LevelWarn, fmt.Sprintf(format, args...), map[string]any{"source": "gnet"})
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.LogAttributes(logship.LevelError, fmt.Sprintf(format, args...), map[string]any{"source": "gnet"})
}

// Fatalf logs at error level and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.LogAttributes(logship.LevelError, msg, map[string]any{"source": "gnet", "fatal": true})

	// Ensure the record is flushed before exit
	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
