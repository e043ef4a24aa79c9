// FILE: driftlake/logship/utility.go
package logship

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the two failure classes callers are expected to
// distinguish. Everything else is wrapped detail.
var (
	// ErrConfiguration reports invalid initialization input: a missing or
	// unwritable directory, a non-directory path, or an absent configuration
	ErrConfiguration = errors.New("logship: invalid configuration")

	// ErrNotFound reports a file that does not exist or whose name does not
	// match the recognized naming convention
	ErrNotFound = errors.New("logship: file not found")
)

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "logship: ") {
		format = "logship: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// Level converts a level string to its numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warn, error)", levelStr)
	}
}

// levelToString converts a numeric level to its display name
func levelToString(level int64) string {
	switch {
	case level <= LevelDebug:
		return "DEBUG"
	case level <= LevelInfo:
		return "INFO"
	case level <= LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}
