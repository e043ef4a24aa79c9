// FILE: driftlake/logship/type.go
package logship

import (
	"time"
)

// logRecord represents a single log entry queued for the append worker
type logRecord struct {
	TimeStamp  time.Time
	Level      int64
	Message    string
	Attributes map[string]any
}

// FileState classifies a managed file by its position in the lifecycle.
// The state is encoded in the filename suffix, never in a side index.
type FileState int

const (
	// StateWorking is the single currently-active append target
	StateWorking FileState = iota
	// StateClosed is a rotated-out, complete, read-only log unit awaiting rollup
	StateClosed
	// StateRollup is a merged, size-bounded archive ready for upload
	StateRollup
	// StateExpired is a quarantined closed file, aged past TTL or failed deletion
	StateExpired
	// StateAll is a query-only wildcard matching every recognized state.
	// It is never the state of an individual file.
	StateAll
)

// String returns the state name for diagnostics
func (s FileState) String() string {
	switch s {
	case StateWorking:
		return "working"
	case StateClosed:
		return "closed"
	case StateRollup:
		return "rollup"
	case StateExpired:
		return "expired"
	case StateAll:
		return "all"
	default:
		return "unknown"
	}
}

// extension returns the filename suffix literal for a concrete state
func (s FileState) extension() string {
	switch s {
	case StateWorking:
		return extWorking
	case StateClosed:
		return extClosed
	case StateRollup:
		return extRollup
	case StateExpired:
		return extExpired
	default:
		return ""
	}
}
