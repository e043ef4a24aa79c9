// FILE: driftlake/logship/constant.go
package logship

import (
	"time"
)

// Log level constants
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// File naming convention. The directory listing is the index: a file's
// lifecycle state is carried entirely in its name.
const (
	// Base name shared by every file the reporter manages
	logBaseName = "logdata"

	extWorking = "tmp"
	extClosed  = "dat"
	extRollup  = "rollup"
	extExpired = "bak"
)

// Payload sizing defaults
const (
	// Hard ceiling on a single rollup archive
	defaultMaxPayloadBytes int64 = 1024 * 1024
	// Below this combined size, archiving is skipped until more data accrues
	defaultMinPayloadBytes int64 = 4096
	// Working file size that forces a proactive rotation
	defaultPayloadBudgetBytes int64 = 512 * 1024
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
)
