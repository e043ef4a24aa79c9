// FILE: driftlake/logship/naming.go
package logship

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// The naming scheme keeps every lifecycle transition expressible as a single
// atomic rename or delete:
//
//	logdata.tmp                working (at most one per directory)
//	logdata.<unixmilli>.dat    closed
//	logdata.<unixmilli>.rollup archive
//	<closed-name>.bak          expired (suffix appended in place)
//
// Expiry appends a suffix rather than rewriting the name, so recovery is a
// suffix strip and the original timestamp survives quarantine.

// workingFileName returns the filename of the single working file
func workingFileName() string {
	return logBaseName + "." + extWorking
}

// stampedFileName builds a closed or rollup filename for the given timestamp
func stampedFileName(state FileState, ts time.Time) string {
	return logBaseName + "." + strconv.FormatInt(ts.UnixMilli(), 10) + "." + state.extension()
}

// expiredName returns the quarantine name for a closed file path
func expiredName(path string) string {
	return path + "." + extExpired
}

// recoveredName strips the quarantine suffix, restoring the closed name
func recoveredName(path string) string {
	return strings.TrimSuffix(path, "."+extExpired)
}

// stateForName classifies a bare filename. Returns false for names outside
// the recognized convention.
func stateForName(name string) (FileState, bool) {
	if name == workingFileName() {
		return StateWorking, true
	}
	if inner, ok := strings.CutSuffix(name, "."+extExpired); ok {
		// Quarantine wraps an otherwise valid stamped name
		if st, innerOK := stateForName(inner); innerOK && (st == StateClosed || st == StateRollup) {
			return StateExpired, true
		}
		return 0, false
	}

	rest, ok := strings.CutPrefix(name, logBaseName+".")
	if !ok {
		return 0, false
	}
	stamp, ext, found := strings.Cut(rest, ".")
	if !found {
		return 0, false
	}
	if _, err := strconv.ParseInt(stamp, 10, 64); err != nil {
		return 0, false
	}
	switch ext {
	case extClosed:
		return StateClosed, true
	case extRollup:
		return StateRollup, true
	}
	return 0, false
}

// FileNameParts decomposes a managed file path for diagnostics and testing
type FileNameParts struct {
	Dir  string
	Base string // filename without the final extension
	Ext  string // final extension without the dot
}

// FileNameAsParts splits a path into directory, base name and extension
func FileNameAsParts(path string) FileNameParts {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return FileNameParts{
		Dir:  dir,
		Base: strings.TrimSuffix(name, ext),
		Ext:  strings.TrimPrefix(ext, "."),
	}
}
