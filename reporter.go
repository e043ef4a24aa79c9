// FILE: driftlake/logship/reporter.go
package logship

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Reporter owns the log data directory and the full lifecycle of its files:
// rotation, rollup, expiry, cleanup and crash recovery. All working-file
// mutation goes through workingMu, so a rotation never races an in-flight
// append.
type Reporter struct {
	dir           string
	currentConfig atomic.Pointer[Config]
	enabled       atomic.Bool
	sender        atomic.Value // stores senderBox

	workingMu   sync.Mutex
	workingFile *os.File // nil after FinalizeWorkingFile
	workingSize int64

	// Lifecycle statistics
	TotalRotations atomic.Uint64
	TotalRollups   atomic.Uint64
	TotalDeletions atomic.Uint64
}

// senderBox wraps a Sender, atomic value type change workaround
type senderBox struct {
	s Sender
}

// instance holds the most recently initialized reporter. One live instance
// per directory is the caller's discipline; the pointer exists so host code
// that cannot thread the handle can still reach it.
var instance atomic.Pointer[Reporter]

// Instance returns the currently installed reporter, or nil before a
// successful Initialize
func Instance() *Reporter {
	return instance.Load()
}

// Initialize validates the log data directory and configuration, recovers any
// quarantined files from a prior session, ensures the working file exists and
// installs the returned reporter as the package instance.
//
// Failures are ErrConfiguration and leave no partial state: no instance
// installed, no files created.
func Initialize(dir string, cfg *Config) (*Reporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: configuration cannot be nil", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: log directory '%s' is missing: %v", ErrConfiguration, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: log data store '%s' is not a directory", ErrConfiguration, dir)
	}

	r := &Reporter{dir: dir}
	r.currentConfig.Store(cfg.Clone())
	r.enabled.Store(cfg.Enabled)

	// Writability probe doubles as working file creation
	f, err := r.openWorkingFile()
	if err != nil {
		return nil, fmt.Errorf("%w: log directory '%s' is not writable: %v", ErrConfiguration, dir, err)
	}
	r.workingFile = f
	if fi, errStat := f.Stat(); errStat == nil {
		r.workingSize = fi.Size()
	}

	// Re-admit quarantined data from a crashed or failed prior session
	if err := r.Recover(); err != nil {
		r.internalLog("recovery scan failed: %v\n", err)
	}

	instance.Store(r)
	return r, nil
}

// config returns the current configuration (thread-safe)
func (r *Reporter) config() *Config {
	return r.currentConfig.Load()
}

// Config returns a copy of the current configuration
func (r *Reporter) Config() *Config {
	return r.config().Clone()
}

// Directory returns the managed log data directory
func (r *Reporter) Directory() string {
	return r.dir
}

// SetEnabled toggles report generation. Start and Stop are no-ops while
// disabled; buffered writing continues either way.
func (r *Reporter) SetEnabled(enabled bool) {
	r.enabled.Store(enabled)
}

// Enabled reports whether harvest hooks are active
func (r *Reporter) Enabled() bool {
	return r.enabled.Load()
}

// SetSender installs the payload sender used after rollup. A nil sender
// leaves finished archives in the directory.
func (r *Reporter) SetSender(s Sender) {
	r.sender.Store(senderBox{s: s})
}

// getSender retrieves the configured sender, or nil
func (r *Reporter) getSender() Sender {
	if box, ok := r.sender.Load().(senderBox); ok {
		return box.s
	}
	return nil
}

// internalLog handles writing internal diagnostics to stderr, if enabled.
// The shipper cannot report its own failures through itself.
func (r *Reporter) internalLog(format string, args ...any) {
	if !r.config().InternalErrorsToStderr {
		return
	}
	if !strings.HasPrefix(format, "logship: ") {
		format = "logship: " + format
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// workingFilePath returns the full path of the single working file
func (r *Reporter) workingFilePath() string {
	return filepath.Join(r.dir, workingFileName())
}

// openWorkingFile opens an append handle on the working file, creating it
// when absent
func (r *Reporter) openWorkingFile() (*os.File, error) {
	path := r.workingFilePath()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmtErrorf("failed to open working file '%s': %w", path, err)
	}
	return file, nil
}

// WorkingFile returns the path of the working file, creating it and a fresh
// append handle when absent
func (r *Reporter) WorkingFile() (string, error) {
	r.workingMu.Lock()
	defer r.workingMu.Unlock()

	if err := r.ensureWorkingLocked(); err != nil {
		return "", err
	}
	return r.workingFilePath(), nil
}

// ensureWorkingLocked opens the append handle if needed. Caller holds workingMu.
func (r *Reporter) ensureWorkingLocked() error {
	if r.workingFile != nil {
		return nil
	}
	f, err := r.openWorkingFile()
	if err != nil {
		return err
	}
	r.workingFile = f
	r.workingSize = 0
	if fi, errStat := f.Stat(); errStat == nil {
		r.workingSize = fi.Size()
	}
	return nil
}

// appendRecord writes one serialized record to the working file. When the
// write would push the file past the payload budget, the file is rotated
// first. An invalidated handle is recovered by reopening the working file;
// data buffered before the failure is not re-sent.
func (r *Reporter) appendRecord(data []byte) error {
	r.workingMu.Lock()
	defer r.workingMu.Unlock()

	if err := r.ensureWorkingLocked(); err != nil {
		return err
	}

	budget := r.config().PayloadBudgetBytes
	if budget > 0 && r.workingSize > 0 && r.workingSize+int64(len(data)) > budget {
		if _, err := r.rollWorkingLocked(); err != nil {
			r.internalLog("budget rotation failed: %v\n", err)
		}
	}

	n, err := r.workingFile.Write(data)
	if err != nil {
		r.internalLog("append failed, reopening working file: %v\n", err)
		_ = r.workingFile.Close()
		r.workingFile = nil
		if reopenErr := r.ensureWorkingLocked(); reopenErr != nil {
			return combineErrors(err, reopenErr)
		}
		n, err = r.workingFile.Write(data)
		if err != nil {
			return fmtErrorf("failed to append record: %w", err)
		}
	}
	r.workingSize += int64(n)
	return nil
}

// syncWorking flushes the working file buffer to storage
func (r *Reporter) syncWorking() error {
	r.workingMu.Lock()
	defer r.workingMu.Unlock()

	if r.workingFile == nil {
		return nil
	}
	if err := r.workingFile.Sync(); err != nil {
		return fmtErrorf("failed to sync working file: %w", err)
	}
	return nil
}

// RollFile renames the given working file to a closed file stamped with the
// current time and returns the closed path. The rename is atomic; no record
// is lost or duplicated across the boundary.
func (r *Reporter) RollFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: cannot roll '%s': %v", ErrNotFound, path, err)
	}

	ts := time.Now()
	dest := filepath.Join(r.dir, stampedFileName(StateClosed, ts))
	for {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		// Same-millisecond rotation, bump the stamp
		ts = ts.Add(time.Millisecond)
		dest = filepath.Join(r.dir, stampedFileName(StateClosed, ts))
	}

	if err := os.Rename(path, dest); err != nil {
		return "", fmtErrorf("failed to roll '%s' to '%s': %w", path, dest, err)
	}
	return dest, nil
}

// RollWorkingFile flushes and closes the current append handle, rotates the
// working file out as a closed file and opens a fresh working file. Called by
// the harvest stop hook and reactively when the payload budget is exceeded.
func (r *Reporter) RollWorkingFile() (string, error) {
	r.workingMu.Lock()
	defer r.workingMu.Unlock()
	return r.rollWorkingLocked()
}

// rollWorkingLocked implements rotation. Caller holds workingMu.
func (r *Reporter) rollWorkingLocked() (string, error) {
	// Nothing accrued, skip the pointless rotation
	if fi, err := os.Stat(r.workingFilePath()); err == nil && fi.Size() == 0 {
		return "", nil
	}

	if r.workingFile != nil {
		_ = r.workingFile.Sync()
		if err := r.workingFile.Close(); err != nil {
			r.internalLog("failed to close working file before rotation: %v\n", err)
		}
		r.workingFile = nil
	}

	closed, err := r.RollFile(r.workingFilePath())
	if err != nil {
		// Leave the handle closed; the next append reopens
		return "", err
	}

	if err := r.ensureWorkingLocked(); err != nil {
		return closed, err
	}
	r.TotalRotations.Add(1)
	return closed, nil
}

// FinalizeWorkingFile flushes and closes the append handle without creating a
// replacement. Used at shutdown; the handle reference is cleared.
func (r *Reporter) FinalizeWorkingFile() error {
	r.workingMu.Lock()
	defer r.workingMu.Unlock()

	if r.workingFile == nil {
		return nil
	}

	var finalErr error
	if err := r.workingFile.Sync(); err != nil {
		finalErr = fmtErrorf("failed to sync working file during finalize: %w", err)
	}
	if err := r.workingFile.Close(); err != nil {
		finalErr = combineErrors(finalErr, fmtErrorf("failed to close working file during finalize: %w", err))
	}
	r.workingFile = nil
	return finalErr
}

// CachedFiles returns the directory's files in the requested state, sorted by
// name. The fixed-width timestamp component makes name order chronological.
// StateAll matches every recognized state.
func (r *Reporter) CachedFiles(state FileState) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmtErrorf("failed to read log directory '%s': %w", r.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		st, ok := stateForName(entry.Name())
		if !ok {
			continue
		}
		if state == StateAll || st == state {
			files = append(files, filepath.Join(r.dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// TypeOfFile classifies a file by its name. Returns ErrNotFound when the file
// does not exist or its name is outside the recognized convention.
func (r *Reporter) TypeOfFile(path string) (FileState, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrNotFound, path, err)
	}
	st, ok := stateForName(filepath.Base(path))
	if !ok {
		return 0, fmt.Errorf("%w: unrecognized file name '%s'", ErrNotFound, filepath.Base(path))
	}
	return st, nil
}

// IsFileTypeOf reports whether the file is in the given state. StateAll is a
// query wildcard and never matches an individual file.
func (r *Reporter) IsFileTypeOf(path string, state FileState) bool {
	if state == StateAll {
		return false
	}
	st, err := r.TypeOfFile(path)
	return err == nil && st == state
}

// SafeDelete permanently deletes the file, degrading to quarantine when the
// delete fails: the file is renamed into the expired state instead, never
// lost. Calling SafeDelete on an already-expired file is a no-op; expired
// deletion is reserved for Cleanup.
func (r *Reporter) SafeDelete(path string) error {
	st, err := r.TypeOfFile(path)
	if err != nil {
		return err
	}
	if st == StateExpired {
		return nil
	}

	removeErr := os.Remove(path)
	if removeErr == nil {
		r.TotalDeletions.Add(1)
		return nil
	}

	quarantine := expiredName(path)
	if renameErr := os.Rename(path, quarantine); renameErr != nil {
		return combineErrors(
			fmtErrorf("failed to delete '%s': %w", path, removeErr),
			fmtErrorf("failed to quarantine '%s': %w", path, renameErr))
	}
	_ = os.Chmod(quarantine, 0444)
	r.internalLog("delete failed for '%s', quarantined instead: %v\n", path, removeErr)
	return nil
}

// Expire renames every closed file older than the TTL into the expired state.
// Files are never deleted here. Individual failures do not abort the sweep.
func (r *Reporter) Expire(ttl time.Duration) error {
	closed, err := r.CachedFiles(StateClosed)
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-ttl)
	for _, path := range closed {
		info, errStat := os.Stat(path)
		if errStat != nil {
			r.internalLog("expire skipped '%s': %v\n", path, errStat)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		quarantine := expiredName(path)
		if errRen := os.Rename(path, quarantine); errRen != nil {
			r.internalLog("failed to expire '%s': %v\n", path, errRen)
			continue
		}
		_ = os.Chmod(quarantine, 0444)
	}
	return nil
}

// Cleanup unconditionally deletes every expired file. Individual failures do
// not abort the sweep.
func (r *Reporter) Cleanup() error {
	expired, err := r.CachedFiles(StateExpired)
	if err != nil {
		return err
	}

	for _, path := range expired {
		if errRem := os.Remove(path); errRem != nil {
			r.internalLog("failed to clean up '%s': %v\n", path, errRem)
			continue
		}
		r.TotalDeletions.Add(1)
	}
	return nil
}

// Recover renames every expired file back to its closed name, restoring
// writability and re-admitting it to the rollup pool. This is the retry path
// for data that survived a failed send or a prior quarantine.
func (r *Reporter) Recover() error {
	expired, err := r.CachedFiles(StateExpired)
	if err != nil {
		return err
	}

	for _, path := range expired {
		restored := recoveredName(path)
		if errRen := os.Rename(path, restored); errRen != nil {
			r.internalLog("failed to recover '%s': %v\n", path, errRen)
			continue
		}
		_ = os.Chmod(restored, 0644)
	}
	return nil
}
