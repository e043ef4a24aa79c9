// FILE: driftlake/logship/logger.go
package logship

import (
	"time"
)

// Logger is the asynchronous buffered writer. Calls to Log from any number of
// goroutines only enqueue; one dedicated worker serializes and appends, so
// records land in strict submission order without write-level locking.
type Logger struct {
	reporter   *Reporter
	serializer *serializer // owned by the worker goroutine
	state      State
}

// NewLogger creates a buffered writer appending through the given reporter
func NewLogger(r *Reporter) *Logger {
	l := &Logger{
		reporter:   r,
		serializer: newSerializer(),
	}

	// Create a closed channel initially to prevent nil pointer issues
	initialChan := make(chan logRecord)
	close(initialChan)
	l.state.ActiveChannel.Store(initialChan)
	l.state.WorkerExited.Store(true)

	l.state.flushRequestChan = make(chan chan struct{}, 1)

	return l
}

// Start launches the append worker. Safe to call multiple times.
func (l *Logger) Start() error {
	if l.reporter == nil {
		return fmtErrorf("logger requires an initialized reporter")
	}
	if l.state.ShutdownCalled.Load() {
		return fmtErrorf("logger already shut down")
	}

	if l.state.Started.CompareAndSwap(false, true) {
		cfg := l.reporter.config()

		ch := make(chan logRecord, cfg.BufferSize)
		l.state.ActiveChannel.Store(ch)

		l.state.WorkerExited.Store(false)
		go l.processRecords(ch)
	}

	return nil
}

// Log accepts one log record. Records below the configured level are filtered
// before any serialization or queueing; this is the primary cost control. The
// call never blocks the caller.
func (l *Logger) Log(level int64, message string) {
	l.submit(level, message, nil)
}

// LogAttributes accepts one log record with structured attributes
func (l *Logger) LogAttributes(level int64, message string, attributes map[string]any) {
	l.submit(level, message, attributes)
}

func (l *Logger) submit(level int64, message string, attributes map[string]any) {
	// No reporter means nowhere to append; drop instead of crashing the caller
	if l.reporter == nil {
		l.state.DroppedLogs.Add(1)
		return
	}
	if level < l.reporter.config().Level {
		return
	}

	record := logRecord{
		TimeStamp:  time.Now(),
		Level:      level,
		Message:    message,
		Attributes: attributes,
	}
	l.sendRecord(record)
}

// sendRecord handles safe sending to the active channel
func (l *Logger) sendRecord(record logRecord) {
	defer func() {
		if r := recover(); r != nil { // Catch panic on send to closed channel
			l.state.DroppedLogs.Add(1)
		}
	}()

	if l.state.ShutdownCalled.Load() || !l.state.Started.Load() {
		l.state.DroppedLogs.Add(1)
		return
	}

	ch := l.currentChannel()

	// Non-blocking send
	select {
	case ch <- record:
		l.state.TotalSubmitted.Add(1)
	default:
		l.state.DroppedLogs.Add(1)
	}
}

// currentChannel safely retrieves the active record channel
func (l *Logger) currentChannel() chan logRecord {
	return l.state.ActiveChannel.Load().(chan logRecord)
}

// processRecords is the append worker loop. It is the sole consumer of the
// queue; processing strictly in arrival order is what gives the writer its
// ordering guarantee.
func (l *Logger) processRecords(ch <-chan logRecord) {
	defer l.state.WorkerExited.Store(true)

	for {
		select {
		case record, ok := <-ch:
			if !ok {
				// Channel closed: final sync and exit
				if err := l.reporter.syncWorking(); err != nil {
					l.reporter.internalLog("final sync failed: %v\n", err)
				}
				return
			}
			l.appendRecord(record)

		case confirmChan := <-l.state.flushRequestChan:
			l.drainPending(ch)
			if err := l.reporter.syncWorking(); err != nil {
				l.reporter.internalLog("flush sync failed: %v\n", err)
			}
			close(confirmChan) // Signal completion back to the Flush caller
		}
	}
}

// appendRecord serializes one record and appends it through the reporter
func (l *Logger) appendRecord(record logRecord) {
	data := l.serializer.line(record)
	if err := l.reporter.appendRecord(data); err != nil {
		l.state.DroppedLogs.Add(1)
		l.reporter.internalLog("failed to append log record: %v\n", err)
	}
}

// drainPending consumes every record already queued, so a flush covers all
// records submitted before the Flush call
func (l *Logger) drainPending(ch <-chan logRecord) {
	for {
		select {
		case record, ok := <-ch:
			if !ok {
				return
			}
			l.appendRecord(record)
		default:
			return
		}
	}
}

// TotalSubmitted returns the number of records accepted into the queue
func (l *Logger) TotalSubmitted() uint64 {
	return l.state.TotalSubmitted.Load()
}

// DroppedCount returns the number of records dropped because the queue was
// full or the writer was shut down
func (l *Logger) DroppedCount() uint64 {
	return l.state.DroppedLogs.Load()
}

// Flush blocks until every record submitted so far has been appended and the
// working file buffer is flushed to storage, or the timeout elapses
func (l *Logger) Flush(timeout time.Duration) error {
	l.state.flushMutex.Lock()
	defer l.state.flushMutex.Unlock()

	if l.state.ShutdownCalled.Load() {
		return fmtErrorf("logger already shut down")
	}
	if !l.state.Started.Load() {
		return fmtErrorf("logger not started")
	}

	// Create a channel to wait for confirmation from the worker
	confirmChan := make(chan struct{})

	// Send the request with the confirmation channel
	select {
	case l.state.flushRequestChan <- confirmChan:
		// Request sent
	case <-time.After(minWaitTime): // Short timeout to prevent blocking if worker is stuck
		return fmtErrorf("failed to send flush request to worker (possible deadlock or high load)")
	}

	select {
	case <-confirmChan:
		return nil
	case <-time.After(timeout):
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}

// Shutdown stops accepting records and terminates the worker after it drains
// the queue. Log calls after shutdown are dropped silently, never a panic to
// the caller. If no timeout is provided, uses 2x the configured flush timeout.
func (l *Logger) Shutdown(timeout ...time.Duration) error {
	if !l.state.ShutdownCalled.CompareAndSwap(false, true) {
		return nil
	}

	if !l.state.Started.CompareAndSwap(true, false) {
		l.state.WorkerExited.Store(true)
		return nil
	}

	// Swap in a closed channel so concurrent senders fail fast, then close
	// the real channel to signal the worker
	ch := l.currentChannel()
	closedChan := make(chan logRecord)
	close(closedChan)
	l.state.ActiveChannel.Store(closedChan)
	close(ch)

	var effectiveTimeout time.Duration
	if len(timeout) > 0 {
		effectiveTimeout = timeout[0]
	} else {
		cfg := l.reporter.config()
		effectiveTimeout = 2 * time.Duration(cfg.FlushTimeoutMs) * time.Millisecond
	}

	deadline := time.Now().Add(effectiveTimeout)
	for time.Now().Before(deadline) {
		if l.state.WorkerExited.Load() {
			return nil
		}
		time.Sleep(minWaitTime)
	}

	return fmtErrorf("append worker did not exit within timeout (%v)", effectiveTimeout)
}
