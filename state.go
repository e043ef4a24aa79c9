// FILE: driftlake/logship/state.go
package logship

import (
	"sync"
	"sync/atomic"
)

// State encapsulates the runtime state of the buffered writer
type State struct {
	Started        atomic.Bool
	ShutdownCalled atomic.Bool
	WorkerExited   atomic.Bool // Tracks if the append worker goroutine has exited

	ActiveChannel atomic.Value // stores chan logRecord

	flushRequestChan chan chan struct{} // Channel to request a flush
	flushMutex       sync.Mutex         // Protect concurrent Flush calls

	TotalSubmitted atomic.Uint64 // Records accepted into the queue
	DroppedLogs    atomic.Uint64 // Records dropped (queue full or shut down)
}
