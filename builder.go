// FILE: driftlake/logship/builder.go
package logship

import (
	"os"
	"time"
)

// Shipper bundles the reporter, the buffered writer, the sender and the
// harvest driver into one handle owned by the host application's bootstrap
type Shipper struct {
	Reporter *Reporter
	Logger   *Logger
	driver   *HarvestDriver
}

// Log accepts one log record
func (s *Shipper) Log(level int64, message string) {
	s.Logger.Log(level, message)
}

// LogAttributes accepts one log record with structured attributes
func (s *Shipper) LogAttributes(level int64, message string, attributes map[string]any) {
	s.Logger.LogAttributes(level, message, attributes)
}

// Flush blocks until all submitted records are durably appended
func (s *Shipper) Flush(timeout time.Duration) error {
	return s.Logger.Flush(timeout)
}

// Shutdown stops the harvest driver, drains and terminates the writer, and
// finalizes the working file
func (s *Shipper) Shutdown(timeout ...time.Duration) error {
	if s.driver != nil {
		s.driver.Stop()
	}
	err := s.Logger.Shutdown(timeout...)
	return combineErrors(err, s.Reporter.FinalizeWorkingFile())
}

// Builder provides a fluent API for assembling a shipper.
// It wraps a Config instance and provides chainable methods for setting values.
type Builder struct {
	cfg    *Config
	sender Sender
	err    error // Accumulate errors for deferred handling
}

// NewBuilder creates a new shipper builder with default values
func NewBuilder() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// Level sets the minimum accepted log level.
func (b *Builder) Level(level int64) *Builder {
	b.cfg.Level = level
	return b
}

// LevelString sets the minimum accepted log level from a string.
func (b *Builder) LevelString(level string) *Builder {
	if b.err != nil {
		return b
	}
	levelVal, err := Level(level)
	if err != nil {
		b.err = err
		return b
	}
	b.cfg.Level = levelVal
	return b
}

// Directory sets the log data store directory.
func (b *Builder) Directory(dir string) *Builder {
	b.cfg.Directory = dir
	return b
}

// Enabled toggles remote log reporting.
func (b *Builder) Enabled(enabled bool) *Builder {
	b.cfg.Enabled = enabled
	return b
}

// BufferSize sets the append queue capacity.
func (b *Builder) BufferSize(size int64) *Builder {
	b.cfg.BufferSize = size
	return b
}

// MaxPayloadBytes sets the hard ceiling per rollup archive.
func (b *Builder) MaxPayloadBytes(size int64) *Builder {
	b.cfg.MaxPayloadBytes = size
	return b
}

// MinPayloadBytes sets the size below which archiving is skipped.
func (b *Builder) MinPayloadBytes(size int64) *Builder {
	b.cfg.MinPayloadBytes = size
	return b
}

// PayloadBudgetBytes sets the working file size that forces rotation.
func (b *Builder) PayloadBudgetBytes(size int64) *Builder {
	b.cfg.PayloadBudgetBytes = size
	return b
}

// ReportTTLHrs sets the retention period before closed files expire.
func (b *Builder) ReportTTLHrs(hrs float64) *Builder {
	b.cfg.ReportTTLHrs = hrs
	return b
}

// HarvestPeriodS sets the harvest driver period. Zero disables the driver.
func (b *Builder) HarvestPeriodS(seconds int64) *Builder {
	b.cfg.HarvestPeriodS = seconds
	return b
}

// CollectorURL sets the archive upload endpoint. Empty keeps archives local.
func (b *Builder) CollectorURL(url string) *Builder {
	b.cfg.CollectorURL = url
	return b
}

// Sender overrides the sender built from CollectorURL.
func (b *Builder) Sender(s Sender) *Builder {
	b.sender = s
	return b
}

// InternalErrorsToStderr enables internal diagnostics on stderr.
func (b *Builder) InternalErrorsToStderr(enable bool) *Builder {
	b.cfg.InternalErrorsToStderr = enable
	return b
}

// Build provisions the directory, initializes the reporter, starts the
// writer and, when a harvest period is configured, the harvest driver.
func (b *Builder) Build() (*Shipper, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	// Directory provisioning belongs to the bootstrap, not the reporter
	if err := os.MkdirAll(b.cfg.Directory, 0755); err != nil {
		return nil, fmtErrorf("failed to create log directory '%s': %w", b.cfg.Directory, err)
	}

	reporter, err := Initialize(b.cfg.Directory, b.cfg)
	if err != nil {
		return nil, err
	}

	sender := b.sender
	if sender == nil && b.cfg.CollectorURL != "" {
		sender = NewHTTPSender(b.cfg.CollectorURL, 10*time.Second)
	}
	reporter.SetSender(sender)

	logger := NewLogger(reporter)
	if err := logger.Start(); err != nil {
		return nil, err
	}

	shipper := &Shipper{
		Reporter: reporter,
		Logger:   logger,
	}

	if b.cfg.HarvestPeriodS > 0 {
		shipper.driver = NewHarvestDriver(reporter, time.Duration(b.cfg.HarvestPeriodS)*time.Second)
		shipper.driver.Start()
	}

	return shipper, nil
}

// Example usage:
// shipper, err := logship.NewBuilder().
//
//	Directory("/var/lib/agent/logdata").
//	LevelString("info").
//	CollectorURL("https://collector.example.com/logs").
//	HarvestPeriodS(60).
//	Build()
//
// if err == nil {
//
//	 defer shipper.Shutdown()
//	 shipper.Log(logship.LevelInfo, "shipper initialized")
//
// }
