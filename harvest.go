// FILE: driftlake/logship/harvest.go
package logship

import (
	"sync"
	"sync/atomic"
	"time"
)

// Harvest hooks. An external driver calls Start and Stop once per harvest
// period; the reporter imposes no timing policy of its own.

// Start runs the harvest-start hook. No-op while reporting is disabled.
func (r *Reporter) Start() {
	if !r.enabled.Load() {
		return
	}
	r.OnHarvestStart()
}

// Stop runs the harvest-stop hook. No-op while reporting is disabled.
func (r *Reporter) Stop() {
	if !r.enabled.Load() {
		return
	}
	r.OnHarvestStop()
}

// OnHarvestStart performs maintenance only: aged closed files are expired,
// then expired files are permanently removed. No rollup, no upload. Each
// sub-step degrades gracefully.
func (r *Reporter) OnHarvestStart() {
	cfg := r.config()
	if ttl := time.Duration(cfg.ReportTTLHrs * float64(time.Hour)); ttl > 0 {
		if err := r.Expire(ttl); err != nil {
			r.internalLog("harvest expire failed: %v\n", err)
		}
	}
	if err := r.Cleanup(); err != nil {
		r.internalLog("harvest cleanup failed: %v\n", err)
	}
}

// OnHarvestStop performs the actual report. This is the only path that
// invokes onHarvest.
func (r *Reporter) OnHarvestStop() {
	r.onHarvest()
}

// onHarvest rotates current working data out, merges eligible closed files
// and hands the archive to the sender. Rollup producing no archive is not an
// error; there is simply nothing to send. The archive is never deleted here;
// deletion-on-success or retry is the sender's contract.
func (r *Reporter) onHarvest() {
	if _, err := r.RollWorkingFile(); err != nil {
		r.internalLog("harvest rotation failed: %v\n", err)
	}

	archive, err := r.RollupFiles()
	if err != nil {
		r.internalLog("harvest rollup failed: %v\n", err)
		return
	}
	if archive == "" {
		return
	}

	if s := r.getSender(); s != nil {
		if err := s.Send(archive); err != nil {
			r.internalLog("failed to post log archive '%s': %v\n", archive, err)
		}
	}
}

// OnHarvestConfigurationChanged re-polls the agent configuration, replacing
// the reporter's copy and updating the enabled flag.
func (r *Reporter) OnHarvestConfigurationChanged(cfg *Config) {
	if cfg == nil {
		return
	}
	r.currentConfig.Store(cfg.Clone())
	r.SetEnabled(cfg.Enabled)
}

// HarvestDriver invokes the reporter's harvest hooks on a fixed period. One
// cycle completes before the next begins; the hooks are never called
// concurrently with themselves.
type HarvestDriver struct {
	reporter *Reporter
	period   time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
}

// NewHarvestDriver creates a driver for the given reporter and period
func NewHarvestDriver(r *Reporter, period time.Duration) *HarvestDriver {
	return &HarvestDriver{
		reporter: r,
		period:   period,
	}
}

// Start begins the periodic harvest loop. Safe to call once per driver.
func (d *HarvestDriver) Start() {
	if d.period <= 0 || !d.started.CompareAndSwap(false, true) {
		return
	}
	d.done = make(chan struct{})
	d.wg.Add(1)
	go d.run()
}

// Stop halts the harvest loop and waits for an in-flight cycle to finish
func (d *HarvestDriver) Stop() {
	if !d.started.CompareAndSwap(true, false) {
		return
	}
	close(d.done)
	d.wg.Wait()
}

func (d *HarvestDriver) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.reporter.Start()
			d.reporter.Stop()
		}
	}
}
