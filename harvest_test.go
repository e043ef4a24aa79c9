// FILE: driftlake/logship/harvest_test.go
package logship

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSender records every archive path handed to it
type captureSender struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (c *captureSender) Send(archivePath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, archivePath)
	return c.err
}

func (c *captureSender) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func TestHarvestHooksDisabled(t *testing.T) {
	r := newTestReporter(t)
	r.SetEnabled(false)

	closed := seedClosedFile(t, r.Directory(), time.Now(), 1)

	r.Start()
	r.Stop()

	// Disabled reporting leaves the directory untouched
	assert.FileExists(t, closed)
	rollups, err := r.CachedFiles(StateRollup)
	require.NoError(t, err)
	assert.Empty(t, rollups)
}

func TestOnHarvestStartMaintenanceOnly(t *testing.T) {
	r := newTestReporter(t, func(c *Config) {
		c.ReportTTLHrs = 1.0
	})
	dir := r.Directory()

	aged := seedClosedFile(t, dir, time.UnixMilli(1700000000000), 1)
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(aged, old, old))
	fresh := seedClosedFile(t, dir, time.Now(), 1)

	r.OnHarvestStart()

	// Aged data is quarantined; nothing is rolled up or uploaded
	assert.NoFileExists(t, aged)
	assert.FileExists(t, aged+"."+extExpired)
	assert.FileExists(t, fresh)

	rollups, err := r.CachedFiles(StateRollup)
	require.NoError(t, err)
	assert.Empty(t, rollups)

	// The next start hook permanently removes the quarantined file
	r.OnHarvestStart()
	assert.NoFileExists(t, aged+"."+extExpired)
}

func TestOnHarvestStopRollsAndSends(t *testing.T) {
	r := newTestReporter(t)
	sender := &captureSender{}
	r.SetSender(sender)

	require.NoError(t, r.appendRecord([]byte(`{"message":"pending"}`+"\n")))

	r.OnHarvestStop()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.True(t, r.IsFileTypeOf(sent[0], StateRollup))

	// The archive outlives the send; retry or deletion is the sender's contract
	assert.FileExists(t, sent[0])

	closed, err := r.CachedFiles(StateClosed)
	require.NoError(t, err)
	assert.Empty(t, closed)
}

func TestOnHarvestStopSendFailureKeepsArchive(t *testing.T) {
	r := newTestReporter(t)
	sender := &captureSender{err: errors.New("collector unreachable")}
	r.SetSender(sender)

	require.NoError(t, r.appendRecord([]byte(`{"message":"pending"}`+"\n")))

	r.OnHarvestStop()

	sent := sender.sent()
	require.Len(t, sent, 1)
	assert.FileExists(t, sent[0])
}

func TestOnHarvestStopNothingToSend(t *testing.T) {
	r := newTestReporter(t, func(c *Config) {
		c.MinPayloadBytes = 1 << 20
	})
	sender := &captureSender{}
	r.SetSender(sender)

	require.NoError(t, r.appendRecord([]byte(`{"message":"too little"}`+"\n")))

	r.OnHarvestStop()

	// Below the minimum no archive exists, so nothing is handed to the sender
	assert.Empty(t, sender.sent())
	closed, err := r.CachedFiles(StateClosed)
	require.NoError(t, err)
	assert.Len(t, closed, 1)
}

func TestOnHarvestStopWithoutSender(t *testing.T) {
	r := newTestReporter(t)
	require.NoError(t, r.appendRecord([]byte(`{"message":"local only"}`+"\n")))

	r.OnHarvestStop()

	// No sender configured: the finished archive stays in the directory
	rollups, err := r.CachedFiles(StateRollup)
	require.NoError(t, err)
	assert.Len(t, rollups, 1)
}

func TestOnHarvestConfigurationChanged(t *testing.T) {
	r := newTestReporter(t)

	cfg := r.Config()
	cfg.Enabled = false
	cfg.Level = LevelError
	r.OnHarvestConfigurationChanged(cfg)

	assert.False(t, r.Enabled())
	assert.Equal(t, LevelError, r.Config().Level)

	// A nil configuration is ignored
	r.OnHarvestConfigurationChanged(nil)
	assert.Equal(t, LevelError, r.Config().Level)
}

func TestHarvestDriver(t *testing.T) {
	r := newTestReporter(t)
	require.NoError(t, r.appendRecord([]byte(`{"message":"driven"}`+"\n")))

	driver := NewHarvestDriver(r, 20*time.Millisecond)
	driver.Start()

	require.Eventually(t, func() bool {
		rollups, err := r.CachedFiles(StateRollup)
		return err == nil && len(rollups) > 0
	}, time.Second, minWaitTime, "driver should produce an archive within a few cycles")

	driver.Stop()
	driver.Stop() // Idempotent
}

func TestHarvestDriverZeroPeriod(t *testing.T) {
	r := newTestReporter(t)

	driver := NewHarvestDriver(r, 0)
	driver.Start() // No-op
	driver.Stop()
}
