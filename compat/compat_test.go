package compat

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftlake/logship"
)

// newCompatShipper builds a shipper in a temp directory for adapter tests
func newCompatShipper(t *testing.T) (*logship.Shipper, string) {
	t.Helper()

	dir := t.TempDir()
	shipper, err := logship.NewBuilder().
		Directory(dir).
		Level(logship.LevelDebug).
		HarvestPeriodS(0).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = shipper.Shutdown(time.Second) })
	return shipper, dir
}

// readRecords flushes the shipper and parses the working file
func readRecords(t *testing.T, shipper *logship.Shipper, dir string) []map[string]any {
	t.Helper()

	require.NoError(t, shipper.Flush(time.Second))

	data, err := os.ReadFile(filepath.Join(dir, "logdata.tmp"))
	require.NoError(t, err)

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &decoded), "bad record line: %s", line)
		records = append(records, decoded)
	}
	return records
}

func TestGnetAdapterLevels(t *testing.T) {
	shipper, dir := newCompatShipper(t)
	adapter := NewGnetAdapter(shipper.Logger)

	adapter.Debugf("debug %d", 1)
	adapter.Infof("info %d", 2)
	adapter.Warnf("warn %d", 3)
	adapter.Errorf("error %d", 4)

	records := readRecords(t, shipper, dir)
	require.Len(t, records, 4)

	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, "debug 1", records[0]["message"])
	assert.Equal(t, "INFO", records[1]["level"])
	assert.Equal(t, "WARN", records[2]["level"])
	assert.Equal(t, "ERROR", records[3]["level"])

	for _, rec := range records {
		attrs := rec["attributes"].(map[string]any)
		assert.Equal(t, "gnet", attrs["source"])
	}
}

func TestGnetAdapterFatalf(t *testing.T) {
	shipper, dir := newCompatShipper(t)

	var fatalMsg string
	adapter := NewGnetAdapter(shipper.Logger, WithFatalHandler(func(msg string) {
		fatalMsg = msg
	}))

	adapter.Fatalf("fatal: %s", "unrecoverable")
	assert.Equal(t, "fatal: unrecoverable", fatalMsg)

	records := readRecords(t, shipper, dir)
	require.Len(t, records, 1)
	assert.Equal(t, "ERROR", records[0]["level"])
	attrs := records[0]["attributes"].(map[string]any)
	assert.Equal(t, true, attrs["fatal"])
}

func TestFastHTTPAdapterPrintf(t *testing.T) {
	shipper, dir := newCompatShipper(t)
	adapter := NewFastHTTPAdapter(shipper.Logger)

	adapter.Printf("serving connection %d", 42)
	adapter.Printf("error while reading request: %s", "timeout")
	adapter.Printf("warning: connection pool exhausted")

	records := readRecords(t, shipper, dir)
	require.Len(t, records, 3)

	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "serving connection 42", records[0]["message"])
	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, "WARN", records[2]["level"])

	for _, rec := range records {
		attrs := rec["attributes"].(map[string]any)
		assert.Equal(t, "fasthttp", attrs["source"])
	}
}

func TestFastHTTPAdapterDefaultLevel(t *testing.T) {
	shipper, dir := newCompatShipper(t)
	adapter := NewFastHTTPAdapter(shipper.Logger,
		WithDefaultLevel(logship.LevelDebug),
		WithLevelDetector(nil))

	adapter.Printf("plain message")

	records := readRecords(t, shipper, dir)
	require.Len(t, records, 1)
	assert.Equal(t, "DEBUG", records[0]["level"])
}

func TestDetectLogLevel(t *testing.T) {
	testCases := []struct {
		msg  string
		want int64
	}{
		{"request failed with timeout", logship.LevelError},
		{"PANIC in handler", logship.LevelError},
		{"warning: deprecated option", logship.LevelWarn},
		{"debug: tracing enabled", logship.LevelDebug},
		{"listening on :8080", logship.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.msg, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLogLevel(tc.msg))
		})
	}
}
