// FILE: driftlake/logship/naming_test.go
package logship

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingFileName(t *testing.T) {
	assert.Equal(t, "logdata.tmp", workingFileName())
}

func TestStampedFileName(t *testing.T) {
	ts := time.UnixMilli(1700000000000)

	assert.Equal(t, "logdata.1700000000000.dat", stampedFileName(StateClosed, ts))
	assert.Equal(t, "logdata.1700000000000.rollup", stampedFileName(StateRollup, ts))
}

func TestExpiredNameRoundTrip(t *testing.T) {
	closed := "/tmp/store/logdata.1700000000000.dat"

	quarantined := expiredName(closed)
	assert.Equal(t, closed+".bak", quarantined)

	// Recovery is a pure suffix strip, the original stamp survives
	assert.Equal(t, closed, recoveredName(quarantined))
}

func TestStateForName(t *testing.T) {
	testCases := []struct {
		name  string
		state FileState
		ok    bool
	}{
		{"logdata.tmp", StateWorking, true},
		{"logdata.1700000000000.dat", StateClosed, true},
		{"logdata.1700000000000.rollup", StateRollup, true},
		{"logdata.1700000000000.dat.bak", StateExpired, true},
		{"logdata.1700000000000.rollup.bak", StateExpired, true},
		{"logdata.1700000000000.rollup.partial", 0, false}, // Staging file stays invisible
		{"logdata.tmp.bak", 0, false},                      // Working files are never expired
		{"logdata.notanumber.dat", 0, false},
		{"logdata.1700000000000.xyz", 0, false},
		{"other.1700000000000.dat", 0, false},
		{"logdata", 0, false},
		{".bak", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, ok := stateForName(tc.name)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.state, st)
			}
		})
	}
}

func TestStampedNamesSortChronologically(t *testing.T) {
	early := stampedFileName(StateClosed, time.UnixMilli(1700000000001))
	late := stampedFileName(StateClosed, time.UnixMilli(1700000000002))

	// Fixed-width millisecond stamps make lexical order chronological
	assert.Less(t, early, late)
}

func TestFileNameAsParts(t *testing.T) {
	parts := FileNameAsParts("/var/lib/agent/logdata.1700000000000.dat")

	assert.Equal(t, "/var/lib/agent", parts.Dir)
	assert.Equal(t, "logdata.1700000000000", parts.Base)
	assert.Equal(t, "dat", parts.Ext)
}

func TestFileStateString(t *testing.T) {
	assert.Equal(t, "working", StateWorking.String())
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "rollup", StateRollup.String())
	assert.Equal(t, "expired", StateExpired.String())
	assert.Equal(t, "all", StateAll.String())
	assert.Equal(t, "unknown", FileState(99).String())
}
