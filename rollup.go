// FILE: driftlake/logship/rollup.go
package logship

import (
	"bytes"
	"os"
	"path/filepath"
	"time"
)

// RollupFiles merges closed files, oldest first, into one read-only archive
// whose content is a single JSON array of records, consuming each merged file.
//
// The merge stops before the archive would exceed MaxPayloadBytes; files that
// do not fit stay closed for the next cycle, so repeated calls make monotonic
// progress without ever producing an oversized payload. When the combined
// closed data is below MinPayloadBytes, or there is nothing to merge, no
// archive is produced and ("", nil) is returned.
func (r *Reporter) RollupFiles() (string, error) {
	closed, err := r.CachedFiles(StateClosed)
	if err != nil {
		return "", err
	}
	if len(closed) == 0 {
		return "", nil
	}

	cfg := r.config()

	var available int64
	for _, path := range closed {
		if info, errStat := os.Stat(path); errStat == nil {
			available += info.Size()
		}
	}
	if available < cfg.MinPayloadBytes {
		// Not worth an upload yet, let data accrue
		return "", nil
	}

	payload := make([]byte, 0, min(available, cfg.MaxPayloadBytes)+2)
	payload = append(payload, '[')
	records := 0
	consumed := 0

	for _, path := range closed {
		info, errStat := os.Stat(path)
		if errStat != nil {
			r.internalLog("rollup skipped '%s': %v\n", path, errStat)
			continue
		}
		// The +1 reserves room for the closing bracket
		if int64(len(payload))+info.Size()+1 > cfg.MaxPayloadBytes {
			// Leftovers wait for the next harvest cycle
			break
		}

		data, errRead := os.ReadFile(path)
		if errRead != nil {
			r.internalLog("rollup failed to read '%s': %v\n", path, errRead)
			continue
		}

		for _, line := range bytes.Split(data, []byte{'\n'}) {
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			if records > 0 {
				payload = append(payload, ',')
			}
			payload = append(payload, line...)
			records++
		}

		if errDel := r.SafeDelete(path); errDel != nil {
			r.internalLog("rollup failed to consume '%s': %v\n", path, errDel)
		}
		consumed++
	}

	if consumed == 0 {
		return "", nil
	}
	payload = append(payload, ']')

	archive, err := r.writeArchive(payload)
	if err != nil {
		return "", err
	}
	r.TotalRollups.Add(1)
	return archive, nil
}

// writeArchive persists the payload as a read-only rollup file. The content
// lands under a temporary name and is renamed into place, so a concurrent
// directory listing never observes a partial archive.
func (r *Reporter) writeArchive(payload []byte) (string, error) {
	ts := time.Now()
	dest := filepath.Join(r.dir, stampedFileName(StateRollup, ts))
	for {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		ts = ts.Add(time.Millisecond)
		dest = filepath.Join(r.dir, stampedFileName(StateRollup, ts))
	}

	staging := dest + ".partial"
	if err := os.WriteFile(staging, payload, 0644); err != nil {
		return "", fmtErrorf("failed to write archive '%s': %w", staging, err)
	}
	if err := os.Chmod(staging, 0444); err != nil {
		r.internalLog("failed to mark archive read-only: %v\n", err)
	}
	if err := os.Rename(staging, dest); err != nil {
		_ = os.Remove(staging)
		return "", fmtErrorf("failed to publish archive '%s': %w", dest, err)
	}
	return dest, nil
}
