// FILE: driftlake/logship/codec.go
package logship

import (
	"bytes"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// serializer converts log records to self-describing JSON lines. One instance
// belongs to one append worker, so the buffer is reused without locking.
type serializer struct {
	buf []byte
}

// newSerializer creates a serializer instance
func newSerializer() *serializer {
	return &serializer{
		buf: make([]byte, 0, 4096), // Initial reasonable capacity
	}
}

// reset clears the serializer buffer for reuse
func (s *serializer) reset() {
	s.buf = s.buf[:0]
}

// line serializes one record as a newline-terminated JSON object.
// The returned slice is valid until the next call.
func (s *serializer) line(r logRecord) []byte {
	s.reset()

	s.buf = append(s.buf, `{"timestamp":`...)
	s.buf = strconv.AppendInt(s.buf, r.TimeStamp.UnixMilli(), 10)

	s.buf = append(s.buf, `,"level":"`...)
	s.buf = append(s.buf, levelToString(r.Level)...)
	s.buf = append(s.buf, '"')

	s.buf = append(s.buf, `,"message":"`...)
	s.writeString(r.Message)
	s.buf = append(s.buf, '"')

	if len(r.Attributes) > 0 {
		s.buf = append(s.buf, `,"attributes":{`...)

		// Stable key order keeps output deterministic
		keys := make([]string, 0, len(r.Attributes))
		for k := range r.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for i, k := range keys {
			if i > 0 {
				s.buf = append(s.buf, ',')
			}
			s.buf = append(s.buf, '"')
			s.writeString(k)
			s.buf = append(s.buf, `":`...)
			s.writeValue(r.Attributes[k])
		}
		s.buf = append(s.buf, '}')
	}

	s.buf = append(s.buf, '}', '\n')
	return s.buf
}

// writeValue appends a JSON representation of an attribute value.
// Types without a direct appender are dumped through spew into a string,
// preserving structure information without risking invalid JSON.
func (s *serializer) writeValue(v any) {
	switch val := v.(type) {
	case string:
		s.buf = append(s.buf, '"')
		s.writeString(val)
		s.buf = append(s.buf, '"')
	case bool:
		s.buf = strconv.AppendBool(s.buf, val)
	case int:
		s.buf = strconv.AppendInt(s.buf, int64(val), 10)
	case int64:
		s.buf = strconv.AppendInt(s.buf, val, 10)
	case uint:
		s.buf = strconv.AppendUint(s.buf, uint64(val), 10)
	case uint64:
		s.buf = strconv.AppendUint(s.buf, val, 10)
	case float32:
		s.buf = strconv.AppendFloat(s.buf, float64(val), 'f', -1, 32)
	case float64:
		s.buf = strconv.AppendFloat(s.buf, val, 'f', -1, 64)
	case nil:
		s.buf = append(s.buf, "null"...)
	case time.Time:
		s.buf = strconv.AppendInt(s.buf, val.UnixMilli(), 10)
	case time.Duration:
		s.buf = append(s.buf, '"')
		s.writeString(val.String())
		s.buf = append(s.buf, '"')
	case error:
		s.buf = append(s.buf, '"')
		s.writeString(val.Error())
		s.buf = append(s.buf, '"')
	default:
		var b bytes.Buffer

		// Compact dumper for log-friendly output
		dumper := &spew.ConfigState{
			Indent:                  " ",
			MaxDepth:                10,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			SortKeys:                true,
		}
		dumper.Fdump(&b, val)

		s.buf = append(s.buf, '"')
		s.writeString(string(bytes.TrimSpace(b.Bytes())))
		s.buf = append(s.buf, '"')
	}
}

const hexDigits = "0123456789abcdef"

// writeString appends str with JSON escaping
func (s *serializer) writeString(str string) {
	for i := 0; i < len(str); {
		b := str[i]
		if b < utf8.RuneSelf {
			switch {
			case b == '"':
				s.buf = append(s.buf, '\\', '"')
			case b == '\\':
				s.buf = append(s.buf, '\\', '\\')
			case b == '\n':
				s.buf = append(s.buf, '\\', 'n')
			case b == '\r':
				s.buf = append(s.buf, '\\', 'r')
			case b == '\t':
				s.buf = append(s.buf, '\\', 't')
			case b < 0x20:
				s.buf = append(s.buf, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xF])
			default:
				s.buf = append(s.buf, b)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(str[i:])
		if r == utf8.RuneError && size == 1 {
			// Replace invalid UTF-8 byte rather than corrupt the document
			s.buf = append(s.buf, `�`...)
			i++
			continue
		}
		s.buf = append(s.buf, str[i:i+size]...)
		i += size
	}
}
