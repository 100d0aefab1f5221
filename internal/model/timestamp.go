package model

import (
	"fmt"
	"strconv"
	"time"
)

// Timestamp is an instant that decodes from the vendor's
// centiseconds-since-epoch integers and encodes as ISO-8601. Decoding
// interprets the value as a UTC instant and renders it in the system
// local zone; nothing is hard-coded to a particular timezone.
type Timestamp struct {
	time.Time
}

// FromCentis converts a vendor timestamp (1/100th seconds since the
// Unix epoch) into a timezone-aware instant.
func FromCentis(cs int64) Timestamp {
	return Timestamp{time.UnixMilli(cs * 10).Local()}
}

// Centis returns the instant as vendor centiseconds.
func (t Timestamp) Centis() int64 {
	return t.UnixMilli() / 10
}

// MarshalJSON renders the instant as an ISO-8601 string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.Format(time.RFC3339Nano))), nil
}

// UnmarshalJSON accepts either a vendor centisecond integer (API
// payloads) or an ISO-8601 string (re-reading exported documents).
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty timestamp")
	}

	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("parsing timestamp string: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	cs, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parsing timestamp %s: %w", data, err)
	}
	*t = FromCentis(cs)
	return nil
}
