package audit

import "time"

const (
	WireTimestampLayout    = "20060102-15:04:05"
	DisplayTimestampLayout = "2006-01-02 15:04:05"
)

// NormalizeTimestamp converts a wire timestamp (20260130-14:32:05) into the
// display form (2026-01-30 14:32:05). Anything that does not parse is returned
// unchanged.
func NormalizeTimestamp(raw string) string {
	// time.Parse tolerates a trailing fractional second, the wire form does not.
	if len(raw) != len(WireTimestampLayout) {
		return raw
	}
	t, err := time.Parse(WireTimestampLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(DisplayTimestampLayout)
}
