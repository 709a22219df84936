package app

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"leadscout/internal/domain"
)

// isoLayout matches JavaScript's toISOString: UTC, milliseconds, "Z".
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// NormalizeTimestamp maps every RawTimestamp shape to an ISO-8601 string, or ""
// when the value is missing or cannot be read as a date. It never fails.
func NormalizeTimestamp(raw domain.RawTimestamp) string {
	switch v := raw.(type) {
	case domain.NativeDate:
		if v.Time.IsZero() {
			return ""
		}
		return formatISO(v.Time)
	case domain.EpochMillis:
		return formatISO(time.UnixMilli(int64(v)))
	case domain.DateString:
		t, ok := ParseTimestamp(string(v))
		if !ok {
			return ""
		}
		return formatISO(t)
	default: // domain.Absent, nil
		return ""
	}
}

// ParseTimestamp reads ISO-8601 first and falls back to the looser formats
// store pages print ("Sep 3, 2026", RFC1123, ...). Zone-less input is UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

func formatISO(t time.Time) string {
	t = t.UTC()
	// outside four-digit years the layout stops round-tripping
	if y := t.Year(); y < 0 || y > 9999 {
		return ""
	}
	return t.Format(isoLayout)
}
