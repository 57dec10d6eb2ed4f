package pubdate

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnrecognized is returned (wrapped in *ParseError) when no layout matches.
var ErrUnrecognized = errors.New("unrecognized date format")

// DefaultLayouts lists the accepted publication date layouts in priority order.
var DefaultLayouts = []string{
	"2006-01-02T15:04:05Z",           // 2024-01-05T10:00:00Z
	"Jan 2, 2006 15:04 MST",          // Jan 05, 2024 10:00 UTC
	"Jan 2, 2006 15:04:05 MST",       // Jan 05, 2024 10:00:00 UTC
	"Mon, 2 Jan 2006 15:04:05 -0700", // Fri, 05 Jan 2024 10:00:00 -0500
	"Mon, 2 Jan 2006 15:04:05 MST",   // Fri, 05 Jan 2024 10:00:00 EST
	"2006-01-02 15:04:05",            // 2024-01-05 10:00:00
	"Mon, 2 Jan 2006 15:04:05 GMT",   // Fri, 05 Jan 2024 10:00:00 GMT
}

// ParseError reports a date string that matched none of the layouts.
type ParseError struct {
	Value string
	Tried int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %d layouts tried: %v", e.Value, e.Tried, ErrUnrecognized)
}

func (e *ParseError) Unwrap() error {
	return ErrUnrecognized
}

// zoneOffsets maps the North American zone abbreviations feeds commonly use
// to their UTC offsets in seconds.
var zoneOffsets = map[string]int{
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

// Parse returns the instant described by raw using the first layout that
// accepts it. Numeric offsets and the abbreviations in zoneOffsets are
// honoured; any other abbreviation is read as UTC. The result is UTC and
// does not depend on the host's local zone.
func Parse(raw string, layouts []string) (time.Time, error) {
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return resolveZone(t).UTC(), nil
		}
	}
	return time.Time{}, &ParseError{Value: raw, Tried: len(layouts)}
}

// resolveZone applies the known offset of an abbreviation that parsing left
// at offset zero.
func resolveZone(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	known, ok := zoneOffsets[name]
	if !ok {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(name, known))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
