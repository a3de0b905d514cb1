package filter

import (
	"fmt"
	"strings"
	"time"
)

const dateOnly = "2006-01-02"

// ParseBound parses an RFC3339 timestamp or a YYYY-MM-DD date in loc. A
// date-only upper bound is stretched to the last instant of that day.
func ParseBound(raw string, loc *time.Location, upper bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	day, err := time.ParseInLocation(dateOnly, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed date %q", ErrInvalidFilter, raw)
	}
	if upper {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}

func parseRange(start, end string, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := ParseBound(start, loc, false)
	if err != nil {
		return nil, nil, err
	}
	to, err := ParseBound(end, loc, true)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// DayBounds returns the first and last instant of the local day containing t.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
