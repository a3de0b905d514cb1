// Package trend groups notes and tasks into local-calendar day and week
// buckets. All keys are derived from the calendar fields of the supplied
// location; no other time zone conversion happens here.
package trend

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// DateKey formats the local calendar date of t as YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(location(loc)).Format(dayLayout)
}

// WeekKey returns YYYY-Wxx with week = ceil((day - weekday + 1) / 7), Sunday
// being weekday 0. This is not ISO-8601 week numbering: the first days of a
// month can land in week 00 and weeks restart every month.
func WeekKey(t time.Time, loc *time.Location) string {
	local := t.In(location(loc))
	n := local.Day() - int(local.Weekday()) + 1
	week := 0
	if n > 0 {
		week = (n + 6) / 7
	}
	return fmt.Sprintf("%d-W%02d", local.Year(), week)
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(location(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
