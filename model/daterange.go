package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used on every external surface.
const DateLayout = "2006-01-02"

// DateRange is an inclusive interval of instants.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether Start <= t <= End.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ParseDate parses a YYYY-MM-DD string as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, Invalid("date", fmt.Sprintf("%q must be YYYY-MM-DD", s))
	}
	return t, nil
}

// ParseDateRange builds a range covering the whole of both calendar days:
// from start 00:00 to the last nanosecond of end.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	if e.Before(s) {
		return DateRange{}, Invalid("date range", fmt.Sprintf("start %s is after end %s", start, end))
	}
	return DateRange{Start: s, End: e.AddDate(0, 0, 1).Add(-time.Nanosecond)}, nil
}
