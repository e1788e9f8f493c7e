// Package weekly maps caregiver-supplied (year, week number) pairs to
// concrete seven-day date ranges.
//
// Week numbering follows the Monday-first "%W" convention: the days of a year
// before its first Monday belong to week 0, and week 1 starts on the first
// Monday. Week numbers are not checked against the real length of the year, so
// week 0 and week 53 may start or end outside of the nominal year.
package weekly

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the layout used for calendar dates (answers' response_date).
const DateLayout = "2006-01-02"

const (
	minYear = 1
	maxYear = 9999
	minWeek = 0
	maxWeek = 53
)

// ErrInvalidWeek is returned when (year, week) cannot be turned into a date.
var ErrInvalidWeek = errors.New("invalid week")

// Window is a Monday-to-Sunday date range, in UTC.
type Window struct {
	Year  int
	Week  int
	Start time.Time // Monday 00:00
	End   time.Time // Sunday 00:00 (Start + 6 days)
}

// For returns the window for the given year and week number.
func For(year, week int) (Window, error) {
	if year < minYear || year > maxYear {
		return Window{}, fmt.Errorf("%w: year %d out of range [%d, %d]", ErrInvalidWeek, year, minYear, maxYear)
	}
	if week < minWeek || week > maxWeek {
		return Window{}, fmt.Errorf("%w: week %d out of range [%d, %d]", ErrInvalidWeek, week, minWeek, maxWeek)
	}

	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Days since Monday for January 1st (Monday = 0).
	firstWeekday := (int(jan1.Weekday()) + 6) % 7

	var offset int
	if week == 0 {
		offset = -firstWeekday
	} else {
		week0Length := (7 - firstWeekday) % 7
		offset = week0Length + 7*(week-1)
	}

	start := jan1.AddDate(0, 0, offset)
	return Window{
		Year:  year,
		Week:  week,
		Start: start,
		End:   start.AddDate(0, 0, 6),
	}, nil
}

// Current returns the ISO calendar (year, week) that contains t.
func Current(t time.Time) (year, week int) {
	return t.UTC().ISOWeek()
}

// EndExclusive is the first instant after the window (the Monday following End).
func (w Window) EndExclusive() time.Time {
	return w.End.AddDate(0, 0, 1)
}

// Contains reports whether t falls on one of the window's seven days.
func (w Window) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.Start) && t.Before(w.EndExclusive())
}

// StartDate returns Start as a YYYY-MM-DD string.
func (w Window) StartDate() string {
	return w.Start.Format(DateLayout)
}

// EndDate returns End as a YYYY-MM-DD string.
func (w Window) EndDate() string {
	return w.End.Format(DateLayout)
}

// String implements fmt.Stringer.
func (w Window) String() string {
	return fmt.Sprintf("%d-W%02d [%s, %s]", w.Year, w.Week, w.StartDate(), w.EndDate())
}
