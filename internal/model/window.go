package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidMonth is returned when a month key cannot be parsed.
var ErrInvalidMonth = errors.New("invalid month")

const monthLayout = "2006-01"

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Days returns the number of whole days the window spans.
func (w Window) Days() int {
	return int(math.Round(w.End.Sub(w.Start).Hours() / 24))
}

// Month is a calendar year-month, the key budgets are stored under.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Window returns [first day of month, first day of next month) in loc.
func (m Month) Window(loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// Label renders the month for reports, e.g. "January 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}
