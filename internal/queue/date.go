package queue

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk form of a [Date].
const DateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day. The zero value means "no date".
//
// Dates are stored as midnight UTC so comparisons and day arithmetic never
// depend on the local timezone or DST transitions.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day.
// Out-of-range values are normalized the way [time.Date] normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	year, month, day := t.Date()

	return NewDate(year, month, day)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}

	return Date{t: t}, nil
}

// MustParseDate is like [ParseDate] but panics on error. For tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}

	return d
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String returns d as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(DateLayout)
}

// AddDays returns d shifted by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns d shifted by n calendar months.
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// Compare returns -1, 0 or +1 when d is before, equal to, or after o.
func (d Date) Compare(o Date) int {
	return d.t.Compare(o.t)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// Equal reports whether d and o are the same calendar date.
func (d Date) Equal(o Date) bool { return d.Compare(o) == 0 }

// DaysUntil returns the number of days from d to o. Negative if o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	return d.t.Weekday()
}

// Time returns d as midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}
