// Package dateparse resolves the date text users type into calendar dates.
//
// Accepted forms, all case-insensitive and relative to a reference day:
//
//	today, tomorrow, yesterday
//	2024-03-09, 2024-3-9           absolute dates
//	3/9                            month/day; rolls to next year once past
//	+3d, 2w, 1w2d, -1d, 3 days     offsets (d, w, m=month, y)
//	in 5 days, 2 weeks ago         offsets with words
//	monday, next friday            the next such weekday, never today
//	next week, next month, next year
package dateparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/calvinalkan/iw/internal/queue"
)

// ErrUnrecognized is returned for text in none of the accepted forms.
var ErrUnrecognized = errors.New("unrecognized date")

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

type unit int

const (
	unitDay unit = iota
	unitWeek
	unitMonth
	unitYear
)

var (
	offsetPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitMap       = map[string]unit{
		"d":      unitDay,
		"day":    unitDay,
		"days":   unitDay,
		"w":      unitWeek,
		"wk":     unitWeek,
		"wks":    unitWeek,
		"week":   unitWeek,
		"weeks":  unitWeek,
		"m":      unitMonth,
		"mo":     unitMonth,
		"mos":    unitMonth,
		"month":  unitMonth,
		"months": unitMonth,
		"y":      unitYear,
		"yr":     unitYear,
		"yrs":    unitYear,
		"year":   unitYear,
		"years":  unitYear,
	}
	weekdays = map[string]time.Weekday{
		"sunday": time.Sunday, "sun": time.Sunday,
		"monday": time.Monday, "mon": time.Monday,
		"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
		"wednesday": time.Wednesday, "wed": time.Wednesday,
		"thursday": time.Thursday, "thu": time.Thursday, "thurs": time.Thursday,
		"friday": time.Friday, "fri": time.Friday,
		"saturday": time.Saturday, "sat": time.Saturday,
	}
)

// Resolver implements [queue.DateResolver].
type Resolver struct{}

var _ queue.DateResolver = Resolver{}

// Resolve resolves text relative to today.
func (Resolver) Resolve(text string, today queue.Date) (queue.Date, error) {
	return Parse(text, today)
}

// Parse resolves text relative to today.
func Parse(text string, today queue.Date) (queue.Date, error) {
	s := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if s == "" {
		return queue.Date{}, fmt.Errorf("%w: empty", ErrUnrecognized)
	}

	switch s {
	case "today", "now":
		return today, nil
	case "tomorrow", "tmrw":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "next week":
		return today.AddDays(7), nil
	case "next month":
		return today.AddMonths(1), nil
	case "next year":
		return today.AddMonths(12), nil
	}

	if d, ok := parseAbsolute(s, today); ok {
		return d, nil
	}

	if d, ok := parseWeekday(s, today); ok {
		return d, nil
	}

	d, err := parseOffset(s, today)
	if err != nil {
		return queue.Date{}, fmt.Errorf("%w %q: %w", ErrUnrecognized, text, err)
	}

	return d, nil
}

func parseAbsolute(s string, today queue.Date) (queue.Date, bool) {
	if t, err := time.Parse(layoutISO, s); err == nil {
		return queue.DateOf(t), true
	}

	t, err := time.Parse(layoutISOShort, s)
	if err != nil {
		return queue.Date{}, false
	}

	// The first occurrence on or after today. Feb 29 waits for a leap year.
	for year := today.Time().Year(); ; year++ {
		d := queue.NewDate(year, t.Month(), t.Day())
		if d.Time().Day() == t.Day() && !d.Before(today) {
			return d, true
		}
	}
}

func parseWeekday(s string, today queue.Date) (queue.Date, bool) {
	wd, ok := weekdays[strings.TrimPrefix(s, "next ")]
	if !ok {
		return queue.Date{}, false
	}

	ahead := (int(wd) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}

	return today.AddDays(ahead), true
}

// parseOffset handles "+3d", "-1w", "1w2d", "in 3 days" and "2 weeks ago".
func parseOffset(s string, today queue.Date) (queue.Date, error) {
	sign := 1

	switch {
	case strings.HasPrefix(s, "in "):
		s = strings.TrimPrefix(s, "in ")
	case strings.HasSuffix(s, " ago"):
		s = strings.TrimSuffix(s, " ago")
		sign = -1
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		s = s[1:]
		sign = -1
	}

	remaining := strings.TrimSpace(s)
	if remaining == "" {
		return queue.Date{}, errors.New("missing offset")
	}

	d := today

	for len(remaining) > 0 {
		matches := offsetPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return queue.Date{}, fmt.Errorf("invalid offset segment %q", strings.TrimSpace(remaining))
		}

		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return queue.Date{}, fmt.Errorf("invalid offset value %q: %w", matches[1], err)
		}

		u, ok := unitMap[matches[2]]
		if !ok {
			return queue.Date{}, fmt.Errorf("unsupported offset unit %q", matches[2])
		}

		d = shift(d, u, sign*value)
		remaining = strings.TrimSpace(remaining[len(matches[0]):])
	}

	return d, nil
}

func shift(d queue.Date, u unit, n int) queue.Date {
	switch u {
	case unitWeek:
		return d.AddDays(7 * n)
	case unitMonth:
		return d.AddMonths(n)
	case unitYear:
		return d.AddMonths(12 * n)
	default:
		return d.AddDays(n)
	}
}
