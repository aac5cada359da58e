package queue

import (
	"fmt"
	"strings"
)

// DateResolver turns user-entered date text into a calendar date relative to
// today. A failure makes the operation that needed the date a validation
// failure.
type DateResolver interface {
	Resolve(text string, today Date) (Date, error)
}

// DateResolverFunc adapts a function to [DateResolver].
type DateResolverFunc func(text string, today Date) (Date, error)

func (f DateResolverFunc) Resolve(text string, today Date) (Date, error) {
	return f(text, today)
}

// ISODates resolves "today" and YYYY-MM-DD dates only. It is the resolver a
// [Store] falls back to when none is configured.
var ISODates DateResolver = DateResolverFunc(func(text string, today Date) (Date, error) {
	if strings.EqualFold(strings.TrimSpace(text), "today") {
		return today, nil
	}

	d, err := ParseDate(text)
	if err != nil {
		return Date{}, fmt.Errorf("unrecognized date %q", text)
	}

	return d, nil
})

// Severity classifies a user-visible notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier receives user-visible notices. Callers never inspect a result.
type Notifier interface {
	Notify(sev Severity, msg string)
}

type discardNotifier struct{}

func (discardNotifier) Notify(Severity, string) {}
