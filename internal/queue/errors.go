package queue

import (
	"errors"
	"fmt"
)

// Error variables for queue operations.
var (
	ErrValidation    = errors.New("invalid input")
	ErrLoadFailed    = errors.New("load failed")
	ErrSaveFailed    = errors.New("save failed")
	ErrNoRepetitions = errors.New("no repetitions")
	ErrConflict      = errors.New("queue changed on disk since it was loaded")
	ErrQueueExists   = errors.New("queue already exists")
	ErrNoQueue       = errors.New("no queue selected")
)

// Reasons attached to [ParseWarning].
var (
	ErrColumnCount        = errors.New("wrong number of columns")
	ErrBadPriority        = errors.New("priority is not a number")
	ErrPriorityClamped    = errors.New("priority out of range, clamped")
	ErrBadRepetitionCount = errors.New("repetition count is not a non-negative number")
	ErrBadDate            = errors.New("next repetition date is not a YYYY-MM-DD date")
	ErrEmptyLink          = errors.New("link is empty")
)

// ValidationError reports malformed or missing input to row creation or edit.
// It satisfies errors.Is(err, ErrValidation).
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// I/O operations reported by [IOError].
const (
	OpLoad = "load"
	OpSave = "save"
)

// IOError reports an unreadable or unwritable queue document.
//
// Load errors satisfy errors.Is(err, ErrLoadFailed), save errors satisfy
// errors.Is(err, ErrSaveFailed). The underlying OS error is kept for
// os.IsNotExist and friends.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed: %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	switch target {
	case ErrLoadFailed:
		return e.Op == OpLoad
	case ErrSaveFailed:
		return e.Op == OpSave
	default:
		return false
	}
}

// ParseWarning describes one table row that could not be decoded.
// The row is skipped; decoding continues.
type ParseWarning struct {
	Line int // 1-based line number in the document
	Text string
	Err  error
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("line %d: %v", w.Line, w.Err)
}
