package queue

import "strings"

// Priority bounds. Lower values are reviewed first among equally due rows.
const (
	MinPriority = 0
	MaxPriority = 100
)

// DefaultRepetitionCount is the repetition count of a freshly added row.
const DefaultRepetitionCount = 1

// Row is one queue entry.
//
// Rows have no identity beyond their position in a [Table]: two rows with the
// same link, priority and notes are distinct entries.
type Row struct {
	Link            string
	Priority        int
	Notes           string
	RepetitionCount int
	NextRepetition  Date
}

// RowInput holds the inputs for [NewRow].
type RowInput struct {
	Link            string
	Priority        int
	Notes           string
	RepetitionCount int // 0 means DefaultRepetitionCount
	NextRepetition  Date
}

// NewRow validates in and returns the row.
//
// It fails with a [*ValidationError] when the link is empty, the next
// repetition date is missing, or the repetition count is negative. Priority
// is clamped into [MinPriority, MaxPriority], never rejected.
func NewRow(in RowInput) (Row, error) {
	link := strings.TrimSpace(lineEndings.Replace(in.Link))
	if link == "" {
		return Row{}, &ValidationError{Field: "link", Reason: "must not be empty"}
	}

	if in.NextRepetition.IsZero() {
		return Row{}, &ValidationError{Field: "next repetition date", Reason: "could not be resolved"}
	}

	if in.RepetitionCount < 0 {
		return Row{}, &ValidationError{Field: "repetition count", Reason: "must not be negative"}
	}

	reps := in.RepetitionCount
	if reps == 0 {
		reps = DefaultRepetitionCount
	}

	return Row{
		Link:            link,
		Priority:        ClampPriority(in.Priority),
		Notes:           normalizeNotes(in.Notes),
		RepetitionCount: reps,
		NextRepetition:  in.NextRepetition,
	}, nil
}

// ClampPriority returns p limited to [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	return min(max(p, MinPriority), MaxPriority)
}

// WithPriority returns a copy of r with the clamped priority p.
func (r Row) WithPriority(p int) Row {
	r.Priority = ClampPriority(p)

	return r
}

// IsDue reports whether r may be selected on today.
func (r Row) IsDue(today Date) bool {
	return !r.NextRepetition.After(today)
}

// lineEndings maps CRLF and a lone CR to LF, the only line break a cell
// can hold.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeNotes(notes string) string {
	return strings.TrimSpace(lineEndings.Replace(notes))
}
