package queue

import (
	"slices"
)

// Table is the in-memory form of one queue document. It is rebuilt from the
// document on every load.
type Table struct {
	Queue Queue
	Rows  []Row

	// Version identifies the document content the table was loaded from.
	// Save refuses to overwrite a document whose content no longer matches.
	Version string

	// Warnings holds the rows skipped while decoding.
	Warnings []ParseWarning

	doc Document
}

// Reschedule asks Advance to put the reviewed row back into the queue.
type Reschedule struct {
	Next     Date
	Priority *int // nil keeps the current priority
}

// Edit lists the fields EditCurrent replaces. Nil fields are left alone.
type Edit struct {
	Priority *int
	Notes    *string
	Next     *Date
}

// NewTable returns a table for rows that will be rendered as a standalone
// document.
func NewTable(q Queue, rows []Row) *Table {
	return &Table{Queue: q, Rows: rows}
}

// Encode renders the whole document with the table's current rows.
func (t *Table) Encode() string {
	return EncodeDocument(t.doc, t.Rows)
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := *t
	c.Rows = slices.Clone(t.Rows)
	c.Warnings = slices.Clone(t.Warnings)

	return &c
}

// Add appends row and returns its position.
func (t *Table) Add(row Row) int {
	t.Rows = append(t.Rows, row)

	return len(t.Rows) - 1
}

// AddMultiple appends rows in order.
func (t *Table) AddMultiple(rows []Row) {
	t.Rows = append(t.Rows, rows...)
}

// Current returns the current repetition on today.
func (t *Table) Current(today Date) (Row, bool) {
	_, row, ok := CurrentRep(t.Rows, today)

	return row, ok
}

// HasReps reports whether any row is due on today.
func (t *Table) HasReps(today Date) bool {
	return HasReps(t.Rows, today)
}

// StateOf returns the derived state of the row at pos.
func (t *Table) StateOf(pos int, today Date) State {
	return StateOf(t.Rows, pos, today)
}

// Advance consumes the current repetition and returns it as it was before
// the call.
//
// With next == nil the row is dropped. Otherwise a copy is appended with
// its repetition count incremented, the new date, and the optional new
// priority. Returns [ErrNoRepetitions] without touching the table when
// nothing is due, and a [*ValidationError] when next has no date.
func (t *Table) Advance(today Date, next *Reschedule) (Row, error) {
	pos, row, ok := CurrentRep(t.Rows, today)
	if !ok {
		return Row{}, ErrNoRepetitions
	}

	if next != nil && next.Next.IsZero() {
		return Row{}, &ValidationError{Field: "next repetition date", Reason: "could not be resolved"}
	}

	t.Rows = slices.Delete(t.Rows, pos, pos+1)

	if next != nil {
		again := row
		again.RepetitionCount++
		again.NextRepetition = next.Next

		if next.Priority != nil {
			again = again.WithPriority(*next.Priority)
		}

		t.Rows = append(t.Rows, again)
	}

	return row, nil
}

// Dismiss removes the current repetition for good and returns it.
// Returns [ErrNoRepetitions] when nothing is due.
func (t *Table) Dismiss(today Date) (Row, error) {
	return t.Advance(today, nil)
}

// EditCurrent applies e to the current repetition in place and returns the
// updated row. Priority is clamped; a zero date in e is ignored. The
// repetition count and the row's position do not change.
func (t *Table) EditCurrent(today Date, e Edit) (Row, error) {
	pos, row, ok := CurrentRep(t.Rows, today)
	if !ok {
		return Row{}, ErrNoRepetitions
	}

	if e.Priority != nil {
		row = row.WithPriority(*e.Priority)
	}

	if e.Notes != nil {
		row.Notes = normalizeNotes(*e.Notes)
	}

	if e.Next != nil && !e.Next.IsZero() {
		row.NextRepetition = *e.Next
	}

	t.Rows[pos] = row

	return row, nil
}
