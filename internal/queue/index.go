package queue

import (
	"cmp"
	"iter"
	"slices"
)

// compareRows orders rows by next repetition date (oldest first), then by
// priority (lowest first). Equal rows keep their relative order when used
// with a stable sort.
func compareRows(a, b Row) int {
	if c := a.NextRepetition.Compare(b.NextRepetition); c != 0 {
		return c
	}

	return cmp.Compare(a.Priority, b.Priority)
}

// SortRows sorts rows in place into queue order. The sort is stable.
func SortRows(rows []Row) {
	slices.SortStableFunc(rows, compareRows)
}

// DueRows yields the rows due on today, in queue order, together with their
// position in rows. rows is not modified.
//
// The sequence is computed when iteration starts, so ranging over it again
// reflects the current contents of rows.
func DueRows(rows []Row, today Date) iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for _, i := range orderedPositions(rows, func(r Row) bool { return r.IsDue(today) }) {
			if !yield(i, rows[i]) {
				return
			}
		}
	}
}

// Upcoming returns the positions of rows not yet due on today, in queue
// order. A limit <= 0 means no limit.
func Upcoming(rows []Row, today Date, limit int) []int {
	positions := orderedPositions(rows, func(r Row) bool { return !r.IsDue(today) })
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}

	return positions
}

// HasReps reports whether any row is due on today.
func HasReps(rows []Row, today Date) bool {
	return slices.ContainsFunc(rows, func(r Row) bool { return r.IsDue(today) })
}

// CountDue returns the number of rows due on today.
func CountDue(rows []Row, today Date) int {
	n := 0

	for _, r := range rows {
		if r.IsDue(today) {
			n++
		}
	}

	return n
}

// CurrentRep returns the position and value of the first due row in queue
// order. ok is false when nothing is due.
func CurrentRep(rows []Row, today Date) (pos int, row Row, ok bool) {
	pos = -1

	for i, r := range rows {
		if !r.IsDue(today) {
			continue
		}

		// Strict less keeps the earliest position among equal rows.
		if pos < 0 || compareRows(r, rows[pos]) < 0 {
			pos = i
		}
	}

	if pos < 0 {
		return -1, Row{}, false
	}

	return pos, rows[pos], true
}

func orderedPositions(rows []Row, keep func(Row) bool) []int {
	var positions []int

	for i, r := range rows {
		if keep(r) {
			positions = append(positions, i)
		}
	}

	slices.SortStableFunc(positions, func(a, b int) int {
		return compareRows(rows[a], rows[b])
	})

	return positions
}
