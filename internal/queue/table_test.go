package queue

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func tableOf(rows ...Row) *Table {
	return NewTable(Queue{Path: "queue.md"}, rows)
}

func intPtr(n int) *int { return &n }

func TestTable_Add_ResultingState(t *testing.T) {
	t.Parallel()

	tbl := tableOf()

	due := tbl.Add(row("due", 30, today))
	later := tbl.Add(row("later", 30, today.AddDays(2)))

	if got, want := tbl.StateOf(due, today), StateActive; got != want {
		t.Fatalf("state(due)=%v, want=%v", got, want)
	}

	if got, want := tbl.StateOf(later, today), StateScheduled; got != want {
		t.Fatalf("state(later)=%v, want=%v", got, want)
	}
}

func TestTable_Advance_WithoutReschedule_DropsRow(t *testing.T) {
	t.Parallel()

	only := row("only", 30, today)
	tbl := tableOf(only)

	prev, err := tbl.Advance(today, nil)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if diff := cmp.Diff(only, prev); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if got := len(tbl.Rows); got != 0 {
		t.Fatalf("rows=%d, want 0", got)
	}

	if tbl.HasReps(today) {
		t.Fatal("HasReps=true after advancing the only row")
	}
}

func TestTable_Advance_WithReschedule(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("a", 30, today), row("other", 50, today.AddDays(-1)))

	// "other" is older, so it is current.
	prev, err := tbl.Advance(today, &Reschedule{Next: today.AddDays(3)})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if got, want := prev.Link, "other"; got != want {
		t.Fatalf("advanced %s, want %s", got, want)
	}

	if got, want := prev.RepetitionCount, 1; got != want {
		t.Fatalf("snapshot RepetitionCount=%d, want=%d", got, want)
	}

	want := []Row{
		row("a", 30, today),
		{Link: "other", Priority: 50, RepetitionCount: 2, NextRepetition: today.AddDays(3)},
	}

	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}

	for _, r := range DueRows(tbl.Rows, today) {
		if r.Link == "other" {
			t.Fatal("rescheduled row still due today")
		}
	}

	if cur, ok := tbl.Current(today.AddDays(3)); !ok || cur.Link != "a" {
		t.Fatalf("Current(today+3)=%v, want a (older date)", cur)
	}
}

func TestTable_Advance_ReschedulePriorityIsClamped(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("a", 30, today))

	_, err := tbl.Advance(today, &Reschedule{Next: today.AddDays(1), Priority: intPtr(-20)})
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if got, want := tbl.Rows[0].Priority, 0; got != want {
		t.Fatalf("priority=%d, want=%d", got, want)
	}
}

func TestTable_Advance_RescheduleWithoutDateChangesNothing(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("a", 30, today))
	before := tbl.Encode()

	_, err := tbl.Advance(today, &Reschedule{})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err=%v, want ErrValidation", err)
	}

	if got := tbl.Encode(); got != before {
		t.Fatalf("table changed:\n%s\nwant:\n%s", got, before)
	}
}

func TestTable_TransitionsOnEmptyDueSetAreNoOps(t *testing.T) {
	t.Parallel()

	ops := map[string]func(*Table) error{
		"advance": func(tbl *Table) error {
			_, err := tbl.Advance(today, &Reschedule{Next: today.AddDays(1)})

			return err
		},
		"dismiss": func(tbl *Table) error {
			_, err := tbl.Dismiss(today)

			return err
		},
		"edit": func(tbl *Table) error {
			_, err := tbl.EditCurrent(today, Edit{Priority: intPtr(1)})

			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			for _, tbl := range []*Table{tableOf(), tableOf(row("later", 1, today.AddDays(1)))} {
				before := tbl.Encode()

				if err := op(tbl); !errors.Is(err, ErrNoRepetitions) {
					t.Fatalf("err=%v, want ErrNoRepetitions", err)
				}

				if got := tbl.Encode(); got != before {
					t.Fatalf("table changed:\n%s\nwant:\n%s", got, before)
				}
			}
		})
	}
}

func TestTable_Dismiss_RemovesWithoutReadding(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("a", 10, today), row("b", 20, today))

	prev, err := tbl.Dismiss(today)
	if err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	if got, want := prev.Link, "a"; got != want {
		t.Fatalf("dismissed %s, want %s", got, want)
	}

	if diff := cmp.Diff([]Row{row("b", 20, today)}, tbl.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_EditCurrent(t *testing.T) {
	t.Parallel()

	rows := []Row{row("x", 40, today), row("cur", 10, today), row("later", 0, today.AddDays(1))}
	tbl := tableOf(rows...)
	notes := "  rewrite intro\r\n"
	next := today.AddDays(7)

	edited, err := tbl.EditCurrent(today, Edit{Priority: intPtr(250), Notes: &notes, Next: &next})
	if err != nil {
		t.Fatalf("EditCurrent: %v", err)
	}

	want := Row{Link: "cur", Priority: 100, Notes: "rewrite intro", RepetitionCount: 1, NextRepetition: next}
	if diff := cmp.Diff(want, edited); diff != "" {
		t.Fatalf("edited mismatch (-want +got):\n%s", diff)
	}

	// Edited in place: position and count unchanged.
	if diff := cmp.Diff(want, tbl.Rows[1]); diff != "" {
		t.Fatalf("row 1 mismatch (-want +got):\n%s", diff)
	}

	if got, want := len(tbl.Rows), 3; got != want {
		t.Fatalf("rows=%d, want=%d", got, want)
	}
}

func TestTable_EditCurrent_ZeroDateIgnored(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("cur", 10, today))

	var zero Date

	edited, err := tbl.EditCurrent(today, Edit{Next: &zero})
	if err != nil {
		t.Fatalf("EditCurrent: %v", err)
	}

	if !edited.NextRepetition.Equal(today) {
		t.Fatalf("date=%v, want unchanged %v", edited.NextRepetition, today)
	}
}

func TestTable_Clone_IsIndependent(t *testing.T) {
	t.Parallel()

	tbl := tableOf(row("a", 1, today))
	c := tbl.Clone()

	c.Rows[0].Link = "changed"
	c.Add(row("b", 1, today))

	if got, want := tbl.Rows[0].Link, "a"; got != want {
		t.Fatalf("original link=%s, want=%s", got, want)
	}

	if got, want := len(tbl.Rows), 1; got != want {
		t.Fatalf("original rows=%d, want=%d", got, want)
	}
}
