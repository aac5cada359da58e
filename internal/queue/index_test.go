package queue

import (
	"slices"
	"testing"
)

var today = MustParseDate("2024-06-15")

func row(link string, priority int, next Date) Row {
	return Row{Link: link, Priority: priority, RepetitionCount: 1, NextRepetition: next}
}

func links(rows []Row, positions []int) []string {
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		out = append(out, rows[p].Link)
	}

	return out
}

func dueLinks(rows []Row, day Date) []string {
	var out []string
	for _, r := range DueRows(rows, day) {
		out = append(out, r.Link)
	}

	return out
}

func TestDueRows_FiltersAndOrdersOldestFirst(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("tomorrow", 50, today.AddDays(1)),
		row("today", 50, today),
		row("yesterday", 50, today.AddDays(-1)),
	}

	got := dueLinks(rows, today)
	want := []string{"yesterday", "today"}

	if !slices.Equal(got, want) {
		t.Fatalf("DueRows=%v, want=%v", got, want)
	}
}

func TestDueRows_YieldsSourcePositions(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("b", 20, today),
		row("later", 0, today.AddDays(3)),
		row("a", 10, today),
	}

	var positions []int
	for pos := range DueRows(rows, today) {
		positions = append(positions, pos)
	}

	if got, want := positions, []int{2, 0}; !slices.Equal(got, want) {
		t.Fatalf("positions=%v, want=%v", got, want)
	}
}

func TestDueRows_IsRestartable(t *testing.T) {
	t.Parallel()

	rows := []Row{row("a", 1, today), row("b", 2, today)}
	seq := DueRows(rows, today)

	var first, second []string
	for _, r := range seq {
		first = append(first, r.Link)
	}

	for _, r := range seq {
		second = append(second, r.Link)
	}

	if !slices.Equal(first, second) {
		t.Fatalf("second pass=%v, first pass=%v", second, first)
	}

	var stopped []string
	for _, r := range seq {
		stopped = append(stopped, r.Link)

		break
	}

	if got, want := stopped, []string{"a"}; !slices.Equal(got, want) {
		t.Fatalf("early break=%v, want=%v", got, want)
	}
}

func TestCurrentRep_LowerPriorityWinsOnSameDate(t *testing.T) {
	t.Parallel()

	rows := []Row{row("p90", 90, today), row("p10", 10, today)}

	pos, got, ok := CurrentRep(rows, today)
	if !ok {
		t.Fatal("CurrentRep: ok=false")
	}

	if got.Link != "p10" || pos != 1 {
		t.Fatalf("CurrentRep=(%d, %s), want=(1, p10)", pos, got.Link)
	}
}

func TestCurrentRep_DateBeatsPriority(t *testing.T) {
	t.Parallel()

	rows := []Row{row("urgent-today", 0, today), row("lazy-overdue", 100, today.AddDays(-2))}

	_, got, _ := CurrentRep(rows, today)
	if got.Link != "lazy-overdue" {
		t.Fatalf("CurrentRep=%s, want lazy-overdue", got.Link)
	}
}

func TestCurrentRep_EqualRowsKeepSourceOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{row("first", 30, today), row("second", 30, today)}

	pos, _, _ := CurrentRep(rows, today)
	if got, want := pos, 0; got != want {
		t.Fatalf("pos=%d, want=%d", got, want)
	}

	if got, want := dueLinks(rows, today), []string{"first", "second"}; !slices.Equal(got, want) {
		t.Fatalf("DueRows=%v, want=%v", got, want)
	}
}

func TestCurrentRep_NoneDue(t *testing.T) {
	t.Parallel()

	rows := []Row{row("later", 1, today.AddDays(1))}

	if _, _, ok := CurrentRep(rows, today); ok {
		t.Fatal("CurrentRep: ok=true with nothing due")
	}

	if HasReps(rows, today) {
		t.Fatal("HasReps=true with nothing due")
	}

	if HasReps(nil, today) {
		t.Fatal("HasReps(nil)=true")
	}
}

func TestCurrentRep_AgreesWithDueRows(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("c", 5, today.AddDays(-1)),
		row("a", 50, today.AddDays(-3)),
		row("b", 0, today.AddDays(-3)),
		row("d", 0, today.AddDays(2)),
	}

	_, cur, _ := CurrentRep(rows, today)

	for _, first := range DueRows(rows, today) {
		if first.Link != cur.Link {
			t.Fatalf("CurrentRep=%s, first of DueRows=%s", cur.Link, first.Link)
		}

		break
	}

	if got, want := CountDue(rows, today), 3; got != want {
		t.Fatalf("CountDue=%d, want=%d", got, want)
	}
}

func TestUpcoming(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("far", 1, today.AddDays(10)),
		row("due", 1, today),
		row("near-low", 80, today.AddDays(1)),
		row("near-high", 5, today.AddDays(1)),
	}

	if got, want := links(rows, Upcoming(rows, today, 0)), []string{"near-high", "near-low", "far"}; !slices.Equal(got, want) {
		t.Fatalf("Upcoming=%v, want=%v", got, want)
	}

	if got, want := links(rows, Upcoming(rows, today, 1)), []string{"near-high"}; !slices.Equal(got, want) {
		t.Fatalf("Upcoming(limit 1)=%v, want=%v", got, want)
	}
}

func TestSortRows_IsStableTotalOrder(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("late", 0, today.AddDays(5)),
		row("x", 10, today),
		row("y", 10, today),
		row("early", 99, today.AddDays(-5)),
		row("z", 1, today),
	}

	SortRows(rows)

	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.Link)
	}

	if want := []string{"early", "z", "x", "y", "late"}; !slices.Equal(got, want) {
		t.Fatalf("SortRows=%v, want=%v", got, want)
	}
}

func TestStateOf(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("scheduled", 1, today.AddDays(1)),
		row("due", 50, today),
		row("active", 10, today),
	}

	want := []State{StateScheduled, StateDue, StateActive}
	for i := range rows {
		if got := StateOf(rows, i, today); got != want[i] {
			t.Errorf("StateOf(%s)=%v, want=%v", rows[i].Link, got, want[i])
		}
	}

	// Once its date arrives the row is due, but older rows still come first.
	if got, want := StateOf(rows, 0, today.AddDays(1)), StateDue; got != want {
		t.Fatalf("StateOf(scheduled, tomorrow)=%v, want=%v", got, want)
	}
}
