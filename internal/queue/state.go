package queue

// State is the derived scheduling state of a row. It is never stored; it is
// computed from the row's date and its position in the due order.
type State int

const (
	// StateScheduled means the next repetition date is in the future.
	StateScheduled State = iota + 1
	// StateDue means the row may be reviewed but is not first in line.
	StateDue
	// StateActive means the row is the current repetition.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateDue:
		return "due"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// StateOf returns the state of rows[pos] on today. At most one position of
// a given rows/today pair is [StateActive].
func StateOf(rows []Row, pos int, today Date) State {
	if !rows[pos].IsDue(today) {
		return StateScheduled
	}

	if cur, _, ok := CurrentRep(rows, today); ok && cur == pos {
		return StateActive
	}

	return StateDue
}
