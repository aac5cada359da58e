package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/calvinalkan/iw/internal/queue"
)

const maxLinkWidth = 60

// formatRow renders one row for "current" and the review loop.
func formatRow(r queue.Row, today queue.Date) string {
	var b strings.Builder

	b.WriteString(r.Link)
	b.WriteString("\n")
	fmt.Fprintf(&b, "  priority:    %d\n", r.Priority)
	fmt.Fprintf(&b, "  repetition:  %d\n", r.RepetitionCount)
	fmt.Fprintf(&b, "  next:        %s%s\n", r.NextRepetition, overdue(r.NextRepetition, today))

	if r.Notes != "" {
		lines := strings.Split(r.Notes, "\n")

		fmt.Fprintf(&b, "  notes:       %s\n", lines[0])

		for _, l := range lines[1:] {
			fmt.Fprintf(&b, "               %s\n", l)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func overdue(next, today queue.Date) string {
	days := next.DaysUntil(today)

	switch {
	case days == 1:
		return " (1 day overdue)"
	case days > 1:
		return fmt.Sprintf(" (%d days overdue)", days)
	default:
		return ""
	}
}

// formatEntries renders ls output as aligned columns. Widths are display
// widths, so wide runes in links line up.
func formatEntries(entries []queue.Entry) string {
	header := []string{"#", "STATE", "PRI", "REP", "NEXT", "LINK"}
	rows := [][]string{header}

	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.State.String(),
			strconv.Itoa(e.Row.Priority),
			strconv.Itoa(e.Row.RepetitionCount),
			e.Row.NextRepetition.String(),
			runewidth.Truncate(e.Row.Link, maxLinkWidth, "…"),
		})
	}

	widths := make([]int, len(header))

	for _, r := range rows {
		for c, cell := range r {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder

	for _, r := range rows {
		for c, cell := range r {
			if c == len(r)-1 {
				b.WriteString(cell)

				continue
			}

			b.WriteString(runewidth.FillRight(cell, widths[c]))
			b.WriteString("  ")
		}

		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
