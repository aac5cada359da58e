package cli

import (
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/links"
	"github.com/calvinalkan/iw/internal/queue"
)

// rowFlags are the flags shared by the commands that add rows.
type rowFlags struct {
	flags    *flag.FlagSet
	priority *int
	notes    *string
	date     *string
}

func addRowFlags(flags *flag.FlagSet) rowFlags {
	return rowFlags{
		flags:    flags,
		priority: flags.IntP("priority", "p", 0, "Priority 0-100, lower is reviewed first (default: default_priority)"),
		notes:    flags.StringP("notes", "n", "", "Notes for the row"),
		date:     flags.StringP("date", "d", "", "First repetition `date` (default: first_rep_date)"),
	}
}

// input builds the row for link. Flags win over note frontmatter, which
// wins over config defaults. The date is resolved once per call.
func (rf rowFlags) input(a *App, link string, meta links.Meta) (queue.RowInput, error) {
	priority := a.Cfg.DefaultPriority
	if meta.Priority != nil {
		priority = *meta.Priority
	}

	if rf.flags.Changed("priority") {
		priority = *rf.priority
	}

	notes := meta.Notes
	if rf.flags.Changed("notes") {
		notes = *rf.notes
	}

	dateText := a.Cfg.FirstRepDate
	if rf.flags.Changed("date") {
		dateText = *rf.date
	}

	next, err := a.Store.ResolveDate(dateText, a.Today)
	if err != nil {
		return queue.RowInput{}, err
	}

	return queue.RowInput{
		Link:           link,
		Priority:       priority,
		Notes:          notes,
		NextRepetition: next,
	}, nil
}
