package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/queue"
)

// NextCmd returns the next command.
func NextCmd(a *App) *Command {
	fs := flag.NewFlagSet("next", flag.ContinueOnError)
	fs.StringP("date", "d", "", "Reschedule the current row to `date` instead of removing it")
	fs.IntP("priority", "p", 0, "New priority for the rescheduled row (needs --date)")

	return &Command{
		Flags: fs,
		Usage: "next [flags]",
		Short: "Finish the current repetition",
		Long: `Finish the current repetition. Without --date the row is removed from
the queue. With --date it is put back with its repetition count increased.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execNext(ctx, o, a, fs)
		},
	}
}

func execNext(ctx context.Context, o *IO, a *App, fs *flag.FlagSet) error {
	var resched *queue.RescheduleInput

	date, _ := fs.GetString("date")
	if fs.Changed("date") {
		resched = &queue.RescheduleInput{Date: date}
	}

	if fs.Changed("priority") {
		if resched == nil {
			return ErrPriorityNeedsDate
		}

		p, _ := fs.GetInt("priority")
		resched.Priority = &p
	}

	return advance(ctx, o, a, resched)
}

// advance runs next for the CLI and the review loop.
func advance(ctx context.Context, o *IO, a *App, resched *queue.RescheduleInput) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	prev, t, err := a.Store.Advance(ctx, q, a.Today, resched)
	if errors.Is(err, queue.ErrNoRepetitions) {
		return nil
	}

	if err != nil {
		return err
	}

	if resched == nil {
		o.Println("done", prev.Link)
	} else {
		o.Printf("rescheduled %s to %s (repetition %d)\n", prev.Link, t.Rows[len(t.Rows)-1].NextRepetition, prev.RepetitionCount+1)
	}

	printUpNext(o, a, t)

	return nil
}

// DismissCmd returns the dismiss command.
func DismissCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("dismiss", flag.ContinueOnError),
		Usage: "dismiss",
		Short: "Drop the current repetition",
		Long:  "Remove the current repetition from the queue for good.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return dismiss(ctx, o, a)
		},
	}
}

func dismiss(ctx context.Context, o *IO, a *App) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	prev, t, err := a.Store.Dismiss(ctx, q, a.Today)
	if errors.Is(err, queue.ErrNoRepetitions) {
		return nil
	}

	if err != nil {
		return err
	}

	o.Println("dismissed", prev.Link)
	printUpNext(o, a, t)

	return nil
}

// EditCmd returns the edit command.
func EditCmd(a *App) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.IntP("priority", "p", 0, "New priority (clamped to 0-100)")
	fs.StringP("notes", "n", "", "Replace the notes")
	fs.StringP("date", "d", "", "New next repetition `date`")

	return &Command{
		Flags: fs,
		Usage: "edit [flags]",
		Short: "Edit the current repetition",
		Long: `Change the current repetition in place. The repetition count is kept.
A date that cannot be understood is reported and the other changes still apply.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execEdit(ctx, o, a, fs)
		},
	}
}

func execEdit(ctx context.Context, o *IO, a *App, fs *flag.FlagSet) error {
	var in queue.EditInput

	if fs.Changed("priority") {
		p, _ := fs.GetInt("priority")
		in.Priority = &p
	}

	if fs.Changed("notes") {
		n, _ := fs.GetString("notes")
		in.Notes = &n
	}

	if fs.Changed("date") {
		in.Date, _ = fs.GetString("date")
	}

	if in.Priority == nil && in.Notes == nil && in.Date == "" {
		return ErrNothingToEdit
	}

	return edit(ctx, o, a, in)
}

func edit(ctx context.Context, o *IO, a *App, in queue.EditInput) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	row, _, err := a.Store.EditCurrent(ctx, q, a.Today, in)
	if errors.Is(err, queue.ErrNoRepetitions) {
		return nil
	}

	if err != nil {
		return err
	}

	o.Println("edited", row.Link)
	o.Println(formatRow(row, a.Today))

	return nil
}

func printUpNext(o *IO, a *App, t *queue.Table) {
	row, ok := t.Current(a.Today)
	if !ok {
		o.Println("no more repetitions due today")

		return
	}

	o.Println()
	o.Println("up next:", formatRow(row, a.Today))
}
