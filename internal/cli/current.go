package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/queue"
)

// CurrentCmd returns the current command.
func CurrentCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("current", flag.ContinueOnError),
		Usage: "current",
		Short: "Show the current repetition",
		Long:  "Show the row that is up for review now, and how many rows are due.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execCurrent(ctx, o, a)
		},
	}
}

func execCurrent(ctx context.Context, o *IO, a *App) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	t, err := a.Store.Load(ctx, q)
	if err != nil {
		return err
	}

	row, ok := t.Current(a.Today)
	if !ok {
		o.Notify(queue.SeverityInfo, q.Name()+": no repetitions")

		return nil
	}

	o.Println(formatRow(row, a.Today))
	o.Println()
	o.Printf("%d due in %s\n", queue.CountDue(t.Rows, a.Today), q.Name())

	return nil
}

// LsCmd returns the ls command.
func LsCmd(a *App) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.BoolP("all", "a", false, "Also list rows scheduled for later")
	fs.Int("limit", 0, "Maximum rows to show (0 = no limit)")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List due rows",
		Long:  "List due rows in review order. The first one is the current repetition.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			return execLs(ctx, o, a, fs)
		},
	}
}

var errNegativeLimit = errors.New("--limit must be non-negative")

func execLs(ctx context.Context, o *IO, a *App, fs *flag.FlagSet) error {
	all, _ := fs.GetBool("all")

	limit, _ := fs.GetInt("limit")
	if limit < 0 {
		return errNegativeLimit
	}

	q, err := a.queue()
	if err != nil {
		return err
	}

	entries, _, err := a.Store.List(ctx, q, a.Today, all)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		o.Notify(queue.SeverityInfo, q.Name()+": no repetitions")

		return nil
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	o.Println(formatEntries(entries))

	return nil
}
