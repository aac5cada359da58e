package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/config"
	"github.com/calvinalkan/iw/internal/queue"
)

// NewCmd returns the new command.
func NewCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("new", flag.ContinueOnError),
		Usage: "new [name]",
		Short: "Create a queue",
		Long: `Create an empty queue document in the queue directory and load it.
Without a name the default_queue is created.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execNew(ctx, o, a, args)
		},
	}
}

func execNew(ctx context.Context, o *IO, a *App, args []string) error {
	if len(args) > 1 {
		return ErrTooManyArgs
	}

	name := a.Cfg.DefaultQueue
	if len(args) == 1 {
		name = args[0]
	}

	q := queue.Queue{Path: a.Cfg.QueuePath(name)}

	_, err := a.Store.Create(ctx, q)
	if err != nil {
		return err
	}

	o.Println("created", q.Path)
	a.selectQueue(o, q)

	return nil
}

// QueuesCmd returns the queues command.
func QueuesCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("queues", flag.ContinueOnError),
		Usage: "queues",
		Short: "List queues",
		Long:  "List the queue documents in the queue directory. The current queue is marked with *.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execQueues(ctx, o, a)
		},
	}
}

func execQueues(ctx context.Context, o *IO, a *App) error {
	entries, err := a.FS.ReadDir(a.Cfg.QueueDirAbs)
	if errors.Is(err, os.ErrNotExist) {
		o.Notify(queue.SeverityInfo, "no queue directory at "+a.Cfg.QueueDirAbs+` (run "iw new")`)

		return nil
	}

	if err != nil {
		return fmt.Errorf("reading queue directory: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".md" {
			continue
		}

		names = append(names, e.Name())
	}

	slices.Sort(names)

	current, _ := a.queue()

	for _, name := range names {
		q := queue.Queue{Path: filepath.Join(a.Cfg.QueueDirAbs, name)}

		t, err := a.Store.Load(ctx, q)
		if err != nil {
			return err
		}

		mark := " "
		if q.Path == current.Path {
			mark = "*"
		}

		o.Printf("%s %-30s %d due, %d total\n", mark, q.Name(), queue.CountDue(t.Rows, a.Today), len(t.Rows))
	}

	return nil
}

// LoadCmd returns the load command.
func LoadCmd(a *App) *Command {
	return &Command{
		Flags: flag.NewFlagSet("load", flag.ContinueOnError),
		Usage: "load <name>",
		Short: "Make a queue the current one",
		Long: `Load a queue and remember it as the current queue for later commands.
The choice is stored as last_queue in the project config.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execLoad(ctx, o, a, args)
		},
	}
}

func execLoad(ctx context.Context, o *IO, a *App, args []string) error {
	if len(args) == 0 {
		return ErrQueueNameRequired
	}

	if len(args) > 1 {
		return ErrTooManyArgs
	}

	q := queue.Queue{Path: a.Cfg.QueuePath(args[0])}

	t, err := a.Store.Load(ctx, q)
	if err != nil {
		return err
	}

	a.selectQueue(o, q)

	o.Printf("loaded %s: %d due, %d total\n", q.Name(), queue.CountDue(t.Rows, a.Today), len(t.Rows))

	return nil
}

// selectQueue makes q current for this run and persists it as last_queue.
// A config write failure is only a warning; the queue itself is fine.
func (a *App) selectQueue(o *IO, q queue.Queue) {
	a.Session.Select(q)

	err := config.SaveLastQueue(a.FS, a.Cfg, a.relToQueueDir(q.Path))
	if err != nil {
		o.Warn("could not remember "+q.Name()+" as current queue", err.Error())
	}
}
