package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/queue"
)

const reviewPrompt = "iw> "

// ReviewCmd returns the review command.
func ReviewCmd(a *App) *Command {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.Bool("no-history", false, "Do not read or write the prompt history file")

	return &Command{
		Flags: fs,
		Usage: "review [flags]",
		Short: "Review due rows interactively",
		Long: `Step through due rows one at a time. Type "help" at the prompt for the
available actions. Reads plain lines when stdin is not a terminal.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 0 {
				return ErrTooManyArgs
			}

			noHistory, _ := fs.GetBool("no-history")

			return execReview(ctx, o, a, noHistory)
		},
	}
}

// prompter reads one line of input. io.EOF ends the loop.
type prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

func execReview(ctx context.Context, o *IO, a *App, noHistory bool) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	ok, err := a.Store.HasReps(ctx, q, a.Today)
	if err != nil {
		return err
	}

	if !ok {
		o.Notify(queue.SeverityInfo, q.Name()+": no repetitions")

		return nil
	}

	var p prompter

	if isTerminal(a.Stdin) {
		history := ""
		if !noHistory {
			history = historyFile(a.Env)
		}

		p = newLinerPrompter(history)
	} else {
		p = newLinePrompter(a.Stdin, o.Out())
	}

	defer func() { _ = p.Close() }()

	r := &reviewer{app: a, io: o}

	return r.loop(ctx, p)
}

type reviewer struct {
	app *App
	io  *IO
}

func (r *reviewer) loop(ctx context.Context, p prompter) error {
	r.show(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := p.Prompt(reviewPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		quit, err := r.dispatch(ctx, line)
		if err != nil {
			r.io.Notify(queue.SeverityError, err.Error())

			continue
		}

		if quit {
			return nil
		}
	}
}

// dispatch runs one review action and reports whether to stop.
func (r *reviewer) dispatch(ctx context.Context, line string) (bool, error) {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		r.help()

		return false, nil
	case "s", "show":
		r.show(ctx)

		return false, nil
	case "n", "next":
		return r.done(ctx, advance(ctx, r.io, r.app, parseNextArgs(rest)))
	case "d", "dismiss":
		return r.done(ctx, dismiss(ctx, r.io, r.app))
	case "skip":
		err := r.edit(ctx, queue.EditInput{Date: "tomorrow"})
		if err == nil {
			r.io.Println()
			r.show(ctx)
		}

		return r.done(ctx, err)
	case "p", "priority":
		prio, err := strconv.Atoi(rest)
		if err != nil {
			return false, fmt.Errorf("priority must be a number: %q", rest)
		}

		return false, r.edit(ctx, queue.EditInput{Priority: &prio})
	case "date":
		if rest == "" {
			return false, errors.New("date needs a value")
		}

		return false, r.edit(ctx, queue.EditInput{Date: rest})
	case "notes":
		return false, r.edit(ctx, queue.EditInput{Notes: &rest})
	default:
		return false, fmt.Errorf("unknown action %q (type help)", name)
	}
}

// parseNextArgs reads "[date] [priority]". A trailing number after a date
// is the new priority; "next" alone removes the row.
func parseNextArgs(rest string) *queue.RescheduleInput {
	if rest == "" {
		return nil
	}

	fields := strings.Fields(rest)
	in := &queue.RescheduleInput{Date: rest}

	if len(fields) > 1 {
		if p, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			in.Date = strings.Join(fields[:len(fields)-1], " ")
			in.Priority = &p
		}
	}

	return in
}

func (r *reviewer) edit(ctx context.Context, in queue.EditInput) error {
	return edit(ctx, r.io, r.app, in)
}

// done ends the loop once the queue has nothing left for today.
func (r *reviewer) done(ctx context.Context, err error) (bool, error) {
	if err != nil {
		return false, err
	}

	q, err := r.app.queue()
	if err != nil {
		return true, err
	}

	ok, err := r.app.Store.HasReps(ctx, q, r.app.Today)
	if err != nil {
		return true, err
	}

	return !ok, nil
}

func (r *reviewer) show(ctx context.Context) {
	q, err := r.app.queue()
	if err != nil {
		r.io.Notify(queue.SeverityError, err.Error())

		return
	}

	row, ok, err := r.app.Store.CurrentRep(ctx, q, r.app.Today)
	if err != nil {
		r.io.Notify(queue.SeverityError, err.Error())

		return
	}

	if !ok {
		r.io.Println("no repetitions due")

		return
	}

	r.io.Println(formatRow(row, r.app.Today))
}

func (r *reviewer) help() {
	r.io.Println(`Actions:
  n, next [date] [prio]   finish; with a date, reschedule (and set priority)
  d, dismiss              remove the row for good
  skip                    move the row to tomorrow
  p, priority N           set priority
  date D                  set the next repetition date
  notes TEXT              replace the notes
  s, show                 show the current row
  q, quit                 stop reviewing`)
}

func historyFile(env map[string]string) string {
	if dir := env["XDG_STATE_HOME"]; dir != "" {
		return filepath.Join(dir, "iw", "history")
	}

	home := env["HOME"]
	if home == "" {
		return ""
	}

	return filepath.Join(home, ".iw_history")
}

// linerPrompter reads from the terminal with line editing and history.
type linerPrompter struct {
	state   *liner.State
	history string
}

func newLinerPrompter(history string) *linerPrompter {
	p := &linerPrompter{state: liner.NewLiner(), history: history}
	p.state.SetCtrlCAborts(true)

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = p.state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return p
}

func (p *linerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		p.state.AppendHistory(line)
	}

	return line, err
}

func (p *linerPrompter) Close() error {
	if p.history != "" {
		_ = os.MkdirAll(filepath.Dir(p.history), 0o750)

		if f, err := os.Create(p.history); err == nil {
			_, _ = p.state.WriteHistory(f)
			_ = f.Close()
		}
	}

	return p.state.Close()
}

// linePrompter reads plain lines, for pipes and tests.
type linePrompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	if in == nil {
		in = strings.NewReader("")
	}

	return &linePrompter{sc: bufio.NewScanner(in), out: out}
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)

	if !p.sc.Scan() {
		_, _ = io.WriteString(p.out, "\n")

		if err := p.sc.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return p.sc.Text(), nil
}

func (*linePrompter) Close() error { return nil }
