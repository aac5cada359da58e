package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/config"
)

type globalOptions struct {
	workDir    string
	configPath string
	queue      string
	queueDir   string
	vaultDir   string
	today      string
	help       bool
}

func newGlobalFlags(g *globalOptions) *flag.FlagSet {
	flags := flag.NewFlagSet("iw", flag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(&strings.Builder{})

	flags.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	flags.StringVarP(&g.configPath, "config", "c", "", "Use specified config `file`")
	flags.StringVarP(&g.queue, "queue", "q", "", "Use queue `name` for this command only")
	flags.StringVar(&g.queueDir, "queue-dir", "", "Override the queue directory")
	flags.StringVar(&g.vaultDir, "vault", "", "Override the vault root links are relative to")
	flags.StringVar(&g.today, "today", "", "Treat `date` as today")
	flags.BoolVarP(&g.help, "help", "h", false, "Show help")

	return flags
}

// Run is the main entry point. Returns exit code.
//
// The first signal received on sigCh cancels the running command's context.
// sigCh may be nil.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if env == nil {
		env = map[string]string{}
	}

	var g globalOptions

	globals := newGlobalFlags(&g)

	if len(args) < 2 {
		printUsage(out, globals)

		return 0
	}

	err := globals.Parse(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, globals)

		return 1
	}

	if g.help {
		printUsage(out, globals)

		return 0
	}

	rest := globals.Args()
	if len(rest) == 0 {
		fprintln(errOut, "error:", ErrNoCommand)
		fprintln(errOut)
		printUsage(errOut, globals)

		return 1
	}

	if globals.Changed("queue-dir") && g.queueDir == "" {
		fprintln(errOut, "error:", config.ErrQueueDirEmpty)
		fprintln(errOut)
		printUsage(errOut, globals)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: g.workDir,
		ConfigPath:      g.configPath,
		Overrides:       config.Overrides{QueueDir: g.queueDir, VaultDir: g.vaultDir},
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	o := NewIO(out, errOut)
	o.SetColor(env["NO_COLOR"] == "" && isTerminal(errOut))

	app, err := NewApp(AppInput{
		Cfg:      cfg,
		Notifier: o,
		Queue:    g.queue,
		Today:    g.today,
		Stdin:    stdin,
		Env:      env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	name := rest[0]

	cmd := findCommand(commandList(app), name)
	if cmd == nil {
		fprintln(errOut, "error:", fmt.Errorf("%w: %s", ErrUnknownCommand, name))
		fprintln(errOut)
		printUsage(errOut, globals)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	code := cmd.Run(ctx, o, rest[1:])
	finish := o.Finish()

	if code != 0 {
		return code
	}

	return finish
}

// commandList returns every command in help order.
func commandList(a *App) []*Command {
	return []*Command{
		NewCmd(a),
		QueuesCmd(a),
		LoadCmd(a),
		AddCmd(a),
		AddNoteCmd(a),
		AddBlockCmd(a),
		AddLinksCmd(a),
		ImportCmd(a),
		CurrentCmd(a),
		LsCmd(a),
		NextCmd(a),
		DismissCmd(a),
		EditCmd(a),
		ReviewCmd(a),
		WatchCmd(a),
		PrintConfigCmd(a),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *flag.FlagSet) {
	fprintln(w, `iw - incremental writing queue

Usage: iw [global flags] <command> [args]

Global flags:`)

	var buf strings.Builder

	globals.SetOutput(&buf)
	globals.PrintDefaults()
	globals.SetOutput(&strings.Builder{})

	_, _ = io.WriteString(w, buf.String())

	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range commandList(&App{}) {
		fprintln(w, c.HelpLine())
	}

	fprintln(w)
	fprintln(w, `Run "iw <command> --help" for command flags.`)
}
