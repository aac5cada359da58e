package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/calvinalkan/iw/internal/queue"
)

// IO handles command output with LLM-friendly warning visibility.
//
// It is also the queue store's notification sink. Info notices go to stderr
// right away; warnings are collected like [IO.Warn].
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []string
	started  bool

	infoColor *color.Color
	warnColor *color.Color
	errColor  *color.Color
}

var _ queue.Notifier = (*IO)(nil)

// NewIO creates a new IO instance. Colors are off until [IO.SetColor].
func NewIO(out, errOut io.Writer) *IO {
	o := &IO{
		out:       out,
		errOut:    errOut,
		infoColor: color.New(color.FgCyan),
		warnColor: color.New(color.FgYellow, color.Bold),
		errColor:  color.New(color.FgRed, color.Bold),
	}

	o.SetColor(false)

	return o
}

// SetColor turns severity colors on or off.
func (o *IO) SetColor(enabled bool) {
	for _, c := range []*color.Color{o.infoColor, o.warnColor, o.errColor} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// isTerminal reports whether w is a terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Warn adds an actionable warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what to do about it
//
// Warnings are printed to stderr at both the START and END of output,
// ensuring visibility regardless of truncation or piping (head/tail).
// Any warnings cause exit code 1 to signal attention is needed.
//
// Output to stdout (via Println) still occurs - warnings don't suppress
// normal output. This allows partial results with issues flagged.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, fmt.Sprintf("%s: %s", issue, action))
}

// Notify implements [queue.Notifier].
func (o *IO) Notify(sev queue.Severity, msg string) {
	switch sev {
	case queue.SeverityWarning:
		o.warnings = append(o.warnings, msg)
	case queue.SeverityError:
		o.ErrPrintln(o.errColor.Sprint("error:"), msg)
	default:
		o.ErrPrintln(o.infoColor.Sprint("info:"), msg)
	}
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out returns the stdout writer, for prompts that write directly.
func (o *IO) Out() io.Writer {
	o.flushWarningsStart()

	return o.out
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	// If no output happened but we have warnings, print them at "start" position
	o.flushWarningsStart()

	// Always print at end
	o.printWarnings()

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) flushWarningsStart() {
	if !o.started && len(o.warnings) > 0 {
		o.printWarnings()

		o.started = true
	}
}

func (o *IO) printWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, o.warnColor.Sprint("warning:"), w)
	}
}
