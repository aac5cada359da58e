package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/links"
	"github.com/calvinalkan/iw/internal/queue"
)

const notePerms = 0o644

// AddCmd returns the add command.
func AddCmd(a *App) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	rf := addRowFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "add <link> [flags]",
		Short: "Add a link to the queue",
		Long:  "Add one row to the current queue. The link is stored as given.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execAdd(ctx, o, a, rf, args)
		},
	}
}

func execAdd(ctx context.Context, o *IO, a *App, rf rowFlags, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return ErrLinkRequired
	}

	if len(args) > 1 {
		return fmt.Errorf("%w (quote links containing spaces)", ErrTooManyArgs)
	}

	return addOne(ctx, o, a, rf, args[0], links.Meta{})
}

// AddNoteCmd returns the add-note command.
func AddNoteCmd(a *App) *Command {
	fs := flag.NewFlagSet("add-note", flag.ContinueOnError)
	rf := addRowFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "add-note <file> [flags]",
		Short: "Add a note as a wiki link",
		Long: `Add a [[wiki link]] to a note, relative to the vault.
The note's iw-priority and iw-notes frontmatter keys are used unless the
matching flag is given.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execAddNote(ctx, o, a, rf, args)
		},
	}
}

func execAddNote(ctx context.Context, o *IO, a *App, rf rowFlags, args []string) error {
	if len(args) == 0 {
		return ErrFileRequired
	}

	if len(args) > 1 {
		return ErrTooManyArgs
	}

	path := a.path(args[0])

	note, err := readNote(o, a, path)
	if err != nil {
		return err
	}

	link, err := links.NoteLink(a.Cfg.VaultDirAbs, path)
	if err != nil {
		return err
	}

	return addOne(ctx, o, a, rf, link, note.Meta)
}

// AddBlockCmd returns the add-block command.
func AddBlockCmd(a *App) *Command {
	fs := flag.NewFlagSet("add-block", flag.ContinueOnError)
	rf := addRowFlags(fs)
	line := fs.IntP("line", "l", 0, "Attach a block id to line `n` of the note and add it")

	return &Command{
		Flags: fs,
		Usage: "add-block <file> [block-id] [flags]",
		Short: "Add a block reference",
		Long: `Add a [[note#^block]] link. Either name an existing block id, or pass
--line to reuse the id at the end of that line or attach a new one.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execAddBlock(ctx, o, a, rf, *line, args)
		},
	}
}

func execAddBlock(ctx context.Context, o *IO, a *App, rf rowFlags, line int, args []string) error {
	if len(args) == 0 {
		return ErrFileRequired
	}

	if len(args) > 2 {
		return ErrTooManyArgs
	}

	hasID := len(args) == 2
	if hasID == (line > 0) {
		return ErrBlockRequired
	}

	path := a.path(args[0])

	note, err := readNote(o, a, path)
	if err != nil {
		return err
	}

	var id string

	if hasID {
		id = args[1]
	} else {
		id, err = attachBlockID(a, path, line)
		if err != nil {
			return err
		}
	}

	link, err := links.BlockLink(a.Cfg.VaultDirAbs, path, id)
	if err != nil {
		return err
	}

	return addOne(ctx, o, a, rf, link, note.Meta)
}

// attachBlockID returns the block id of line n in the note at path, writing
// a new one into the note when the line has none.
func attachBlockID(a *App, path string, n int) (string, error) {
	data, err := a.FS.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading note: %w", err)
	}

	content, id, err := links.EnsureBlockID(string(data), n)
	if err != nil {
		return "", err
	}

	if content == string(data) {
		return id, nil
	}

	err = a.FS.WriteFileAtomic(path, []byte(content), notePerms)
	if err != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}

	return id, nil
}

// AddLinksCmd returns the add-links command.
func AddLinksCmd(a *App) *Command {
	fs := flag.NewFlagSet("add-links", flag.ContinueOnError)
	rf := addRowFlags(fs)
	embeds := fs.Bool("embeds", false, "Also add embedded notes and images")

	return &Command{
		Flags: fs,
		Usage: "add-links <file> [flags]",
		Short: "Add every link found in a note",
		Long: `Add one row per distinct link in the note body, in document order.
Links inside fenced code blocks are ignored.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execAddLinks(ctx, o, a, rf, *embeds, args)
		},
	}
}

func execAddLinks(ctx context.Context, o *IO, a *App, rf rowFlags, embeds bool, args []string) error {
	if len(args) == 0 {
		return ErrFileRequired
	}

	if len(args) > 1 {
		return ErrTooManyArgs
	}

	path := a.path(args[0])

	note, err := readNote(o, a, path)
	if err != nil {
		return err
	}

	var found []string

	for _, l := range links.Extract(note.Body) {
		if l.Embed && !embeds {
			continue
		}

		found = append(found, l.String())
	}

	if len(found) == 0 {
		o.Notify(queue.SeverityInfo, "no links found in "+args[0])

		return nil
	}

	return addMany(ctx, o, a, rf, found)
}

// ImportCmd returns the import command.
func ImportCmd(a *App) *Command {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	rf := addRowFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "import [flags]",
		Short: "Add one row per line of stdin",
		Long: `Read links from stdin, one per line, and add them all at once.
Blank lines are skipped. Lines naming an existing .md file are added as
wiki links to that note.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execImport(ctx, o, a, rf, args)
		},
	}
}

func execImport(ctx context.Context, o *IO, a *App, rf rowFlags, args []string) error {
	if len(args) > 0 {
		return ErrTooManyArgs
	}

	lines, err := readLines(a.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	var found []string

	for _, line := range lines {
		found = append(found, importLink(a, line))
	}

	if len(found) == 0 {
		o.Notify(queue.SeverityInfo, "nothing to import")

		return nil
	}

	return addMany(ctx, o, a, rf, found)
}

// importLink turns a path to a note inside the vault into a wiki link and
// leaves anything else alone.
func importLink(a *App, line string) string {
	if !strings.HasSuffix(line, ".md") {
		return line
	}

	path := a.path(line)

	if ok, _ := a.FS.Exists(path); !ok {
		return line
	}

	link, err := links.NoteLink(a.Cfg.VaultDirAbs, path)
	if err != nil {
		return line
	}

	return link
}

func readLines(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, nil
	}

	var lines []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}

	return lines, sc.Err()
}

// readNote reads the note at path. Broken frontmatter is reported and the
// note is used without it.
func readNote(o *IO, a *App, path string) (links.Note, error) {
	note, err := links.ReadNote(a.FS, path)
	if errors.Is(err, links.ErrBadFrontmatter) {
		o.Warn(err.Error(), "frontmatter ignored")

		return note, nil
	}

	return note, err
}

func addOne(ctx context.Context, o *IO, a *App, rf rowFlags, link string, meta links.Meta) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	in, err := rf.input(a, link, meta)
	if err != nil {
		return err
	}

	row, _, err := a.Store.Add(ctx, q, in)
	if err != nil {
		return err
	}

	o.Printf("added %s (priority %d, next %s)\n", row.Link, row.Priority, row.NextRepetition)

	return nil
}

func addMany(ctx context.Context, o *IO, a *App, rf rowFlags, found []string) error {
	q, err := a.queue()
	if err != nil {
		return err
	}

	ins := make([]queue.RowInput, 0, len(found))

	for _, link := range found {
		in, err := rf.input(a, link, links.Meta{})
		if err != nil {
			return err
		}

		ins = append(ins, in)
	}

	rows, _, err := a.Store.AddMultiple(ctx, q, ins)
	if err != nil {
		return err
	}

	for _, row := range rows {
		o.Printf("added %s (priority %d, next %s)\n", row.Link, row.Priority, row.NextRepetition)
	}

	o.Printf("%d rows added to %s\n", len(rows), q.Name())

	return nil
}
