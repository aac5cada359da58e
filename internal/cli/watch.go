package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/iw/internal/links"
	"github.com/calvinalkan/iw/internal/queue"
)

// WatchCmd returns the watch command.
func WatchCmd(a *App) *Command {
	fset := flag.NewFlagSet("watch", flag.ContinueOnError)
	fset.StringArray("pattern", nil, "Glob of files to add, replaces auto_add (repeatable)")

	return &Command{
		Flags: fset,
		Usage: "watch [dir] [flags]",
		Short: "Add new notes to the queue as they appear",
		Long: `Watch dir (default: the vault) and add every newly created file matching
auto_add to the current queue. Hidden paths and the queue directory are
ignored. Runs until interrupted.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) > 1 {
				return ErrTooManyArgs
			}

			patterns, _ := fset.GetStringArray("pattern")
			if fset.Changed("pattern") {
				a.Cfg.AutoAdd = patterns
			}

			root := a.Cfg.VaultDirAbs
			if len(args) == 1 {
				root = a.path(args[0])
			}

			return execWatch(ctx, o, a, root)
		},
	}
}

func execWatch(ctx context.Context, o *IO, a *App, root string) error {
	if len(a.Cfg.AutoAdd) == 0 {
		return errNoAutoAdd
	}

	q, err := a.queue()
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	defer func() { _ = fw.Close() }()

	w := newWatcher(a, o, q, root, fw.Add)

	err = w.addTree(root)
	if err != nil {
		return err
	}

	o.Printf("watching %s for %s (queue %s)\n", root, strings.Join(a.Cfg.AutoAdd, ", "), q.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}

			o.Notify(queue.SeverityError, "watch: "+err.Error())
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			err := w.handle(ctx, ev)
			if err != nil {
				o.Notify(queue.SeverityError, err.Error())
			}
		}
	}
}

// watcher turns file-created events into queue rows.
type watcher struct {
	app   *App
	io    *IO
	queue queue.Queue
	root  string
	add   func(dir string) error

	watched map[string]bool
	seen    map[string]bool
}

func newWatcher(a *App, o *IO, q queue.Queue, root string, add func(string) error) *watcher {
	return &watcher{
		app:     a,
		io:      o,
		queue:   q,
		root:    filepath.Clean(root),
		add:     add,
		watched: map[string]bool{},
		seen:    map[string]bool{},
	}
}

// handle processes one event. New directories are watched too; new files
// matching auto_add are added once per run.
func (w *watcher) handle(ctx context.Context, ev fsnotify.Event) error {
	if ev.Op&fsnotify.Create != fsnotify.Create {
		return nil
	}

	path := filepath.Clean(ev.Name)
	if w.ignored(path) {
		return nil
	}

	info, err := w.app.FS.Stat(path)
	if err != nil {
		// Gone again, e.g. an editor's temp file.
		return nil
	}

	if info.IsDir() {
		return w.addTree(path)
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil || !w.app.Cfg.MatchesAutoAdd(rel) || w.seen[path] {
		return nil
	}

	w.seen[path] = true

	return w.addFile(ctx, path)
}

func (w *watcher) addFile(ctx context.Context, path string) error {
	link, err := links.NoteLink(w.app.Cfg.VaultDirAbs, path)
	if err != nil {
		return err
	}

	var meta links.Meta

	if filepath.Ext(path) == ".md" {
		note, err := readNote(w.io, w.app, path)
		if err != nil {
			return err
		}

		meta = note.Meta
	}

	priority := w.app.Cfg.DefaultPriority
	if meta.Priority != nil {
		priority = *meta.Priority
	}

	next, err := w.app.Store.ResolveDate(w.app.Cfg.FirstRepDate, w.app.Clock())
	if err != nil {
		return err
	}

	row, _, err := w.app.Store.Add(ctx, w.queue, queue.RowInput{
		Link:           link,
		Priority:       priority,
		Notes:          meta.Notes,
		NextRepetition: next,
	})
	if err != nil {
		return err
	}

	w.io.Printf("added %s (priority %d, next %s)\n", row.Link, row.Priority, row.NextRepetition)

	return nil
}

// addTree watches dir and every directory below it.
func (w *watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}

			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}

		if w.watched[path] {
			return nil
		}

		err = w.add(path)
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}

		w.watched[path] = true

		return nil
	})
}

// ignored reports whether path is hidden below the root or inside the queue
// directory.
func (w *watcher) ignored(path string) bool {
	if qd := w.app.Cfg.QueueDirAbs; qd != "" && (path == qd || strings.HasPrefix(path, qd+string(filepath.Separator))) {
		return true
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}

	return false
}
