package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/calvinalkan/iw/internal/config"
	"github.com/calvinalkan/iw/internal/queue"
)

type watchFixture struct {
	dir     string
	app     *App
	out     *bytes.Buffer
	w       *watcher
	q       queue.Queue
	watched []string
}

func newWatchFixture(t *testing.T, patterns ...string) *watchFixture {
	t.Helper()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"HOME": dir}})
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	cfg.AutoAdd = patterns

	var out, errOut bytes.Buffer

	o := NewIO(&out, &errOut)

	app, err := NewApp(AppInput{Cfg: cfg, Notifier: o, Queue: "inbox", Today: "2024-06-15"})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	q, err := app.queue()
	if err != nil {
		t.Fatalf("queue: %v", err)
	}

	_, err = app.Store.Create(context.Background(), q)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	f := &watchFixture{dir: dir, app: app, out: &out, q: q}
	f.w = newWatcher(app, o, q, dir, func(d string) error {
		f.watched = append(f.watched, d)

		return nil
	})

	return f
}

func (f *watchFixture) create(t *testing.T, rel, content string) {
	t.Helper()

	path := filepath.Join(f.dir, rel)

	if content == "" && strings.HasSuffix(rel, "/") {
		if err := os.MkdirAll(path, 0o750); err != nil {
			t.Fatal(err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	err := f.w.handle(context.Background(), fsnotify.Event{Name: path, Op: fsnotify.Create})
	if err != nil {
		t.Fatalf("handle(%s): %v", rel, err)
	}
}

func (f *watchFixture) links(t *testing.T) []string {
	t.Helper()

	tbl, err := f.app.Store.Load(context.Background(), f.q)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	var got []string
	for _, r := range tbl.Rows {
		got = append(got, r.Link)
	}

	return got
}

func TestWatcher_AddsMatchingFiles(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "*.md")

	f.create(t, "idea.md", "---\niw-priority: 7\n---\nbody\n")
	f.create(t, "image.png", "png")
	f.create(t, ".hidden.md", "x")
	f.create(t, ".obsidian/workspace.md", "x")
	f.create(t, "IW-Queues/other.md", "x")

	got := f.links(t)
	if len(got) != 1 || got[0] != "[[idea]]" {
		t.Fatalf("links=%v, want=[[[idea]]]", got)
	}

	if !strings.Contains(f.out.String(), "added [[idea]] (priority 7, next 2024-06-15)") {
		t.Errorf("output=%q", f.out.String())
	}
}

func TestWatcher_AddsOncePerRun(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "*.md")

	f.create(t, "idea.md", "one")
	f.create(t, "idea.md", "two")

	if got := f.links(t); len(got) != 1 {
		t.Fatalf("links=%v, want one row", got)
	}
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "inbox/*.md")

	f.create(t, "inbox/", "")
	f.create(t, "inbox/new.md", "x")
	f.create(t, "elsewhere/new.md", "x")

	if got, want := f.watched, []string{filepath.Join(f.dir, "inbox")}; len(got) != 1 || got[0] != want[0] {
		t.Errorf("watched=%v, want=%v", got, want)
	}

	got := f.links(t)
	if len(got) != 1 || got[0] != "[[inbox/new]]" {
		t.Fatalf("links=%v, want=[[[inbox/new]]]", got)
	}
}

func TestWatcher_IgnoresOtherOps(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "*.md")
	path := filepath.Join(f.dir, "idea.md")

	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, op := range []fsnotify.Op{fsnotify.Write, fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod} {
		if err := f.w.handle(context.Background(), fsnotify.Event{Name: path, Op: op}); err != nil {
			t.Fatalf("handle(%v): %v", op, err)
		}
	}

	if got := f.links(t); len(got) != 0 {
		t.Fatalf("links=%v, want none", got)
	}
}

func TestWatcher_AddTreeSkipsHiddenAndQueueDir(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "*.md")

	for _, d := range []string{"a/b", ".git/objects", "IW-Queues/sub"} {
		if err := os.MkdirAll(filepath.Join(f.dir, d), 0o750); err != nil {
			t.Fatal(err)
		}
	}

	if err := f.w.addTree(f.dir); err != nil {
		t.Fatalf("addTree: %v", err)
	}

	want := []string{f.dir, filepath.Join(f.dir, "a"), filepath.Join(f.dir, "a", "b")}
	if strings.Join(f.watched, "\n") != strings.Join(want, "\n") {
		t.Errorf("watched=%v, want=%v", f.watched, want)
	}
}

func TestWatch_RequiresPatterns(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t)

	err := execWatch(context.Background(), NewIO(&bytes.Buffer{}, &bytes.Buffer{}), f.app, f.dir)
	if !errors.Is(err, errNoAutoAdd) {
		t.Fatalf("err=%v, want=%v", err, errNoAutoAdd)
	}
}

func TestWatcher_DatesRowsByTheClockAtEachEvent(t *testing.T) {
	t.Parallel()

	f := newWatchFixture(t, "*.md")
	f.app.Cfg.FirstRepDate = "tomorrow"

	now := queue.MustParseDate("2024-06-15")
	f.app.Clock = func() queue.Date { return now }

	f.create(t, "before.md", "x")

	now = now.AddDays(1)

	f.create(t, "after.md", "x")

	out := f.out.String()
	if !strings.Contains(out, "added [[before]] (priority 30, next 2024-06-16)") {
		t.Errorf("output=%q", out)
	}

	if !strings.Contains(out, "added [[after]] (priority 30, next 2024-06-17)") {
		t.Errorf("output=%q", out)
	}
}

func TestNewApp_ClockFollowsTodayFlag(t *testing.T) {
	t.Parallel()

	fixed, err := NewApp(AppInput{Today: "2024-06-15"})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	if got, want := fixed.Clock().String(), "2024-06-15"; got != want {
		t.Fatalf("Clock()=%s, want=%s", got, want)
	}

	live, err := NewApp(AppInput{})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}

	if got, want := live.Clock(), queue.DateOf(time.Now()); got != want {
		t.Fatalf("Clock()=%s, want=%s", got, want)
	}
}
