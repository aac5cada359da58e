package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/calvinalkan/iw/internal/config"
	"github.com/calvinalkan/iw/internal/dateparse"
	"github.com/calvinalkan/iw/internal/fs"
	"github.com/calvinalkan/iw/internal/queue"
)

// App is what commands run against: configuration, the queue store and the
// session holding the active queue.
type App struct {
	Cfg     config.Config
	FS      fs.FS
	Store   *queue.Store
	Session *queue.Session
	Dates   queue.DateResolver
	Today   queue.Date
	Stdin   io.Reader
	Env     map[string]string

	// Clock returns the current date for commands that outlive a day. It
	// always returns Today when --today is given.
	Clock func() queue.Date
}

// AppInput holds the inputs for NewApp.
type AppInput struct {
	Cfg      config.Config
	FS       fs.FS
	Notifier queue.Notifier
	Queue    string // -q/--queue value; empty means last loaded or default
	Today    string // --today value; empty means the wall clock date
	Stdin    io.Reader
	Env      map[string]string
}

// NewApp wires the store and session for one invocation.
func NewApp(in AppInput) (*App, error) {
	dates := dateparse.Resolver{}

	today := queue.DateOf(time.Now())
	clock := func() queue.Date { return queue.DateOf(time.Now()) }

	if in.Today != "" {
		d, err := dates.Resolve(in.Today, today)
		if err != nil {
			return nil, fmt.Errorf("invalid --today: %w", err)
		}

		today = d
		clock = func() queue.Date { return d }
	}

	fsys := in.FS
	if fsys == nil {
		fsys = fs.NewReal()
	}

	store := queue.NewStore(fsys, queue.Options{
		Locker:      fs.NewLocker(fsys),
		LockTimeout: in.Cfg.LockTimeout(),
		Dates:       dates,
		Notifier:    in.Notifier,
	})

	return &App{
		Cfg:     in.Cfg,
		FS:      fsys,
		Store:   store,
		Session: queue.NewSession(queue.Queue{Path: in.Cfg.QueuePath(in.Queue)}),
		Dates:   dates,
		Today:   today,
		Clock:   clock,
		Stdin:   in.Stdin,
		Env:     in.Env,
	}, nil
}

// queue returns the active queue.
func (a *App) queue() (queue.Queue, error) {
	return a.Session.Current()
}

// path resolves p against the effective working directory.
func (a *App) path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(a.Cfg.EffectiveCwd, p)
}

// relToQueueDir returns how a queue path is written to last_queue.
func (a *App) relToQueueDir(p string) string {
	rel, err := filepath.Rel(a.Cfg.QueueDirAbs, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}

	return filepath.ToSlash(rel)
}
