package queue

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/calvinalkan/iw/internal/fs"
)

type notice struct {
	Sev Severity
	Msg string
}

// recorder is a Notifier that keeps every notice.
type recorder struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recorder) Notify(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notices = append(r.notices, notice{Sev: sev, Msg: msg})
}

func (r *recorder) count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0

	for _, nt := range r.notices {
		if nt.Sev == sev {
			n++
		}
	}

	return n
}

func (r *recorder) messages(sev Severity) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var msgs []string

	for _, nt := range r.notices {
		if nt.Sev == sev {
			msgs = append(msgs, nt.Msg)
		}
	}

	return msgs
}

// newTestStore returns a store over a fresh temp dir and a queue path in it.
func newTestStore(t *testing.T, fsys fs.FS) (*Store, Queue, *recorder) {
	t.Helper()

	if fsys == nil {
		fsys = fs.NewReal()
	}

	rec := &recorder{}
	store := NewStore(fsys, Options{Notifier: rec})

	return store, Queue{Path: filepath.Join(t.TempDir(), "IW-Queues", "reading.md")}, rec
}

func writeQueue(t *testing.T, q Queue, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(q.Path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := os.WriteFile(q.Path, []byte(content), 0o644); err != nil {
		t.Fatalf("write queue: %v", err)
	}
}

func readQueue(t *testing.T, q Queue) string {
	t.Helper()

	data, err := os.ReadFile(q.Path)
	if err != nil {
		t.Fatalf("read queue: %v", err)
	}

	return string(data)
}
