package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestToday is the date every CLI test runs on unless it passes --today.
const TestToday = "2024-06-15"

// CLI provides a clean interface for running CLI commands in tests.
// It manages a temp directory and environment variables.
type CLI struct {
	t     *testing.T
	Dir   string
	Env   map[string]string
	Today string
}

// NewCLI creates a new test CLI with a temp directory. The global config
// location points into the temp directory so the user's config never leaks in.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	dir := t.TempDir()

	return &CLI{
		t:   t,
		Dir: dir,
		Env: map[string]string{
			"XDG_CONFIG_HOME": filepath.Join(dir, ".config"),
			"HOME":            dir,
		},
		Today: TestToday,
	}
}

// Run executes the CLI with the given args and returns stdout, stderr, and exit code.
// Args should not include "iw", "--cwd" or "--today" - those are added automatically.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes the CLI with stdin and returns stdout, stderr, and exit code.
// stdin must be a string or io.Reader; panics otherwise.
func (r *CLI) RunWithInput(stdin any, args ...string) (string, string, int) {
	var inReader io.Reader

	switch v := stdin.(type) {
	case string:
		inReader = strings.NewReader(v)
	case io.Reader:
		inReader = v
	default:
		panic(fmt.Sprintf("stdin must be string or io.Reader, got %T", stdin))
	}

	var outBuf, errBuf bytes.Buffer

	code := Run(inReader, &outBuf, &errBuf, r.args(args), r.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

func (r *CLI) args(args []string) []string {
	full := []string{"iw", "--cwd", r.Dir}
	if r.Today != "" {
		full = append(full, "--today", r.Today)
	}

	return append(full, args...)
}

// MustRun executes the CLI and fails the test if the command returns non-zero.
// Returns trimmed stdout on success.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes the CLI and fails the test if the command succeeds.
// Returns trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// QueueDir returns the path to the queue directory.
func (r *CLI) QueueDir() string {
	return filepath.Join(r.Dir, "IW-Queues")
}

// QueuePath returns the document path of the named queue.
func (r *CLI) QueuePath(name string) string {
	return filepath.Join(r.QueueDir(), name+".md")
}

// ReadQueue reads and returns the content of a queue document.
func (r *CLI) ReadQueue(name string) string {
	r.t.Helper()

	return r.ReadFile(r.QueuePath(name))
}

// WriteQueue writes content to a queue document.
func (r *CLI) WriteQueue(name, content string) {
	r.t.Helper()

	r.WriteFile(r.QueuePath(name), content)
}

// ReadFile reads a file; relative paths are inside Dir.
func (r *CLI) ReadFile(path string) string {
	r.t.Helper()

	content, err := os.ReadFile(r.abs(path))
	if err != nil {
		r.t.Fatalf("failed to read %s: %v", path, err)
	}

	return string(content)
}

// WriteFile writes a file, creating parent directories; relative paths are
// inside Dir.
func (r *CLI) WriteFile(path, content string) {
	r.t.Helper()

	path = r.abs(path)

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", path, err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		r.t.Fatalf("failed to write %s: %v", path, err)
	}
}

func (r *CLI) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(r.Dir, path)
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
