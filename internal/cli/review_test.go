package cli_test

import (
	"testing"

	"github.com/calvinalkan/iw/internal/cli"
)

func TestReview(t *testing.T) {
	t.Parallel()

	c := seededCLI(t)

	stdout, stderr, code := c.RunWithInput("p 5\nnotes reviewed once\nn tomorrow 40\nq\n", "review")
	if code != 0 {
		t.Fatalf("exit=%d, want=0\nstderr: %s", code, stderr)
	}

	cli.AssertContains(t, stdout, "iw> ")
	cli.AssertContains(t, stdout, "edited [[low]]")
	cli.AssertContains(t, stdout, "notes:       reviewed once")
	cli.AssertContains(t, stdout, "rescheduled [[low]] to 2024-06-16 (repetition 2)")
	cli.AssertContains(t, stdout, "up next: [[high]]")

	queue := c.ReadQueue("reading")
	cli.AssertContains(t, queue, "reviewed once")
	cli.AssertContains(t, queue, "| 40 ")
}

func TestReview_EndsWhenNothingIsDue(t *testing.T) {
	t.Parallel()

	c := seededCLI(t)

	// Input runs out of actions before EOF; the loop stops after the last
	// due row is handled.
	stdout, stderr, code := c.RunWithInput("d\nskip\nshow\n", "review")
	if code != 0 {
		t.Fatalf("exit=%d, want=0\nstderr: %s", code, stderr)
	}

	cli.AssertContains(t, stdout, "dismissed [[low]]")
	cli.AssertContains(t, stdout, "edited [[high]]")
	cli.AssertContains(t, stdout, "no repetitions due")
	cli.AssertNotContains(t, stdout, "Actions:")

	queue := c.ReadQueue("reading")
	cli.AssertNotContains(t, queue, "[[low]]")
	cli.AssertContains(t, queue, "2024-06-16")
}

func TestReview_BadActionKeepsGoing(t *testing.T) {
	t.Parallel()

	c := seededCLI(t)

	stdout, stderr, code := c.RunWithInput("frob\np high\nhelp\n", "review")
	if code != 0 {
		t.Fatalf("exit=%d, want=0\nstderr: %s", code, stderr)
	}

	cli.AssertContains(t, stderr, `unknown action "frob"`)
	cli.AssertContains(t, stderr, "priority must be a number")
	cli.AssertContains(t, stdout, "Actions:")
	cli.AssertContains(t, c.ReadQueue("reading"), "[[low]]")
}

func TestReview_EmptyQueue(t *testing.T) {
	t.Parallel()

	c := newQueueCLI(t)

	stdout, stderr, code := c.RunWithInput("q\n", "review")
	if code != 0 {
		t.Fatalf("exit=%d, want=0\nstderr: %s", code, stderr)
	}

	if stdout != "" {
		t.Errorf("stdout=%q, want empty", stdout)
	}

	cli.AssertContains(t, stderr, "reading: no repetitions")
}
