package queue

import (
	"errors"
	"testing"
)

func TestSession_SelectReplacesCurrentQueue(t *testing.T) {
	t.Parallel()

	s := NewSession(Queue{})

	if _, err := s.Current(); !errors.Is(err, ErrNoQueue) {
		t.Fatalf("Current() err=%v, want ErrNoQueue", err)
	}

	first := Queue{Path: "/vault/IW-Queues/IW-Queue.md"}
	second := Queue{Path: "/vault/IW-Queues/papers.md"}

	if prev := s.Select(first); !prev.IsZero() {
		t.Fatalf("Select returned %v, want zero queue", prev)
	}

	if prev := s.Select(second); prev != first {
		t.Fatalf("Select returned %v, want %v", prev, first)
	}

	got, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if got != second {
		t.Fatalf("Current()=%v, want=%v", got, second)
	}

	if got, want := got.Name(), "papers"; got != want {
		t.Fatalf("Name()=%q, want=%q", got, want)
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	t.Parallel()

	a := NewSession(Queue{Path: "a.md"})
	b := NewSession(Queue{Path: "b.md"})

	a.Select(Queue{Path: "c.md"})

	got, _ := b.Current()
	if got.Path != "b.md" {
		t.Fatalf("b.Current()=%v, want b.md", got)
	}
}
