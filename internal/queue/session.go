package queue

import (
	"path/filepath"
	"strings"
)

// Queue names one backing document.
type Queue struct {
	Path string
}

// Name returns the document's base name without the .md extension.
func (q Queue) Name() string {
	return strings.TrimSuffix(filepath.Base(q.Path), ".md")
}

// IsZero reports whether q points nowhere.
func (q Queue) IsZero() bool {
	return q.Path == ""
}

func (q Queue) String() string {
	return q.Name()
}

// Session holds the active queue. Exactly one queue is active at a time and
// it only changes through [Session.Select]. Sessions are passed explicitly;
// several may coexist.
type Session struct {
	current Queue
}

// NewSession returns a session with q active. A zero q means no queue is
// selected yet.
func NewSession(q Queue) *Session {
	return &Session{current: q}
}

// Select makes q the active queue and returns the one it replaced.
func (s *Session) Select(q Queue) Queue {
	prev := s.current
	s.current = q

	return prev
}

// Current returns the active queue, or [ErrNoQueue] if none was selected.
func (s *Session) Current() (Queue, error) {
	if s.current.IsZero() {
		return Queue{}, ErrNoQueue
	}

	return s.current, nil
}
