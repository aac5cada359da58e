package links

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ErrBadLine is returned when a block id cannot be attached to a line.
var ErrBadLine = errors.New("line cannot carry a block id")

const blockIDLength = 6

var trailingBlockIDRe = regexp.MustCompile(`(?:^|\s)\^([A-Za-z0-9-]+)\s*$`)

// NewBlockID returns a short random block id.
func NewBlockID() string {
	id := ulid.Make().String()

	// The tail of a ULID is its random part.
	return strings.ToLower(id[len(id)-blockIDLength:])
}

// BlockID returns the id a line already carries, if any.
func BlockID(line string) (string, bool) {
	m := trailingBlockIDRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}

	return m[1], true
}

// EnsureBlockID makes sure line n (1-based) of content ends with a block id
// and returns the possibly changed content and the id. Existing ids are
// reused; content is unchanged in that case.
func EnsureBlockID(content string, n int) (string, string, error) {
	lines := strings.SplitAfter(content, "\n")
	if n < 1 || n > len(lines) {
		return "", "", fmt.Errorf("%w: line %d out of range (1-%d)", ErrBadLine, n, len(lines))
	}

	line := lines[n-1]
	text := strings.TrimRight(line, "\r\n")
	ending := line[len(text):]

	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("%w: line %d is blank", ErrBadLine, n)
	}

	if id, ok := BlockID(text); ok {
		return content, id, nil
	}

	id := NewBlockID()
	lines[n-1] = strings.TrimRight(text, " \t") + " ^" + id + ending

	return strings.Join(lines, ""), id, nil
}
