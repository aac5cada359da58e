package links

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/iw/internal/fs"
)

// ErrBadFrontmatter is returned when a note's frontmatter is not valid YAML.
var ErrBadFrontmatter = errors.New("invalid frontmatter")

// Meta holds the frontmatter keys a note can use to steer how it is queued.
type Meta struct {
	Title    string   `yaml:"title"`
	Aliases  []string `yaml:"aliases"`
	Priority *int     `yaml:"iw-priority"`
	Notes    string   `yaml:"iw-notes"`
}

// Note is a markdown note split into frontmatter and body.
type Note struct {
	Path string
	Meta Meta
	Body string
}

// ReadNote reads and parses the note at path.
func ReadNote(fsys fs.FS, path string) (Note, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return Note{}, fmt.Errorf("reading note: %w", err)
	}

	return ParseNote(path, data)
}

// ParseNote splits content into frontmatter and body. A note without a
// "---" fenced block at the top has empty Meta. On [ErrBadFrontmatter] the
// returned note still carries the body so links can be extracted.
func ParseNote(path string, content []byte) (Note, error) {
	note := Note{Path: path, Body: string(content)}

	front, body, ok := splitFrontmatter(content)
	if !ok {
		return note, nil
	}

	note.Body = string(body)

	err := yaml.Unmarshal(front, &note.Meta)
	if err != nil {
		return note, fmt.Errorf("%w: %s: %w", ErrBadFrontmatter, path, err)
	}

	return note, nil
}

func splitFrontmatter(content []byte) (front, body []byte, ok bool) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	first, rest, found := bytes.Cut(content, []byte("\n"))
	if !found || string(bytes.TrimRight(first, "\r ")) != "---" {
		return nil, nil, false
	}

	offset := 0

	for offset <= len(rest) {
		line, next, more := bytes.Cut(rest[offset:], []byte("\n"))

		if string(bytes.TrimRight(line, "\r ")) == "---" {
			end := len(rest)
			if more {
				end = len(rest) - len(next)
			}

			return rest[:offset], rest[end:], true
		}

		if !more {
			break
		}

		offset += len(line) + 1
	}

	return nil, nil, false
}
