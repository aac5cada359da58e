// Package links builds the link strings stored in a queue and finds the
// links inside a note.
package links

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Errors returned when building links.
var (
	ErrOutsideVault = errors.New("note is outside the vault")
	ErrBadBlockID   = errors.New("block id may only contain letters, digits and dashes")
)

var (
	wikiRe     = regexp.MustCompile(`(!?)\[\[([^\[\]\n]+?)\]\]`)
	markdownRe = regexp.MustCompile(`(!?)\[([^\[\]\n]*)\]\(([^()\s]+)\)`)
	blockIDRe  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// Link is a reference found in a note.
type Link struct {
	Target string // note path or URL, with any #heading or #^block suffix
	Alias  string // display text, may be empty
	Embed  bool   // ![[...]] or ![...](...)
	Wiki   bool   // [[...]] as opposed to [text](target)
}

// String renders l the way it is stored in a queue row. Embeds are stored
// as plain links.
func (l Link) String() string {
	if !l.Wiki {
		return fmt.Sprintf("[%s](%s)", l.Alias, l.Target)
	}

	if l.Alias != "" {
		return fmt.Sprintf("[[%s|%s]]", l.Target, l.Alias)
	}

	return fmt.Sprintf("[[%s]]", l.Target)
}

// NoteLink returns the wiki link for the note at path, relative to vault.
func NoteLink(vault, path string) (string, error) {
	target, err := noteTarget(vault, path)
	if err != nil {
		return "", err
	}

	return Link{Target: target, Wiki: true}.String(), nil
}

// BlockLink returns the wiki link for block id inside the note at path.
func BlockLink(vault, path, id string) (string, error) {
	id = strings.TrimPrefix(strings.TrimSpace(id), "^")
	if !blockIDRe.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrBadBlockID, id)
	}

	target, err := noteTarget(vault, path)
	if err != nil {
		return "", err
	}

	return Link{Target: target + "#^" + id, Wiki: true}.String(), nil
}

func noteTarget(vault, path string) (string, error) {
	absVault, err := filepath.Abs(vault)
	if err != nil {
		return "", fmt.Errorf("resolving vault: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving note: %w", err)
	}

	rel, err := filepath.Rel(absVault, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, path)
	}

	return strings.TrimSuffix(filepath.ToSlash(rel), ".md"), nil
}

// Extract returns the links in body in order of first appearance, without
// duplicates. Links inside fenced code blocks are ignored.
func Extract(body string) []Link {
	type found struct {
		at   int
		link Link
	}

	var all []found

	text := blankCodeFences(body)

	for _, m := range wikiRe.FindAllStringSubmatchIndex(text, -1) {
		inner := text[m[4]:m[5]]
		target, alias, _ := strings.Cut(inner, "|")

		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}

		all = append(all, found{at: m[0], link: Link{
			Target: target,
			Alias:  strings.TrimSpace(alias),
			Embed:  m[3] > m[2],
			Wiki:   true,
		}})
	}

	for _, m := range markdownRe.FindAllStringSubmatchIndex(text, -1) {
		all = append(all, found{at: m[0], link: Link{
			Target: text[m[6]:m[7]],
			Alias:  text[m[4]:m[5]],
			Embed:  m[3] > m[2],
		}})
	}

	// Both patterns scan left to right; merge by offset.
	slices.SortStableFunc(all, func(a, b found) int { return cmp.Compare(a.at, b.at) })

	seen := make(map[string]bool, len(all))
	out := make([]Link, 0, len(all))

	for _, f := range all {
		key := f.link.String()
		if seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, f.link)
	}

	return out
}

// blankCodeFences replaces the contents of ``` fences with spaces so match
// offsets stay valid.
func blankCodeFences(body string) string {
	lines := strings.SplitAfter(body, "\n")
	inFence := false

	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			inFence = !inFence
			lines[i] = blank(l)

			continue
		}

		if inFence {
			lines[i] = blank(l)
		}
	}

	return strings.Join(lines, "")
}

func blank(l string) string {
	trimmed := strings.TrimRight(l, "\n")

	return strings.Repeat(" ", len(trimmed)) + l[len(trimmed):]
}
