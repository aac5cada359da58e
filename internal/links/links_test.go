package links

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNoteLink(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "top level", path: filepath.Join(vault, "Essay.md"), want: "[[Essay]]"},
		{name: "nested", path: filepath.Join(vault, "drafts", "2024", "On Queues.md"), want: "[[drafts/2024/On Queues]]"},
		{name: "non markdown keeps extension", path: filepath.Join(vault, "paper.pdf"), want: "[[paper.pdf]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NoteLink(vault, tt.path)
			if err != nil {
				t.Fatalf("NoteLink: %v", err)
			}

			if got != tt.want {
				t.Fatalf("NoteLink=%q, want=%q", got, tt.want)
			}
		})
	}
}

func TestNoteLink_OutsideVault(t *testing.T) {
	t.Parallel()

	vault := filepath.Join(t.TempDir(), "vault")

	for _, path := range []string{filepath.Join(vault, "..", "other.md"), vault} {
		_, err := NoteLink(vault, path)
		if !errors.Is(err, ErrOutsideVault) {
			t.Fatalf("NoteLink(%q) err=%v, want ErrOutsideVault", path, err)
		}
	}
}

func TestBlockLink(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	note := filepath.Join(vault, "notes", "Draft.md")

	got, err := BlockLink(vault, note, "^ab12-x")
	if err != nil {
		t.Fatalf("BlockLink: %v", err)
	}

	if want := "[[notes/Draft#^ab12-x]]"; got != want {
		t.Fatalf("BlockLink=%q, want=%q", got, want)
	}

	for _, bad := range []string{"", "^", "has space", "a|b", "a]]"} {
		if _, err := BlockLink(vault, note, bad); !errors.Is(err, ErrBadBlockID) {
			t.Fatalf("BlockLink(id=%q) err=%v, want ErrBadBlockID", bad, err)
		}
	}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	body := "See [[Alpha]] and [the paper](papers/beta.md).\n" +
		"Embedded: ![[diagram.png]]\n" +
		"Alias: [[Gamma|the gamma note]] and a block [[Alpha#^x1]].\n" +
		"```\n[[InsideCode]]\n```\n" +
		"Again [[Alpha]] and [site](https://example.com/a).\n"

	got := Extract(body)

	want := []Link{
		{Target: "Alpha", Wiki: true},
		{Target: "papers/beta.md", Alias: "the paper"},
		{Target: "diagram.png", Embed: true, Wiki: true},
		{Target: "Gamma", Alias: "the gamma note", Wiki: true},
		{Target: "Alpha#^x1", Wiki: true},
		{Target: "https://example.com/a", Alias: "site"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_NoLinks(t *testing.T) {
	t.Parallel()

	if got := Extract("plain text, [not a link], [[ ]]"); len(got) != 0 {
		t.Fatalf("Extract=%v, want none", got)
	}
}

func TestLink_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		link Link
		want string
	}{
		{link: Link{Target: "a", Wiki: true}, want: "[[a]]"},
		{link: Link{Target: "a", Alias: "b", Wiki: true}, want: "[[a|b]]"},
		{link: Link{Target: "x.png", Embed: true, Wiki: true}, want: "[[x.png]]"},
		{link: Link{Target: "https://example.com", Alias: "site"}, want: "[site](https://example.com)"},
	}

	for _, tt := range tests {
		if got := tt.link.String(); got != tt.want {
			t.Errorf("String()=%q, want=%q", got, tt.want)
		}
	}
}
