package artifact

import (
	"errors"
	"os"
	"testing"
)

func TestWriteAndResolveMarkdown(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	path, err := store.WriteMarkdown("rep-1", []byte("# Report\nbody"))
	if err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "# Report\nbody" {
		t.Fatalf("unexpected artifact content: %q", data)
	}

	resolved, err := store.MarkdownPath("rep-1")
	if err != nil {
		t.Fatalf("resolve path: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected %q, got %q", path, resolved)
	}
}

func TestMarkdownPathMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.MarkdownPath("absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWriteRejectsEscapingIDs(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.WriteMarkdown("../escape", []byte("x")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for escaping id, got %v", err)
	}
}
