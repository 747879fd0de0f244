package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadDelete(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Write("report.pdf", "chunks.json", []byte(`["a"]`)); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read("report.pdf", "chunks.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `["a"]` {
		t.Errorf("got %q", got)
	}
	if err := s.Delete("report.pdf", "chunks.json"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read("report.pdf", "chunks.json"); err == nil {
		t.Error("expected error after delete")
	}
	// Deleting again is not an error.
	if err := s.Delete("report.pdf", "chunks.json"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestSaveOriginalAndPath(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveOriginal("doc.pdf", strings.NewReader("%PDF-1.4 fake")); err != nil {
		t.Fatal(err)
	}
	path, err := s.OriginalPath("doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("got %q", data)
	}
	if filepath.Base(path) != "doc.pdf" {
		t.Errorf("original stored as %q", filepath.Base(path))
	}

	if _, err := s.OriginalPath("missing.pdf"); err == nil {
		t.Error("expected error for missing original")
	}
}

func TestTextArtifacts(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveText("doc.txt", RawText, "raw body"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveText("doc.txt", NormalizedText, "clean body"); err != nil {
		t.Fatal(err)
	}
	raw, err := s.ReadText("doc.txt", RawText)
	if err != nil {
		t.Fatal(err)
	}
	if raw != "raw body" {
		t.Errorf("raw = %q", raw)
	}
	norm, err := s.ReadText("doc.txt", NormalizedText)
	if err != nil {
		t.Fatal(err)
	}
	if norm != "clean body" {
		t.Errorf("normalized = %q", norm)
	}
}

func TestRemoveAllAndList(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := s.SaveText(name, RawText, "x"); err != nil {
			t.Fatal(err)
		}
	}
	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("List = %v", names)
	}
	if err := s.RemoveAll("a.txt"); err != nil {
		t.Fatal(err)
	}
	names, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "b.txt" {
		t.Errorf("List after remove = %v", names)
	}
}

func TestRejectsTraversalNames(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "sub/../../etc"} {
		if err := s.Write(name, "f", []byte("x")); !errors.Is(err, ErrBadName) {
			t.Errorf("Write(%q) err = %v, want ErrBadName", name, err)
		}
	}
	if err := s.Write("ok.txt", "../escape", []byte("x")); !errors.Is(err, ErrBadName) {
		t.Errorf("file traversal err = %v, want ErrBadName", err)
	}
}
