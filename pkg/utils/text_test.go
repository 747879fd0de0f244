package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("short string should be unchanged, got %q", got)
	}
	if got := Truncate("hi", 0); got != "hi" {
		t.Errorf("maxLen 0 should be unchanged, got %q", got)
	}
}

func TestPreviewLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := PreviewLines(lines, 2)
	want := []string{"a", "b", "...", "f", "g"}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q want %q", i, got[i], want[i])
		}
	}

	short := []string{"a", "b"}
	if len(PreviewLines(short, 2)) != 2 {
		t.Error("short input should be returned whole")
	}
}
