package chunker

import (
	"strings"
	"testing"
)

func TestChunkDeterministicBoundaries(t *testing.T) {
	c := New(4, 1)
	chunks := c.Chunk("Sentence one. Sentence two. Sentence three. Sentence four.")
	want := []string{
		"Sentence one. Sentence two.",
		"two. Sentence three.",
		"three. Sentence four.",
	}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks %v, want %d", len(chunks), chunks, len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunkOverlapPrefix(t *testing.T) {
	const overlap = 3
	c := New(10, overlap)
	text := strings.Repeat("alpha beta gamma delta epsilon. ", 12)
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		next := strings.Fields(chunks[i])
		if len(prev) < overlap {
			continue
		}
		tail := prev[len(prev)-overlap:]
		head := next[:overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Errorf("chunk %d: overlap word %d = %q, want %q", i, j, head[j], tail[j])
			}
		}
	}
}

func TestChunkReconstruction(t *testing.T) {
	const overlap = 2
	c := New(7, overlap)
	text := "one two three. four five six seven. eight nine. ten eleven twelve thirteen fourteen. fifteen."
	original := strings.Fields(text)
	chunks := c.Chunk(text)

	// Concatenating chunks and dropping each duplicated overlap prefix must
	// reconstruct every word of the input in order.
	var rebuilt []string
	for i, ch := range chunks {
		words := strings.Fields(ch)
		if i > 0 {
			prev := strings.Fields(chunks[i-1])
			carried := overlap
			if carried > len(prev) {
				carried = len(prev)
			}
			words = words[carried:]
		}
		rebuilt = append(rebuilt, words...)
	}
	if len(rebuilt) != len(original) {
		t.Fatalf("rebuilt %d words, want %d", len(rebuilt), len(original))
	}
	for i := range original {
		if rebuilt[i] != original[i] {
			t.Errorf("word %d = %q, want %q", i, rebuilt[i], original[i])
		}
	}
}

func TestChunkOversizedSentence(t *testing.T) {
	c := New(3, 1)
	long := "w1 w2 w3 w4 w5 w6 w7 w8."
	chunks := c.Chunk("short one. " + long + " after that.")
	// The oversized sentence must appear whole in a single chunk.
	found := false
	for _, ch := range chunks {
		if strings.Contains(ch, "w1 w2 w3 w4 w5 w6 w7 w8.") {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized sentence was split: %v", chunks)
	}
}

func TestChunkSizeBound(t *testing.T) {
	const target = 6
	c := New(target, 2)
	text := strings.Repeat("a b c d. ", 10) + "x1 x2 x3 x4 x5 x6 x7 x8 x9 x10. " + strings.Repeat("e f. ", 5)
	longest := 10 // longest sentence word count
	for _, ch := range c.Chunk(text) {
		n := len(strings.Fields(ch))
		if n > target+longest {
			t.Errorf("chunk has %d words, exceeds bound %d: %q", n, target+longest, ch)
		}
	}
}

func TestChunkEmpty(t *testing.T) {
	c := New(5, 1)
	if got := c.Chunk(""); got != nil {
		t.Errorf("empty input should return nil, got %v", got)
	}
	if got := c.Chunk("   \t  "); got != nil {
		t.Errorf("whitespace input should return nil, got %v", got)
	}
}

func TestChunkZeroOverlap(t *testing.T) {
	c := New(2, 0)
	chunks := c.Chunk("a b. c d. e f.")
	for i := 1; i < len(chunks); i++ {
		prevTail := strings.Fields(chunks[i-1])
		head := strings.Fields(chunks[i])[0]
		if head == prevTail[len(prevTail)-1] {
			t.Errorf("chunk %d starts with previous tail despite overlap 0", i)
		}
	}
}

func TestChunkOverlapExceedsTarget(t *testing.T) {
	// Accepted, not an error: produces heavily redundant chunks.
	c := New(2, 5)
	chunks := c.Chunk("a b. c d. e f.")
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"No terminator here", []string{"No terminator here"}},
		{"Tail. trailing bit", []string{"Tail.", "trailing bit"}},
		{"", nil},
		{"...", []string{".", ".", "."}},
	}
	for _, tt := range tests {
		got := SplitSentences(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitSentences(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("SplitSentences(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
