// Package chunker splits normalized text into overlapping, bounded-size chunks.
package chunker

import "strings"

// Chunker splits text into sentence-aware chunks of roughly TargetSize words,
// carrying the last Overlap words of each chunk into the next.
type Chunker struct {
	targetSize int
	overlap    int
}

// New creates a chunker with the given target size and overlap (in words).
// overlap >= targetSize is accepted and produces heavily redundant chunks;
// overlap == 0 disables carry-over.
func New(targetSize, overlap int) *Chunker {
	if targetSize <= 0 {
		targetSize = 200
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{targetSize: targetSize, overlap: overlap}
}

// Chunk splits text into chunks in input order. Sentences are never split:
// a chunk closes when the next sentence would push it past the target size,
// and a single sentence longer than the target becomes its own chunk.
// Empty input returns nil.
func (c *Chunker) Chunk(text string) []string {
	var chunks []string
	var cur []string
	for _, sentence := range SplitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		if len(cur) > 0 && len(cur)+len(words) > c.targetSize {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = c.carryOver(cur)
		}
		cur = append(cur, words...)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// carryOver returns the overlap seed for the next chunk: the last overlap
// words of the closed chunk, or the whole chunk if it is shorter.
func (c *Chunker) carryOver(closed []string) []string {
	n := c.overlap
	if n > len(closed) {
		n = len(closed)
	}
	if n == 0 {
		return nil
	}
	seed := make([]string, n)
	copy(seed, closed[len(closed)-n:])
	return seed
}

// SplitSentences splits text into sentence-like units on terminal punctuation
// (. ! ?) with a greedy, non-overlapping scan. Trailing text without a
// terminator is returned as a final unit. Whitespace-only units are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start : i+1])
			if s != "" {
				sentences = append(sentences, s)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
