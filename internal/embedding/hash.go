package embedding

import (
	"context"
	"math"
)

// HashModel is a deterministic embedder: the same text always yields the same
// unit-length vector. It needs no external runtime, so it serves as the test
// model and as a degraded fallback when no real model is reachable.
type HashModel struct {
	name       string
	dimensions int
}

// NewHashModel returns a deterministic model of the given dimensions.
func NewHashModel(name string, dimensions int) *HashModel {
	if dimensions <= 0 {
		dimensions = 384
	}
	if name == "" {
		name = "hash"
	}
	return &HashModel{name: name, dimensions: dimensions}
}

// EmbedBatch embeds each text from its hash, normalized to unit length.
func (m *HashModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embed(text)
	}
	return out, nil
}

func (m *HashModel) embed(text string) []float32 {
	h := hashString(text)
	vec := make([]float32, m.dimensions)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	var sum float64
	for _, v := range vec {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := float32(1.0 / math.Sqrt(sum))
		for i := range vec {
			vec[i] *= norm
		}
	}
	return vec
}

// Dimensions returns the embedding dimension.
func (m *HashModel) Dimensions() int { return m.dimensions }

// Name returns the model identifier.
func (m *HashModel) Name() string { return m.name }

// Close is a no-op.
func (m *HashModel) Close() error { return nil }

// hashString returns a deterministic non-negative hash of s.
func hashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
