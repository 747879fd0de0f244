// Package embedding provides embedding models and the parallel embedding engine.
package embedding

import "context"

// Model produces fixed-dimension vector embeddings for text. Implementations
// must be safe for concurrent use: inference is a read-only operation over
// model weights and the engine fans out across a shared instance.
type Model interface {
	// EmbedBatch embeds texts in order; output length equals input length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the fixed vector length produced by this model.
	Dimensions() int
	// Name returns the model identifier.
	Name() string
	Close() error
}
