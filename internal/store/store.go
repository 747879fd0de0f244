// Package store persists documents with their chunk texts and embedding
// vectors, and serves them back for retrieval.
package store

import (
	"context"
	"errors"

	"github.com/bunkolab/bunko/internal/models"
)

// ErrNotIndexed is returned when a document has no usable index entry:
// it was never indexed, was removed, or its stored chunk and vector counts
// disagree. Retrieval treats all three the same way.
var ErrNotIndexed = errors.New("document not indexed")

// VectorStore persists chunk texts alongside their embedding vectors.
// Put replaces any previous entry for the same document name.
type VectorStore interface {
	Put(ctx context.Context, doc *models.Document, chunks []string, vectors [][]float32) error
	// Get returns the chunk texts and vectors for name, in ordinal order.
	// len(chunks) == len(vectors) always holds on success.
	Get(ctx context.Context, name string) (chunks []string, vectors [][]float32, err error)
	Remove(ctx context.Context, name, org string) error
	ListActive(ctx context.Context, org string) ([]*models.Document, error)
	Close() error
}

// Counter is implemented by backends that can count active documents and
// chunks without loading them.
type Counter interface {
	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
}
