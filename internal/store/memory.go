package store

import (
	"context"
	"sync"

	"github.com/bunkolab/bunko/internal/models"
)

// MemoryStore is an in-process VectorStore, used in tests and as a scratch
// backend. Nothing survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*memoryEntry
}

type memoryEntry struct {
	doc     models.Document
	chunks  []string
	vectors [][]float32
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*memoryEntry)}
}

// Put replaces any previous entry for doc.Name.
func (s *MemoryStore) Put(ctx context.Context, doc *models.Document, chunks []string, vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := *doc
	d.Active = true
	s.docs[doc.Name] = &memoryEntry{
		doc:     d,
		chunks:  append([]string(nil), chunks...),
		vectors: append([][]float32(nil), vectors...),
	}
	return nil
}

// Get returns the stored chunks and vectors for name.
func (s *MemoryStore) Get(ctx context.Context, name string) ([]string, [][]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[name]
	if !ok || !e.doc.Active {
		return nil, nil, ErrNotIndexed
	}
	if len(e.chunks) != len(e.vectors) {
		return nil, nil, ErrNotIndexed
	}
	return e.chunks, e.vectors, nil
}

// Remove deactivates the entry for name within org.
func (s *MemoryStore) Remove(ctx context.Context, name, org string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[name]
	if !ok || (org != "" && e.doc.Org != org) {
		return ErrNotIndexed
	}
	e.doc.Active = false
	e.chunks = nil
	e.vectors = nil
	return nil
}

// ListActive returns active documents for org ("" matches all).
func (s *MemoryStore) ListActive(ctx context.Context, org string) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, e := range s.docs {
		if !e.doc.Active {
			continue
		}
		if org != "" && e.doc.Org != org {
			continue
		}
		d := e.doc
		out = append(out, &d)
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
