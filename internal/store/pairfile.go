package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/models"
)

// Artifact filenames used by the pairfile backend.
const (
	chunksFile  = "chunks.json"
	vectorsFile = "vectors.bin"
	metaFile    = "meta.json"
)

// PairFileStore persists each document as a pair of artifacts in the file
// area: chunk texts as JSON and vectors as a binary artifact, plus a JSON
// metadata sidecar carrying the active flag.
type PairFileStore struct {
	files  *artifact.Store
	logger *zap.Logger
}

// PairFileOption configures a PairFileStore.
type PairFileOption func(*PairFileStore)

// WithPairFileLogger sets a logger for debug output.
func WithPairFileLogger(l *zap.Logger) PairFileOption {
	return func(s *PairFileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewPairFileStore creates a pairfile backend over the given file area.
func NewPairFileStore(files *artifact.Store, opts ...PairFileOption) *PairFileStore {
	s := &PairFileStore{files: files, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put writes the chunk, vector, and metadata artifacts for doc.
// An existing entry for the same name is overwritten.
func (s *PairFileStore) Put(ctx context.Context, doc *models.Document, chunks []string, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	chunkData, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	vecData, err := EncodeVectors(vectors)
	if err != nil {
		return fmt.Errorf("encode vectors: %w", err)
	}
	meta := *doc
	meta.Active = true
	metaData, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if err := s.files.Write(doc.Name, chunksFile, chunkData); err != nil {
		return err
	}
	if err := s.files.Write(doc.Name, vectorsFile, vecData); err != nil {
		return err
	}
	if err := s.files.Write(doc.Name, metaFile, metaData); err != nil {
		return err
	}
	s.logger.Debug("pairfile put",
		zap.String("document", doc.Name),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Get loads the chunk and vector artifacts for name. A missing or inactive
// document, or artifacts whose counts disagree, reads as ErrNotIndexed.
func (s *PairFileStore) Get(ctx context.Context, name string) ([]string, [][]float32, error) {
	meta, err := s.readMeta(name)
	if err != nil || !meta.Active {
		return nil, nil, ErrNotIndexed
	}
	chunkData, err := s.files.Read(name, chunksFile)
	if err != nil {
		return nil, nil, ErrNotIndexed
	}
	var chunks []string
	if err := json.Unmarshal(chunkData, &chunks); err != nil {
		s.logger.Warn("pairfile chunk artifact corrupt", zap.String("document", name), zap.Error(err))
		return nil, nil, ErrNotIndexed
	}
	vecData, err := s.files.Read(name, vectorsFile)
	if err != nil {
		return nil, nil, ErrNotIndexed
	}
	vectors, err := DecodeVectors(vecData)
	if err != nil {
		s.logger.Warn("pairfile vector artifact corrupt", zap.String("document", name), zap.Error(err))
		return nil, nil, ErrNotIndexed
	}
	if len(chunks) != len(vectors) {
		s.logger.Warn("pairfile artifact counts disagree",
			zap.String("document", name),
			zap.Int("chunks", len(chunks)),
			zap.Int("vectors", len(vectors)))
		return nil, nil, ErrNotIndexed
	}
	return chunks, vectors, nil
}

// Remove deletes the chunk and vector artifacts and marks the sidecar inactive.
func (s *PairFileStore) Remove(ctx context.Context, name, org string) error {
	meta, err := s.readMeta(name)
	if err != nil {
		return ErrNotIndexed
	}
	if org != "" && meta.Org != org {
		return ErrNotIndexed
	}
	if err := s.files.Delete(name, chunksFile); err != nil {
		return err
	}
	if err := s.files.Delete(name, vectorsFile); err != nil {
		return err
	}
	meta.Active = false
	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return s.files.Write(name, metaFile, metaData)
}

// ListActive scans the file area for active metadata sidecars.
func (s *PairFileStore) ListActive(ctx context.Context, org string) ([]*models.Document, error) {
	names, err := s.files.List()
	if err != nil {
		return nil, err
	}
	var out []*models.Document
	for _, name := range names {
		meta, err := s.readMeta(name)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("pairfile sidecar unreadable", zap.String("document", name), zap.Error(err))
			}
			continue
		}
		if !meta.Active {
			continue
		}
		if org != "" && meta.Org != org {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// Close is a no-op; artifacts are written through immediately.
func (s *PairFileStore) Close() error { return nil }

func (s *PairFileStore) readMeta(name string) (*models.Document, error) {
	data, err := s.files.Read(name, metaFile)
	if err != nil {
		return nil, err
	}
	var meta models.Document
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
