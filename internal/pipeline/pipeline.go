// Package pipeline turns an uploaded document into stored chunks and vectors.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/chunker"
	"github.com/bunkolab/bunko/internal/config"
	"github.com/bunkolab/bunko/internal/embedding"
	"github.com/bunkolab/bunko/internal/extract"
	"github.com/bunkolab/bunko/internal/models"
	"github.com/bunkolab/bunko/internal/store"
	"github.com/bunkolab/bunko/internal/textnorm"
)

// Request describes one indexing run.
type Request struct {
	Name      string // document basename, keys the file area and the stores
	Org       string
	ChunkSize int
	Overlap   int
	Model     string // embedding model id; empty means the configured default
}

// Pipeline runs extract, normalize, chunk, embed, and persist for one
// document at a time.
type Pipeline struct {
	extractor *extract.Extractor
	files     *artifact.Store
	catalog   *embedding.Catalog
	backends  []store.VectorStore
	cfg       *config.Config
	logger    *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a logger for progress and failure output.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline writing to every backend in backends.
func New(files *artifact.Store, catalog *embedding.Catalog, backends []store.VectorStore, cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extract.NewExtractor(),
		files:     files,
		catalog:   catalog,
		backends:  backends,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run indexes the document named req.Name from its stored original.
// Extraction failures degrade to a zero-chunk document; embedding failures
// abort the run so no backend sees mismatched counts. Backend writes are
// independent: one failing does not stop the others.
func (p *Pipeline) Run(ctx context.Context, req Request) error {
	start := time.Now()

	path, err := p.files.OriginalPath(req.Name)
	if err != nil {
		return fmt.Errorf("locate original: %w", err)
	}

	text, err := p.extractor.Extract(path)
	if err != nil {
		p.logger.Warn("extraction failed, indexing empty document",
			zap.String("document", req.Name),
			zap.Error(err))
		text = ""
	}
	if err := p.files.SaveText(req.Name, artifact.RawText, text); err != nil {
		return err
	}

	normalized := textnorm.Normalize(text)
	if p.cfg.Chunking.AggressiveCleanOrDefault() {
		normalized = textnorm.NormalizeAggressive(normalized)
	}
	if err := p.files.SaveText(req.Name, artifact.NormalizedText, normalized); err != nil {
		return err
	}

	chunks := chunker.New(req.ChunkSize, req.Overlap).Chunk(normalized)

	model, err := p.catalog.Get(req.Model)
	if err != nil {
		return fmt.Errorf("resolve model: %w", err)
	}
	engine := embedding.NewEngine(model,
		embedding.WithLogger(p.logger),
		embedding.WithWorkers(p.cfg.Embedding.Workers),
		embedding.WithMinBatch(p.cfg.Embedding.MinBatch),
		embedding.WithParallelThreshold(p.cfg.Embedding.ParallelThreshold))
	vectors, err := engine.Embed(ctx, chunks)
	if err != nil {
		p.logger.Error("embedding failed, document not persisted",
			zap.String("document", req.Name),
			zap.Int("chunks", len(chunks)),
			zap.Error(err))
		return fmt.Errorf("embed chunks: %w", err)
	}

	doc := &models.Document{
		Org:        req.Org,
		Name:       req.Name,
		ChunkSize:  req.ChunkSize,
		Overlap:    req.Overlap,
		Model:      model.Name(),
		UploadTime: time.Now(),
		Active:     true,
	}

	var failed int
	for _, backend := range p.backends {
		if err := backend.Put(ctx, doc, chunks, vectors); err != nil {
			failed++
			p.logger.Error("backend write failed, backends may be inconsistent",
				zap.String("document", req.Name),
				zap.String("backend", fmt.Sprintf("%T", backend)),
				zap.Error(err))
		}
	}
	if failed == len(p.backends) && len(p.backends) > 0 {
		return fmt.Errorf("all %d backends failed for %s", failed, req.Name)
	}

	p.logger.Info("document indexed",
		zap.String("document", req.Name),
		zap.String("org", req.Org),
		zap.Int("chunks", len(chunks)),
		zap.Duration("took", time.Since(start)))
	return nil
}
