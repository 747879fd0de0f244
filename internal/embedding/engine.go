package embedding

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

const (
	defaultWorkers           = 4
	defaultMinBatch          = 16
	defaultParallelThreshold = 10
)

// Engine embeds text batches over a shared model, fanning large inputs out
// across a bounded worker pool. Small inputs are embedded inline: the pool
// setup costs more than it saves below the parallel threshold.
type Engine struct {
	model     Model
	workers   int
	minBatch  int
	threshold int
	logger    *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers sets the worker pool size for parallel embedding.
func WithWorkers(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithMinBatch sets the minimum texts per worker batch.
func WithMinBatch(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.minBatch = n
		}
	}
}

// WithParallelThreshold sets the input size below which embedding runs inline.
func WithParallelThreshold(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.threshold = n
		}
	}
}

// NewEngine creates an engine over model.
func NewEngine(model Model, opts ...EngineOption) *Engine {
	e := &Engine{
		model:     model,
		workers:   defaultWorkers,
		minBatch:  defaultMinBatch,
		threshold: defaultParallelThreshold,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the underlying model.
func (e *Engine) Model() Model { return e.model }

// Embed embeds texts, preserving input order. If any batch fails the whole
// operation fails: a partial result would leave chunk and vector counts out
// of step downstream.
func (e *Engine) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) < e.threshold {
		return e.model.EmbedBatch(ctx, texts)
	}

	batchSize := (len(texts) + e.workers - 1) / e.workers
	if batchSize < e.minBatch {
		batchSize = e.minBatch
	}

	type batch struct {
		index int
		start int
		texts []string
	}
	var batches []batch
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, batch{index: len(batches), start: start, texts: texts[start:end]})
	}
	e.logger.Debug("embedding in parallel",
		zap.Int("texts", len(texts)),
		zap.Int("batches", len(batches)),
		zap.Int("batch_size", batchSize))

	results := make([][][]float32, len(batches))
	errs := make([]error, len(batches))
	jobs := make(chan batch)

	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				vecs, err := e.model.EmbedBatch(ctx, b.texts)
				if err != nil {
					errs[b.index] = fmt.Errorf("batch %d (texts %d-%d): %w", b.index, b.start, b.start+len(b.texts)-1, err)
					continue
				}
				results[b.index] = vecs
			}
		}()
	}
	for _, b := range batches {
		jobs <- b
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([][]float32, 0, len(texts))
	for _, vecs := range results {
		out = append(out, vecs...)
	}
	return out, nil
}
