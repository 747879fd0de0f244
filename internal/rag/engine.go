// Package rag answers questions over the indexed corpus: embed the query,
// rank stored chunks, and hand the best ones to an LLM as context.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/answer"
	"github.com/bunkolab/bunko/internal/config"
	"github.com/bunkolab/bunko/internal/embedding"
	"github.com/bunkolab/bunko/internal/models"
	"github.com/bunkolab/bunko/internal/retriever"
	"github.com/bunkolab/bunko/internal/store"
)

// ErrEmptyCorpus is returned when no document contributed a single candidate
// chunk. Distinct from a ranked-but-empty result: the caller should know the
// index has nothing to search.
var ErrEmptyCorpus = errors.New("no indexed documents")

// Engine wires the catalog, the read backend, and the answer generator.
type Engine struct {
	catalog   *embedding.Catalog
	read      store.VectorStore
	generator answer.Generator
	cfg       *config.Config
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for retrieval diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates a retrieval engine reading from read. generator may be nil,
// in which case Ask reports the missing generator as an answer error.
func New(catalog *embedding.Catalog, read store.VectorStore, generator answer.Generator, cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		read:      read,
		generator: generator,
		cfg:       cfg,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RetrieveContext embeds question and returns the topK most similar chunks
// across the active documents of org. Documents that read as not indexed are
// skipped with a warning rather than failing the query.
func (e *Engine) RetrieveContext(ctx context.Context, question string, topK int, modelID, org string) ([]retriever.Match, error) {
	model, err := e.catalog.Get(modelID)
	if err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}
	qvecs, err := model.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	query := qvecs[0]

	docs, err := e.read.ListActive(ctx, org)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var candidates []retriever.Candidate
	for _, doc := range docs {
		chunks, vectors, err := e.read.Get(ctx, doc.Name)
		if err != nil {
			if errors.Is(err, store.ErrNotIndexed) {
				e.logger.Warn("skipping document with unusable index entry",
					zap.String("document", doc.Name))
				continue
			}
			return nil, fmt.Errorf("load %s: %w", doc.Name, err)
		}
		for i := range chunks {
			candidates = append(candidates, retriever.Candidate{
				Source: doc.Name,
				Text:   chunks[i],
				Vector: vectors[i],
			})
		}
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyCorpus
	}

	matches, err := retriever.TopK(query, candidates, topK)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("retrieved context",
		zap.Int("documents", len(docs)),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// Ask retrieves context for req and generates an answer. A generator failure
// does not discard the retrieval work: the matches come back with the error
// carried in AnswerError.
func (e *Engine) Ask(ctx context.Context, req *models.AskRequest) (*models.AskResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = e.cfg.Retrieval.DefaultTopK
	}
	if topK > e.cfg.Retrieval.MaxTopK {
		topK = e.cfg.Retrieval.MaxTopK
	}
	org := req.Org
	if org == "" {
		org = e.cfg.Retrieval.DefaultOrg
	}

	matches, err := e.RetrieveContext(ctx, req.Question, topK, req.Model, org)
	if err != nil {
		return nil, err
	}

	resp := &models.AskResponse{}
	seen := make(map[string]bool)
	for _, m := range matches {
		resp.Context = append(resp.Context, models.ContextChunk{
			Source: m.Source,
			Text:   m.Text,
			Score:  m.Score,
		})
		if !seen[m.Source] {
			seen[m.Source] = true
			resp.Sources = append(resp.Sources, m.Source)
		}
	}

	if e.generator == nil {
		resp.AnswerError = "no answer generator configured"
		return resp, nil
	}

	text, err := e.generator.Generate(ctx, BuildPrompt(req.Question, matches), req.LLMModel)
	if err != nil {
		e.logger.Warn("answer generation failed", zap.Error(err))
		resp.AnswerError = err.Error()
		return resp, nil
	}
	resp.Answer = text
	return resp, nil
}

// BuildPrompt renders the retrieved chunks as labelled context blocks
// followed by the question.
func BuildPrompt(question string, matches []retriever.Match) string {
	var b strings.Builder
	b.WriteString("Answer the question using only the context below. ")
	b.WriteString("If the context does not contain the answer, say so.\n\nContext:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "[%s] %s\n", m.Source, m.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
