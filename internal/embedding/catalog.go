package embedding

import (
	"fmt"
	"sync"

	"github.com/bunkolab/bunko/internal/config"
)

// Provider selects how a model id is realized.
type Provider string

const (
	// ProviderOllama embeds through a local Ollama server.
	ProviderOllama Provider = "ollama"
	// ProviderONNX runs a local ONNX sentence-transformer (requires CGO).
	ProviderONNX Provider = "onnx"
	// ProviderHash is the deterministic hash model, mainly for tests.
	ProviderHash Provider = "hash"
)

// NewModel creates a model instance for id using the configured provider.
func NewModel(cfg config.EmbeddingConfig, id string) (Model, error) {
	if id == "" {
		id = cfg.Model
	}
	switch Provider(cfg.Provider) {
	case ProviderOllama, "":
		return NewOllamaModel(cfg.BaseURL, id, cfg.Dimensions, cfg.CacheSize), nil
	case ProviderONNX:
		return NewONNXModel(id, cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	case ProviderHash:
		return NewHashModel(id, cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: ollama, onnx, hash)", cfg.Provider)
	}
}

// Catalog hands out exactly one model instance per model id. Loading a model
// is expensive relative to inference, so concurrent requests for the same id
// share the instance rather than each loading their own.
type Catalog struct {
	cfg    config.EmbeddingConfig
	build  func(cfg config.EmbeddingConfig, id string) (Model, error)
	mu     sync.Mutex
	models map[string]Model
}

// NewCatalog creates a catalog over the configured provider.
func NewCatalog(cfg config.EmbeddingConfig) *Catalog {
	return &Catalog{
		cfg:    cfg,
		build:  NewModel,
		models: make(map[string]Model),
	}
}

// Get returns the shared model for id, creating it on first use.
// An empty id resolves to the configured default model.
func (c *Catalog) Get(id string) (Model, error) {
	if id == "" {
		id = c.cfg.Model
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[id]; ok {
		return m, nil
	}
	m, err := c.build(c.cfg, id)
	if err != nil {
		return nil, fmt.Errorf("create model %q: %w", id, err)
	}
	c.models[id] = m
	return m, nil
}

// Close closes every loaded model. The first error is returned.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for id, m := range c.models {
		if err := m.Close(); err != nil && first == nil {
			first = fmt.Errorf("close model %q: %w", id, err)
		}
		delete(c.models, id)
	}
	return first
}
