package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultOllamaTimeout = 30 * time.Second

// OllamaModel produces embeddings through a local Ollama server.
// Ollama has no batch endpoint, so EmbedBatch issues one request per text.
type OllamaModel struct {
	client  *http.Client
	baseURL string
	model   string
	dims    int
	cache   *Cache
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaModel creates a model backed by the Ollama API at baseURL.
// cacheSize <= 0 disables the embedding cache.
func NewOllamaModel(baseURL, model string, dims, cacheSize int) *OllamaModel {
	m := &OllamaModel{
		client:  &http.Client{Timeout: defaultOllamaTimeout},
		baseURL: baseURL,
		model:   model,
		dims:    dims,
	}
	if cacheSize > 0 {
		m.cache = NewCache(cacheSize)
	}
	return m
}

// EmbedBatch embeds texts one at a time, preserving order.
func (m *OllamaModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (m *OllamaModel) embed(ctx context.Context, text string) ([]float32, error) {
	if m.cache != nil {
		if cached, ok := m.cache.Get(text); ok {
			return cached, nil
		}
	}
	body, err := json.Marshal(ollamaEmbedRequest{Model: m.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(b))
	}

	var er ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	vec := make([]float32, len(er.Embedding))
	for i, v := range er.Embedding {
		vec[i] = float32(v)
	}
	if m.cache != nil {
		m.cache.Set(text, vec)
	}
	return vec, nil
}

// Dimensions returns the configured embedding dimension.
func (m *OllamaModel) Dimensions() int { return m.dims }

// Name returns the model identifier.
func (m *OllamaModel) Name() string { return m.model }

// Close is a no-op; the HTTP client holds no resources needing cleanup.
func (m *OllamaModel) Close() error { return nil }
