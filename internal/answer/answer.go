// Package answer generates grounded answers from retrieved context via an LLM.
package answer

import (
	"context"
	"fmt"

	"github.com/bunkolab/bunko/internal/config"
)

// Generator produces an answer for a fully-built prompt.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// New creates the configured generator.
func New(cfg config.AnswerConfig) (Generator, error) {
	switch cfg.Provider {
	case "groq", "openai", "":
		return NewGroqGenerator(cfg)
	case "ollama":
		return NewOllamaGenerator(cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown answer provider: %s (supported: groq, openai, ollama)", cfg.Provider)
	}
}
