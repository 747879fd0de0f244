package answer

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bunkolab/bunko/internal/config"
)

// GroqGenerator calls an OpenAI-compatible chat completions endpoint.
// Groq exposes one, so the standard client works with a swapped base URL.
type GroqGenerator struct {
	client       *openai.Client
	defaultModel string
}

// NewGroqGenerator reads the API key from the configured environment variable.
func NewGroqGenerator(cfg config.AnswerConfig) (*GroqGenerator, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, errors.New(cfg.APIKeyEnv + " environment variable not set")
	}
	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &GroqGenerator{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message and returns the completion.
func (g *GroqGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = g.defaultModel
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
