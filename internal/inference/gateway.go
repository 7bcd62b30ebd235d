package inference

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Gateway wraps the external text-generation endpoint. One prompt in,
// trimmed text out; failures propagate to the caller untouched, which
// aborts the whole analysis with nothing persisted.
type Gateway interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type chatGateway struct {
	client *openai.Client
	model  string
}

// NewGateway builds a gateway over any OpenAI-compatible chat
// completions endpoint (OpenRouter, vLLM, etc.).
func NewGateway(apiKey, baseURL, model string) Gateway {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &chatGateway{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (g *chatGateway) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
