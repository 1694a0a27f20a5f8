package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config carries the backend credential and endpoint. BaseURL lets the
// bot target any OpenAI-compatible gateway.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type openaiClient struct {
	client openai.Client
	model  string
}

var _ Client = (*openaiClient)(nil)

// NewOpenAIClient builds the production model backend.
func NewOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openaiClient{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (c *openaiClient) Chat(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm chat: no choices in response")
	}

	answer := resp.Choices[0].Message.Content
	log.Printf("[llm.Chat] model=%s duration_ms=%d words=%d", c.model, time.Since(start).Milliseconds(), WordCount(answer))
	return answer, nil
}
