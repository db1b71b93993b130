// Package generation adapts an OpenAI-compatible chat completion backend to
// the domain GenerationClient interface.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// Config holds the backend connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible completion endpoint. One request per
// turn; the enriched prompt is sent as a single user message.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a generation client. BaseURL may point at any
// OpenAI-compatible server; a blank model falls back to gpt-4o-mini.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation api key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Generate runs one completion for the enriched prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*entity.AiResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]

	var calls []entity.FunctionCall
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, entity.FunctionCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	metadata := map[string]string{
		"model":         resp.Model,
		"finish_reason": string(choice.FinishReason),
		"total_tokens":  strconv.Itoa(resp.Usage.TotalTokens),
	}

	c.logger.Debug("completion finished",
		"model", resp.Model,
		"latency", time.Since(started),
		"total_tokens", resp.Usage.TotalTokens,
	)

	return entity.NewAiResponse(choice.Message.Content, calls, metadata, time.Now())
}

// Ping verifies the backend is reachable by listing models.
func (c *Client) Ping(ctx context.Context) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("generation backend unreachable: %w", err)
	}
	return nil
}
