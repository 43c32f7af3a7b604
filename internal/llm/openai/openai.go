// Package openai adapts any OpenAI-compatible chat completions endpoint to llm.Model.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/danielnoveno/hackathon-hooklabai/internal/llm"
)

const defaultModel = "gpt-4o-mini"

// Config holds configuration for the chat client.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string // optional, for compatible gateways and tests
	Timeout    time.Duration
	MaxRetries int
	HTTPClient *http.Client // optional (tests)
}

// Provider implements llm.Model using the official OpenAI SDK.
type Provider struct {
	client openai.Client
	model  string
}

var _ llm.Model = (*Provider)(nil)

func New(cfg Config) *Provider {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Provider{client: openai.NewClient(opts...), model: cfg.Model}
}

// Generate sends the prompt as a single user message. Top-k has no
// equivalent in the chat API and is ignored.
func (p *Provider) Generate(ctx context.Context, prompt string, params llm.Params) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature:         openai.Float(params.Temperature),
		TopP:                openai.Float(params.TopP),
		MaxCompletionTokens: openai.Int(int64(params.MaxOutputTokens)),
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: empty completion")
	}
	return text, nil
}

func mapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("openai error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("openai error (status %d)", apiErr.StatusCode)
	}
	return fmt.Errorf("openai request: %w", err)
}
