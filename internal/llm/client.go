// Package llm provides the multi-provider language-model client used by
// the model interpreter and the multimodal front-end. Gemini is the
// default provider; OpenAI is supported for text, JSON, and vision calls.
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"

	"github.com/payagent/payagent/internal/config"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Provider represents the LLM provider.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none" // no key configured; interpreter runs pattern-only
)

// Client provides a multi-provider LLM interface. A Client with no key is
// valid: IsEnabled reports false and every call returns an error the
// resolver treats as "interpreter unavailable".
type Client struct {
	provider     Provider
	openaiClient *openai.Client
	geminiClient *GeminiClient
	limiter      *RateLimiter
	logger       *slog.Logger
	enabled      bool
	model        string
	visionModel  string
}

// NewClient creates a client for the configured provider. A missing API
// key is not an error; it yields a disabled client so the rest of the
// pipeline can fall back to the pattern interpreter.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	logger := slog.Default().With("component", "llm")

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = cfg.API.Provider
	}
	if provider == "" {
		provider = "gemini"
	}

	switch Provider(provider) {
	case ProviderGemini:
		return newGeminiBacked(ctx, cfg, logger)
	case ProviderOpenAI:
		return newOpenAIBacked(cfg, logger)
	default:
		logger.Warn("unknown provider, falling back to gemini", "provider", provider)
		return newGeminiBacked(ctx, cfg, logger)
	}
}

func newGeminiBacked(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	key := cfg.API.GeminiKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		logger.Warn("no Gemini API key configured, model interpreter disabled")
		return &Client{provider: ProviderNone, logger: logger}, nil
	}

	model := cfg.API.GeminiModel
	if model == "" {
		model = "gemini-2.0-flash"
	}

	gc, err := NewGeminiClient(ctx, key, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("gemini client initialized", "model", model)
	return &Client{
		provider:     ProviderGemini,
		geminiClient: gc,
		limiter:      NewRateLimiter(cfg.API.RequestsPerMinute),
		logger:       logger,
		enabled:      true,
		model:        model,
		visionModel:  model, // flash models accept image parts directly
	}, nil
}

func newOpenAIBacked(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	key := cfg.API.OpenAIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		logger.Warn("no OpenAI API key configured, model interpreter disabled")
		return &Client{provider: ProviderNone, logger: logger}, nil
	}

	model := cfg.API.OpenAIModel
	if model == "" {
		model = "gpt-4o-mini"
	}

	logger.Info("openai client initialized", "model", model)
	return &Client{
		provider:     ProviderOpenAI,
		openaiClient: openai.NewClient(key),
		limiter:      NewRateLimiter(cfg.API.RequestsPerMinute),
		logger:       logger,
		enabled:      true,
		model:        model,
		visionModel:  "gpt-4o", // mini is weaker on document images
	}, nil
}

// IsEnabled returns true if a provider is configured and ready.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// GetProvider returns the active LLM provider.
func (c *Client) GetProvider() Provider {
	return c.provider
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Complete sends a prompt and returns the raw text response.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not enabled (no API key configured)")
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	switch c.provider {
	case ProviderGemini:
		return c.geminiClient.Complete(ctx, systemPrompt, userPrompt)
	case ProviderOpenAI:
		return c.completeOpenAI(ctx, systemPrompt, userPrompt, nil)
	default:
		return "", fmt.Errorf("no provider configured")
	}
}

// CompleteJSON sends a prompt and requests a JSON object response.
// Gemini uses ResponseMIMEType application/json; OpenAI uses
// response_format json_object.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not enabled (no API key configured)")
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	switch c.provider {
	case ProviderGemini:
		return c.geminiClient.CompleteJSON(ctx, systemPrompt, userPrompt)
	case ProviderOpenAI:
		return c.completeOpenAI(ctx, systemPrompt, userPrompt, &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		})
	default:
		return "", fmt.Errorf("no provider configured")
	}
}

// CompleteWithTools sends a prompt with function declarations enabled and
// returns the full Gemini response, which may contain function calls.
// Only the Gemini provider supports this path; OpenAI callers get the
// JSON-extraction strategy instead.
func (c *Client) CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []*genai.Tool) (*genai.GenerateContentResponse, error) {
	if !c.enabled {
		return nil, fmt.Errorf("llm client not enabled (no API key configured)")
	}
	if c.provider != ProviderGemini {
		return nil, fmt.Errorf("structured calling requires the gemini provider")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.geminiClient.CompleteWithTools(ctx, systemPrompt, userPrompt, tools)
}

// CompleteVision sends an instruction plus an image and returns the text
// response. image is raw bytes; mimeType e.g. "image/png".
func (c *Client) CompleteVision(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not enabled (no API key configured)")
	}
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	switch c.provider {
	case ProviderGemini:
		return c.geminiClient.CompleteVision(ctx, instruction, image, mimeType)
	case ProviderOpenAI:
		return c.completeOpenAIVision(ctx, instruction, image, mimeType)
	default:
		return "", fmt.Errorf("no provider configured")
	}
}

func (c *Client) completeOpenAI(ctx context.Context, systemPrompt, userPrompt string, format *openai.ChatCompletionResponseFormat) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: format,
		Temperature:    0.1, // low temperature for consistent extraction
		MaxTokens:      2000,
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion",
		"model", c.model,
		"prompt_length", len(userPrompt),
		"response_length", len(response),
		"tokens_used", resp.Usage.TotalTokens,
	)
	return response, nil
}

func (c *Client) completeOpenAIVision(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := c.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", fmt.Errorf("openai vision completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.Debug("openai vision completion",
		"model", c.visionModel,
		"image_bytes", len(image),
		"response_length", len(response),
	)
	return response, nil
}
