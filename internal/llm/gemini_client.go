package llm

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// GeminiClient wraps Google's Generative AI SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiClient creates a new Gemini API client.
// model: e.g. "gemini-2.0-flash", "gemini-1.5-pro".
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger := slog.Default().With("component", "gemini", "model", model)

	return &GeminiClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends a prompt to Gemini and returns the text response.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemPrompt),
		Temperature:       ptrFloat32(0.1), // low temperature for consistency
		MaxOutputTokens:   2000,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini completion",
		"prompt_length", len(userPrompt),
		"response_length", len(text),
	)
	return text, nil
}

// CompleteJSON sends a prompt and requests a JSON response via Gemini's
// native JSON mode.
func (c *GeminiClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemPrompt),
		Temperature:       ptrFloat32(0.1),
		ResponseMIMEType:  "application/json",
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini json completion failed: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini json completion",
		"prompt_length", len(userPrompt),
		"response_length", len(text),
	)
	return text, nil
}

// CompleteWithTools sends a prompt with function calling enabled and
// returns the full response, which may include function calls.
func (c *GeminiClient) CompleteWithTools(ctx context.Context, systemPrompt, userPrompt string, tools []*genai.Tool) (*genai.GenerateContentResponse, error) {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemContent(systemPrompt),
		Temperature:       ptrFloat32(0.1),
		Tools:             tools,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("gemini tool completion failed: %w", err)
	}

	c.logger.Debug("gemini tool completion",
		"prompt_length", len(userPrompt),
		"num_candidates", len(resp.Candidates),
	)
	return resp, nil
}

// CompleteVision sends an instruction together with inline image data and
// returns the text response.
func (c *GeminiClient) CompleteVision(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: instruction},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
			},
		},
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     ptrFloat32(0.1),
		MaxOutputTokens: 2000,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini vision completion failed: %w", err)
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}

	c.logger.Debug("gemini vision completion",
		"image_bytes", len(image),
		"response_length", len(text),
	)
	return text, nil
}

// Close releases resources held by the Gemini client.
func (c *GeminiClient) Close() error {
	// Gemini client doesn't require explicit cleanup in current SDK version
	return nil
}

func systemContent(systemPrompt string) *genai.Content {
	if systemPrompt == "" {
		return nil
	}
	return genai.Text(systemPrompt)[0]
}

// firstText extracts the text of the first candidate's first part.
func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content parts")
	}
	return candidate.Content.Parts[0].Text, nil
}

func ptrFloat32(f float64) *float32 {
	f32 := float32(f)
	return &f32
}
