// Package chat answers inputs that resolve to no payment action with a
// short conversational reply, so the caller surface can stay helpful
// instead of repeating "unknown action".
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `You are PayAgent, a payments assistant. The user said something that is not a payment command. Reply in one or two friendly sentences. If it could be a payment request, suggest the closest supported phrasing, for example "send 50 USDC to 0xABC". Never invent transactions or balances.`

// Responder produces conversational fallback replies via OpenAI.
type Responder struct {
	client openai.Client
	model  openai.ChatModel
	logger *slog.Logger
}

// NewResponder returns a responder, or nil when no API key is
// configured. A nil responder is valid; callers fall back to canned
// suggestions.
func NewResponder(apiKey string) *Responder {
	if apiKey == "" {
		return nil
	}

	return &Responder{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
		logger: slog.Default().With("component", "chat"),
	}
}

// SetModel overrides the default model.
func (r *Responder) SetModel(model string) {
	r.model = openai.ChatModel(model)
}

// Reply generates a conversational response to the unrecognized input.
func (r *Responder) Reply(ctx context.Context, input string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(input),
		},
		Model: r.model,
	}

	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	r.logger.Debug("chat fallback reply", "tokens", completion.Usage.TotalTokens)
	return reply, nil
}
