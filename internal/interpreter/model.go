package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/payagent/payagent/internal/catalog"
	"github.com/payagent/payagent/internal/errors"
	"github.com/payagent/payagent/internal/intent"
	"github.com/payagent/payagent/internal/llm"
	"google.golang.org/genai"
)

// ModelInterpreter resolves intents through a hosted language model. Two
// strategies are used, in order: structured calling (the model selects an
// action from the catalog directly) and free-form JSON extraction. Every
// failure is returned as an error value the resolver treats as
// "interpreter unavailable"; nothing propagates past the resolver.
type ModelInterpreter struct {
	client *llm.Client
	logger *slog.Logger
}

// modelResponse mirrors the intent shape the free-form prompt asks for.
// The action field is untrusted until validated against the catalog.
type modelResponse struct {
	Action     string            `json:"action"`
	Confidence float64           `json:"confidence"`
	Params     map[string]string `json:"params"`
}

const systemPrompt = `You are the intent parser of a payment assistant.
Map the user's request to exactly one supported action and its parameters.
If the request is not a payment action, use action "unknown".`

// NewModelInterpreter creates a model-backed interpreter.
func NewModelInterpreter(client *llm.Client) *ModelInterpreter {
	return &ModelInterpreter{
		client: client,
		logger: slog.Default().With("component", "model_interpreter"),
	}
}

// Available reports whether a model provider is configured.
func (m *ModelInterpreter) Available() bool {
	return m.client != nil && m.client.IsEnabled()
}

// Interpret resolves text to an intent via the model. Structured calling
// is preferred when the provider supports it; otherwise (and on a
// structured response with no selection) the free-form JSON strategy runs.
func (m *ModelInterpreter) Interpret(ctx context.Context, text string) (intent.Intent, error) {
	if !m.Available() {
		return intent.Intent{}, fmt.Errorf("model interpreter not configured")
	}

	if m.client.GetProvider() == llm.ProviderGemini {
		it, err := m.interpretStructured(ctx, text)
		if err == nil {
			return it, nil
		}
		m.logger.Debug("structured calling failed, falling back to JSON extraction", "error", err)
	}

	return m.interpretFreeForm(ctx, text)
}

// interpretStructured asks the model to select an action via function
// calling. The first selection wins; any further selections in the same
// response are dropped. The count of dropped selections is logged so the
// truncation is observable.
func (m *ModelInterpreter) interpretStructured(ctx context.Context, text string) (intent.Intent, error) {
	resp, err := m.client.CompleteWithTools(ctx, systemPrompt, text, catalog.GeminiTools())
	if err != nil {
		return intent.Intent{}, errors.InterpretationError(err, "structured call failed")
	}

	calls := functionCalls(resp)
	if len(calls) == 0 {
		return intent.Intent{}, fmt.Errorf("model made no action selection")
	}
	if len(calls) > 1 {
		m.logger.Debug("model returned multiple selections, using first", "dropped", len(calls)-1)
	}

	call := calls[0]
	kind := catalog.ActionKind(call.Name)
	if _, ok := catalog.Lookup(kind); !ok {
		return intent.Intent{}, fmt.Errorf("model selected unknown action %q", call.Name)
	}

	params := make(map[string]string, len(call.Args))
	for k, v := range call.Args {
		params[k] = stringify(v)
	}

	return intent.Intent{
		Kind:       kind,
		Params:     params,
		Confidence: 0.9, // a direct selection is the model's strongest signal
		Origin:     intent.OriginModel,
		RawInput:   text,
	}, nil
}

// interpretFreeForm asks the model for a single JSON object mirroring the
// intent shape and extracts it with the fenced-then-bare discipline.
func (m *ModelInterpreter) interpretFreeForm(ctx context.Context, text string) (intent.Intent, error) {
	prompt := fmt.Sprintf(`Supported actions:
%s
Respond with a single JSON object: {"action": "<action name>", "confidence": <0..1>, "params": {<string key-value pairs>}}.
Use action "unknown" with confidence 0 if the request maps to nothing above.

User request: %s`, catalog.PromptDescription(), text)

	raw, err := m.client.CompleteJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return intent.Intent{}, errors.InterpretationError(err, "model call failed")
	}

	return m.parseResponse(raw, text)
}

// parseResponse extracts and validates the model's JSON answer. The
// action field is checked against the catalog enum before use; arbitrary
// action names from the model are rejected, not passed through.
func (m *ModelInterpreter) parseResponse(raw, originalText string) (intent.Intent, error) {
	jsonText, err := ExtractJSON(raw)
	if err != nil {
		return intent.Intent{}, errors.InterpretationError(err, "no usable JSON in model response")
	}

	var mr modelResponse
	if err := json.Unmarshal([]byte(jsonText), &mr); err != nil {
		return intent.Intent{}, errors.InterpretationError(err, "model response parse failed")
	}

	kind := catalog.ActionKind(strings.TrimSpace(mr.Action))
	if !catalog.Valid(kind) {
		return intent.Intent{}, fmt.Errorf("model returned unsupported action %q", mr.Action)
	}

	if mr.Confidence < 0 {
		mr.Confidence = 0
	}
	if mr.Confidence > 1 {
		mr.Confidence = 1
	}

	params := mr.Params
	if params == nil {
		params = map[string]string{}
	}

	return intent.Intent{
		Kind:       kind,
		Params:     params,
		Confidence: mr.Confidence,
		Origin:     intent.OriginModel,
		RawInput:   originalText,
	}, nil
}

// functionCalls collects every FunctionCall part across all parts of the
// first candidate.
func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, *part.FunctionCall)
		}
	}
	return calls
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// trim the ".000000" noise from integral amounts
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
