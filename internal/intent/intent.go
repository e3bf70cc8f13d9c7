// Package intent defines the canonical representation of a resolved user
// request and its pre-dispatch validation.
package intent

import "github.com/payagent/payagent/internal/catalog"

// Origin records which interpreter produced an intent.
type Origin string

const (
	// OriginPattern marks intents from the deterministic pattern interpreter.
	OriginPattern Origin = "pattern"
	// OriginModel marks intents from the language-model interpreter.
	OriginModel Origin = "model"
)

// PatternConfidence is the fixed confidence assigned to every pattern
// match. It sits above the resolver's short-circuit threshold, so a
// matched pattern never triggers a model call.
const PatternConfidence = 0.85

// Intent is the structured form of a caller's request, produced by an
// interpreter and consumed (never mutated) by the validator and dispatcher.
type Intent struct {
	Kind       catalog.ActionKind
	Params     map[string]string
	Confidence float64
	Origin     Origin
	RawInput   string
	// Suggestions holds example commands; populated only when Kind is
	// ActionUnknown.
	Suggestions []string
}

// Unknown builds the no-match intent for raw input.
func Unknown(raw string, suggestions []string) Intent {
	return Intent{
		Kind:        catalog.ActionUnknown,
		Params:      map[string]string{},
		Confidence:  0,
		Origin:      OriginPattern,
		RawInput:    raw,
		Suggestions: suggestions,
	}
}

// Param returns the named parameter or "" when absent.
func (it Intent) Param(name string) string {
	if it.Params == nil {
		return ""
	}
	return it.Params[name]
}
