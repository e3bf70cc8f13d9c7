package interpreter

import (
	"context"
	"log/slog"

	"github.com/payagent/payagent/internal/intent"
)

// shortCircuitConfidence is the pattern confidence at or above which the
// model is never consulted. The deterministic path is preferred for cost,
// latency, and reproducibility.
const shortCircuitConfidence = 0.8

// modelInterpreter is the slice of ModelInterpreter the resolver needs.
type modelInterpreter interface {
	Available() bool
	Interpret(ctx context.Context, text string) (intent.Intent, error)
}

// Resolver arbitrates between the pattern and model interpreters and
// always terminates in a valid intent; it never returns an error.
type Resolver struct {
	pattern *PatternInterpreter
	model   modelInterpreter
	logger  *slog.Logger
}

// NewResolver creates a resolver. model may be nil or disabled; the
// resolver then runs pattern-only.
func NewResolver(pattern *PatternInterpreter, model *ModelInterpreter) *Resolver {
	r := &Resolver{
		pattern: pattern,
		logger:  slog.Default().With("component", "resolver"),
	}
	if model != nil {
		r.model = model
	}
	return r
}

// Resolve produces exactly one canonical intent for the input text.
// Pattern first, always; a confident pattern match short-circuits. The
// model result is used only when it is strictly more confident than the
// pattern result.
func (r *Resolver) Resolve(ctx context.Context, text string) intent.Intent {
	patternResult := r.pattern.Interpret(text)

	if patternResult.Confidence >= shortCircuitConfidence {
		r.logger.Debug("pattern match", "action", patternResult.Kind, "confidence", patternResult.Confidence)
		return patternResult
	}

	if r.model == nil || !r.model.Available() {
		return patternResult
	}

	modelResult, err := r.model.Interpret(ctx, text)
	if err != nil {
		r.logger.Debug("model interpreter unavailable, keeping pattern result", "error", err)
		return patternResult
	}

	if modelResult.Confidence > patternResult.Confidence {
		r.logger.Debug("model result preferred",
			"action", modelResult.Kind,
			"model_confidence", modelResult.Confidence,
			"pattern_confidence", patternResult.Confidence,
		)
		return modelResult
	}

	return patternResult
}
