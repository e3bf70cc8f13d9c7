package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/payagent/payagent/internal/agent"
	"github.com/payagent/payagent/internal/chat"
	"github.com/payagent/payagent/internal/config"
	"github.com/payagent/payagent/internal/dispatch"
	"github.com/payagent/payagent/internal/history"
	"github.com/payagent/payagent/internal/interpreter"
	"github.com/payagent/payagent/internal/llm"
	"github.com/payagent/payagent/internal/settlement"
	"github.com/payagent/payagent/internal/settlement/mock"
	"github.com/payagent/payagent/internal/settlement/rest"
	"github.com/payagent/payagent/internal/vision"
)

// pipeline bundles everything a CLI session needs.
type pipeline struct {
	agent   *agent.Agent
	store   history.Store
	client  settlement.Client
	llm     *llm.Client
	cleanup func()
}

// buildPipeline wires the full stack from configuration. The settlement
// client is the in-memory mock unless an endpoint is configured.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	creds := config.NewCredentialManager()
	if cfg.API.GeminiKey == "" {
		// Last resort: credentials file, then an interactive prompt.
		// The agent still runs pattern-only if neither yields a key.
		if key, err := creds.GetGeminiAPIKey(); err == nil {
			cfg.API.GeminiKey = key
		}
	}
	if cfg.API.OpenAIKey == "" {
		if key, err := creds.GetOpenAIAPIKey(); err == nil {
			cfg.API.OpenAIKey = key
		}
	}

	llmClient, err := llm.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model client: %w", err)
	}

	var settle settlement.Client
	if cfg.Settlement.Endpoint != "" {
		settle = rest.NewClient(cfg.Settlement.Endpoint)
	} else {
		logger.Debug("no settlement endpoint configured, using in-memory mock")
		settle = mock.NewClient("1000")
	}

	store, err := openHistory(cfg)
	if err != nil {
		logger.WithError(err).Warn("Execution history unavailable")
		store = nil
	}

	var model *interpreter.ModelInterpreter
	if llmClient.IsEnabled() {
		model = interpreter.NewModelInterpreter(llmClient)
	}
	resolver := interpreter.NewResolver(interpreter.NewPatternInterpreter(), model)

	dispatcher := dispatch.NewDispatcher(settle, dispatch.Options{
		RequireConfirmation: cfg.Confirmation.Require,
		Threshold:           cfg.Confirmation.Threshold,
		DefaultToken:        cfg.Settlement.DefaultToken,
		History:             store,
	})

	opts := agent.Options{}
	if llmClient.IsEnabled() {
		opts.Analyzer = vision.NewAnalyzer(llmClient)
	}
	if cfg.API.OpenAIKey != "" {
		opts.Responder = chat.NewResponder(cfg.API.OpenAIKey)
	}

	p := &pipeline{
		agent:  agent.New(resolver, dispatcher, opts),
		store:  store,
		client: settle,
		llm:    llmClient,
	}
	p.cleanup = func() {
		if store != nil {
			store.Close()
		}
	}
	return p, nil
}

func openHistory(cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		return history.NewSQLiteStore(sqlitePath(cfg.History.Path))
	case "bolt":
		return history.NewBoltStore(cfg.History.Path)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// sqlitePath keeps the sqlite database beside the default bolt one
// instead of sharing a file with it.
func sqlitePath(path string) string {
	if filepath.Ext(path) == ".db" {
		return path[:len(path)-len(".db")] + ".sqlite"
	}
	return path
}

// printResult renders an ExecutionResult for terminal use.
func printResult(result dispatch.ExecutionResult) {
	switch {
	case result.NeedsConfirmation:
		fmt.Printf("⏸  %s\n", result.ConfirmationPrompt)
	case result.Success:
		fmt.Printf("✓ %s\n", result.Message)
		if result.Reference != nil && result.Reference.TxID != "" {
			fmt.Printf("  tx: %s\n", result.Reference.TxID)
		}
	default:
		fmt.Printf("✗ %s\n", result.Message)
		for _, s := range result.Suggestions {
			fmt.Printf("  try: %s\n", s)
		}
	}
}
