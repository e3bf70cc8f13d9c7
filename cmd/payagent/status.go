package main

import (
	"context"
	"fmt"

	"github.com/payagent/payagent/internal/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and service availability",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("PayAgent status")
	fmt.Println("━━━━━━━━━━━━━━━")

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.cleanup()

	provider := string(p.llm.GetProvider())
	if !p.llm.IsEnabled() {
		provider = "none (pattern matching only)"
	}
	fmt.Printf("Model provider:    %s\n", provider)

	settleTarget := "in-memory mock"
	if cfg.Settlement.Endpoint != "" {
		settleTarget = cfg.Settlement.Endpoint
	}
	fmt.Printf("Settlement:        %s\n", settleTarget)
	fmt.Printf("Default token:     %s\n", cfg.Settlement.DefaultToken)

	gate := "disabled"
	if cfg.Confirmation.Require {
		gate = fmt.Sprintf("enabled, threshold %s", cfg.Confirmation.Threshold)
	}
	fmt.Printf("Confirmation gate: %s\n", gate)

	historyState := cfg.History.Backend
	if p.store == nil {
		historyState = "disabled"
	} else {
		historyState = fmt.Sprintf("%s (%s)", cfg.History.Backend, cfg.History.Path)
	}
	fmt.Printf("History:           %s\n", historyState)

	km := config.NewKeyringManager()
	keychain := "unavailable"
	if km.IsAvailable() {
		keychain = "available"
	}
	fmt.Printf("OS keychain:       %s\n", keychain)

	credState := "not configured"
	if config.NewCredentialManager().HasCredentials() {
		credState = "configured"
	}
	fmt.Printf("Model credentials: %s\n", credState)

	if bal, err := p.client.GetBalance(ctx, cfg.Settlement.DefaultToken); err == nil {
		fmt.Printf("Balance:           %s %s\n", bal.Amount.String(), bal.Token)
	}

	return nil
}
