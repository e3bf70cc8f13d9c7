package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	reportSince  string
	reportFormat string
	reportLimit  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show local execution history and spending totals",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSince, "since", "720h", "window to report over (Go duration, e.g. 24h, 168h)")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "text", "output format: text, json, yaml")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 50, "maximum entries to list")
}

// reportOutput is the serializable shape for json/yaml output.
type reportOutput struct {
	Since   time.Time         `json:"since" yaml:"since"`
	Total   string            `json:"total" yaml:"total"`
	ByKind  map[string]string `json:"by_kind" yaml:"by_kind"`
	Entries []reportEntry     `json:"entries" yaml:"entries"`
}

type reportEntry struct {
	At     time.Time `json:"at" yaml:"at"`
	Kind   string    `json:"kind" yaml:"kind"`
	Amount string    `json:"amount,omitempty" yaml:"amount,omitempty"`
	TxID   string    `json:"tx_id" yaml:"tx_id"`
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("execution history is disabled (backend %q)", cfg.History.Backend)
	}
	defer store.Close()

	window, err := time.ParseDuration(reportSince)
	if err != nil {
		return fmt.Errorf("invalid --since duration: %w", err)
	}
	since := time.Now().Add(-window)

	summary, err := store.Summarize(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to summarize history: %w", err)
	}
	records, err := store.List(ctx, since, reportLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := reportOutput{
		Since:  summary.Since,
		Total:  summary.Total.String(),
		ByKind: make(map[string]string, len(summary.ByKind)),
	}
	for kind, amount := range summary.ByKind {
		out.ByKind[kind] = amount.String()
	}
	for _, rec := range records {
		out.Entries = append(out.Entries, reportEntry{
			At: rec.At, Kind: rec.Kind, Amount: rec.Amount, TxID: rec.TxID,
		})
	}

	switch reportFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(out)
	default:
		printTextReport(out)
		return nil
	}
}

func printTextReport(out reportOutput) {
	fmt.Printf("Spending since %s\n", out.Since.Format("2006-01-02 15:04"))
	fmt.Printf("Total: %s\n", out.Total)
	if len(out.ByKind) > 0 {
		fmt.Println("By action:")
		for kind, amount := range out.ByKind {
			fmt.Printf("  %-18s %s\n", kind, amount)
		}
	}
	if len(out.Entries) > 0 {
		fmt.Println("Recent executions:")
		for _, e := range out.Entries {
			amount := e.Amount
			if amount == "" {
				amount = "-"
			}
			fmt.Printf("  %s  %-18s %-10s %s\n", e.At.Format("01-02 15:04"), e.Kind, amount, e.TxID)
		}
	}
}
