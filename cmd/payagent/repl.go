package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive command loop",
	Long: `Repl reads commands line by line through the same pipeline as
process. "yes" confirms a pending action, "no" cancels it, "exit"
quits.`,
	RunE: runRepl,
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.cleanup()

	fmt.Println("PayAgent ready. Type a command, or \"exit\" to quit.")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if p.agent.HasPending() {
			fmt.Print("confirm? [y/n/new command] > ")
		} else {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "y", "yes", "confirm":
			printResult(p.agent.Confirm(ctx))
		case "n", "no", "cancel":
			p.agent.Cancel()
			fmt.Println("Cancelled.")
		default:
			printResult(p.agent.ProcessCommand(ctx, line))
		}
	}
	return scanner.Err()
}
