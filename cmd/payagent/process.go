package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	processYes   bool
	processImage string
	processMode  string
	processHint  string
)

var processCmd = &cobra.Command{
	Use:   "process [command text]",
	Short: "Process one natural-language payment command",
	Long: `Process resolves a single command through the full pipeline and, when
the action needs confirmation, asks on the terminal (or auto-confirms
with --yes).

Examples:
  payagent process "send 50 USDC to 0xABC"
  payagent process "create escrow for 500 USDC to 0xDEF"
  payagent process --image invoice.png --mode invoice`,
	Args: cobra.ArbitraryArgs,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVarP(&processYes, "yes", "y", false, "confirm pending actions without asking")
	processCmd.Flags().StringVar(&processImage, "image", "", "path to an image to analyze instead of text")
	processCmd.Flags().StringVar(&processMode, "mode", "generic", "image interpretation: invoice, receipt, delivery-proof, generic")
	processCmd.Flags().StringVar(&processHint, "hint", "", "extra context for image analysis")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.cleanup()

	var result = processInput(ctx, p, args)
	printResult(result)

	if result.NeedsConfirmation {
		if processYes || askYesNo(result.ConfirmationPrompt) {
			printResult(p.agent.Confirm(ctx))
		} else {
			p.agent.Cancel()
			fmt.Println("Cancelled.")
		}
	}
	return nil
}

func processInput(ctx context.Context, p *pipeline, args []string) (result dispatchResult) {
	if processImage != "" {
		image, err := os.ReadFile(processImage)
		if err != nil {
			return failureResult(fmt.Sprintf("Failed to read image: %v", err))
		}
		return p.agent.ProcessImage(ctx, image, mimeTypeFor(processImage), imageMode(processMode), imageOptions(processHint))
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return failureResult("No command given. Try: payagent process \"send 50 USDC to 0xABC\"")
	}
	return p.agent.ProcessCommand(ctx, text)
}

func askYesNo(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
