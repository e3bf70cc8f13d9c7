package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/payagent/payagent/internal/config"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup wizard for PayAgent (with OS keychain support)",
	Long: `Walk through PayAgent configuration step-by-step with secure credential
storage.

This will configure:
1. Gemini API key (primary model provider, stored in OS keychain by default)
2. OpenAI API key (optional: vision fallback and conversational replies)
3. Confirmation gate (threshold and on/off)
4. Execution history backend`,
	RunE: runConfigure,
}

func runConfigure(cmd *cobra.Command, args []string) error {
	fmt.Println("🔧 PayAgent Configuration Wizard")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	homeDir, _ := os.UserHomeDir()
	configPath := filepath.Join(homeDir, ".payagent", "config.yaml")
	loadedCfg, err := config.Load(configPath)
	if err != nil {
		loadedCfg = config.Default()
	}

	km := config.NewKeyringManager()
	keychainAvailable := km.IsAvailable()
	if !keychainAvailable {
		fmt.Println("⚠️  OS keychain not available (headless system or Linux without libsecret)")
		fmt.Println("   API keys will be stored in the config file instead.")
		fmt.Println()
	}

	// Step 1: Gemini API key
	fmt.Println("Step 1/4: Gemini API Key")
	fmt.Println("Used for intent interpretation, function calling, and image analysis.")
	configureKey(reader, "Gemini", loadedCfg.API.GeminiKey, keychainAvailable,
		km.SetGeminiKey, func(k string) { loadedCfg.API.GeminiKey = k })
	fmt.Println()

	// Step 2: OpenAI API key (optional)
	fmt.Println("Step 2/4: OpenAI API Key (optional, press Enter to skip)")
	fmt.Println("Enables the conversational fallback and an alternate vision provider.")
	configureKey(reader, "OpenAI", loadedCfg.API.OpenAIKey, keychainAvailable,
		km.SetOpenAIKey, func(k string) { loadedCfg.API.OpenAIKey = k })
	fmt.Println()

	// Step 3: Confirmation gate
	fmt.Println("Step 3/4: Confirmation Gate")
	fmt.Printf("Current threshold: %s (actions at or above it require confirmation)\n",
		loadedCfg.Confirmation.Threshold)
	fmt.Print("New threshold (Enter to keep): ")
	if line := readLine(reader); line != "" {
		loadedCfg.Confirmation.Threshold = line
	}
	fmt.Print("Require confirmation for sensitive actions? (Y/n): ")
	if line := strings.ToLower(readLine(reader)); line == "n" || line == "no" {
		loadedCfg.Confirmation.Require = false
	} else {
		loadedCfg.Confirmation.Require = true
	}
	fmt.Println()

	// Step 4: History backend
	fmt.Println("Step 4/4: Execution History")
	fmt.Printf("Current backend: %s\n", loadedCfg.History.Backend)
	fmt.Print("Backend (bolt/sqlite/none, Enter to keep): ")
	switch strings.ToLower(readLine(reader)) {
	case "bolt":
		loadedCfg.History.Backend = "bolt"
	case "sqlite":
		loadedCfg.History.Backend = "sqlite"
	case "none":
		loadedCfg.History.Backend = "none"
	}

	if err := loadedCfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✅ Configuration saved to %s\n", configPath)
	return nil
}

// configureKey prompts for one API key and stores it in the keychain
// when available, else in the config struct for file storage.
func configureKey(reader *bufio.Reader, name, current string, keychain bool,
	storeKeychain func(string) error, storeConfig func(string)) {

	if current != "" {
		fmt.Printf("Current: %s\n", maskKey(current))
		fmt.Print("Keep existing key? (Y/n): ")
		answer := strings.ToLower(readLine(reader))
		if answer == "" || answer == "y" || answer == "yes" {
			return
		}
	}

	fmt.Printf("Enter your %s API key: ", name)
	key := readLine(reader)
	if key == "" {
		return
	}

	if keychain {
		if err := storeKeychain(key); err == nil {
			fmt.Printf("✅ %s key stored in OS keychain\n", name)
			return
		}
		fmt.Println("⚠️  Keychain write failed, falling back to config file.")
	}
	storeConfig(key)
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
