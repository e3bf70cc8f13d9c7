package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/payagent/payagent/internal/errors"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// CredentialManager handles credential retrieval with a priority chain:
// environment variables → OS keychain → config file → interactive prompt.
type CredentialManager struct {
	keyring    *KeyringManager
	configPath string
}

// Credentials holds the provider API keys.
type Credentials struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
}

// NewCredentialManager creates a new credential manager.
func NewCredentialManager() *CredentialManager {
	homeDir, _ := os.UserHomeDir()
	return &CredentialManager{
		keyring:    NewKeyringManager(),
		configPath: filepath.Join(homeDir, ".config", "payagent", "credentials.yaml"),
	}
}

// GetGeminiAPIKey retrieves the Gemini API key using the priority chain.
func (cm *CredentialManager) GetGeminiAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}

	if cm.keyring.IsAvailable() {
		if key, err := cm.keyring.GetGeminiKey(); err == nil && key != "" {
			return key, nil
		}
	}

	if creds, err := cm.loadConfigFile(); err == nil && creds.GeminiAPIKey != "" {
		return creds.GeminiAPIKey, nil
	}

	if isInteractive() {
		fmt.Println("\nGemini API key not found.")
		fmt.Println("Create one at: https://aistudio.google.com/apikey")
		fmt.Println()
		fmt.Print("Enter Gemini API key (or press Enter to skip): ")
		key, _ := cm.readSecurely()
		if key != "" {
			if cm.keyring.IsAvailable() {
				cm.keyring.SetGeminiKey(key)
			}
			return key, nil
		}
		// Optional: the agent runs pattern-only without a model key
		return "", nil
	}

	return "", errors.ConfigErrorf(
		"GEMINI_API_KEY not found. Set it via:\n"+
			"  1. Environment variable: export GEMINI_API_KEY=...\n"+
			"  2. Run: payagent configure\n"+
			"  3. Config file: %s", cm.configPath)
}

// GetOpenAIAPIKey retrieves the OpenAI API key using the priority chain.
// The key is optional; callers treat "" as provider-disabled.
func (cm *CredentialManager) GetOpenAIAPIKey() (string, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}

	if cm.keyring.IsAvailable() {
		if key, err := cm.keyring.GetOpenAIKey(); err == nil && key != "" {
			return key, nil
		}
	}

	if creds, err := cm.loadConfigFile(); err == nil && creds.OpenAIAPIKey != "" {
		return creds.OpenAIAPIKey, nil
	}

	return "", nil
}

// SaveCredentials saves credentials to the keychain, falling back to the
// config file when no keychain backend is available.
func (cm *CredentialManager) SaveCredentials(creds Credentials) error {
	if cm.keyring.IsAvailable() {
		if creds.GeminiAPIKey != "" {
			if err := cm.keyring.SetGeminiKey(creds.GeminiAPIKey); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityHigh,
					"failed to save Gemini API key to keychain")
			}
		}
		if creds.OpenAIAPIKey != "" {
			if err := cm.keyring.SetOpenAIKey(creds.OpenAIAPIKey); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityHigh,
					"failed to save OpenAI API key to keychain")
			}
		}
		return nil
	}

	return cm.saveConfigFile(creds)
}

// HasCredentials reports whether any model-provider key is configured.
func (cm *CredentialManager) HasCredentials() bool {
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("OPENAI_API_KEY") != "" {
		return true
	}

	if cm.keyring.IsAvailable() {
		if key, err := cm.keyring.GetGeminiKey(); err == nil && key != "" {
			return true
		}
		if key, err := cm.keyring.GetOpenAIKey(); err == nil && key != "" {
			return true
		}
	}

	if creds, err := cm.loadConfigFile(); err == nil {
		return creds.GeminiAPIKey != "" || creds.OpenAIAPIKey != ""
	}

	return false
}

// GetConfigPath returns the path to the credentials file.
func (cm *CredentialManager) GetConfigPath() string {
	return cm.configPath
}

func (cm *CredentialManager) loadConfigFile() (*Credentials, error) {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

func (cm *CredentialManager) saveConfigFile(creds Credentials) error {
	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}

	// user-only read/write: this file holds API keys
	return os.WriteFile(cm.configPath, data, 0600)
}

// readSecurely reads a token from stdin without echoing.
func (cm *CredentialManager) readSecurely() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		bytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println() // new line after password input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	// Fallback: read from stdin (piped input)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isInteractive returns true if stdin is a terminal (not piped).
func isInteractive() bool {
	return term.IsTerminal(int(syscall.Stdin))
}
