package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain.
	KeyringService = "PayAgent"

	// KeyringGeminiKeyItem is the key for the Gemini API key.
	KeyringGeminiKeyItem = "gemini-api-key"

	// KeyringOpenAIKeyItem is the key for the OpenAI API key.
	KeyringOpenAIKeyItem = "openai-api-key"
)

// KeyringManager handles secure credential storage in the OS keychain:
// macOS Keychain, Windows Credential Manager, Linux Secret Service.
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager.
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SetGeminiKey stores the Gemini API key in the OS keychain.
func (km *KeyringManager) SetGeminiKey(apiKey string) error {
	return km.set(KeyringGeminiKeyItem, apiKey)
}

// GetGeminiKey retrieves the Gemini API key from the OS keychain.
// A missing entry returns "", nil.
func (km *KeyringManager) GetGeminiKey() (string, error) {
	return km.get(KeyringGeminiKeyItem)
}

// SetOpenAIKey stores the OpenAI API key in the OS keychain.
func (km *KeyringManager) SetOpenAIKey(apiKey string) error {
	return km.set(KeyringOpenAIKeyItem, apiKey)
}

// GetOpenAIKey retrieves the OpenAI API key from the OS keychain.
func (km *KeyringManager) GetOpenAIKey() (string, error) {
	return km.get(KeyringOpenAIKeyItem)
}

// DeleteGeminiKey removes the Gemini API key from the OS keychain.
func (km *KeyringManager) DeleteGeminiKey() error {
	return km.delete(KeyringGeminiKeyItem)
}

// DeleteOpenAIKey removes the OpenAI API key from the OS keychain.
func (km *KeyringManager) DeleteOpenAIKey() error {
	return km.delete(KeyringOpenAIKeyItem)
}

func (km *KeyringManager) set(item, value string) error {
	if value == "" {
		return fmt.Errorf("credential cannot be empty")
	}
	if err := keyring.Set(KeyringService, item, value); err != nil {
		km.logger.Error("failed to save credential to keychain", "item", item, "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("credential saved to keychain", "service", KeyringService, "item", item)
	return nil
}

func (km *KeyringManager) get(item string) (string, error) {
	value, err := keyring.Get(KeyringService, item)
	if err == keyring.ErrNotFound {
		// Not an error - just not set yet
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to read credential from keychain", "item", item, "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	return value, nil
}

func (km *KeyringManager) delete(item string) error {
	err := keyring.Delete(KeyringService, item)
	if err == keyring.ErrNotFound {
		return nil
	}
	return err
}

// IsAvailable checks whether an OS keychain backend is usable. CI
// environments and headless Linux without libsecret are not.
func (km *KeyringManager) IsAvailable() bool {
	if os.Getenv("CI") != "" {
		return false
	}

	const probe = "availability-probe"
	if err := keyring.Set(KeyringService, probe, "ok"); err != nil {
		return false
	}
	keyring.Delete(KeyringService, probe)
	return true
}
