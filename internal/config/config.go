package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all configuration settings.
type Config struct {
	// API configuration for hosted model providers
	API APIConfig `yaml:"api"`

	// Confirmation gate settings
	Confirmation ConfirmationConfig `yaml:"confirmation"`

	// Settlement layer configuration
	Settlement SettlementConfig `yaml:"settlement"`

	// Local execution history
	History HistoryConfig `yaml:"history"`
}

type APIConfig struct {
	Provider          string `yaml:"provider"` // "gemini", "openai"
	GeminiKey         string `yaml:"gemini_key"`
	GeminiModel       string `yaml:"gemini_model"`
	OpenAIKey         string `yaml:"openai_key"`
	OpenAIModel       string `yaml:"openai_model"`
	UseKeychain       bool   `yaml:"use_keychain"` // prefer keychain over config file
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type ConfirmationConfig struct {
	// Require enables the confirmation gate for sensitive actions.
	Require bool `yaml:"require"`
	// Threshold is the decimal amount at or above which a sensitive
	// action is held for confirmation.
	Threshold string `yaml:"threshold"`
}

type SettlementConfig struct {
	// Endpoint of the settlement service; empty selects the in-memory
	// mock adapter.
	Endpoint string `yaml:"endpoint"`
	// DefaultToken is assumed when a command names no token.
	DefaultToken string `yaml:"default_token"`
}

type HistoryConfig struct {
	Backend string `yaml:"backend"` // "bolt", "sqlite", "none"
	Path    string `yaml:"path"`
}

// Default returns default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			Provider:          "gemini",
			GeminiModel:       "gemini-2.0-flash",
			OpenAIModel:       "gpt-4o-mini",
			RequestsPerMinute: 60,
		},
		Confirmation: ConfirmationConfig{
			Require:   true,
			Threshold: "100",
		},
		Settlement: SettlementConfig{
			DefaultToken: "USDC",
		},
		History: HistoryConfig{
			Backend: "bolt",
			Path:    filepath.Join(homeDir, ".payagent", "history.db"),
		},
	}
}

// Load loads configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("api", cfg.API)
	v.SetDefault("confirmation", cfg.Confirmation)
	v.SetDefault("settlement", cfg.Settlement)
	v.SetDefault("history", cfg.History)

	v.SetEnvPrefix("PAYAGENT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".payagent")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".payagent"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	// Decode against the yaml tags so file keys like default_token land
	// on their fields.
	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // local overrides (highest precedence)
		".env",       // main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".payagent", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config.
// Precedence for keys: 1. env var (highest) 2. keychain 3. config file.
func applyEnvOverrides(cfg *Config) {
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.API.Provider = provider
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.API.GeminiKey = key
	} else if cfg.API.GeminiKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if k, err := km.GetGeminiKey(); err == nil && k != "" {
				cfg.API.GeminiKey = k
			}
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.API.OpenAIKey = key
	} else if cfg.API.OpenAIKey == "" {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if k, err := km.GetOpenAIKey(); err == nil && k != "" {
				cfg.API.OpenAIKey = k
			}
		}
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.API.GeminiModel = model
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.API.OpenAIModel = model
	}
	if rpm := os.Getenv("PAYAGENT_REQUESTS_PER_MINUTE"); rpm != "" {
		if n, err := strconv.Atoi(rpm); err == nil {
			cfg.API.RequestsPerMinute = n
		}
	}

	if require := os.Getenv("PAYAGENT_REQUIRE_CONFIRMATION"); require != "" {
		cfg.Confirmation.Require = require == "true"
	}
	if threshold := os.Getenv("PAYAGENT_CONFIRMATION_THRESHOLD"); threshold != "" {
		cfg.Confirmation.Threshold = threshold
	}

	if endpoint := os.Getenv("SETTLEMENT_ENDPOINT"); endpoint != "" {
		cfg.Settlement.Endpoint = endpoint
	}
	if token := os.Getenv("PAYAGENT_DEFAULT_TOKEN"); token != "" {
		cfg.Settlement.DefaultToken = token
	}

	if backend := os.Getenv("PAYAGENT_HISTORY_BACKEND"); backend != "" {
		cfg.History.Backend = backend
	}
	if path := os.Getenv("PAYAGENT_HISTORY_PATH"); path != "" {
		cfg.History.Path = expandPath(path)
	}
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("api", c.API)
	v.Set("confirmation", c.Confirmation)
	v.Set("settlement", c.Settlement)
	v.Set("history", c.History)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
