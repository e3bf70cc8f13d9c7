package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Keychain lookups are disabled for every test in this file; CI and
// headless machines have no secret-service backend to probe.
func disableKeychain(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "true")
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "gemini", cfg.API.Provider)
	assert.True(t, cfg.Confirmation.Require)
	assert.Equal(t, "100", cfg.Confirmation.Threshold)
	assert.Equal(t, "USDC", cfg.Settlement.DefaultToken)
	assert.Empty(t, cfg.Settlement.Endpoint)
	assert.Equal(t, "bolt", cfg.History.Backend)
	assert.NotEmpty(t, cfg.History.Path)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	disableKeychain(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Confirmation.Threshold = "250"
	cfg.Confirmation.Require = false
	cfg.Settlement.DefaultToken = "EURC"
	cfg.History.Backend = "sqlite"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "250", loaded.Confirmation.Threshold)
	assert.False(t, loaded.Confirmation.Require)
	assert.Equal(t, "EURC", loaded.Settlement.DefaultToken)
	assert.Equal(t, "sqlite", loaded.History.Backend)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	disableKeychain(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))

	t.Setenv("PAYAGENT_CONFIRMATION_THRESHOLD", "42")
	t.Setenv("PAYAGENT_REQUIRE_CONFIRMATION", "false")
	t.Setenv("PAYAGENT_DEFAULT_TOKEN", "DAI")
	t.Setenv("PAYAGENT_HISTORY_BACKEND", "none")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "42", loaded.Confirmation.Threshold)
	assert.False(t, loaded.Confirmation.Require)
	assert.Equal(t, "DAI", loaded.Settlement.DefaultToken)
	assert.Equal(t, "none", loaded.History.Backend)
}
