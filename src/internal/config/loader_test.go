// FILE: logward/src/internal/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logward.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithCLI(t *testing.T) {
	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := writeConfigFile(t, `
level = "debug"
context = "[svc]"

[webhook]
enabled = true
url = "https://example.com/hook"
`)
		t.Setenv("LOGWARD_CONFIG_FILE", path)

		cfg, err := LoadWithCLI(nil)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Level)
		assert.Equal(t, "[svc]", cfg.Context)
		assert.True(t, cfg.Webhook.Enabled)
		assert.Equal(t, "https://example.com/hook", cfg.Webhook.URL)

		// Untouched keys keep their defaults.
		assert.Equal(t, "text", cfg.Format)
		assert.Equal(t, 10, cfg.Webhook.MaxBatchSize)
		assert.True(t, cfg.Console.Enabled)
	})

	t.Run("CLIOverridesFile", func(t *testing.T) {
		path := writeConfigFile(t, `level = "debug"`)
		t.Setenv("LOGWARD_CONFIG_FILE", path)

		cfg, err := LoadWithCLI([]string{"--level=warn"})
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Level)
	})

	t.Run("MissingFileFallsBackToDefaults", func(t *testing.T) {
		t.Setenv("LOGWARD_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

		cfg, err := LoadWithCLI(nil)
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.Level)
		assert.True(t, cfg.Console.Enabled)
	})

	t.Run("InvalidValuesRejected", func(t *testing.T) {
		path := writeConfigFile(t, `level = "loud"`)
		t.Setenv("LOGWARD_CONFIG_FILE", path)

		_, err := LoadWithCLI(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid level")
	})
}
