// FILE: logward/src/internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Console.Enabled)
	assert.False(t, cfg.File.Enabled)
	assert.False(t, cfg.Webhook.Enabled)
	assert.False(t, cfg.Stream.Enabled)
}

func TestValidate(t *testing.T) {
	valid := func(mutate func(c *Config)) *Config {
		c := defaults()
		if mutate != nil {
			mutate(c)
		}
		return c
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{"Defaults", valid(nil), ""},
		{"UppercaseLevel", valid(func(c *Config) { c.Level = "WARN" }), ""},
		{"SilentAlias", valid(func(c *Config) { c.Level = "off" }), ""},
		{"UnknownLevel", valid(func(c *Config) { c.Level = "verbose" }), "invalid level"},
		{"UnknownFormat", valid(func(c *Config) { c.Format = "xml" }), "invalid format"},
		{"NegativeMaxDepth", valid(func(c *Config) { c.MaxDepth = -1 }), "max_depth"},
		{"BadColorMode", valid(func(c *Config) { c.Console.Colors = "rainbow" }), "console colors"},

		{"FileWithoutPath", valid(func(c *Config) { c.File.Enabled = true }), "without a path"},
		{"FileTraversal", valid(func(c *Config) {
			c.File.Enabled = true
			c.File.Path = "../etc/app.log"
		}), "traversal"},
		{"FileZeroSize", valid(func(c *Config) {
			c.File.Enabled = true
			c.File.Path = "/var/log/app.log"
			c.File.MaxSizeMB = 0
		}), "max_size_mb"},
		{"FileValid", valid(func(c *Config) {
			c.File.Enabled = true
			c.File.Path = "/var/log/app.log"
		}), ""},

		{"WebhookWithoutURL", valid(func(c *Config) { c.Webhook.Enabled = true }), "without a url"},
		{"WebhookNonHTTP", valid(func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "ftp://example.com/hook"
		}), "http(s)"},
		{"WebhookZeroBatch", valid(func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "https://example.com/hook"
			c.Webhook.MaxBatchSize = 0
		}), "max_batch_size"},
		{"WebhookLowBackoff", valid(func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "https://example.com/hook"
			c.Webhook.RetryBackoff = 0.5
		}), "retry_backoff"},
		{"WebhookValid", valid(func(c *Config) {
			c.Webhook.Enabled = true
			c.Webhook.URL = "https://example.com/hook"
		}), ""},
		{"DiscordURLChecked", valid(func(c *Config) {
			c.DiscordWebhookURL = "not-a-url"
		}), "http(s)"},

		{"StreamBadAddress", valid(func(c *Config) {
			c.Stream.Enabled = true
			c.Stream.Address = "no-port"
		}), "stream address"},
		{"StreamLowBackoff", valid(func(c *Config) {
			c.Stream.Enabled = true
			c.Stream.Address = "localhost:6000"
			c.Stream.ReconnectBackoff = 0.9
		}), "reconnect_backoff"},
		{"StreamDelayCeilingBelowFloor", valid(func(c *Config) {
			c.Stream.Enabled = true
			c.Stream.Address = "localhost:6000"
			c.Stream.MaxReconnectDelayMs = 500
		}), "max_reconnect_delay_ms"},
		{"StreamValid", valid(func(c *Config) {
			c.Stream.Enabled = true
			c.Stream.Address = "localhost:6000"
		}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("ExplicitAbsoluteFile", func(t *testing.T) {
		t.Setenv("LOGWARD_CONFIG_FILE", "/etc/logward/custom.toml")
		t.Setenv("LOGWARD_CONFIG_DIR", "/ignored")
		assert.Equal(t, "/etc/logward/custom.toml", GetConfigPath())
	})

	t.Run("RelativeFileJoinedWithDir", func(t *testing.T) {
		t.Setenv("LOGWARD_CONFIG_FILE", "custom.toml")
		t.Setenv("LOGWARD_CONFIG_DIR", "/etc/logward")
		assert.Equal(t, filepath.Join("/etc/logward", "custom.toml"), GetConfigPath())
	})

	t.Run("DirOnly", func(t *testing.T) {
		t.Setenv("LOGWARD_CONFIG_FILE", "")
		t.Setenv("LOGWARD_CONFIG_DIR", "/etc/logward")
		assert.Equal(t, filepath.Join("/etc/logward", "logward.toml"), GetConfigPath())
	})
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "LOGWARD_WEBHOOK_URL", customEnvTransform("webhook.url"))
	assert.Equal(t, "LOGWARD_LEVEL", customEnvTransform("level"))
	assert.Equal(t, "LOGWARD_STREAM_RECONNECT_DELAY_MS", customEnvTransform("stream.reconnect_delay_ms"))
}
