// FILE: logward/src/internal/config/config.go
package config

import (
	"logward/src/internal/redact"
)

// Config is the root of the TOML configuration.
type Config struct {
	// Level is the severity threshold: "silent", "fatal", "error",
	// "warn", "info", "debug", or "trace".
	Level string `toml:"level"`

	// Format selects the default rendering: "text", "json", "pretty",
	// or "raw".
	Format string `toml:"format"`

	// HumanReadableTime switches timestamps from RFC3339 to a plain
	// date-time rendering.
	HumanReadableTime bool `toml:"human_readable_time"`

	// Context is a message prefix applied to every entry.
	Context string `toml:"context"`

	// MaxDepth bounds argument serialization depth.
	MaxDepth int `toml:"max_depth"`

	// DiscordWebhookURL enables the side-channel delivery for entries
	// flagged with a "discord" field.
	DiscordWebhookURL string `toml:"discord_webhook_url"`

	Redaction redact.Config `toml:"redaction"`

	Console ConsoleTarget `toml:"console"`
	File    FileTarget    `toml:"file"`
	Webhook WebhookTarget `toml:"webhook"`
	Stream  StreamTarget  `toml:"stream"`
}

type ConsoleTarget struct {
	Enabled    bool   `toml:"enabled"`
	BufferSize int    `toml:"buffer_size"`
	Colors     string `toml:"colors"` // "auto", "always", "never"

	// CustomColors overrides per-level colors, level name -> color name.
	CustomColors map[string]string `toml:"custom_colors"`
}

type FileTarget struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	BufferSize  int    `toml:"buffer_size"`
	MaxSizeMB   int    `toml:"max_size_mb"`
	MaxBackups  int    `toml:"max_backups"`
	Compress    bool   `toml:"compress"`
	DailyRotate bool   `toml:"daily_rotate"`
}

type WebhookTarget struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Username string `toml:"username"`

	MaxBatchSize    int   `toml:"max_batch_size"`
	FlushIntervalMs int64 `toml:"flush_interval_ms"`
	BufferSize      int   `toml:"buffer_size"`

	MaxRetries   int     `toml:"max_retries"`
	RetryDelayMs int64   `toml:"retry_delay_ms"`
	RetryBackoff float64 `toml:"retry_backoff"`

	TimeoutMs    int64   `toml:"timeout_ms"`
	RateLimit    float64 `toml:"rate_limit"`
	ContentLimit int     `toml:"content_limit"`
}

type StreamTarget struct {
	Enabled    bool   `toml:"enabled"`
	Address    string `toml:"address"`
	BufferSize int    `toml:"buffer_size"`

	DialTimeoutMs  int64 `toml:"dial_timeout_ms"`
	WriteTimeoutMs int64 `toml:"write_timeout_ms"`

	AutoReconnect       bool    `toml:"auto_reconnect"`
	ReconnectDelayMs    int64   `toml:"reconnect_delay_ms"`
	MaxReconnectDelayMs int64   `toml:"max_reconnect_delay_ms"`
	ReconnectBackoff    float64 `toml:"reconnect_backoff"`

	FlushTimeoutMs int64 `toml:"flush_timeout_ms"`
}
