// FILE: logward/src/internal/config/validation.go
package config

import (
	"fmt"
	"net"
	"strings"
)

var validLevels = map[string]struct{}{
	"silent": {},
	"off":    {},
	"fatal":  {},
	"error":  {},
	"warn":   {},
	"info":   {},
	"debug":  {},
	"trace":  {},
}

var validFormats = map[string]struct{}{
	"text":   {},
	"string": {},
	"json":   {},
	"pretty": {},
	"raw":    {},
}

var validColorModes = map[string]struct{}{
	"":       {},
	"auto":   {},
	"always": {},
	"never":  {},
}

// Validate rejects configurations that would fail at runtime.
func (c *Config) Validate() error {
	if _, ok := validLevels[strings.ToLower(c.Level)]; !ok {
		return fmt.Errorf("invalid level: %q", c.Level)
	}
	if _, ok := validFormats[c.Format]; !ok {
		return fmt.Errorf("invalid format: %q", c.Format)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative: %d", c.MaxDepth)
	}

	if _, ok := validColorModes[c.Console.Colors]; !ok {
		return fmt.Errorf("console colors must be 'auto', 'always', or 'never': %q", c.Console.Colors)
	}

	if c.File.Enabled {
		if c.File.Path == "" {
			return fmt.Errorf("file sink enabled without a path")
		}
		if strings.Contains(c.File.Path, "..") {
			return fmt.Errorf("file path contains directory traversal: %q", c.File.Path)
		}
		if c.File.MaxSizeMB < 1 {
			return fmt.Errorf("file max_size_mb must be positive: %d", c.File.MaxSizeMB)
		}
		if c.File.MaxBackups < 0 {
			return fmt.Errorf("file max_backups must not be negative: %d", c.File.MaxBackups)
		}
	}

	if c.Webhook.Enabled {
		if err := validateWebhookURL(c.Webhook.URL); err != nil {
			return err
		}
		if c.Webhook.MaxBatchSize < 1 {
			return fmt.Errorf("webhook max_batch_size must be positive: %d", c.Webhook.MaxBatchSize)
		}
		if c.Webhook.FlushIntervalMs < 1 {
			return fmt.Errorf("webhook flush_interval_ms must be positive: %d", c.Webhook.FlushIntervalMs)
		}
		if c.Webhook.MaxRetries < 0 {
			return fmt.Errorf("webhook max_retries must not be negative: %d", c.Webhook.MaxRetries)
		}
		if c.Webhook.RetryBackoff < 1 {
			return fmt.Errorf("webhook retry_backoff must be at least 1: %g", c.Webhook.RetryBackoff)
		}
	}
	if c.DiscordWebhookURL != "" {
		if err := validateWebhookURL(c.DiscordWebhookURL); err != nil {
			return err
		}
	}

	if c.Stream.Enabled {
		if _, _, err := net.SplitHostPort(c.Stream.Address); err != nil {
			return fmt.Errorf("invalid stream address %q: %w", c.Stream.Address, err)
		}
		if c.Stream.ReconnectBackoff < 1 {
			return fmt.Errorf("stream reconnect_backoff must be at least 1: %g", c.Stream.ReconnectBackoff)
		}
		if c.Stream.MaxReconnectDelayMs < c.Stream.ReconnectDelayMs {
			return fmt.Errorf("stream max_reconnect_delay_ms below reconnect_delay_ms")
		}
	}

	return nil
}

func validateWebhookURL(url string) error {
	if url == "" {
		return fmt.Errorf("webhook enabled without a url")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("webhook url must be http(s): %q", url)
	}
	return nil
}
