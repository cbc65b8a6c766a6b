// FILE: logward/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

func defaults() *Config {
	return &Config{
		Level:  "info",
		Format: "text",
		Console: ConsoleTarget{
			Enabled:    true,
			BufferSize: 1000,
			Colors:     "auto",
		},
		File: FileTarget{
			BufferSize: 1000,
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Webhook: WebhookTarget{
			Username:        "logward",
			MaxBatchSize:    10,
			FlushIntervalMs: 2000,
			BufferSize:      1000,
			MaxRetries:      3,
			RetryDelayMs:    1000,
			RetryBackoff:    2.0,
			TimeoutMs:       10000,
		},
		Stream: StreamTarget{
			BufferSize:          1000,
			DialTimeoutMs:       5000,
			WriteTimeoutMs:      5000,
			AutoReconnect:       true,
			ReconnectDelayMs:    1000,
			MaxReconnectDelayMs: 30000,
			ReconnectBackoff:    1.5,
			FlushTimeoutMs:      5000,
		},
	}
}

// LoadWithCLI builds the configuration from CLI args, environment, the
// TOML file, and defaults, in that precedence order.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGWARD_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, finalConfig.Validate()
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGWARD_" + env
	return env
}

func GetConfigPath() string {
	if configFile := os.Getenv("LOGWARD_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGWARD_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGWARD_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logward.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logward.toml")
	}

	return "logward.toml"
}
