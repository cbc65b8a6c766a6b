// FILE: logward/src/cmd/logward/flags.go
package main

import (
	"flag"
	"fmt"
	"os"

	"logward/src/internal/config"
)

// Command-line flags
var (
	configFile  = flag.String("config", "", "Config file path")
	showVersion = flag.Bool("version", false, "Show version information")
	level       = flag.String("level", "", "Severity threshold: silent, fatal, error, warn, info, debug, trace (overrides config)")
	formatName  = flag.String("format", "", "Output format: text, json, pretty, raw (overrides config)")
	filePath    = flag.String("file", "", "Log file path (enables the file sink)")
	webhookURL  = flag.String("webhook", "", "Webhook URL (enables the webhook sink)")
	streamAddr  = flag.String("stream", "", "TCP stream address host:port (enables the stream sink)")
)

func init() {
	flag.Usage = customUsage
}

// applyFlagOverrides lets explicit CLI flags win over the loaded config.
func applyFlagOverrides(cfg *config.Config) {
	if *level != "" {
		cfg.Level = *level
	}
	if *formatName != "" {
		cfg.Format = *formatName
	}
	if *filePath != "" {
		cfg.File.Enabled = true
		cfg.File.Path = *filePath
	}
	if *webhookURL != "" {
		cfg.Webhook.Enabled = true
		cfg.Webhook.URL = *webhookURL
	}
	if *streamAddr != "" {
		cfg.Stream.Enabled = true
		cfg.Stream.Address = *streamAddr
	}
}

func customUsage() {
	fmt.Fprintf(os.Stderr, "Logward - Structured Log Dispatcher\n\n")
	fmt.Fprintf(os.Stderr, "Reads lines from stdin and dispatches them as structured log entries\n")
	fmt.Fprintf(os.Stderr, "to the configured sinks.\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(os.Stderr, "  -version\n\tShow version information\n")
	fmt.Fprintf(os.Stderr, "  -level string\n\tSeverity threshold: silent, fatal, error, warn, info, debug, trace\n")
	fmt.Fprintf(os.Stderr, "  -format string\n\tOutput format: text, json, pretty, raw\n")
	fmt.Fprintf(os.Stderr, "  -file string\n\tLog file path (enables the file sink)\n")
	fmt.Fprintf(os.Stderr, "  -webhook string\n\tWebhook URL (enables the webhook sink)\n")
	fmt.Fprintf(os.Stderr, "  -stream string\n\tTCP stream address host:port (enables the stream sink)\n")

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Forward stdin to the console with pretty formatting\n")
	fmt.Fprintf(os.Stderr, "  tail -f app.log | %s --format pretty\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Mirror everything to a rotating file\n")
	fmt.Fprintf(os.Stderr, "  %s --file /var/log/logward/app.log\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGWARD_CONFIG_FILE  Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGWARD_CONFIG_DIR   Config directory\n")
}
