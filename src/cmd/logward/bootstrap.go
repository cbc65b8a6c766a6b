// FILE: logward/src/cmd/logward/bootstrap.go
package main

import (
	"fmt"
	"time"

	"logward/src/internal/config"
	"logward/src/internal/core"
	"logward/src/internal/dispatch"
	"logward/src/internal/format"
	"logward/src/internal/sink"

	"github.com/lixenwraith/log"
)

// initializeDiag sets up the library's own diagnostics logger on stderr.
func initializeDiag() error {
	logger = log.NewLogger()
	if err := logger.ApplyConfigString(
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
		fmt.Sprintf("level=%d", int(log.LevelWarn)),
	); err != nil {
		return err
	}
	return logger.Start()
}

// buildDispatcher assembles the dispatcher and its sinks from the
// loaded configuration.
func buildDispatcher(cfg *config.Config) (*dispatch.Logger, error) {
	disp, err := dispatch.New(dispatch.Options{
		Level:                dispatch.LevelOf(core.ParseLevel(cfg.Level)),
		UseHumanReadableTime: cfg.HumanReadableTime,
		Format:               cfg.Format,
		CustomConsoleColors:  cfg.Console.CustomColors,
		Redaction:            &cfg.Redaction,
		DiscordWebhookURL:    cfg.DiscordWebhookURL,
		Context:              cfg.Context,
		MaxDepth:             cfg.MaxDepth,
	}, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Console.Enabled {
		formatter, err := format.New(cfg.Format, format.Options{
			UseColors:           cfg.Console.Colors != "never",
			CustomConsoleColors: cfg.Console.CustomColors,
		}, logger)
		if err != nil {
			disp.Close()
			return nil, err
		}
		cs := sink.NewConsoleSink(sink.ConsoleConfig{
			BufferSize:   cfg.Console.BufferSize,
			Colors:       cfg.Console.Colors,
			CustomColors: cfg.Console.CustomColors,
		}, disp.Redactor(), logger, formatter)
		if err := disp.AddSink(cs); err != nil {
			disp.Close()
			return nil, err
		}
	}

	if cfg.File.Enabled {
		formatter, err := format.New(cfg.Format, format.Options{}, logger)
		if err != nil {
			disp.Close()
			return nil, err
		}
		fs := sink.NewFileSink(sink.FileConfig{
			Path:        cfg.File.Path,
			BufferSize:  cfg.File.BufferSize,
			MaxSizeMB:   cfg.File.MaxSizeMB,
			MaxBackups:  cfg.File.MaxBackups,
			Compress:    cfg.File.Compress,
			DailyRotate: cfg.File.DailyRotate,
		}, disp.Redactor(), logger, formatter)
		if err := disp.AddSink(fs); err != nil {
			disp.Close()
			return nil, err
		}
	}

	if cfg.Webhook.Enabled {
		ws, err := sink.NewWebhookSink(sink.WebhookConfig{
			URL:           cfg.Webhook.URL,
			Username:      cfg.Webhook.Username,
			MaxBatchSize:  cfg.Webhook.MaxBatchSize,
			FlushInterval: time.Duration(cfg.Webhook.FlushIntervalMs) * time.Millisecond,
			BufferSize:    cfg.Webhook.BufferSize,
			MaxRetries:    cfg.Webhook.MaxRetries,
			RetryDelay:    time.Duration(cfg.Webhook.RetryDelayMs) * time.Millisecond,
			RetryBackoff:  cfg.Webhook.RetryBackoff,
			Timeout:       time.Duration(cfg.Webhook.TimeoutMs) * time.Millisecond,
			RateLimit:     cfg.Webhook.RateLimit,
			ContentLimit:  cfg.Webhook.ContentLimit,
		}, disp.Redactor(), logger, nil)
		if err != nil {
			disp.Close()
			return nil, err
		}
		if err := disp.AddSink(ws); err != nil {
			disp.Close()
			return nil, err
		}
	}

	if cfg.Stream.Enabled {
		ss, err := sink.NewStreamSink(sink.StreamConfig{
			Address:           cfg.Stream.Address,
			BufferSize:        cfg.Stream.BufferSize,
			DialTimeout:       time.Duration(cfg.Stream.DialTimeoutMs) * time.Millisecond,
			WriteTimeout:      time.Duration(cfg.Stream.WriteTimeoutMs) * time.Millisecond,
			AutoReconnect:     cfg.Stream.AutoReconnect,
			ReconnectDelay:    time.Duration(cfg.Stream.ReconnectDelayMs) * time.Millisecond,
			MaxReconnectDelay: time.Duration(cfg.Stream.MaxReconnectDelayMs) * time.Millisecond,
			ReconnectBackoff:  cfg.Stream.ReconnectBackoff,
			FlushTimeout:      time.Duration(cfg.Stream.FlushTimeoutMs) * time.Millisecond,
		}, disp.Redactor(), logger, nil)
		if err != nil {
			disp.Close()
			return nil, err
		}
		if err := disp.AddSink(ss); err != nil {
			disp.Close()
			return nil, err
		}
	}

	if len(disp.Sinks()) == 0 {
		disp.Close()
		return nil, fmt.Errorf("no sinks enabled")
	}

	return disp, nil
}
