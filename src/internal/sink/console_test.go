// FILE: logward/src/internal/sink/console_test.go
package sink

import (
	"bytes"
	"context"
	"testing"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/redact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startConsole(t *testing.T, cfg ConsoleConfig, redactor *redact.Redactor) (*ConsoleSink, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if cfg.Colors == "" {
		cfg.Colors = "never"
	}
	s := NewConsoleSink(cfg, redactor, newTestLogger(), nil)

	var out, errOut bytes.Buffer
	s.SetWriters(&out, &errOut)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() {
		s.Stop()
		cancel()
	})
	return s, &out, &errOut
}

func flushSink(t *testing.T, s Sink) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Flush(ctx))
}

func TestConsoleSink_SeverityRouting(t *testing.T) {
	s, out, errOut := startConsole(t, ConsoleConfig{}, nil)

	entries := []struct {
		level core.Level
		name  string
	}{
		{core.FatalLevel, "FATAL"},
		{core.ErrorLevel, "ERROR"},
		{core.WarnLevel, "WARN"},
		{core.InfoLevel, "INFO"},
		{core.DebugLevel, "DEBUG"},
	}
	for _, e := range entries {
		require.True(t, s.Log(&core.LogEntry{
			Timestamp: "2025-06-01T12:00:00Z",
			Level:     e.level,
			LevelName: e.name,
			Message:   e.name + " line",
		}))
	}
	flushSink(t, s)

	stderr := errOut.String()
	stdout := out.String()

	assert.Contains(t, stderr, "FATAL line")
	assert.Contains(t, stderr, "ERROR line")
	assert.Contains(t, stderr, "WARN line")
	assert.NotContains(t, stderr, "INFO line")

	assert.Contains(t, stdout, "INFO line")
	assert.Contains(t, stdout, "DEBUG line")
	assert.NotContains(t, stdout, "ERROR line")
}

func TestConsoleSink_RedactionApplied(t *testing.T) {
	redactor, err := redact.New(&redact.Config{Keys: []string{"password"}}, newTestLogger())
	require.NoError(t, err)

	s, out, _ := startConsole(t, ConsoleConfig{}, redactor)

	require.True(t, s.Log(&core.LogEntry{
		Timestamp: "2025-06-01T12:00:00Z",
		Level:     core.InfoLevel,
		LevelName: "INFO",
		Message:   "login",
		Data:      map[string]any{"password": "hunter2", "user": "alice"},
	}))
	flushSink(t, s)

	text := out.String()
	assert.NotContains(t, text, "hunter2")
	assert.Contains(t, text, redact.DefaultReplacement)
	assert.Contains(t, text, "alice")
}

func TestConsoleSink_SetRedactorSwapsPolicy(t *testing.T) {
	s, out, _ := startConsole(t, ConsoleConfig{}, nil)

	require.True(t, s.Log(&core.LogEntry{
		Level: core.InfoLevel, LevelName: "INFO", Message: "before",
		Data: map[string]any{"secret": "visible"},
	}))
	flushSink(t, s)
	assert.Contains(t, out.String(), "visible")

	redactor, err := redact.New(&redact.Config{Keys: []string{"secret"}}, newTestLogger())
	require.NoError(t, err)
	s.SetRedactor(redactor)

	require.True(t, s.Log(&core.LogEntry{
		Level: core.InfoLevel, LevelName: "INFO", Message: "after",
		Data: map[string]any{"secret": "hidden"},
	}))
	flushSink(t, s)
	assert.NotContains(t, out.String(), "hidden")
}

func TestConsoleSink_FlushBarrierOrdersDeliveries(t *testing.T) {
	s, out, _ := startConsole(t, ConsoleConfig{}, nil)

	for i := 0; i < 100; i++ {
		require.True(t, s.Log(&core.LogEntry{
			Level: core.InfoLevel, LevelName: "INFO", Message: "bulk entry",
		}))
	}
	flushSink(t, s)

	assert.Equal(t, 100, bytes.Count(out.Bytes(), []byte("bulk entry")),
		"flush returns only after everything enqueued before it is written")
}

func TestConsoleSink_GetStats(t *testing.T) {
	s, _, _ := startConsole(t, ConsoleConfig{}, nil)

	require.True(t, s.Log(&core.LogEntry{Level: core.InfoLevel, LevelName: "INFO", Message: "x"}))
	flushSink(t, s)

	stats := s.GetStats()
	assert.Equal(t, "console", stats.Type)
	assert.EqualValues(t, 1, stats.TotalProcessed)
}
