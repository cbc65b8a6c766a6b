// FILE: logward/src/internal/sink/file_test.go
package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"logward/src/internal/core"
	"logward/src/internal/redact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startFileSink(t *testing.T, cfg FileConfig, redactor *redact.Redactor) *FileSink {
	t.Helper()
	fs := NewFileSink(cfg, redactor, newTestLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, fs.Start(ctx))
	t.Cleanup(func() {
		fs.Stop()
		cancel()
	})
	return fs
}

func TestFileSink_WritesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := startFileSink(t, FileConfig{Path: path}, nil)

	require.True(t, fs.Log(&core.LogEntry{
		Timestamp: "2025-06-01T12:00:00Z",
		Level:     core.InfoLevel,
		LevelName: "INFO",
		Message:   "written to disk",
		Data:      map[string]any{"n": 1},
	}))
	flushSink(t, fs)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "written to disk")
	assert.Contains(t, string(content), "[INFO]")
}

func TestFileSink_RedactsForFileTarget(t *testing.T) {
	redactor, err := redact.New(&redact.Config{
		Keys:     []string{"token"},
		RedactIn: redact.ScopeFile,
	}, newTestLogger())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "app.log")
	fs := startFileSink(t, FileConfig{Path: path}, redactor)

	require.True(t, fs.Log(&core.LogEntry{
		Level:     core.InfoLevel,
		LevelName: "INFO",
		Message:   "auth",
		Data:      map[string]any{"token": "abc123"},
	}))
	flushSink(t, fs)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "abc123")
	assert.Contains(t, string(content), redact.DefaultReplacement)
}

func TestFileSink_AppendsAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	first := NewFileSink(FileConfig{Path: path}, nil, newTestLogger(), nil)
	require.NoError(t, first.Start(context.Background()))
	require.True(t, first.Log(&core.LogEntry{Level: core.InfoLevel, LevelName: "INFO", Message: "run one"}))
	flushSink(t, first)
	first.Stop()

	second := NewFileSink(FileConfig{Path: path}, nil, newTestLogger(), nil)
	require.NoError(t, second.Start(context.Background()))
	require.True(t, second.Log(&core.LogEntry{Level: core.InfoLevel, LevelName: "INFO", Message: "run two"}))
	flushSink(t, second)
	second.Stop()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "run one")
	assert.Contains(t, string(content), "run two")
}

func TestFileSink_GetStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	fs := startFileSink(t, FileConfig{Path: path, MaxSizeMB: 7}, nil)

	require.True(t, fs.Log(&core.LogEntry{Level: core.InfoLevel, LevelName: "INFO", Message: "x"}))
	flushSink(t, fs)

	stats := fs.GetStats()
	assert.Equal(t, "file", stats.Type)
	assert.EqualValues(t, 1, stats.TotalProcessed)
	assert.Equal(t, path, stats.Details["path"])
	assert.Equal(t, 7, stats.Details["max_size_mb"])
}
