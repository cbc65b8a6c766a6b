// FILE: logward/src/internal/format/json.go
package format

import (
	"encoding/json"

	"logward/src/internal/core"
	"logward/src/internal/normalize"

	"github.com/lixenwraith/log"
)

// JSONFormatter serializes entries verbatim as JSON objects, one per line.
type JSONFormatter struct {
	opts      Options
	logger    *log.Logger
	sanitizer *normalize.Normalizer
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(opts Options, logger *log.Logger) *JSONFormatter {
	return &JSONFormatter{
		opts:      opts,
		logger:    logger,
		sanitizer: normalize.New(normalize.Options{}),
	}
}

// Format marshals the entry directly, falling back through progressively
// more conservative strategies when residual non-serializable content
// slips through normalization.
func (f *JSONFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	out, err := json.Marshal(entry)
	if err == nil {
		return append(out, '\n'), nil
	}

	if f.logger != nil {
		f.logger.Debug("msg", "Direct entry serialization failed, re-sanitizing",
			"component", "json_formatter",
			"error", err)
	}

	// Second pass: force args and data back through the serializer.
	clone := *entry
	if len(entry.Args) > 0 {
		args := make([]any, len(entry.Args))
		for i, arg := range entry.Args {
			args[i] = f.sanitizer.Serialize(arg)
		}
		clone.Args = args
	}
	if entry.Data != nil {
		clone.Data, _ = f.sanitizer.Serialize(entry.Data).(map[string]any)
	}
	if out, err = json.Marshal(&clone); err == nil {
		return append(out, '\n'), nil
	}

	// Last resort: the minimal object that always marshals.
	out, _ = json.Marshal(map[string]any{
		"timestamp": entry.Timestamp,
		"level":     entry.Level,
		"levelName": entry.LevelName,
		"message":   entry.Message,
	})
	return append(out, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch renders a slice of entries as one JSON array. Entries that
// fail to format are skipped, not fatal to the batch.
func (f *JSONFormatter) FormatBatch(entries []*core.LogEntry) ([]byte, error) {
	batch := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		formatted, err := f.Format(entry)
		if err != nil {
			continue
		}
		if n := len(formatted); n > 0 && formatted[n-1] == '\n' {
			formatted = formatted[:n-1]
		}
		batch = append(batch, formatted)
	}
	return json.Marshal(batch)
}
