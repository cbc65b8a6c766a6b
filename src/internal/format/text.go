// FILE: logward/src/internal/format/text.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"logward/src/internal/core"

	"github.com/lixenwraith/log"
)

// TextFormatter produces single-line human-readable output with optional
// ANSI coloring by level.
type TextFormatter struct {
	opts   Options
	logger *log.Logger
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(opts Options, logger *log.Logger) *TextFormatter {
	return &TextFormatter{opts: opts, logger: logger}
}

// Format renders one line: timestamp, level, message, inlined JSON of data
// and args.
func (f *TextFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(entry.Timestamp)
	buf.WriteByte(' ')

	level := entry.LevelName
	if level == "" {
		level = entry.Level.String()
	}
	if f.opts.UseColors {
		if color := levelColor(level, f.opts.CustomConsoleColors); color != "" {
			buf.WriteString(color)
			buf.WriteByte('[')
			buf.WriteString(level)
			buf.WriteByte(']')
			buf.WriteString(ansiReset)
		} else {
			buf.WriteByte('[')
			buf.WriteString(level)
			buf.WriteByte(']')
		}
	} else {
		buf.WriteByte('[')
		buf.WriteString(level)
		buf.WriteByte(']')
	}

	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		buf.WriteByte(' ')
		writeInlineJSON(&buf, entry.Data)
	}
	for _, arg := range entry.Args {
		buf.WriteByte(' ')
		writeInlineJSON(&buf, arg)
	}

	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Name returns the formatter's type name.
func (f *TextFormatter) Name() string {
	return "text"
}

// writeInlineJSON renders v compactly, falling back to fmt on values the
// JSON encoder rejects.
func writeInlineJSON(buf *bytes.Buffer, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(buf, "%v", v)
		return
	}
	buf.Write(out)
}
