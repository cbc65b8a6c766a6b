// FILE: logward/src/internal/format/pretty.go
package format

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"logward/src/internal/core"

	"github.com/lixenwraith/log"
)

const defaultWrapWidth = 80

// PrettyFormatter produces labeled multi-line output with typed value tags
// and indentation proportional to nesting depth.
type PrettyFormatter struct {
	opts   Options
	logger *log.Logger
}

// NewPrettyFormatter creates a pretty formatter.
func NewPrettyFormatter(opts Options, logger *log.Logger) *PrettyFormatter {
	if opts.WrapWidth <= 0 {
		opts.WrapWidth = defaultWrapWidth
	}
	return &PrettyFormatter{opts: opts, logger: logger}
}

func (f *PrettyFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	var buf bytes.Buffer

	level := entry.LevelName
	if level == "" {
		level = entry.Level.String()
	}
	fmt.Fprintf(&buf, "[%s] %s\n", entry.Timestamp, level)

	for _, line := range wrapText(entry.Message, f.opts.WrapWidth) {
		buf.WriteString("  ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if len(entry.Data) > 0 {
		buf.WriteString("  Data:\n")
		f.writeMap(&buf, entry.Data, 2)
	}
	if len(entry.Args) > 0 {
		buf.WriteString("  Args:\n")
		for i, arg := range entry.Args {
			f.writeValue(&buf, fmt.Sprintf("%d", i), arg, 2)
		}
	}

	return buf.Bytes(), nil
}

func (f *PrettyFormatter) Name() string {
	return "pretty"
}

// writeMap renders keys in sorted order so output is stable.
func (f *PrettyFormatter) writeMap(buf *bytes.Buffer, m map[string]any, depth int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.writeValue(buf, k, m[k], depth)
	}
}

func (f *PrettyFormatter) writeValue(buf *bytes.Buffer, label string, v any, depth int) {
	indent := strings.Repeat("  ", depth)

	switch val := v.(type) {
	case nil:
		fmt.Fprintf(buf, "%s%s: [null]\n", indent, label)
	case string:
		if _, err := time.Parse(time.RFC3339Nano, val); err == nil {
			fmt.Fprintf(buf, "%s%s: [date] %s\n", indent, label, val)
			return
		}
		fmt.Fprintf(buf, "%s%s: [string] %q\n", indent, label, val)
	case bool:
		fmt.Fprintf(buf, "%s%s: [boolean] %v\n", indent, label, val)
	case map[string]any:
		if tag, ok := valueTag(val); ok {
			fmt.Fprintf(buf, "%s%s: %s\n", indent, label, tag)
			f.writeMap(buf, val, depth+1)
			return
		}
		fmt.Fprintf(buf, "%s%s: [object[%d]]\n", indent, label, len(val))
		f.writeMap(buf, val, depth+1)
	case []any:
		fmt.Fprintf(buf, "%s%s: [array[%d]]\n", indent, label, len(val))
		for i, elem := range val {
			f.writeValue(buf, fmt.Sprintf("%d", i), elem, depth+1)
		}
	default:
		fmt.Fprintf(buf, "%s%s: [%s] %v\n", indent, label, scalarTag(v), val)
	}
}

// valueTag recognizes serialized error maps so they render with an [error]
// tag rather than a generic object tag.
func valueTag(m map[string]any) (string, bool) {
	if core.IsErrorLike(m) {
		return "[error]", true
	}
	return "", false
}

func scalarTag(v any) string {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	default:
		return "value"
	}
}

// wrapText word-wraps s at the given column. Words longer than the column
// are kept intact on their own line.
func wrapText(s string, width int) []string {
	if s == "" {
		return nil
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{s}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(lines, current)
}
