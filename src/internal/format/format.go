// FILE: logward/src/internal/format/format.go
package format

import (
	"fmt"

	"logward/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter transforms a LogEntry into a display byte slice.
type Formatter interface {
	// Format renders the entry. Implementations are pure; they never
	// mutate the entry.
	Format(entry *core.LogEntry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// Options holds display settings shared across formatter types.
type Options struct {
	// UseColors enables ANSI coloring by level (text formatter).
	UseColors bool

	// CustomConsoleColors overrides the per-level color table,
	// level name -> color name.
	CustomConsoleColors map[string]string

	// WrapWidth is the message word-wrap column for the pretty
	// formatter. Zero means the default.
	WrapWidth int
}

// New creates a Formatter based on the requested style.
func New(name string, opts Options, logger *log.Logger) (Formatter, error) {
	// Default to text if no format specified
	if name == "" {
		name = "text"
	}

	switch name {
	case "json":
		return NewJSONFormatter(opts, logger), nil
	case "text", "string":
		return NewTextFormatter(opts, logger), nil
	case "pretty":
		return NewPrettyFormatter(opts, logger), nil
	case "raw":
		return NewRawFormatter(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}

// Fallback renders an entry with the zero-option text formatter. Sinks use
// it when a configured formatter fails; it cannot itself fail.
func Fallback(entry *core.LogEntry) []byte {
	out, err := (&TextFormatter{}).Format(entry)
	if err != nil || len(out) == 0 {
		return []byte(fmt.Sprintf("%s [%s] %s\n", entry.Timestamp, entry.LevelName, entry.Message))
	}
	return out
}
