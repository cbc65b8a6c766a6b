// FILE: logward/src/internal/format/raw.go
package format

import (
	"logward/src/internal/core"

	"github.com/lixenwraith/log"
)

// RawFormatter passes the message through untouched, one line per entry.
// Used by the forwarder binary when entries should not be re-decorated.
type RawFormatter struct {
	logger *log.Logger
}

// NewRawFormatter creates a raw passthrough formatter.
func NewRawFormatter(opts Options, logger *log.Logger) *RawFormatter {
	return &RawFormatter{logger: logger}
}

func (f *RawFormatter) Format(entry *core.LogEntry) ([]byte, error) {
	out := []byte(entry.Message)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

func (f *RawFormatter) Name() string {
	return "raw"
}
