// FILE: logward/src/internal/core/entry.go
package core

import (
	"strings"
	"time"
)

// LogEntry is the canonical normalized representation of one log call.
// It is immutable once built; redaction and formatting operate on copies.
type LogEntry struct {
	Timestamp      string         `json:"timestamp"`
	Level          Level          `json:"level"`
	LevelName      string         `json:"levelName"`
	Message        string         `json:"message"`
	Args           []any          `json:"args,omitempty"`
	HasComplexArgs bool           `json:"-"`
	Data           map[string]any `json:"data,omitempty"`
}

// Level is a severity ordinal. Lower is more severe, Silent suppresses
// everything.
type Level int

const (
	Silent Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// String returns the canonical upper-case level name.
func (l Level) String() string {
	switch l {
	case Silent:
		return "SILENT"
	case FatalLevel:
		return "FATAL"
	case ErrorLevel:
		return "ERROR"
	case WarnLevel:
		return "WARN"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a case-insensitive level name to its ordinal.
// Unknown names fall back to InfoLevel.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "SILENT", "OFF":
		return Silent
	case "FATAL":
		return FatalLevel
	case "ERROR":
		return ErrorLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "INFO":
		return InfoLevel
	case "DEBUG":
		return DebugLevel
	case "TRACE":
		return TraceLevel
	default:
		return InfoLevel
	}
}

// FormatTimestamp renders t in the entry timestamp format. Human-readable
// mode trades RFC3339 precision for a plain date-time.
func FormatTimestamp(t time.Time, humanReadable bool) string {
	if humanReadable {
		return t.Format("2006-01-02 15:04:05.000")
	}
	return t.Format(time.RFC3339Nano)
}
