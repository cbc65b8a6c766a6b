// FILE: logward/src/internal/normalize/normalize.go
package normalize

import (
	"time"

	"logward/src/internal/core"
)

// Options controls entry normalization.
type Options struct {
	MaxDepth          int
	MaxCauseDepth     int
	HumanReadableTime bool

	// Now is the clock used for entry timestamps. Defaults to time.Now.
	Now func() time.Time
}

// SideChannel carries per-call routing hints extracted from arguments.
type SideChannel struct {
	// Discord is set when a record argument carried a truthy "discord"
	// field. The field itself is stripped from the persisted data.
	Discord bool
}

// Normalizer converts raw log call arguments into canonical entries.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer, filling in defaults for zero options.
func New(opts Options) *Normalizer {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = core.DefaultMaxDepth
	}
	if opts.MaxCauseDepth <= 0 {
		opts.MaxCauseDepth = core.DefaultMaxCauseDepth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Normalizer{opts: opts}
}

// Normalize builds a canonical entry from a log call. Record arguments are
// merged (shallow, later wins) into the entry data; everything else is kept
// as a positional argument in original relative order, defensively
// serialized. Serialization failures are isolated per argument and never
// escape this boundary.
func (n *Normalizer) Normalize(level core.Level, msg string, args ...any) (*core.LogEntry, SideChannel) {
	entry := &core.LogEntry{
		Timestamp: core.FormatTimestamp(n.opts.Now(), n.opts.HumanReadableTime),
		Level:     level,
		LevelName: level.String(),
		Message:   msg,
	}
	var side SideChannel

	for _, arg := range args {
		if arg == nil {
			continue
		}

		if core.IsRecord(arg) && !core.IsErrorLike(arg) {
			fields := n.serializeRecord(arg)
			if flag, ok := extractDiscordFlag(fields); ok {
				side.Discord = side.Discord || flag
			}
			if len(fields) > 0 {
				if entry.Data == nil {
					entry.Data = make(map[string]any, len(fields))
				}
				for k, v := range fields {
					entry.Data[k] = v
				}
			}
			continue
		}

		if !core.IsPrimitive(arg) {
			entry.HasComplexArgs = true
		}
		entry.Args = append(entry.Args, n.Serialize(arg))
	}

	return entry, side
}

// serializeRecord converts a record argument into a plain string-keyed map
// with serialized values.
func (n *Normalizer) serializeRecord(arg any) map[string]any {
	serialized := n.Serialize(arg)
	if m, ok := serialized.(map[string]any); ok {
		return m
	}
	// Serialization degraded the record to a marker; keep it visible.
	return map[string]any{"value": serialized}
}

// extractDiscordFlag pulls a boolean-ish "discord" field out of fields,
// removing it. Returns the flag value and whether the field was present.
func extractDiscordFlag(fields map[string]any) (bool, bool) {
	raw, ok := fields["discord"]
	if !ok {
		return false, false
	}
	delete(fields, "discord")
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		return v == "true" || v == "1", true
	default:
		return false, true
	}
}
