// FILE: logward/src/internal/dispatch/options.go
package dispatch

import (
	"dario.cat/mergo"

	"logward/src/internal/core"
	"logward/src/internal/redact"
)

// Options is the dispatcher's configuration surface.
type Options struct {
	// Level is the severity threshold; entries less severe than it are
	// dropped before any processing. Silent suppresses everything. Nil
	// keeps the current threshold (Info for a new dispatcher), which is
	// how an explicit Silent stays distinguishable from "not set".
	Level *core.Level

	// UseHumanReadableTime switches entry timestamps from RFC3339 to a
	// plain date-time rendering.
	UseHumanReadableTime bool

	// Format selects the display style for sinks that were not given an
	// explicit formatter: "string" (single line), "json", or "pretty".
	Format string

	// CustomConsoleColors overrides per-level colors, level name ->
	// color name.
	CustomConsoleColors map[string]string

	// Redaction is the policy applied by every sink, per target.
	Redaction *redact.Config

	// DiscordWebhookURL enables the side-channel webhook delivery for
	// entries flagged with a "discord" data field.
	DiscordWebhookURL string

	// Context is a message prefix applied to every emit.
	Context string

	// MaxDepth bounds argument serialization.
	MaxDepth int
}

// Hooks are the internal diagnostic callbacks. Downstream failures are
// reported here instead of being raised to log call sites.
type Hooks struct {
	OnError func(component string, err error)
	OnWarn  func(component, msg string)
	OnDebug func(component, msg string)
}

// merge overlays patch onto o: scalar fields are shallow-merged
// (zero values in patch leave o untouched), while CustomConsoleColors and
// Redaction are deep-merged.
func (o *Options) merge(patch Options) error {
	if patch.Level != nil {
		lvl := *patch.Level
		o.Level = &lvl
	}
	if patch.UseHumanReadableTime {
		o.UseHumanReadableTime = true
	}
	if patch.Format != "" {
		o.Format = patch.Format
	}
	if patch.DiscordWebhookURL != "" {
		o.DiscordWebhookURL = patch.DiscordWebhookURL
	}
	if patch.Context != "" {
		o.Context = patch.Context
	}
	if patch.MaxDepth != 0 {
		o.MaxDepth = patch.MaxDepth
	}

	if patch.CustomConsoleColors != nil {
		if o.CustomConsoleColors == nil {
			o.CustomConsoleColors = make(map[string]string, len(patch.CustomConsoleColors))
		} else {
			o.CustomConsoleColors = copyStringMap(o.CustomConsoleColors)
		}
		for k, v := range patch.CustomConsoleColors {
			o.CustomConsoleColors[k] = v
		}
	}

	if patch.Redaction != nil {
		if o.Redaction == nil {
			merged := *patch.Redaction
			o.Redaction = &merged
		} else {
			merged := *o.Redaction
			if err := mergo.Merge(&merged, *patch.Redaction, mergo.WithOverride); err != nil {
				return err
			}
			o.Redaction = &merged
		}
	}
	return nil
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func defaultOptions() Options {
	return Options{
		Level:  LevelOf(core.InfoLevel),
		Format: "string",
	}
}

// LevelOf wraps a level for use in Options.Level.
func LevelOf(l core.Level) *core.Level { return &l }

// threshold resolves the effective severity gate.
func (o Options) threshold() core.Level {
	if o.Level == nil {
		return core.InfoLevel
	}
	return *o.Level
}
