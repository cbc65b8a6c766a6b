// FILE: logward/src/internal/dispatch/child.go
package dispatch

import (
	"context"

	"dario.cat/mergo"

	"logward/src/internal/core"
)

// ChildOptions configure a derived logger view.
type ChildOptions struct {
	// MessagePrefix is prepended to every emitted message, after any
	// prefixes inherited from ancestors.
	MessagePrefix string

	// DefaultData is merged underneath the call's own data; the call
	// site wins on key conflicts.
	DefaultData map[string]any
}

// ChildLogger is a lightweight view over a root Logger. It carries no
// delivery state of its own: composing children always binds to the
// same root, so emit cost stays constant regardless of nesting depth.
type ChildLogger struct {
	root        *Logger
	prefix      string
	defaultData map[string]any
}

// Child derives a view with a message prefix and default data.
func (l *Logger) Child(opts ChildOptions) *ChildLogger {
	return &ChildLogger{
		root:        l,
		prefix:      opts.MessagePrefix,
		defaultData: copyAnyMap(opts.DefaultData),
	}
}

// Child derives a further view. Prefixes compose parent-then-child and
// default data deep-merges with the child overriding the parent. The
// result is bound directly to the root, not to this child.
func (c *ChildLogger) Child(opts ChildOptions) *ChildLogger {
	merged := copyAnyMap(c.defaultData)
	if len(opts.DefaultData) > 0 {
		if merged == nil {
			merged = copyAnyMap(opts.DefaultData)
		} else if err := mergo.Merge(&merged, opts.DefaultData, mergo.WithOverride); err != nil {
			// Merge over plain maps cannot fail; fall back to replace.
			merged = copyAnyMap(opts.DefaultData)
		}
	}
	return &ChildLogger{
		root:        c.root,
		prefix:      prefixJoin(c.prefix, opts.MessagePrefix),
		defaultData: merged,
	}
}

func (c *ChildLogger) Fatal(msg string, args ...any) { c.Log(core.FatalLevel, msg, args...) }
func (c *ChildLogger) Error(msg string, args ...any) { c.Log(core.ErrorLevel, msg, args...) }
func (c *ChildLogger) Warn(msg string, args ...any)  { c.Log(core.WarnLevel, msg, args...) }
func (c *ChildLogger) Info(msg string, args ...any)  { c.Log(core.InfoLevel, msg, args...) }
func (c *ChildLogger) Debug(msg string, args ...any) { c.Log(core.DebugLevel, msg, args...) }
func (c *ChildLogger) Trace(msg string, args ...any) { c.Log(core.TraceLevel, msg, args...) }

// Log emits through the root with this view's prefix and default data
// applied. Default data rides as a leading record argument so that any
// record the call site supplies merges over it.
func (c *ChildLogger) Log(level core.Level, msg string, args ...any) {
	msg = prefixJoin(c.prefix, msg)
	if len(c.defaultData) > 0 {
		withDefaults := make([]any, 0, len(args)+1)
		withDefaults = append(withDefaults, copyAnyMap(c.defaultData))
		withDefaults = append(withDefaults, args...)
		args = withDefaults
	}
	c.root.Log(level, msg, args...)
}

// FlushAll delegates to the root.
func (c *ChildLogger) FlushAll(ctx context.Context) {
	c.root.FlushAll(ctx)
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
