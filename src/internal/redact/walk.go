// FILE: logward/src/internal/redact/walk.go
package redact

import (
	"logward/src/internal/core"
)

// RedactValue structurally clones v, replacing every matched key or value
// with the configured replacement. It recurses into arrays and plain
// records, leaves all other types untouched, and breaks cycles with a
// marker. The input is never mutated.
func (r *Redactor) RedactValue(v any) any {
	if !r.Enabled() {
		return v
	}
	seen := make(core.Visited)
	return r.redact(v, "", "", r.cfg.MaxDepth, seen)
}

// NeedsRedaction is a no-clone pre-check: it reports whether RedactValue
// would change v. It returns false immediately when no rules are
// configured and short-circuits on the first match otherwise.
func (r *Redactor) NeedsRedaction(v any) bool {
	if !r.Enabled() {
		return false
	}
	seen := make(core.Visited)
	return r.needs(v, "", "", r.cfg.MaxDepth, seen)
}

// EntryForTarget returns a redacted copy of the entry for the given
// delivery target. When the policy does not apply, or nothing in the entry
// matches, the original entry is returned unchanged. Returning the same
// pointer on a no-op is a contract callers rely on, not an optimization.
func (r *Redactor) EntryForTarget(e *core.LogEntry, target Target) *core.LogEntry {
	if e == nil || !r.Enabled() || !r.AppliesTo(target) {
		return e
	}

	redactMessage := r.cfg.RedactStrings && len(r.valueRegexes) > 0 &&
		!r.whitelisted(r.fold("message"), r.fold("message")) &&
		r.MatchesString(e.Message)

	if !redactMessage &&
		!r.NeedsRedaction(e.Data) &&
		!r.needsArgs(e.Args) {
		return e
	}

	clone := *e
	if redactMessage {
		clone.Message = r.RedactString(e.Message, "message", "message")
		r.audit("message")
	}
	if e.Data != nil {
		clone.Data, _ = r.RedactValue(e.Data).(map[string]any)
	}
	if len(e.Args) > 0 {
		args := make([]any, len(e.Args))
		for i, arg := range e.Args {
			args[i] = r.RedactValue(arg)
		}
		clone.Args = args
	}
	return &clone
}

func (r *Redactor) needsArgs(args []any) bool {
	for _, arg := range args {
		if r.NeedsRedaction(arg) {
			return true
		}
	}
	return false
}

func (r *Redactor) redact(v any, path, key string, depth int, seen core.Visited) any {
	if depth <= 0 {
		return v
	}

	switch val := v.(type) {
	case string:
		if !r.whitelisted(r.fold(path), r.fold(key)) && r.ShouldRedactValue(val) {
			r.audit(path)
			return r.replacement(val, key, path)
		}
		return val

	case map[string]any:
		release, ok := seen.Enter(val)
		if !ok {
			return CircularMarker
		}
		defer release()
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = r.redactProperty(child, childPath(path, k), k, depth-1, seen)
		}
		return out

	case []any:
		release, ok := seen.Enter(val)
		if !ok {
			return CircularMarker
		}
		defer release()
		out := make([]any, len(val))
		for i, elem := range val {
			// Elements inherit the array's path so key patterns keep
			// matching inside collections.
			out[i] = r.redactProperty(elem, path, key, depth-1, seen)
		}
		return out

	default:
		return v
	}
}

// redactProperty applies the key rules at one node and recurses. A panic
// while handling a single property copies that property unchanged instead
// of aborting the whole object.
func (r *Redactor) redactProperty(v any, path, key string, depth int, seen core.Visited) (out any) {
	defer func() {
		if recover() != nil {
			out = v
		}
	}()
	if r.ShouldRedactKey(path, key) {
		r.audit(path)
		return r.replacement(v, key, path)
	}
	return r.redact(v, path, key, depth, seen)
}

func (r *Redactor) needs(v any, path, key string, depth int, seen core.Visited) bool {
	if depth <= 0 {
		return false
	}

	switch val := v.(type) {
	case string:
		return !r.whitelisted(r.fold(path), r.fold(key)) && r.ShouldRedactValue(val)

	case map[string]any:
		release, ok := seen.Enter(val)
		if !ok {
			return false
		}
		defer release()
		for k, child := range val {
			p := childPath(path, k)
			if r.ShouldRedactKey(p, k) {
				return true
			}
			if r.needs(child, p, k, depth-1, seen) {
				return true
			}
		}
		return false

	case []any:
		release, ok := seen.Enter(val)
		if !ok {
			return false
		}
		defer release()
		for _, elem := range val {
			if r.needs(elem, path, key, depth-1, seen) {
				return true
			}
		}
		return false

	default:
		return false
	}
}
