// FILE: logward/src/internal/redact/config.go
package redact

// Target identifies the destination class an entry is being redacted for.
type Target string

const (
	TargetConsole Target = "console"
	TargetFile    Target = "file"
)

// Scope values for Config.RedactIn
const (
	ScopeConsole = "console"
	ScopeFile    = "file"
	ScopeBoth    = "both"
)

// DefaultReplacement is the sentinel written over matched values when no
// replacement is configured.
const DefaultReplacement = "[REDACTED]"

// CircularMarker is rendered at cycle re-entry points during redaction.
// Deliberately distinct from the replacement sentinel and from the
// serializer's circular marker.
const CircularMarker = "[Circular]"

// ReplaceFunc computes a replacement from the matched value, its key, and
// its dotted path. Used for value-dependent redaction such as partial
// masking.
type ReplaceFunc func(value any, key, path string) any

// Config is a redaction policy. The zero value redacts nothing.
type Config struct {
	// Literal key names to redact, matched against the bare key and the
	// full dotted path.
	Keys []string `toml:"keys"`

	// Glob patterns over dotted paths: '*' matches within one path
	// segment, '**' matches across segments.
	KeyPatterns []string `toml:"key_patterns"`

	// Regular expressions matched against keys and paths.
	KeyRegexes []string `toml:"key_regexes"`

	// Regular expressions matched against string values.
	ValuePatterns []string `toml:"value_patterns"`

	// Whitelist entries override any other match for the same key/path.
	Whitelist         []string `toml:"whitelist"`
	WhitelistPatterns []string `toml:"whitelist_patterns"`

	// Replacement literal; ReplaceFunc wins when both are set.
	Replacement string      `toml:"replacement"`
	ReplaceFunc ReplaceFunc `toml:"-"`

	// CaseSensitive disables the default case folding of keys and paths.
	CaseSensitive bool `toml:"case_sensitive"`

	// RedactStrings enables value-pattern redaction of the entry message.
	RedactStrings bool `toml:"redact_strings"`

	// Audit reports every redacted path through the diagnostics logger.
	Audit bool `toml:"audit"`

	// MaxDepth bounds traversal. Defaults to the serializer's depth cap.
	MaxDepth int `toml:"max_depth"`

	// RedactIn scopes the policy to console, file, or both (default).
	RedactIn string `toml:"redact_in"`
}

// Empty reports whether no rule of any kind is configured.
func (c *Config) Empty() bool {
	if c == nil {
		return true
	}
	return len(c.Keys) == 0 &&
		len(c.KeyPatterns) == 0 &&
		len(c.KeyRegexes) == 0 &&
		len(c.ValuePatterns) == 0
}
