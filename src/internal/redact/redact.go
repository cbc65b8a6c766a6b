// FILE: logward/src/internal/redact/redact.go
package redact

import (
	"fmt"
	"regexp"
	"strings"

	"logward/src/internal/core"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lixenwraith/log"
)

// Redactor applies a compiled redaction policy to entries and values.
// It never mutates its input; matched values are replaced in structural
// copies.
type Redactor struct {
	cfg Config

	keys              map[string]struct{}
	keyPatterns       []string
	keyRegexes        []*regexp.Regexp
	valueRegexes      []*regexp.Regexp
	whitelist         map[string]struct{}
	whitelistPatterns []string

	diag *log.Logger
}

// New compiles a redaction policy. Invalid regexes and glob patterns are
// rejected up front so matching never fails later.
func New(cfg *Config, diag *log.Logger) (*Redactor, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	r := &Redactor{
		cfg:       *cfg,
		keys:      make(map[string]struct{}, len(cfg.Keys)),
		whitelist: make(map[string]struct{}, len(cfg.Whitelist)),
		diag:      diag,
	}
	if r.cfg.MaxDepth <= 0 {
		r.cfg.MaxDepth = core.DefaultMaxDepth
	}
	if r.cfg.RedactIn == "" {
		r.cfg.RedactIn = ScopeBoth
	}

	for _, k := range cfg.Keys {
		r.keys[r.fold(k)] = struct{}{}
	}
	for _, w := range cfg.Whitelist {
		r.whitelist[r.fold(w)] = struct{}{}
	}
	for _, p := range cfg.KeyPatterns {
		glob := globPath(r.fold(p))
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid key pattern %q", p)
		}
		r.keyPatterns = append(r.keyPatterns, glob)
	}
	for _, p := range cfg.WhitelistPatterns {
		glob := globPath(r.fold(p))
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid whitelist pattern %q", p)
		}
		r.whitelistPatterns = append(r.whitelistPatterns, glob)
	}
	for i, expr := range cfg.KeyRegexes {
		re, err := r.compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid key regex[%d] %q: %w", i, expr, err)
		}
		r.keyRegexes = append(r.keyRegexes, re)
	}
	for i, expr := range cfg.ValuePatterns {
		re, err := r.compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid value pattern[%d] %q: %w", i, expr, err)
		}
		r.valueRegexes = append(r.valueRegexes, re)
	}
	return r, nil
}

// Enabled reports whether any rule is configured.
func (r *Redactor) Enabled() bool {
	if r == nil {
		return false
	}
	return len(r.keys) > 0 || len(r.keyPatterns) > 0 ||
		len(r.keyRegexes) > 0 || len(r.valueRegexes) > 0
}

// AppliesTo reports whether the policy scope covers the given target.
func (r *Redactor) AppliesTo(target Target) bool {
	switch r.cfg.RedactIn {
	case ScopeConsole:
		return target == TargetConsole
	case ScopeFile:
		return target == TargetFile
	default:
		return true
	}
}

// ShouldRedactKey reports whether the key at the given dotted path matches
// the policy. Whitelist entries override any other match.
func (r *Redactor) ShouldRedactKey(path, key string) bool {
	fk, fp := r.fold(key), r.fold(path)
	if r.whitelisted(fp, fk) {
		return false
	}
	if _, ok := r.keys[fk]; ok {
		return true
	}
	if _, ok := r.keys[fp]; ok {
		return true
	}
	slashPath := globPath(fp)
	for _, pattern := range r.keyPatterns {
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, fk); ok {
			return true
		}
	}
	for _, re := range r.keyRegexes {
		if re.MatchString(key) || re.MatchString(path) {
			return true
		}
	}
	return false
}

// ShouldRedactValue reports whether v is a string matching a value pattern.
func (r *Redactor) ShouldRedactValue(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	for _, re := range r.valueRegexes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// MatchesString reports whether a value pattern matches s.
func (r *Redactor) MatchesString(s string) bool {
	return r.ShouldRedactValue(s)
}

// RedactString rewrites the matched portions of s.
func (r *Redactor) RedactString(s, key, path string) string {
	if r.cfg.ReplaceFunc != nil {
		if out, ok := r.cfg.ReplaceFunc(s, key, path).(string); ok {
			return out
		}
	}
	replacement := r.replacementLiteral()
	for _, re := range r.valueRegexes {
		s = re.ReplaceAllString(s, replacement)
	}
	return s
}

func (r *Redactor) whitelisted(foldedPath, foldedKey string) bool {
	if _, ok := r.whitelist[foldedKey]; ok {
		return true
	}
	if _, ok := r.whitelist[foldedPath]; ok {
		return true
	}
	slashPath := globPath(foldedPath)
	for _, pattern := range r.whitelistPatterns {
		if ok, _ := doublestar.Match(pattern, slashPath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, foldedKey); ok {
			return true
		}
	}
	return false
}

func (r *Redactor) replacement(value any, key, path string) any {
	if r.cfg.ReplaceFunc != nil {
		return r.cfg.ReplaceFunc(value, key, path)
	}
	return r.replacementLiteral()
}

func (r *Redactor) replacementLiteral() string {
	if r.cfg.Replacement != "" {
		return r.cfg.Replacement
	}
	return DefaultReplacement
}

func (r *Redactor) audit(path string) {
	if r.cfg.Audit && r.diag != nil {
		r.diag.Info("msg", "Redacted field",
			"component", "redactor",
			"path", path)
	}
}

func (r *Redactor) fold(s string) string {
	if r.cfg.CaseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// compile builds a regex, injecting case folding unless the policy is
// case sensitive.
func (r *Redactor) compile(expr string) (*regexp.Regexp, error) {
	if !r.cfg.CaseSensitive && !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// globPath rewrites a dotted path for doublestar, which segments on '/'.
func globPath(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "/")
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
