// FILE: logward/src/internal/dispatch/logger.go
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"logward/src/internal/core"
	"logward/src/internal/normalize"
	"logward/src/internal/redact"
	"logward/src/internal/sink"

	"github.com/lixenwraith/log"
)

// redactable is implemented by sinks whose redaction policy can be
// swapped after construction.
type redactable interface {
	SetRedactor(*redact.Redactor)
}

// Logger is the dispatcher: it owns the configuration, normalizes every
// log call into an entry, applies the level gate, and fans the entry out
// to all configured sinks. One sink's failure never blocks another and
// never reaches the call site.
type Logger struct {
	mu       sync.RWMutex
	opts     Options
	defaults Options
	sinks    []sink.Sink

	normalizer *normalize.Normalizer
	redactor   *redact.Redactor

	// Discord side-channel: a process-wide webhook instance keyed by
	// URL, created lazily and replaced only when the URL changes.
	webhook    *sink.WebhookSink
	webhookURL string

	diag  *log.Logger
	hooks Hooks

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates a dispatcher. diag receives the library's own diagnostics;
// nil gets a default logger.
func New(opts Options, diag *log.Logger) (*Logger, error) {
	if diag == nil {
		diag = log.NewLogger()
	}
	base := defaultOptions()
	if err := base.merge(opts); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Logger{
		opts:     base,
		defaults: base,
		diag:     diag,
		ctx:      ctx,
		cancel:   cancel,
	}
	l.hooks = defaultHooks(diag)
	if err := l.rebuild(); err != nil {
		cancel()
		return nil, err
	}
	return l, nil
}

func defaultHooks(diag *log.Logger) Hooks {
	return Hooks{
		OnError: func(component string, err error) {
			diag.Error("msg", "Internal error", "component", component, "error", err)
		},
		OnWarn: func(component, msg string) {
			diag.Warn("msg", msg, "component", component)
		},
		OnDebug: func(component, msg string) {
			diag.Debug("msg", msg, "component", component)
		},
	}
}

// SetHooks replaces the internal diagnostic callbacks. Nil fields keep
// their defaults.
func (l *Logger) SetHooks(h Hooks) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h.OnError != nil {
		l.hooks.OnError = h.OnError
	}
	if h.OnWarn != nil {
		l.hooks.OnWarn = h.OnWarn
	}
	if h.OnDebug != nil {
		l.hooks.OnDebug = h.OnDebug
	}
}

// rebuild recompiles the derived state (normalizer, redactor) from the
// current options and pushes the new redactor into every sink. Callers
// hold the write lock or exclusive access.
func (l *Logger) rebuild() error {
	redactor, err := redact.New(l.opts.Redaction, l.diag)
	if err != nil {
		return fmt.Errorf("invalid redaction config: %w", err)
	}
	l.redactor = redactor
	l.normalizer = normalize.New(normalize.Options{
		MaxDepth:          l.opts.MaxDepth,
		HumanReadableTime: l.opts.UseHumanReadableTime,
	})
	for _, s := range l.sinks {
		if r, ok := s.(redactable); ok {
			r.SetRedactor(redactor)
		}
	}
	if l.webhook != nil {
		l.webhook.SetRedactor(redactor)
	}
	return nil
}

// Redactor returns the compiled redaction policy, for wiring sinks
// constructed outside the dispatcher.
func (l *Logger) Redactor() *redact.Redactor {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.redactor
}

// Options returns a snapshot of the current options.
func (l *Logger) Options() Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opts
}

// SetOptions shallow-merges patch into the current options, deep-merging
// CustomConsoleColors and Redaction.
func (l *Logger) SetOptions(patch Options) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.opts.merge(patch); err != nil {
		return err
	}
	return l.rebuild()
}

// ResetOptions restores the options the dispatcher was created with.
func (l *Logger) ResetOptions() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opts = l.defaults
	if err := l.rebuild(); err != nil {
		l.hooks.OnError("dispatcher", err)
	}
}

// AddSink starts the sink and adds it to the fan-out list.
func (l *Logger) AddSink(s sink.Sink) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("logger is closed")
	}
	if r, ok := s.(redactable); ok {
		r.SetRedactor(l.redactor)
	}
	if err := s.Start(l.ctx); err != nil {
		return err
	}
	l.sinks = append(l.sinks, s)
	return nil
}

// RemoveSink stops the sink and removes it from the fan-out list.
func (l *Logger) RemoveSink(s sink.Sink) {
	l.mu.Lock()
	for i, existing := range l.sinks {
		if existing == s {
			l.sinks = append(l.sinks[:i], l.sinks[i+1:]...)
			break
		}
	}
	l.mu.Unlock()
	s.Stop()
}

// ClearSinks stops and removes every sink.
func (l *Logger) ClearSinks() {
	l.mu.Lock()
	sinks := l.sinks
	l.sinks = nil
	l.mu.Unlock()
	for _, s := range sinks {
		s.Stop()
	}
}

// SetSinks replaces the sink list. The input slice is defensively copied;
// replaced sinks are stopped.
func (l *Logger) SetSinks(sinks []sink.Sink) error {
	replacement := make([]sink.Sink, len(sinks))
	copy(replacement, sinks)

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return fmt.Errorf("logger is closed")
	}
	old := l.sinks
	for _, s := range replacement {
		if r, ok := s.(redactable); ok {
			r.SetRedactor(l.redactor)
		}
		if err := s.Start(l.ctx); err != nil {
			l.mu.Unlock()
			return err
		}
	}
	l.sinks = replacement
	l.mu.Unlock()

	for _, s := range old {
		s.Stop()
	}
	return nil
}

// Sinks returns a snapshot of the fan-out list.
func (l *Logger) Sinks() []sink.Sink {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]sink.Sink, len(l.sinks))
	copy(out, l.sinks)
	return out
}

// Emit methods, one per severity.

func (l *Logger) Fatal(msg string, args ...any) { l.Log(core.FatalLevel, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.Log(core.ErrorLevel, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.Log(core.WarnLevel, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.Log(core.InfoLevel, msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.Log(core.DebugLevel, msg, args...) }
func (l *Logger) Trace(msg string, args ...any) { l.Log(core.TraceLevel, msg, args...) }

// Log normalizes one call and fans the entry out to every sink. It never
// fails: downstream problems are reported through the hooks.
func (l *Logger) Log(level core.Level, msg string, args ...any) {
	l.mu.RLock()
	opts := l.opts
	sinks := l.sinks
	normalizer := l.normalizer
	hooks := l.hooks
	closed := l.closed
	l.mu.RUnlock()

	threshold := opts.threshold()
	if closed || level == core.Silent || threshold == core.Silent || level > threshold {
		return
	}

	if opts.Context != "" {
		msg = opts.Context + " " + msg
	}
	entry, side := normalizer.Normalize(level, msg, args...)

	for _, s := range sinks {
		l.deliver(s, entry, hooks)
	}

	if side.Discord {
		if wh := l.discordSink(); wh != nil {
			l.deliver(wh, entry, hooks)
		}
	}
}

// deliver isolates one sink: a panic or a full queue is reported, never
// raised.
func (l *Logger) deliver(s sink.Sink, entry *core.LogEntry, hooks Hooks) {
	defer func() {
		if r := recover(); r != nil {
			hooks.OnError("dispatcher", fmt.Errorf("sink panic: %v", r))
		}
	}()
	if !s.Log(entry) {
		hooks.OnWarn("dispatcher", "Entry dropped: sink queue full")
	}
}

// discordSink returns the process-wide webhook instance for the
// configured URL, creating or replacing it as needed.
func (l *Logger) discordSink() *sink.WebhookSink {
	l.mu.Lock()
	defer l.mu.Unlock()

	url := l.opts.DiscordWebhookURL
	if url == "" || l.closed {
		return nil
	}
	if l.webhook != nil && l.webhookURL == url {
		return l.webhook
	}
	if l.webhook != nil {
		l.webhook.Stop()
		l.webhook = nil
	}

	wh, err := sink.NewWebhookSink(sink.WebhookConfig{URL: url}, l.redactor, l.diag, nil)
	if err != nil {
		l.hooks.OnError("dispatcher", fmt.Errorf("failed to create webhook sink: %w", err))
		return nil
	}
	if err := wh.Start(l.ctx); err != nil {
		l.hooks.OnError("dispatcher", fmt.Errorf("failed to start webhook sink: %w", err))
		return nil
	}
	l.webhook = wh
	l.webhookURL = url
	return wh
}

// FlushAll waits for every sink's outstanding work. Each sink is flushed
// independently; one slow or broken sink neither blocks nor fails the
// others, and failures surface only through the hooks. It always returns
// after best effort.
func (l *Logger) FlushAll(ctx context.Context) {
	l.mu.RLock()
	sinks := make([]sink.Sink, len(l.sinks))
	copy(sinks, l.sinks)
	if l.webhook != nil {
		sinks = append(sinks, l.webhook)
	}
	hooks := l.hooks
	l.mu.RUnlock()

	var wg sync.WaitGroup
	for _, s := range sinks {
		wg.Add(1)
		go func(s sink.Sink) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					hooks.OnError("dispatcher", fmt.Errorf("flush panic: %v", r))
				}
			}()
			if err := s.Flush(ctx); err != nil {
				hooks.OnError("dispatcher", fmt.Errorf("flush failed: %w", err))
			}
		}(s)
	}
	wg.Wait()
}

// Close flushes and stops every sink, including the webhook singleton,
// and cancels all pending timers and reconnect attempts.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	sinks := l.sinks
	l.sinks = nil
	webhook := l.webhook
	l.webhook = nil
	l.mu.Unlock()

	for _, s := range sinks {
		s.Stop()
	}
	if webhook != nil {
		webhook.Stop()
	}
	l.cancel()
}

// prefixJoin composes message prefixes parent-first, skipping empties.
func prefixJoin(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}
