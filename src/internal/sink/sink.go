// FILE: logward/src/internal/sink/sink.go
package sink

import (
	"context"
	"sync/atomic"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/format"
	"logward/src/internal/redact"

	"github.com/lixenwraith/log"
)

// Sink represents an output destination for log entries. Each sink owns
// its delivery guarantees: queues, timers, retry counters, and connection
// handles are private to the instance.
type Sink interface {
	// Log enqueues an entry without blocking. It reports false when the
	// entry was dropped because the queue is full or the sink is stopped.
	Log(entry *core.LogEntry) bool

	// Start begins processing log entries
	Start(ctx context.Context) error

	// Flush completes all outstanding deliveries before returning. It
	// never returns an error caused by a downstream failure; those are
	// reported through the diagnostics logger.
	Flush(ctx context.Context) error

	// Stop shuts the sink down, cancelling pending timers and
	// reconnect attempts. Safe to call more than once.
	Stop()

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalProcessed uint64
	TotalDropped   uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}

// redactorRef holds a sink's redaction policy so the dispatcher can swap
// it while the process loop is running.
type redactorRef struct {
	p atomic.Pointer[redact.Redactor]
}

func (r *redactorRef) set(rd *redact.Redactor) {
	r.p.Store(rd)
}

func (r *redactorRef) get() *redact.Redactor {
	return r.p.Load()
}

// envelope is the unit flowing through a sink's input channel. A nil entry
// with a non-nil flushed channel is a flush barrier: the process loop
// completes everything enqueued before it, then closes the channel.
type envelope struct {
	entry   *core.LogEntry
	flushed chan struct{}
}

// formatEntry renders an entry, falling back to the default formatter when
// the configured one fails or panics. Formatter failure never propagates
// to the caller.
func formatEntry(f format.Formatter, entry *core.LogEntry, logger *log.Logger) (out []byte) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Warn("msg", "Formatter panicked, using fallback",
					"component", "sink",
					"formatter", f.Name(),
					"panic", r)
			}
			out = format.Fallback(entry)
		}
	}()

	if f == nil {
		return format.Fallback(entry)
	}
	formatted, err := f.Format(entry)
	if err != nil {
		if logger != nil {
			logger.Warn("msg", "Formatter failed, using fallback",
				"component", "sink",
				"formatter", f.Name(),
				"error", err)
		}
		return format.Fallback(entry)
	}
	return formatted
}

// awaitFlush blocks until the barrier closes or the context expires.
func awaitFlush(ctx context.Context, flushed chan struct{}) error {
	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
