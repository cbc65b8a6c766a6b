// FILE: logward/src/internal/sink/console.go
package sink

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/format"
	"logward/src/internal/redact"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// ConsoleConfig holds console sink configuration
type ConsoleConfig struct {
	BufferSize int

	// Colors is "auto", "always", or "never". Auto enables color only
	// when the output stream is a terminal.
	Colors       string
	CustomColors map[string]string
}

// ConsoleSink writes formatted entries to severity-mapped output streams:
// FATAL/ERROR/WARN to stderr, everything else to stdout.
type ConsoleSink struct {
	input     chan envelope
	config    ConsoleConfig
	out       io.Writer
	errOut    io.Writer
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter
	redactor  redactorRef

	// Statistics
	totalProcessed atomic.Uint64
	totalDropped   atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewConsoleSink creates a console sink writing to stdout/stderr.
func NewConsoleSink(cfg ConsoleConfig, redactor *redact.Redactor, logger *log.Logger, formatter format.Formatter) *ConsoleSink {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = core.DefaultBufferSize
	}

	s := &ConsoleSink{
		input:     make(chan envelope, cfg.BufferSize),
		config:    cfg,
		out:       os.Stdout,
		errOut:    os.Stderr,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
	s.redactor.set(redactor)
	s.lastProcessed.Store(time.Time{})

	if formatter == nil {
		formatter = format.NewTextFormatter(format.Options{
			UseColors:           s.useColors(),
			CustomConsoleColors: cfg.CustomColors,
		}, logger)
	}
	s.formatter = formatter

	return s
}

// SetWriters replaces the output streams. Used by tests and by callers
// that capture output.
func (s *ConsoleSink) SetWriters(out, errOut io.Writer) {
	s.out = out
	s.errOut = errOut
}

// SetRedactor swaps the redaction policy.
func (s *ConsoleSink) SetRedactor(rd *redact.Redactor) {
	s.redactor.set(rd)
}

func (s *ConsoleSink) useColors() bool {
	switch s.config.Colors {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

func (s *ConsoleSink) Log(entry *core.LogEntry) bool {
	select {
	case s.input <- envelope{entry: entry}:
		return true
	case <-s.done:
		s.totalDropped.Add(1)
		return false
	default:
		s.totalDropped.Add(1)
		return false
	}
}

func (s *ConsoleSink) Start(ctx context.Context) error {
	s.wg.Add(1)
	go s.processLoop(ctx)
	s.logger.Debug("msg", "Console sink started", "component", "console_sink")
	return nil
}

func (s *ConsoleSink) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	select {
	case s.input <- envelope{flushed: flushed}:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	return awaitFlush(ctx, flushed)
}

func (s *ConsoleSink) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "console",
		TotalProcessed: s.totalProcessed.Load(),
		TotalDropped:   s.totalDropped.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"colors": s.config.Colors,
		},
	}
}

func (s *ConsoleSink) processLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case env := <-s.input:
			if env.entry == nil {
				if env.flushed != nil {
					close(env.flushed)
				}
				continue
			}
			s.write(env.entry)

		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *ConsoleSink) write(entry *core.LogEntry) {
	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())

	if rd := s.redactor.get(); rd != nil {
		entry = rd.EntryForTarget(entry, redact.TargetConsole)
	}

	formatted := formatEntry(s.formatter, entry, s.logger)

	switch entry.Level {
	case core.FatalLevel, core.ErrorLevel, core.WarnLevel:
		s.errOut.Write(formatted)
	default:
		s.out.Write(formatted)
	}
}
