// FILE: logward/src/internal/sink/stream.go
package sink

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/format"
	"logward/src/internal/redact"

	"github.com/lixenwraith/log"
)

// StreamConfig holds streaming sink configuration
type StreamConfig struct {
	Address string

	BufferSize   int
	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// Reconnection settings
	AutoReconnect     bool
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	ReconnectBackoff  float64

	// FlushTimeout bounds how long Flush waits for the connection to
	// open and the queue to drain.
	FlushTimeout time.Duration
}

// StreamSink forwards serialized entries to a remote endpoint over a
// persistent TCP connection. Entries are queued regardless of connection
// state and flushed FIFO once the connection opens; a send failure
// re-queues the frame at the front and stops the flush attempt, so no
// frame is lost or reordered.
type StreamSink struct {
	input     chan envelope
	config    StreamConfig
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter
	redactor  redactorRef

	mu      sync.Mutex
	conn    net.Conn
	pending [][]byte
	kick    chan struct{}

	// Statistics
	totalProcessed  atomic.Uint64
	totalSent       atomic.Uint64
	totalFailed     atomic.Uint64
	totalReconnects atomic.Uint64
	totalDropped    atomic.Uint64
	lastProcessed   atomic.Value // time.Time
	connected       atomic.Bool
}

// NewStreamSink creates a streaming TCP sink.
func NewStreamSink(cfg StreamConfig, redactor *redact.Redactor, logger *log.Logger, formatter format.Formatter) (*StreamSink, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("stream sink requires an address")
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return nil, fmt.Errorf("invalid address format (expected host:port): %w", err)
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = core.DefaultBufferSize
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.MaxReconnectDelay <= 0 {
		cfg.MaxReconnectDelay = 30 * time.Second
	}
	if cfg.ReconnectBackoff < 1.0 {
		cfg.ReconnectBackoff = 1.5
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}

	t := &StreamSink{
		input:     make(chan envelope, cfg.BufferSize),
		config:    cfg,
		done:      make(chan struct{}),
		kick:      make(chan struct{}, 1),
		startTime: time.Now(),
		logger:    logger,
	}
	t.redactor.set(redactor)
	t.lastProcessed.Store(time.Time{})

	if formatter == nil {
		formatter = format.NewJSONFormatter(format.Options{}, logger)
	}
	t.formatter = formatter

	return t, nil
}

// SetRedactor swaps the redaction policy.
func (t *StreamSink) SetRedactor(rd *redact.Redactor) {
	t.redactor.set(rd)
}

func (t *StreamSink) Log(entry *core.LogEntry) bool {
	select {
	case t.input <- envelope{entry: entry}:
		return true
	case <-t.done:
		t.totalDropped.Add(1)
		return false
	default:
		t.totalDropped.Add(1)
		return false
	}
}

func (t *StreamSink) Start(ctx context.Context) error {
	t.wg.Add(2)
	go t.processLoop(ctx)
	go t.connectionManager(ctx)

	t.logger.Debug("msg", "Stream sink started",
		"component", "stream_sink",
		"address", t.config.Address)
	return nil
}

// Flush waits for the queue ahead of it, then for the connection to open
// and the outbound queue to drain, bounded by the flush timeout. It never
// returns a delivery error; an unreachable endpoint just means the wait
// expires.
func (t *StreamSink) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	select {
	case t.input <- envelope{flushed: flushed}:
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := awaitFlush(ctx, flushed); err != nil {
		return err
	}

	deadline := time.NewTimer(t.config.FlushTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		t.mu.Lock()
		drained := len(t.pending) == 0
		t.mu.Unlock()
		if drained {
			return nil
		}
		select {
		case <-ticker.C:
		case <-deadline.C:
			return nil
		case <-t.done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *StreamSink) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		t.wg.Wait()

		t.mu.Lock()
		if t.conn != nil {
			_ = t.conn.Close()
			t.conn = nil
		}
		t.mu.Unlock()
	})
}

func (t *StreamSink) GetStats() SinkStats {
	lastProc, _ := t.lastProcessed.Load().(time.Time)

	t.mu.Lock()
	queued := len(t.pending)
	t.mu.Unlock()

	return SinkStats{
		Type:           "stream",
		TotalProcessed: t.totalProcessed.Load(),
		TotalDropped:   t.totalDropped.Load(),
		StartTime:      t.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"address":          t.config.Address,
			"connected":        t.connected.Load(),
			"queued_frames":    queued,
			"total_sent":       t.totalSent.Load(),
			"total_failed":     t.totalFailed.Load(),
			"total_reconnects": t.totalReconnects.Load(),
		},
	}
}

// processLoop serializes entries into frames and appends them to the
// outbound queue regardless of connection state.
func (t *StreamSink) processLoop(ctx context.Context) {
	defer t.wg.Done()

	for {
		select {
		case env := <-t.input:
			if env.entry == nil {
				if env.flushed != nil {
					close(env.flushed)
				}
				continue
			}
			t.enqueue(env.entry)

		case <-ctx.Done():
			return
		case <-t.done:
			return
		}
	}
}

func (t *StreamSink) enqueue(entry *core.LogEntry) {
	t.totalProcessed.Add(1)
	t.lastProcessed.Store(time.Now())

	if rd := t.redactor.get(); rd != nil {
		entry = rd.EntryForTarget(entry, redact.TargetFile)
	}
	frame := buildFrame(formatEntry(t.formatter, entry, t.logger))

	t.mu.Lock()
	if len(t.pending) >= t.config.BufferSize {
		t.mu.Unlock()
		t.totalDropped.Add(1)
		t.logger.Warn("msg", "Outbound queue full, dropping frame",
			"component", "stream_sink",
			"address", t.config.Address)
		return
	}
	t.pending = append(t.pending, frame)
	t.mu.Unlock()

	select {
	case t.kick <- struct{}{}:
	default:
	}
}

// buildFrame strips embedded newlines so each frame is one line on the
// wire.
func buildFrame(formatted []byte) []byte {
	trimmed := bytes.TrimRight(formatted, "\n")
	frame := bytes.ReplaceAll(trimmed, []byte{'\n'}, []byte{' '})
	return append(frame, '\n')
}

// connectionManager dials with exponential backoff, drains the queue
// while connected, and reconnects on failure when AutoReconnect is set.
func (t *StreamSink) connectionManager(ctx context.Context) {
	defer t.wg.Done()

	reconnectDelay := t.config.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		default:
		}

		conn, err := t.connect()
		if err != nil {
			t.logger.Warn("msg", "Failed to connect to stream endpoint",
				"component", "stream_sink",
				"address", t.config.Address,
				"error", err,
				"retry_delay", reconnectDelay)

			if !t.config.AutoReconnect {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-t.done:
				return
			case <-time.After(reconnectDelay):
			}

			// Exponential backoff
			reconnectDelay = time.Duration(float64(reconnectDelay) * t.config.ReconnectBackoff)
			if reconnectDelay > t.config.MaxReconnectDelay {
				reconnectDelay = t.config.MaxReconnectDelay
			}
			continue
		}

		// Connection open; reset backoff
		reconnectDelay = t.config.ReconnectDelay
		t.totalReconnects.Add(1)
		t.connected.Store(true)

		t.mu.Lock()
		t.conn = conn
		t.mu.Unlock()

		t.logger.Info("msg", "Connected to stream endpoint",
			"component", "stream_sink",
			"address", t.config.Address,
			"local_addr", conn.LocalAddr())

		t.writeLoop(ctx, conn)

		t.connected.Store(false)
		t.mu.Lock()
		t.conn = nil
		t.mu.Unlock()
		_ = conn.Close()

		if !t.config.AutoReconnect {
			return
		}
		t.logger.Warn("msg", "Lost connection to stream endpoint",
			"component", "stream_sink",
			"address", t.config.Address)
	}
}

func (t *StreamSink) connect() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.config.DialTimeout}
	return dialer.Dial("tcp", t.config.Address)
}

// writeLoop drains the outbound queue in FIFO order. A frame is popped
// only after it is written; on failure it stays at the front and the loop
// exits so the connection manager can reconnect.
func (t *StreamSink) writeLoop(ctx context.Context, conn net.Conn) {
	for {
		t.mu.Lock()
		if len(t.pending) == 0 {
			t.mu.Unlock()
			select {
			case <-t.kick:
				continue
			case <-ctx.Done():
				return
			case <-t.done:
				return
			}
		}
		frame := t.pending[0]
		t.mu.Unlock()

		if err := t.send(conn, frame); err != nil {
			t.totalFailed.Add(1)
			t.logger.Debug("msg", "Frame send failed, keeping at queue front",
				"component", "stream_sink",
				"error", err)
			return
		}

		t.mu.Lock()
		t.pending = t.pending[1:]
		t.mu.Unlock()
		t.totalSent.Add(1)
	}
}

func (t *StreamSink) send(conn net.Conn, frame []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	n, err := conn.Write(frame)
	if err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("partial write: %d/%d bytes", n, len(frame))
	}
	return nil
}
