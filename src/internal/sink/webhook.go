// FILE: logward/src/internal/sink/webhook.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"logward/src/internal/core"
	"logward/src/internal/format"
	"logward/src/internal/redact"
	"logward/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// WebhookConfig holds webhook sink configuration
type WebhookConfig struct {
	URL      string
	Username string

	// Batching
	MaxBatchSize  int
	FlushInterval time.Duration
	BufferSize    int

	// Retry policy for non-rate-limit failures
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff float64

	// Network
	Timeout time.Duration

	// RateLimit paces sends, messages per second. Zero disables pacing.
	RateLimit float64

	// ContentLimit caps one message's content. Defaults to the Discord
	// hard limit.
	ContentLimit int
}

// httpDoer is the slice of fasthttp.Client the sink needs. Tests
// substitute a stub.
type httpDoer interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}

// pendingBatch is a group of formatted chunks awaiting delivery or a
// backoff deadline.
type pendingBatch struct {
	chunks   []string
	entries  int
	attempts int
	readyAt  time.Time
}

// WebhookSink batches entries and POSTs them to a chat-webhook URL.
// Delivery is at-least-once up to the retry ceiling: rate-limit responses
// retry the same batch after the server-specified delay, other transient
// failures park the batch in a retry queue with exponential backoff, and
// batches that exhaust the ceiling are dropped with a report, never
// silently and never retried forever.
type WebhookSink struct {
	input     chan envelope
	config    WebhookConfig
	client    httpDoer
	limiter   *rate.Limiter
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	startTime time.Time
	logger    *log.Logger
	formatter format.Formatter
	redactor  redactorRef

	// Loop-owned state; only processLoop touches these.
	queue      []*core.LogEntry
	retryQueue []*pendingBatch

	// Statistics
	totalProcessed atomic.Uint64
	totalSends     atomic.Uint64
	totalAttempts  atomic.Uint64
	failedBatches  atomic.Uint64
	totalDropped   atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewWebhookSink creates a webhook sink.
func NewWebhookSink(cfg WebhookConfig, redactor *redact.Redactor, logger *log.Logger, formatter format.Formatter) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook sink requires a URL")
	}
	if cfg.Username == "" {
		cfg.Username = "logward"
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 10
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = core.DefaultBufferSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RetryBackoff < 1.0 {
		cfg.RetryBackoff = 2.0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ContentLimit <= 0 {
		cfg.ContentLimit = core.WebhookContentLimit
	}

	w := &WebhookSink{
		input:     make(chan envelope, cfg.BufferSize),
		config:    cfg,
		done:      make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
	w.redactor.set(redactor)
	w.lastProcessed.Store(time.Time{})

	w.client = &fasthttp.Client{
		MaxConnsPerHost:     4,
		MaxIdleConnDuration: 10 * time.Second,
		ReadTimeout:         cfg.Timeout,
		WriteTimeout:        cfg.Timeout,
	}
	if cfg.RateLimit > 0 {
		w.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	if formatter == nil {
		formatter = format.NewTextFormatter(format.Options{}, logger)
	}
	w.formatter = formatter

	return w, nil
}

// SetClient replaces the HTTP client. Used by tests.
func (w *WebhookSink) SetClient(client httpDoer) {
	w.client = client
}

// SetRedactor swaps the redaction policy.
func (w *WebhookSink) SetRedactor(rd *redact.Redactor) {
	w.redactor.set(rd)
}

func (w *WebhookSink) Log(entry *core.LogEntry) bool {
	select {
	case w.input <- envelope{entry: entry}:
		return true
	case <-w.done:
		w.totalDropped.Add(1)
		return false
	default:
		w.totalDropped.Add(1)
		return false
	}
}

func (w *WebhookSink) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processLoop(ctx)
	w.logger.Debug("msg", "Webhook sink started",
		"component", "webhook_sink",
		"url", w.config.URL,
		"max_batch_size", w.config.MaxBatchSize,
		"flush_interval", w.config.FlushInterval)
	return nil
}

// Flush forces delivery of everything queued, including batches still
// waiting out a backoff deadline. Concurrent flushes are serialized by the
// process loop, so overlapping calls coalesce onto the same drain.
func (w *WebhookSink) Flush(ctx context.Context) error {
	flushed := make(chan struct{})
	select {
	case w.input <- envelope{flushed: flushed}:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	return awaitFlush(ctx, flushed)
}

func (w *WebhookSink) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.wg.Wait()
	})
}

func (w *WebhookSink) GetStats() SinkStats {
	lastProc, _ := w.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "webhook",
		TotalProcessed: w.totalProcessed.Load(),
		TotalDropped:   w.totalDropped.Load(),
		StartTime:      w.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"url":            w.config.URL,
			"max_batch_size": w.config.MaxBatchSize,
			"total_sends":    w.totalSends.Load(),
			"total_attempts": w.totalAttempts.Load(),
			"failed_batches": w.failedBatches.Load(),
		},
	}
}

// Attempts returns the number of HTTP attempts made so far.
func (w *WebhookSink) Attempts() uint64 {
	return w.totalAttempts.Load()
}

func (w *WebhookSink) processLoop(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.config.FlushInterval)
	stopTimer(timer)
	defer stopTimer(timer)

	for {
		select {
		case env := <-w.input:
			if env.entry == nil {
				w.flush(ctx, true)
				w.armFlushTimer(timer)
				if env.flushed != nil {
					close(env.flushed)
				}
				continue
			}

			w.accept(env.entry)

			// First enqueue after idle arms the delayed flush
			if len(w.queue) == 1 {
				w.armFlushTimer(timer)
			}
			if len(w.queue) >= w.config.MaxBatchSize {
				w.flush(ctx, false)
				w.armFlushTimer(timer)
			}

		case <-timer.C:
			w.flush(ctx, false)
			w.armFlushTimer(timer)

		case <-ctx.Done():
			w.shutdownFlush()
			return
		case <-w.done:
			w.shutdownFlush()
			return
		}
	}
}

func (w *WebhookSink) accept(entry *core.LogEntry) {
	if rd := w.redactor.get(); rd != nil {
		entry = rd.EntryForTarget(entry, redact.TargetConsole)
	}
	w.totalProcessed.Add(1)
	w.lastProcessed.Store(time.Now())
	w.queue = append(w.queue, entry)
}

// armFlushTimer schedules the next flush tick: the batch interval when
// entries are queued, or the nearest parked-batch deadline, whichever
// comes first. With nothing pending the timer stays stopped. Keeping the
// timer armed while retryQueue is non-empty is what lets a parked batch
// retry without fresh traffic.
func (w *WebhookSink) armFlushTimer(timer *time.Timer) {
	var delay time.Duration = -1
	if len(w.queue) > 0 {
		delay = w.config.FlushInterval
	}
	now := time.Now()
	for _, pb := range w.retryQueue {
		d := pb.readyAt.Sub(now)
		if d < time.Millisecond {
			d = time.Millisecond
		}
		if delay < 0 || d < delay {
			delay = d
		}
	}
	stopTimer(timer)
	if delay >= 0 {
		timer.Reset(delay)
	}
}

// shutdownFlush drains whatever is still sitting in the input channel,
// then forces a final delivery attempt for everything queued.
func (w *WebhookSink) shutdownFlush() {
	for {
		select {
		case env := <-w.input:
			if env.entry == nil {
				if env.flushed != nil {
					close(env.flushed)
				}
				continue
			}
			w.accept(env.entry)
		default:
			w.flush(context.Background(), true)
			return
		}
	}
}

// flush retries expired parked batches, then drains the queue in bounded
// batches. forced ignores backoff deadlines.
func (w *WebhookSink) flush(ctx context.Context, forced bool) {
	now := time.Now()
	var stillWaiting []*pendingBatch
	for _, pb := range w.retryQueue {
		if !forced && now.Before(pb.readyAt) {
			stillWaiting = append(stillWaiting, pb)
			continue
		}
		if requeued := w.sendBatch(ctx, pb); requeued != nil {
			stillWaiting = append(stillWaiting, requeued)
		}
	}
	w.retryQueue = stillWaiting

	for len(w.queue) > 0 {
		n := w.config.MaxBatchSize
		if n > len(w.queue) {
			n = len(w.queue)
		}
		batch := w.queue[:n]
		w.queue = w.queue[n:]

		pb := &pendingBatch{
			chunks:  w.buildChunks(batch),
			entries: len(batch),
		}
		if requeued := w.sendBatch(ctx, pb); requeued != nil {
			w.retryQueue = append(w.retryQueue, requeued)
		}
	}
	if len(w.queue) == 0 {
		w.queue = nil
	}
}

// buildChunks formats each entry and concatenates lines until the next one
// would exceed the content cap. A single oversize line is truncated with
// an ellipsis.
func (w *WebhookSink) buildChunks(batch []*core.LogEntry) []string {
	limit := w.config.ContentLimit
	var chunks []string
	var current string

	for _, entry := range batch {
		line := string(formatEntry(w.formatter, entry, w.logger))
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		line = truncateWithEllipsis(line, limit)

		switch {
		case current == "":
			current = line
		case len(current)+1+len(line) > limit:
			chunks = append(chunks, current)
			current = line
		default:
			current += "\n" + line
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// sendBatch delivers a batch's chunks sequentially. It returns the batch
// when it should be parked for a later retry, nil when it has been
// delivered or dropped.
func (w *WebhookSink) sendBatch(ctx context.Context, pb *pendingBatch) *pendingBatch {
	for {
		pb.attempts++
		w.totalAttempts.Add(1)

		sent, status, retryAfter, err := w.postChunks(ctx, pb.chunks)
		pb.chunks = pb.chunks[sent:]

		if err == nil && len(pb.chunks) == 0 {
			w.totalSends.Add(1)
			w.logger.Debug("msg", "Batch sent",
				"component", "webhook_sink",
				"entries", pb.entries,
				"attempt", pb.attempts)
			return nil
		}

		// Client errors other than rate limiting are not retryable
		if status >= 400 && status < 500 && status != fasthttp.StatusTooManyRequests {
			w.failedBatches.Add(1)
			w.logger.Error("msg", "Batch rejected by webhook",
				"component", "webhook_sink",
				"status_code", status,
				"entries", pb.entries)
			return nil
		}

		if pb.attempts > w.config.MaxRetries {
			w.failedBatches.Add(1)
			w.logger.Error("msg", "Dropping batch after retry ceiling",
				"component", "webhook_sink",
				"entries", pb.entries,
				"attempts", pb.attempts,
				"last_error", err)
			return nil
		}

		if status == fasthttp.StatusTooManyRequests {
			// Rate limited: wait what the server asked for, then retry
			// the same batch inline.
			w.logger.Warn("msg", "Webhook rate limited",
				"component", "webhook_sink",
				"retry_after", retryAfter,
				"attempt", pb.attempts)
			if !w.sleep(ctx, retryAfter) {
				return pb
			}
			continue
		}

		// Transient failure: park with an exponential backoff deadline,
		// retried on a later flush tick.
		delay := backoffDelay(w.config.RetryDelay, w.config.RetryBackoff, pb.attempts)
		pb.readyAt = time.Now().Add(delay)
		w.logger.Warn("msg", "Webhook send failed, batch parked for retry",
			"component", "webhook_sink",
			"attempt", pb.attempts,
			"retry_in", delay,
			"error", err)
		return pb
	}
}

// postChunks sends chunks in order, stopping at the first failure. It
// returns how many chunks were delivered plus the failing status code,
// any rate-limit delay, and the transport error.
func (w *WebhookSink) postChunks(ctx context.Context, chunks []string) (sent int, status int, retryAfter time.Duration, err error) {
	for _, chunk := range chunks {
		if w.limiter != nil {
			if err = w.limiter.Wait(ctx); err != nil {
				return sent, 0, 0, err
			}
		}
		status, retryAfter, err = w.postChunk(chunk)
		if err != nil || status < 200 || status >= 300 {
			if err == nil {
				err = fmt.Errorf("webhook returned status %d", status)
			}
			return sent, status, retryAfter, err
		}
		sent++
	}
	return sent, status, 0, nil
}

func (w *WebhookSink) postChunk(content string) (status int, retryAfter time.Duration, err error) {
	body, err := json.Marshal(webhookPayload{
		Content:         content,
		Username:        w.config.Username,
		AllowedMentions: allowedMentions{Parse: []string{}},
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	req.SetRequestURI(w.config.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.SetUserAgent(version.UserAgent())
	req.SetBody(body)

	err = w.client.DoTimeout(req, resp, w.config.Timeout)
	status = resp.StatusCode()
	if status == fasthttp.StatusTooManyRequests {
		retryAfter = parseRetryAfter(resp)
	}

	fasthttp.ReleaseRequest(req)
	fasthttp.ReleaseResponse(resp)

	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	return status, retryAfter, nil
}

// sleep waits unless the sink is stopped first.
func (w *WebhookSink) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-w.done:
		return false
	}
}

type webhookPayload struct {
	Content         string          `json:"content"`
	Username        string          `json:"username"`
	AllowedMentions allowedMentions `json:"allowed_mentions"`
}

type allowedMentions struct {
	Parse []string `json:"parse"`
}

// parseRetryAfter extracts the rate-limit delay from a 429 response: the
// JSON retry_after field, then the Retry-After header, floored at one
// second when missing or invalid.
func parseRetryAfter(resp *fasthttp.Response) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.RetryAfter > 0 {
		return clampRetryAfter(payload.RetryAfter)
	}
	if header := resp.Header.Peek("Retry-After"); len(header) > 0 {
		if secs, err := strconv.ParseFloat(string(header), 64); err == nil && secs > 0 {
			return clampRetryAfter(secs)
		}
	}
	return time.Second
}

func clampRetryAfter(seconds float64) time.Duration {
	if seconds < 1 {
		return time.Second
	}
	return time.Duration(seconds * float64(time.Second))
}

func backoffDelay(base time.Duration, factor float64, attempts int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(factor, float64(attempts-1)))
	if d < base || d > time.Minute {
		return time.Minute
	}
	return d
}

// truncateWithEllipsis caps s at limit runes, ending with an ellipsis
// marker when truncated.
func truncateWithEllipsis(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
