// FILE: logward/src/internal/sink/webhook_test.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"logward/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// stubResponse describes one canned HTTP response.
type stubResponse struct {
	status int
	body   string
	err    error
}

// stubDoer replays canned responses in order, repeating the last one, and
// records every request body.
type stubDoer struct {
	mu        sync.Mutex
	responses []stubResponse
	requests  []string
}

func (s *stubDoer) DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, string(req.Body()))

	r := stubResponse{status: fasthttp.StatusOK}
	if len(s.responses) > 0 {
		r = s.responses[0]
		if len(s.responses) > 1 {
			s.responses = s.responses[1:]
		}
	}
	if r.err != nil {
		return r.err
	}
	resp.SetStatusCode(r.status)
	resp.SetBodyString(r.body)
	return nil
}

func (s *stubDoer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubDoer) contents(t *testing.T) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, body := range s.requests {
		var payload struct {
			Content string `json:"content"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &payload))
		out = append(out, payload.Content)
	}
	return out
}

func makeEntry(msg string) *core.LogEntry {
	return &core.LogEntry{
		Timestamp: "2025-06-01T12:00:00Z",
		Level:     core.ErrorLevel,
		LevelName: "ERROR",
		Message:   msg,
	}
}

func newTestWebhook(t *testing.T, cfg WebhookConfig, stub *stubDoer) *WebhookSink {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "https://example.com/webhook"
	}
	w, err := NewWebhookSink(cfg, nil, newTestLogger(), nil)
	require.NoError(t, err)
	w.SetClient(stub)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	t.Cleanup(func() {
		w.Stop()
		cancel()
	})
	return w
}

func TestWebhookSink_RequiresURL(t *testing.T) {
	_, err := NewWebhookSink(WebhookConfig{}, nil, newTestLogger(), nil)
	assert.Error(t, err)
}

func TestWebhookSink_BatchSplitting(t *testing.T) {
	stub := &stubDoer{}
	w := newTestWebhook(t, WebhookConfig{
		MaxBatchSize:  10,
		FlushInterval: time.Hour, // timer must not fire during the test
	}, stub)

	for i := 0; i < 12; i++ {
		require.True(t, w.Log(makeEntry(fmt.Sprintf("entry %02d", i))))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))

	require.Equal(t, 2, stub.requestCount(),
		"12 entries with a batch cap of 10 yield one full batch and one remainder")

	contents := stub.contents(t)
	assert.Equal(t, 10, strings.Count(contents[0], "entry "))
	assert.Equal(t, 2, strings.Count(contents[1], "entry "))
	assert.Contains(t, contents[0], "entry 00")
	assert.Contains(t, contents[1], "entry 11")
}

func TestWebhookSink_ContentLimitChunking(t *testing.T) {
	stub := &stubDoer{}
	w := newTestWebhook(t, WebhookConfig{
		MaxBatchSize:  10,
		FlushInterval: time.Hour,
		ContentLimit:  120,
	}, stub)

	// Two entries that each fit alone but not together.
	long := strings.Repeat("x", 80)
	require.True(t, w.Log(makeEntry(long)))
	require.True(t, w.Log(makeEntry(long)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))

	require.Equal(t, 2, stub.requestCount(),
		"entries that cannot share a chunk are sent separately")
	for _, content := range stub.contents(t) {
		assert.LessOrEqual(t, len([]rune(content)), 120)
	}
}

func TestWebhookSink_OversizeEntryTruncated(t *testing.T) {
	stub := &stubDoer{}
	w := newTestWebhook(t, WebhookConfig{
		FlushInterval: time.Hour,
		ContentLimit:  100,
	}, stub)

	require.True(t, w.Log(makeEntry(strings.Repeat("a", 500))))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))

	contents := stub.contents(t)
	require.Len(t, contents, 1)
	runes := []rune(contents[0])
	assert.Len(t, runes, 100)
	assert.Equal(t, '…', runes[99], "truncated content ends with the ellipsis marker")
}

func TestWebhookSink_RateLimitRetry(t *testing.T) {
	stub := &stubDoer{responses: []stubResponse{
		{status: fasthttp.StatusTooManyRequests, body: `{"retry_after": 1}`},
		{status: fasthttp.StatusOK},
	}}
	w := newTestWebhook(t, WebhookConfig{FlushInterval: time.Hour}, stub)

	require.True(t, w.Log(makeEntry("rate limited once")))

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))
	elapsed := time.Since(start)

	assert.Equal(t, 2, stub.requestCount(), "the same batch is retried after the rate-limit delay")
	assert.GreaterOrEqual(t, elapsed, time.Second, "the server-specified delay is honored")
	assert.EqualValues(t, 2, w.Attempts())
}

func TestWebhookSink_PersistentRateLimitHitsCeiling(t *testing.T) {
	stub := &stubDoer{responses: []stubResponse{
		{status: fasthttp.StatusTooManyRequests, body: `{"retry_after": 1}`},
	}}
	w := newTestWebhook(t, WebhookConfig{
		FlushInterval: time.Hour,
		MaxRetries:    2,
	}, stub)

	require.True(t, w.Log(makeEntry("always rate limited")))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))

	assert.EqualValues(t, 3, w.Attempts(),
		"max_retries=2 allows exactly three attempts before the batch is dropped")

	stats := w.GetStats()
	assert.EqualValues(t, 1, stats.Details["failed_batches"])
	assert.EqualValues(t, 0, stats.Details["total_sends"])
}

func TestWebhookSink_ClientErrorDropsImmediately(t *testing.T) {
	stub := &stubDoer{responses: []stubResponse{
		{status: fasthttp.StatusBadRequest, body: `{"message":"bad payload"}`},
	}}
	w := newTestWebhook(t, WebhookConfig{FlushInterval: time.Hour, MaxRetries: 5}, stub)

	require.True(t, w.Log(makeEntry("rejected")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Flush(ctx))

	assert.EqualValues(t, 1, w.Attempts(), "a non-429 4xx is never retried")
	assert.EqualValues(t, 1, w.GetStats().Details["failed_batches"])
}

func TestWebhookSink_TransientFailureParksAndRecovers(t *testing.T) {
	stub := &stubDoer{responses: []stubResponse{
		{err: fmt.Errorf("connection refused")},
		{status: fasthttp.StatusOK},
	}}
	w := newTestWebhook(t, WebhookConfig{
		FlushInterval: time.Hour,
		RetryDelay:    time.Minute,
	}, stub)

	require.True(t, w.Log(makeEntry("flaky network")))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First flush fails and parks the batch with a backoff deadline.
	require.NoError(t, w.Flush(ctx))
	assert.EqualValues(t, 1, w.Attempts())
	assert.EqualValues(t, 0, w.GetStats().Details["total_sends"])

	// A forced flush ignores the deadline and delivers.
	require.NoError(t, w.Flush(ctx))
	assert.EqualValues(t, 2, w.Attempts())
	assert.EqualValues(t, 1, w.GetStats().Details["total_sends"])
}

func TestWebhookSink_ParkedBatchRetriesWithoutTraffic(t *testing.T) {
	stub := &stubDoer{responses: []stubResponse{
		{err: fmt.Errorf("connection refused")},
		{status: fasthttp.StatusOK},
	}}
	w := newTestWebhook(t, WebhookConfig{
		MaxBatchSize:  1,
		FlushInterval: time.Hour,
		RetryDelay:    20 * time.Millisecond,
	}, stub)

	// The immediate send fails and parks the batch.
	require.True(t, w.Log(makeEntry("flaky network")))

	// No further entries and no explicit flush: the timer stays armed for
	// the backoff deadline and retries the parked batch on its own.
	assert.Eventually(t, func() bool {
		return w.GetStats().Details["total_sends"] == uint64(1)
	}, 5*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 2, w.Attempts())
}

func TestWebhookSink_MaxBatchSizeTriggersImmediateFlush(t *testing.T) {
	stub := &stubDoer{}
	w := newTestWebhook(t, WebhookConfig{
		MaxBatchSize:  3,
		FlushInterval: time.Hour,
	}, stub)

	for i := 0; i < 3; i++ {
		require.True(t, w.Log(makeEntry(fmt.Sprintf("entry %d", i))))
	}

	// No explicit flush: reaching the cap sends on its own.
	assert.Eventually(t, func() bool {
		return stub.requestCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookSink_StopFlushesPending(t *testing.T) {
	stub := &stubDoer{}
	w, err := NewWebhookSink(WebhookConfig{
		URL:           "https://example.com/webhook",
		FlushInterval: time.Hour,
	}, nil, newTestLogger(), nil)
	require.NoError(t, err)
	w.SetClient(stub)
	require.NoError(t, w.Start(context.Background()))

	require.True(t, w.Log(makeEntry("pending at stop")))
	w.Stop()

	assert.Equal(t, 1, stub.requestCount(), "stop drains the queue before returning")
}
