// FILE: logward/src/internal/adapter/fasthttp_test.go
package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"logward/src/internal/core"
)

type recordedCall struct {
	level core.Level
	msg   string
	args  []any
}

type fakeEmitter struct {
	calls []recordedCall
}

func (f *fakeEmitter) Log(level core.Level, msg string, args ...any) {
	f.calls = append(f.calls, recordedCall{level: level, msg: msg, args: args})
}

func runRequest(t *testing.T, opts Options, status int, configure func(ctx *fasthttp.RequestCtx)) (*fakeEmitter, map[string]any) {
	t.Helper()

	emitter := &fakeEmitter{}
	handler := RequestLogger(emitter, opts, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/widgets?limit=5")
	if configure != nil {
		configure(&ctx)
	}
	handler(&ctx)

	require.Len(t, emitter.calls, 1)
	require.Len(t, emitter.calls[0].args, 1)
	data, ok := emitter.calls[0].args[0].(map[string]any)
	require.True(t, ok, "request data must be a record argument")
	return emitter, data
}

func TestRequestLogger_EmitsOneEntry(t *testing.T) {
	emitter, data := runRequest(t, Options{}, fasthttp.StatusOK, nil)

	call := emitter.calls[0]
	assert.Equal(t, core.InfoLevel, call.level)
	assert.Equal(t, "http request", call.msg)
	assert.Equal(t, "GET", data["method"])
	assert.Equal(t, "/widgets?limit=5", data["uri"])
	assert.Equal(t, fasthttp.StatusOK, data["status"])
	assert.Contains(t, data, "duration_ms")
	assert.Contains(t, data, "remote")
	assert.NotContains(t, data, "headers")
	assert.NotContains(t, data, "body")
}

func TestRequestLogger_LevelMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   core.Level
	}{
		{"ServerError", fasthttp.StatusInternalServerError, core.ErrorLevel},
		{"BadGateway", fasthttp.StatusBadGateway, core.ErrorLevel},
		{"ClientError", fasthttp.StatusNotFound, core.WarnLevel},
		{"Success", fasthttp.StatusOK, core.InfoLevel},
		{"Redirect", fasthttp.StatusFound, core.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter, _ := runRequest(t, Options{}, tt.status, nil)
			assert.Equal(t, tt.want, emitter.calls[0].level)
		})
	}
}

func TestRequestLogger_SlowRequestPromotedToWarn(t *testing.T) {
	emitter := &fakeEmitter{}
	handler := RequestLogger(emitter, Options{SlowThreshold: 10 * time.Millisecond}, func(ctx *fasthttp.RequestCtx) {
		time.Sleep(20 * time.Millisecond)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI("/slow")
	handler(&ctx)

	require.Len(t, emitter.calls, 1)
	assert.Equal(t, core.WarnLevel, emitter.calls[0].level)
}

func TestRequestLogger_CapturesConfiguredHeaders(t *testing.T) {
	_, data := runRequest(t, Options{Headers: []string{"X-Request-Id", "X-Absent"}}, fasthttp.StatusOK, func(ctx *fasthttp.RequestCtx) {
		ctx.Request.Header.Set("X-Request-Id", "req-123")
		ctx.Request.Header.Set("X-Uncaptured", "ignored")
	})

	headers, ok := data["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "req-123", headers["X-Request-Id"])
	assert.NotContains(t, headers, "X-Absent")
	assert.NotContains(t, headers, "X-Uncaptured")
}

func TestRequestLogger_BodyCapture(t *testing.T) {
	t.Run("CappedAtLimit", func(t *testing.T) {
		_, data := runRequest(t, Options{MaxBodyBytes: 8}, fasthttp.StatusOK, func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.SetMethod(fasthttp.MethodPost)
			ctx.Request.SetBodyString("0123456789abcdef")
		})
		assert.Equal(t, "01234567", data["body"])
	})

	t.Run("DisabledByDefault", func(t *testing.T) {
		_, data := runRequest(t, Options{}, fasthttp.StatusOK, func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.SetMethod(fasthttp.MethodPost)
			ctx.Request.SetBodyString("payload")
		})
		assert.NotContains(t, data, "body")
	})
}
