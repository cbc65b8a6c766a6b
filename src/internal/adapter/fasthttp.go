// FILE: logward/src/internal/adapter/fasthttp.go
package adapter

import (
	"time"

	"github.com/valyala/fasthttp"

	"logward/src/internal/core"
)

// Emitter is the slice of the dispatcher the adapter needs. Both the
// root logger and child loggers satisfy it.
type Emitter interface {
	Log(level core.Level, msg string, args ...any)
}

// Options configure the request logger.
type Options struct {
	// Headers lists request headers to capture. Empty captures none.
	Headers []string

	// MaxBodyBytes caps the captured request body. Zero disables body
	// capture entirely.
	MaxBodyBytes int

	// SlowThreshold promotes requests slower than this to warn level.
	// Zero disables the promotion.
	SlowThreshold time.Duration
}

// RequestLogger wraps a fasthttp handler and emits one log entry per
// request after the handler returns. Emission is non-blocking, so a
// saturated sink queue never delays the response.
func RequestLogger(logger Emitter, opts Options, next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		method := string(ctx.Method())
		uri := string(ctx.RequestURI())
		remote := ctx.RemoteAddr().String()

		var headers map[string]any
		if len(opts.Headers) > 0 {
			headers = make(map[string]any, len(opts.Headers))
			for _, name := range opts.Headers {
				if v := ctx.Request.Header.Peek(name); v != nil {
					headers[name] = string(v)
				}
			}
		}

		var body string
		if opts.MaxBodyBytes > 0 {
			b := ctx.PostBody()
			if len(b) > opts.MaxBodyBytes {
				b = b[:opts.MaxBodyBytes]
			}
			body = string(b)
		}

		next(ctx)

		status := ctx.Response.StatusCode()
		elapsed := time.Since(start)

		data := map[string]any{
			"method":      method,
			"uri":         uri,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"remote":      remote,
		}
		if headers != nil {
			data["headers"] = headers
		}
		if body != "" {
			data["body"] = body
		}

		logger.Log(requestLevel(status, elapsed, opts.SlowThreshold), "http request", data)
	}
}

func requestLevel(status int, elapsed, slow time.Duration) core.Level {
	switch {
	case status >= 500:
		return core.ErrorLevel
	case status >= 400:
		return core.WarnLevel
	case slow > 0 && elapsed >= slow:
		return core.WarnLevel
	default:
		return core.InfoLevel
	}
}
