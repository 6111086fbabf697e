// Package middleware holds the gin middleware of the chat API: request
// correlation, access logging with PII scrubbing, panic recovery, caller
// identity, idempotent replays, rate limiting, metrics and security headers.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderChatLogID names the response header carrying the stored chat log id.
const HeaderChatLogID = "X-Chat-Log-ID"

const loggerKey = "logger"

// AccessLogOptions configures AccessLog.
type AccessLogOptions struct {
	// MaskHeaders are extra header names whose values are never logged.
	MaskHeaders []string
	// LogHeaders adds the scrubbed request headers to every access line.
	LogHeaders bool
	// SlowRequest raises successful requests slower than this to warn.
	// Zero disables the check.
	SlowRequest time.Duration
}

// AccessLog attaches a request-scoped logger (request_id, user_id, method,
// path) to the gin context and the request context, so handlers use
// LoggerFrom and services use log.Ctx. After the handler returns it writes
// one "http_request" line: error for 5xx or collected gin errors, warn for
// 4xx and slow requests, info otherwise. Bodies are never logged; the query
// string, user id and headers pass through the Redactor.
func AccessLog(opt AccessLogOptions) gin.HandlerFunc {
	red := NewRedactor(opt.MaskHeaders...)

	return func(c *gin.Context) {
		start := time.Now()

		scoped := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("user_id", red.String(UserIDFrom(c))).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Logger()
		WithLogger(c, scoped)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		var ev *zerolog.Event
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		case opt.SlowRequest > 0 && latency >= opt.SlowRequest:
			ev = scoped.Warn().Bool("slow", true)
		default:
			ev = scoped.Info()
		}

		if q := c.Request.URL.RawQuery; q != "" {
			ev = ev.Str("query", red.String(q))
		}
		if IsReplay(c) {
			ev = ev.Bool("replayed", true)
		}
		if id := c.Writer.Header().Get(HeaderChatLogID); id != "" {
			ev = ev.Str("chat_log_id", id)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		if opt.LogHeaders {
			ev = ev.Interface("headers", red.Headers(c.Request.Header))
		}
		ev.Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", latency).
			Msg("http_request")
	}
}

// WithLogger stores l as the request-scoped logger on both the gin context
// and the request context.
func WithLogger(c *gin.Context, l zerolog.Logger) {
	c.Set(loggerKey, &l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// LoggerFrom returns the request-scoped logger, or the global logger when
// AccessLog did not run.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.Logger
	return &l
}
