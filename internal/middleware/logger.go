// Package middleware holds the HTTP middleware chain.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
)

// RequestIDKey is the request id header name.
const RequestIDKey = "X-Request-ID"

// Logger logs one line per request with a propagated request id. Health
// probe paths are skipped to keep the log readable.
func Logger() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())

		skip := path == "/health/live" || path == "/health/ready"

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		var logger *slog.Logger
		if !skip {
			logger = slog.Default().With(
				"request_id", requestID,
				"method", string(c.Method()),
				"path", path,
				"client_ip", c.ClientIP(),
			)
			logger.Info("request started")
		}

		c.Next(ctx)

		if !skip {
			latency := time.Since(start)
			status := c.Response.StatusCode()

			logger = logger.With(
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
			switch {
			case status >= 500:
				logger.Error("request completed with server error")
			case status >= 400:
				logger.Warn("request completed with client error")
			default:
				logger.Info("request completed")
			}
		}
	}
}

// GetRequestID returns the id assigned to the current request.
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
