// Package kit holds the transport-neutral endpoint shape shared by the
// MCP tools: an Endpoint, a logging Middleware, and context helpers.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint handles one decoded request.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Logging logs every call with its transport, duration and outcome.
func Logging(logger *slog.Logger, name string) Middleware {
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			call := CallFrom(ctx)
			attrs := []any{"endpoint", name, "transport", call.Transport, "duration", time.Since(start)}
			if call.RequestID != "" {
				attrs = append(attrs, "request_id", call.RequestID)
			}
			if err != nil {
				logger.Warn("kit: call failed", append(attrs, "error", err)...)
			} else {
				logger.Debug("kit: call", attrs...)
			}
			return resp, err
		}
	}
}
