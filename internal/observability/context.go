package observability

import (
	"context"

	"go.uber.org/zap"
)

// Context keys used by the HTTP middleware and read by the upstream clients.
// Kept as plain strings for interop with handlers and tests.
const (
	CorrelationIDKey = "correlation_id"
	LoggerKey        = "logger"
)

// CorrelationIDFromContext returns the request correlation ID, or "" when absent.
func CorrelationIDFromContext(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// LoggerFromContext returns the request-scoped logger, or nil when absent.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if v := ctx.Value(LoggerKey); v != nil {
		if l, ok := v.(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return nil
}
