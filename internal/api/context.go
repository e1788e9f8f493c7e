package api

import (
	"context"
	"log/slog"
)

// loggerContextKey is the context key for the request-scoped logger.
type loggerContextKey struct{}

// WithLogger returns a new context with the logger attached.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// LoggerFromContext returns the request-scoped logger, or slog.Default()
// when none is attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
