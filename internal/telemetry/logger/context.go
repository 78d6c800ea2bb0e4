package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext extracts the logger from context, falling back to
// slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}
