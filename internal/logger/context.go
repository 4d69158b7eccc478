package logger

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// Into returns a copy of ctx carrying l.
func Into(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// From returns the logger carried by ctx, or a no-op logger.
func From(ctx context.Context) *zap.Logger {
	return FromOr(ctx, zap.NewNop())
}

// FromOr returns the logger carried by ctx, or def.
func FromOr(ctx context.Context, def *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return def
}

// With adds fields to the context logger and stores the result back, so that
// everything called with the returned context logs them too.
func With(ctx context.Context, fields ...zap.Field) (context.Context, *zap.Logger) {
	l := From(ctx).With(fields...)
	return Into(ctx, l), l
}
