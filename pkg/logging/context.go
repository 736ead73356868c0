package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(contextKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithField returns a context whose logger carries key=value.
func WithField(ctx context.Context, key, value string) context.Context {
	l := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &l)
}

// WithMode tags the context logger with the reconciliation mode (create, patch, tombstone).
func WithMode(ctx context.Context, mode string) context.Context {
	return WithField(ctx, "mode", mode)
}

// WithNamespace tags the context logger with the target namespace ID.
func WithNamespace(ctx context.Context, namespace string) context.Context {
	return WithField(ctx, "namespace", namespace)
}

// WithStage tags the context logger with the pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	return WithField(ctx, "stage", stage)
}
