package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey int

const (
	windowIDKey contextKey = iota
	requestIDKey
)

// WithWindowID stores the UI window identifier on ctx.
func WithWindowID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, windowIDKey, strings.TrimSpace(id))
}

// WithRequestID stores the envelope correlation identifier on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(id))
}

// RequestIDFromContext returns the correlation identifier stored on ctx.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, requestIDKey)
}

// WindowIDFromContext returns the UI window identifier stored on ctx.
func WindowIDFromContext(ctx context.Context) (string, bool) {
	return stringFromContext(ctx, windowIDKey)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// WithContext returns logger augmented with the window and request
// identifiers found on ctx.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	attrs := make([]Attr, 0, 2)
	if id, ok := WindowIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldWindowID, id))
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRequestID, id))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}
