package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID    contextKey = "run_id"
	ContextKeyFilename contextKey = "filename"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the batch run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithFilename tags the context with the document being processed
func WithFilename(ctx context.Context, filename string) context.Context {
	return context.WithValue(ctx, ContextKeyFilename, filename)
}

// FilenameFromContext extracts the document filename from context
func FilenameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(ContextKeyFilename).(string); ok {
		return name
	}
	return ""
}

// WithTimeout creates a context with the specified timeout; zero means no deadline.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
