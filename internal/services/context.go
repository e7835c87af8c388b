package services

import "context"

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	workerKey contextKey = "worker"
	emojiKey  contextKey = "emoji"
)

// WithRunID annotates context with the export run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the export run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithWorker annotates context with the scheduler worker index.
func WithWorker(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, workerKey, id)
}

// WorkerFromContext returns the worker index if present.
func WorkerFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(workerKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithEmoji annotates context with the shortcode of the emoji being exported.
func WithEmoji(ctx context.Context, short string) context.Context {
	if short == "" {
		return ctx
	}
	return context.WithValue(ctx, emojiKey, short)
}

// EmojiFromContext returns the emoji shortcode if present.
func EmojiFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(emojiKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
