package pipeline

import (
	"context"
	"log/slog"
)

// Sink receives structured diagnostic events from logical operations.
type Sink interface {
	Emit(ctx context.Context, event string, attrs ...any)
}

// SlogSink writes events to a structured logger.
type SlogSink struct {
	Log *slog.Logger
}

func (s SlogSink) Emit(ctx context.Context, event string, attrs ...any) {
	s.Log.InfoContext(ctx, event, attrs...)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, string, ...any) {}
