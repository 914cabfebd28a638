package engagement

import (
	"context"
	"log/slog"

	"ampere/internal/model"
)

// LogSink writes attribution events to a structured logger at debug level.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

// Emit implements Sink.
func (s *LogSink) Emit(ctx context.Context, ev model.AttributionEvent) {
	s.log.DebugContext(ctx, "attribution",
		"event", ev.Event,
		"session_id", ev.SessionID,
		"props", ev.Props,
	)
}
