package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/recipe-graph-crawler/internal/progress"
)

// LogSink emits one structured log line per event.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunID.String()),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.Stage == progress.StagePageDone {
			fields = append(fields,
				zap.String("url", evt.URL),
				zap.String("outcome", evt.Outcome),
				zap.String("status_class", string(evt.StatusClass)),
				zap.Bool("from_cache", evt.FromCache),
				zap.Int("nodes", evt.Nodes),
				zap.Int("relationships", evt.Relationships),
			)
		}
		fields = append(fields, zap.Duration("dur", evt.Dur))
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("progress event", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
