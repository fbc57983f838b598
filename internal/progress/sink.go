package progress

import (
	"context"

	"go.uber.org/zap"
)

// Sink consumes batches of progress events.
type Sink interface {
	Consume(ctx context.Context, batch []Event) error
	Close(ctx context.Context) error
}

// Emitter publishes individual events.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// Fanout delivers every event to each sink in order.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

var _ Emitter = (*Fanout)(nil)

// NewFanout builds an emitter over sinks.
func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{sinks: append([]Sink(nil), sinks...), logger: logger}
}

// Emit validates evt and hands it to every sink. Invalid events and sink
// failures are logged and dropped.
func (f *Fanout) Emit(ctx context.Context, evt Event) {
	if err := evt.Validate(); err != nil {
		f.logger.Warn("dropping invalid progress event", zap.String("stage", string(evt.Stage)), zap.Error(err))
		return
	}
	batch := []Event{evt}
	for _, s := range f.sinks {
		if err := s.Consume(ctx, batch); err != nil {
			f.logger.Warn("progress sink failed", zap.Error(err))
		}
	}
}

// Close closes every sink, returning the first error.
func (f *Fanout) Close(ctx context.Context) error {
	var first error
	for _, s := range f.sinks {
		if err := s.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Discard is an Emitter that drops every event.
type Discard struct{}

// Emit implements Emitter.
func (Discard) Emit(context.Context, Event) {}
