package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// LogSink writes events to a slog.Logger at Info level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink writing to logger (slog.Default when nil).
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "audit")}
}

// Publish implements ports.EventSink.
func (s *LogSink) Publish(ctx context.Context, evt domain.Event) error {
	attrs := []slog.Attr{
		slog.String("id", evt.ID),
		slog.Uint64("seq", evt.Seq),
		slog.Time("at", evt.At),
	}
	switch evt.Kind {
	case domain.EventDeposited, domain.EventWithdrawn:
		attrs = append(attrs,
			slog.String("account", evt.Account.String()),
			slog.Uint64("assets", uint64(evt.Assets)),
			slog.Uint64("shares", uint64(evt.Shares)))
	case domain.EventHarvested:
		attrs = append(attrs,
			slog.Uint64("profit", uint64(evt.Profit)),
			slog.Uint64("fee", uint64(evt.Fee)))
	case domain.EventStrategyUpdated:
		attrs = append(attrs, slog.String("strategy", evt.Strategy.String()))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, string(evt.Kind), attrs...)
	return nil
}

// Recorder keeps every published event, oldest first. A positive limit keeps
// only the most recent limit events.
type Recorder struct {
	mu     sync.RWMutex
	limit  int
	events []domain.Event
}

// NewRecorder returns a recorder; limit <= 0 keeps everything.
func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: limit}
}

// Publish implements ports.EventSink.
func (r *Recorder) Publish(_ context.Context, evt domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	if r.limit > 0 && len(r.events) > r.limit {
		r.events = slices.Delete(r.events, 0, len(r.events)-r.limit)
	}
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.events)
}

// Kinds returns the kinds of the recorded events, in order.
func (r *Recorder) Kinds() []domain.EventKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]domain.EventKind, len(r.events))
	for i, e := range r.events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Fanout publishes each event to every sink, in order, even after a failure.
type Fanout []ports.EventSink

// Publish implements ports.EventSink.
func (f Fanout) Publish(ctx context.Context, evt domain.Event) error {
	var errs []error
	for i, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (f Fanout) Close() error {
	var errs []error
	for _, sink := range f {
		if c, ok := sink.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var (
	_ ports.EventSink = (*LogSink)(nil)
	_ ports.EventSink = (*Recorder)(nil)
	_ ports.EventSink = Fanout(nil)
)
