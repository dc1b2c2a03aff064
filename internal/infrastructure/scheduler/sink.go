package scheduler

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockwatch/backend/internal/application/poller"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// EventSink receives the events a poll cycle detected. The scheduler calls
// Deliver once per cycle that produced events, in cycle order for a given
// job; delivery failures are logged and the events are dropped (the
// checkpoint has already advanced).
type EventSink interface {
	Deliver(ctx context.Context, job poller.Job, events []watch.Event) error
}

// LoggingSink logs each detected event. It is the default sink when no
// downstream consumer is wired.
type LoggingSink struct {
	logger *zap.Logger
}

// NewLoggingSink creates a sink that logs detected events
func NewLoggingSink(logger *zap.Logger) *LoggingSink {
	return &LoggingSink{logger: logger}
}

// Deliver logs the detected events
func (s *LoggingSink) Deliver(_ context.Context, job poller.Job, events []watch.Event) error {
	for _, event := range events {
		s.logger.Info("Event detected",
			zap.String("event", event.Name),
			zap.String("job_id", job.ID.String()),
		)
	}
	return nil
}

// Ensure LoggingSink implements EventSink
var _ EventSink = (*LoggingSink)(nil)
