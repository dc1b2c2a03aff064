package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/stockwatch/backend/internal/application/poller"
)

// PollMetrics implements the detector's Metrics interface on OpenTelemetry
// instruments.
type PollMetrics struct {
	cycles   *Counter
	duration *Histogram
	events   *Counter
}

// NewPollMetrics creates the poll cycle instruments on the given meter
func NewPollMetrics(meter metric.Meter) (*PollMetrics, error) {
	cycles, err := NewCounter(meter,
		"watch_poll_cycles_total",
		"Number of poll cycles executed, by watched event and outcome",
		"{cycle}",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll metrics: %w", err)
	}

	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "watch_poll_duration_seconds",
		Description: "Duration of poll cycles",
		Unit:        "s",
		Boundaries:  PollDurationBuckets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create poll metrics: %w", err)
	}

	events, err := NewCounter(meter,
		"watch_events_detected_total",
		"Number of change events detected, by watched event",
		"{event}",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll metrics: %w", err)
	}

	return &PollMetrics{
		cycles:   cycles,
		duration: duration,
		events:   events,
	}, nil
}

// RecordCycle records one completed poll cycle
func (m *PollMetrics) RecordCycle(ctx context.Context, event string, outcome poller.CycleOutcome, elapsed time.Duration) {
	m.cycles.Inc(ctx,
		AttrWatchEvent.String(event),
		AttrPollOutcome.String(string(outcome)),
	)
	m.duration.RecordDuration(ctx, elapsed,
		AttrWatchEvent.String(event),
		AttrPollOutcome.String(string(outcome)),
	)
}

// RecordEvents records the number of events one cycle detected
func (m *PollMetrics) RecordEvents(ctx context.Context, event string, count int) {
	m.events.Add(ctx, int64(count), AttrWatchEvent.String(event))
}

// Ensure PollMetrics implements the detector's metrics interface
var _ poller.Metrics = (*PollMetrics)(nil)
