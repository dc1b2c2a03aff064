package poller

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// tracerName identifies detector spans in traces
const tracerName = "github.com/stockwatch/backend/internal/application/poller"

// CycleOutcome classifies how one poll cycle ended, for metrics
type CycleOutcome string

const (
	// OutcomeBootstrap is a first poll that only seeded the baseline
	OutcomeBootstrap CycleOutcome = "bootstrap"
	// OutcomeDetected is a successful cycle, with or without events
	OutcomeDetected CycleOutcome = "detected"
	// OutcomeFetchFailed is a cycle aborted by a snapshot fetch failure
	OutcomeFetchFailed CycleOutcome = "fetch_failed"
	// OutcomeStoreFailed is a cycle aborted by a checkpoint load failure
	OutcomeStoreFailed CycleOutcome = "store_failed"
)

// Metrics receives per-cycle observations. The telemetry package provides
// the OpenTelemetry implementation; NopMetrics is the default.
type Metrics interface {
	RecordCycle(ctx context.Context, event string, outcome CycleOutcome, elapsed time.Duration)
	RecordEvents(ctx context.Context, event string, count int)
}

// NopMetrics discards all observations
type NopMetrics struct{}

// RecordCycle discards the observation
func (NopMetrics) RecordCycle(context.Context, string, CycleOutcome, time.Duration) {}

// RecordEvents discards the observation
func (NopMetrics) RecordEvents(context.Context, string, int) {}

// Detector runs poll cycles: it fetches a snapshot of the watched
// collection, diffs it against the job's checkpoint, and rewrites the
// checkpoint. The caller (the poll scheduler) must not run two cycles of
// the same job concurrently; beyond that the detector holds no state of
// its own.
type Detector struct {
	fetcher SnapshotFetcher
	store   watch.CheckpointStore
	clock   Clock
	logger  *zap.Logger
	metrics Metrics
}

// DetectorOption is a functional option for configuring a Detector
type DetectorOption func(*Detector)

// WithClock substitutes the wall-clock source
func WithClock(clock Clock) DetectorOption {
	return func(d *Detector) {
		d.clock = clock
	}
}

// WithMetrics attaches per-cycle metrics
func WithMetrics(metrics Metrics) DetectorOption {
	return func(d *Detector) {
		d.metrics = metrics
	}
}

// NewDetector creates a change detector
func NewDetector(fetcher SnapshotFetcher, store watch.CheckpointStore, logger *zap.Logger, opts ...DetectorOption) *Detector {
	d := &Detector{
		fetcher: fetcher,
		store:   store,
		clock:   SystemClock{},
		logger:  logger,
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Poll executes one detection cycle for a job and returns the detected
// events in snapshot order, nil when the cycle was a bootstrap or detected
// nothing.
//
// Transient failures (snapshot fetch, checkpoint load) abort the cycle with
// zero events and leave the checkpoint untouched; they are logged, never
// returned, so a single bad cycle cannot kill the polling job. The only
// error Poll returns is an unsupported watched event, which is a
// configuration mistake the job constructor should have caught.
func (d *Detector) Poll(ctx context.Context, job Job) ([]watch.Event, error) {
	watcher, err := watch.WatcherFor(job.Event)
	if err != nil {
		return nil, err
	}

	started := d.clock.Now()
	eventName := job.Event.Name()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "poller.Poll",
		trace.WithAttributes(
			attribute.String("watch.event", eventName),
			attribute.String("watch.job_id", job.ID.String()),
		),
	)
	defer span.End()

	prev, err := d.store.Load(ctx, job.ID)
	if err != nil {
		d.logger.Error("Checkpoint load failed, skipping poll cycle",
			zap.String("event", eventName),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		d.metrics.RecordCycle(ctx, eventName, OutcomeStoreFailed, d.clock.Now().Sub(started))
		return nil, nil
	}

	snap, err := d.fetcher.FetchSnapshot(ctx, watcher.SnapshotKind(), job.Event.Resource, job.Options)
	if err != nil {
		d.logger.Warn("Snapshot fetch failed, no events this cycle",
			zap.String("event", eventName),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		d.metrics.RecordCycle(ctx, eventName, OutcomeFetchFailed, d.clock.Now().Sub(started))
		return nil, nil
	}

	bootstrap := prev.IsBootstrap()
	events, next := watcher.Detect(prev, snap)

	now := d.clock.Now()
	next.LastPollTime = &now

	if err := d.store.Save(ctx, job.ID, next); err != nil {
		// The events are still delivered; the stale checkpoint means the
		// next cycle may re-detect the same transitions.
		d.logger.Error("Checkpoint save failed, events may repeat next cycle",
			zap.String("event", eventName),
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	outcome := OutcomeDetected
	if bootstrap {
		outcome = OutcomeBootstrap
		d.logger.Info("Poll baseline initialized",
			zap.String("event", eventName),
			zap.String("job_id", job.ID.String()),
			zap.Int("records", len(snap.Records)+len(snap.Quantities)),
		)
	}

	d.metrics.RecordCycle(ctx, eventName, outcome, d.clock.Now().Sub(started))
	if len(events) > 0 {
		d.metrics.RecordEvents(ctx, eventName, len(events))
		d.logger.Debug("Changes detected",
			zap.String("event", eventName),
			zap.String("job_id", job.ID.String()),
			zap.Int("count", len(events)),
		)
		span.SetAttributes(attribute.Int("watch.events", len(events)))
	}

	if len(events) == 0 {
		return nil, nil
	}
	return events, nil
}
