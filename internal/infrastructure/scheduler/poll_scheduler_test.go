package scheduler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockwatch/backend/internal/application/poller"
	"github.com/stockwatch/backend/internal/domain/watch"
	"github.com/stockwatch/backend/internal/infrastructure/checkpoint"
)

// mutableFetcher serves a swappable snapshot
type mutableFetcher struct {
	mu   sync.Mutex
	snap watch.Snapshot
}

func (f *mutableFetcher) FetchSnapshot(context.Context, watch.SnapshotKind, watch.ResourceType, poller.Options) (watch.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, nil
}

func (f *mutableFetcher) set(snap watch.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
}

// captureSink collects delivered events
type captureSink struct {
	mu     sync.Mutex
	events []watch.Event
}

func (s *captureSink) Deliver(_ context.Context, _ poller.Job, events []watch.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *captureSink) delivered() []watch.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]watch.Event(nil), s.events...)
}

func testSchedulerConfig() PollSchedulerConfig {
	return PollSchedulerConfig{
		DefaultInterval: time.Minute,
		MinInterval:     10 * time.Millisecond,
		MaxInterval:     time.Hour,
		CycleTimeout:    time.Second,
		MaxHistory:      5,
	}
}

func newTestScheduler(t *testing.T) (*PollScheduler, *mutableFetcher, *captureSink) {
	t.Helper()
	fetcher := &mutableFetcher{}
	sink := &captureSink{}
	detector := poller.NewDetector(fetcher, checkpoint.NewInMemoryStore(), zap.NewNop())

	sched, err := NewPollScheduler(testSchedulerConfig(), detector, sink, zap.NewNop())
	require.NoError(t, err)
	return sched, fetcher, sink
}

func productEvent() watch.WatchedEvent {
	return watch.WatchedEvent{Resource: watch.ResourceProduct, Action: watch.ActionCreated}
}

func record(id string) watch.Record {
	return watch.Record{ID: id, Raw: json.RawMessage(`{"productId":"` + id + `"}`)}
}

func TestPollSchedulerConfig_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := DefaultPollSchedulerConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		cfg := testSchedulerConfig()
		cfg.MaxInterval = cfg.MinInterval / 2
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})

	t.Run("rejects a default outside the bounds", func(t *testing.T) {
		cfg := testSchedulerConfig()
		cfg.DefaultInterval = cfg.MaxInterval + time.Hour
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
	})
}

func TestPollScheduler_RegisterJob(t *testing.T) {
	t.Run("applies the default interval", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)

		job, err := sched.RegisterJob(productEvent(), poller.Options{}, 0)
		require.NoError(t, err)

		info, err := sched.GetJob(job.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, info.Interval)
	})

	t.Run("rejects intervals outside the bounds", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)

		_, err := sched.RegisterJob(productEvent(), poller.Options{}, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidInterval)

		_, err = sched.RegisterJob(productEvent(), poller.Options{}, 2*time.Hour)
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("rejects unsupported events", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)

		_, err := sched.RegisterJob(watch.WatchedEvent{
			Resource: watch.ResourceInventory,
			Action:   watch.ActionCreated,
		}, poller.Options{}, 0)
		assert.ErrorIs(t, err, watch.ErrUnsupportedEvent)
	})

	t.Run("keeps job options", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)

		job, err := sched.RegisterJob(productEvent(), poller.Options{LocationID: "loc-1"}, 0)
		require.NoError(t, err)
		assert.Equal(t, "loc-1", job.Options.LocationID)
	})
}

func TestPollScheduler_DeregisterJob(t *testing.T) {
	sched, _, _ := newTestScheduler(t)

	job, err := sched.RegisterJob(productEvent(), poller.Options{}, 0)
	require.NoError(t, err)

	require.NoError(t, sched.DeregisterJob(job.ID))
	assert.Empty(t, sched.Jobs())

	_, err = sched.GetJob(job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.ErrorIs(t, sched.DeregisterJob(job.ID), ErrJobNotFound)
}

func TestPollScheduler_TriggerNow(t *testing.T) {
	t.Run("requires a running scheduler", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)

		job, err := sched.RegisterJob(productEvent(), poller.Options{}, 0)
		require.NoError(t, err)

		assert.ErrorIs(t, sched.TriggerNow(job.ID), ErrSchedulerNotRunning)
	})

	t.Run("unknown jobs are rejected", func(t *testing.T) {
		sched, _, _ := newTestScheduler(t)
		assert.ErrorIs(t, sched.TriggerNow(uuid.New()), ErrJobNotFound)
	})
}

func TestPollScheduler_Lifecycle(t *testing.T) {
	sched, fetcher, sink := newTestScheduler(t)
	fetcher.set(watch.Snapshot{Records: []watch.Record{record("p1")}})

	// long interval: cycles only run on start and on explicit triggers
	job, err := sched.RegisterJob(productEvent(), poller.Options{}, time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sched.Start(ctx))
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		require.NoError(t, sched.Stop(stopCtx))
	}()

	t.Run("first cycle seeds the baseline without events", func(t *testing.T) {
		require.Eventually(t, func() bool {
			return len(sched.GetRunHistoryByJob(job.ID, 0)) >= 1
		}, 2*time.Second, 10*time.Millisecond)

		runs := sched.GetRunHistoryByJob(job.ID, 0)
		assert.Equal(t, RunStatusSuccess, runs[0].Status)
		assert.Zero(t, runs[0].EventCount)
		assert.Empty(t, sink.delivered())
	})

	t.Run("triggered cycle delivers detected events", func(t *testing.T) {
		fetcher.set(watch.Snapshot{Records: []watch.Record{record("p1"), record("p2")}})
		require.NoError(t, sched.TriggerNow(job.ID))

		require.Eventually(t, func() bool {
			return len(sink.delivered()) == 1
		}, 2*time.Second, 10*time.Millisecond)

		assert.Equal(t, "product.created", sink.delivered()[0].Name)

		recent := sched.GetRecentEvents(0)
		require.Len(t, recent, 1)
		assert.Equal(t, job.ID, recent[0].JobID)
		assert.JSONEq(t, `{"productId":"p2"}`, string(recent[0].Data))
	})

	t.Run("run history is bounded and newest first", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			require.NoError(t, sched.TriggerNow(job.ID))
			time.Sleep(20 * time.Millisecond)
		}

		runs := sched.GetRunHistory(0)
		assert.LessOrEqual(t, len(runs), testSchedulerConfig().MaxHistory)
		for i := 1; i < len(runs); i++ {
			assert.False(t, runs[i-1].StartedAt.Before(runs[i].StartedAt))
		}
	})

	t.Run("limit caps returned history", func(t *testing.T) {
		runs := sched.GetRunHistory(2)
		assert.Len(t, runs, 2)
	})
}

func TestPollScheduler_StopWithoutStart(t *testing.T) {
	sched, _, _ := newTestScheduler(t)
	assert.NoError(t, sched.Stop(context.Background()))
}
