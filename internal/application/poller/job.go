package poller

import (
	"github.com/google/uuid"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// Options are the recognized pass-through filters for a polling job. They
// restrict what the snapshot fetcher asks the remote service for; the change
// detector itself never interprets them.
type Options struct {
	// LocationID restricts snapshots to one location, empty for all
	LocationID string
	// CategoryID restricts snapshots to one category, empty for all
	CategoryID string
}

// Job is one configured polling job: a watched event plus fetch options.
// The watched event is immutable for the lifetime of the job, and every job
// owns exactly one checkpoint keyed by its ID.
type Job struct {
	ID      uuid.UUID
	Event   watch.WatchedEvent
	Options Options
}

// NewJob builds a polling job, rejecting unsupported watched events eagerly
// so a misconfigured job can never reach its first poll.
func NewJob(event watch.WatchedEvent, opts Options) (Job, error) {
	if _, err := watch.WatcherFor(event); err != nil {
		return Job{}, err
	}
	return Job{
		ID:      uuid.New(),
		Event:   event,
		Options: opts,
	}, nil
}
