// Package checkpoint provides checkpoint store implementations for the
// change detector.
package checkpoint

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// InMemoryStore implements watch.CheckpointStore with a process-local map.
// This is suitable for single-instance deployments and testing.
// WARNING: checkpoints do not survive a restart, so every job re-bootstraps
// its baseline after the process comes back.
type InMemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[uuid.UUID]watch.Checkpoint
}

// NewInMemoryStore creates a new in-memory checkpoint store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		checkpoints: make(map[uuid.UUID]watch.Checkpoint),
	}
}

// Load returns the stored checkpoint for a job, or a zero-value checkpoint
// for a job that was never saved
func (s *InMemoryStore) Load(_ context.Context, jobID uuid.UUID) (watch.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[jobID]
	if !ok {
		return watch.Checkpoint{}, nil
	}
	// Clone so callers can't mutate the stored maps
	return cp.Clone(), nil
}

// Save replaces the stored checkpoint for a job
func (s *InMemoryStore) Save(_ context.Context, jobID uuid.UUID, cp watch.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[jobID] = cp.Clone()
	return nil
}

// Delete removes a job's checkpoint, used when a job is deregistered
func (s *InMemoryStore) Delete(_ context.Context, jobID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, jobID)
	return nil
}

// Len returns the number of stored checkpoints (for testing/monitoring)
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.checkpoints)
}

// Ensure InMemoryStore implements CheckpointStore
var _ watch.CheckpointStore = (*InMemoryStore)(nil)
