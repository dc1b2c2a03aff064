package watch

import (
	"context"

	"github.com/google/uuid"
)

// CheckpointStore persists the per-job checkpoint between polls. A job's
// checkpoint is read once at the start of a cycle and written once after a
// successful one; cycles for a job never overlap, so implementations need no
// transactional guarantees beyond replacing the blob atomically.
//
// Load returns a zero-value Checkpoint (IsBootstrap() == true) for a job
// that has never been saved.
type CheckpointStore interface {
	Load(ctx context.Context, jobID uuid.UUID) (Checkpoint, error)
	Save(ctx context.Context, jobID uuid.UUID, cp Checkpoint) error
}
