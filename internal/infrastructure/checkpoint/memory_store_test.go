package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/backend/internal/domain/watch"
)

func sampleCheckpoint() watch.Checkpoint {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	return watch.Checkpoint{
		LastPollTime: &now,
		KnownIDs:     watch.NewIDSet("a", "b"),
		StatusByID:   map[string]string{"a": "Open"},
		QuantityByID: map[string]decimal.Decimal{"p1": decimal.NewFromInt(3)},
	}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("load of an unknown job returns a bootstrap checkpoint", func(t *testing.T) {
		store := NewInMemoryStore()

		cp, err := store.Load(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, cp.IsBootstrap())
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		store := NewInMemoryStore()
		jobID := uuid.New()

		require.NoError(t, store.Save(ctx, jobID, sampleCheckpoint()))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.Equal(t, sampleCheckpoint(), loaded)
	})

	t.Run("save replaces the previous checkpoint", func(t *testing.T) {
		store := NewInMemoryStore()
		jobID := uuid.New()

		require.NoError(t, store.Save(ctx, jobID, sampleCheckpoint()))

		replacement := sampleCheckpoint()
		replacement.KnownIDs = watch.NewIDSet("c")
		require.NoError(t, store.Save(ctx, jobID, replacement))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.True(t, loaded.KnownIDs.Has("c"))
		assert.False(t, loaded.KnownIDs.Has("a"))
	})

	t.Run("loaded checkpoint is isolated from the stored one", func(t *testing.T) {
		store := NewInMemoryStore()
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, jobID, sampleCheckpoint()))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		loaded.KnownIDs["mutated"] = true

		reloaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.False(t, reloaded.KnownIDs.Has("mutated"))
	})

	t.Run("delete removes the checkpoint", func(t *testing.T) {
		store := NewInMemoryStore()
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, jobID, sampleCheckpoint()))
		require.NoError(t, store.Delete(ctx, jobID))

		cp, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.True(t, cp.IsBootstrap())
		assert.Zero(t, store.Len())
	})
}
