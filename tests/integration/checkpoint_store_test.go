package integration

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

func TestGormStore_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container-backed test in short mode")
	}

	store := newPostgresStore(t)
	ctx := context.Background()

	pollTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	saved := watch.Checkpoint{
		LastPollTime: &pollTime,
		KnownIDs:     watch.NewIDSet("so-1", "so-2"),
		StatusByID:   map[string]string{"so-1": "Open", "so-2": "Fulfilled"},
		QuantityByID: map[string]decimal.Decimal{"p1": decimal.RequireFromString("12.5")},
	}

	t.Run("load of an unknown job returns a bootstrap checkpoint", func(t *testing.T) {
		cp, err := store.Load(ctx, uuid.New())
		require.NoError(t, err)
		assert.True(t, cp.IsBootstrap())
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, jobID, saved))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)

		require.NotNil(t, loaded.LastPollTime)
		assert.True(t, loaded.LastPollTime.Equal(pollTime))
		assert.True(t, loaded.KnownIDs.Has("so-1"))
		assert.True(t, loaded.KnownIDs.Has("so-2"))
		assert.Equal(t, saved.StatusByID, loaded.StatusByID)
		assert.True(t, loaded.QuantityByID["p1"].Equal(saved.QuantityByID["p1"]))
	})

	t.Run("save replaces the previous checkpoint", func(t *testing.T) {
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, jobID, saved))

		replacement := saved.Clone()
		replacement.KnownIDs = watch.NewIDSet("so-3")
		require.NoError(t, store.Save(ctx, jobID, replacement))

		loaded, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.True(t, loaded.KnownIDs.Has("so-3"))
		assert.False(t, loaded.KnownIDs.Has("so-1"))
	})

	t.Run("checkpoints are isolated per job", func(t *testing.T) {
		first, second := uuid.New(), uuid.New()
		require.NoError(t, store.Save(ctx, first, saved))

		cp, err := store.Load(ctx, second)
		require.NoError(t, err)
		assert.True(t, cp.IsBootstrap())
	})

	t.Run("delete resets the job to bootstrap", func(t *testing.T) {
		jobID := uuid.New()
		require.NoError(t, store.Save(ctx, jobID, saved))
		require.NoError(t, store.Delete(ctx, jobID))

		cp, err := store.Load(ctx, jobID)
		require.NoError(t, err)
		assert.True(t, cp.IsBootstrap())
	})
}
