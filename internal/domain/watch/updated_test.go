package watch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatedWatcher_Detect(t *testing.T) {
	w := newUpdatedWatcher(ResourceCustomer)
	pollTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	before := pollTime.Add(-time.Minute)
	after := pollTime.Add(time.Minute)

	t.Run("bootstrap emits nothing", func(t *testing.T) {
		events, next := w.Detect(Checkpoint{}, recordSnapshot(
			testRecord("c1", "", &after),
		))
		assert.Empty(t, events)
		assert.True(t, next.KnownIDs.Has("c1"))
	})

	t.Run("emits updated for known records modified after the last poll", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(
			testRecord("c1", "", &before),
			testRecord("c2", "", &before),
		), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(
			testRecord("c1", "", &after),
			testRecord("c2", "", &before),
		))

		require.Len(t, events, 1)
		assert.Equal(t, "customer.updated", events[0].Name)
		assert.JSONEq(t, `{"id":"c1"}`, string(events[0].Data.(json.RawMessage)))
	})

	t.Run("suppresses records seen for the first time", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("c1", "", &before)), pollTime)

		// c2 is new: its timestamp qualifies but it was never known
		events, _ := w.Detect(prev, recordSnapshot(
			testRecord("c1", "", &before),
			testRecord("c2", "", &after),
		))
		assert.Empty(t, events)
	})

	t.Run("timestamp equal to last poll does not qualify", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("c1", "", &before)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("c1", "", &pollTime)))
		assert.Empty(t, events)
	})

	t.Run("records without a timestamp never emit", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("c1", "", nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("c1", "", nil)))
		assert.Empty(t, events)
	})
}
