package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusWatcher_SalesOrderFulfilled(t *testing.T) {
	w := newStatusWatcher(
		WatchedEvent{Resource: ResourceSalesOrder, Action: ActionFulfilled},
		StatusFulfilled, "")
	pollTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("bootstrap emits nothing and records statuses", func(t *testing.T) {
		events, next := w.Detect(Checkpoint{}, recordSnapshot(
			testRecord("so1", "Started", nil),
			testRecord("so2", StatusFulfilled, nil),
		))
		assert.Empty(t, events)
		assert.Equal(t, "Started", next.StatusByID["so1"])
		assert.Equal(t, StatusFulfilled, next.StatusByID["so2"])
	})

	t.Run("emits when a recorded non-terminal status reaches Fulfilled", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("so1", "Started", nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("so1", StatusFulfilled, nil)))
		require.Len(t, events, 1)
		assert.Equal(t, "salesOrder.fulfilled", events[0].Name)
	})

	t.Run("suppresses orders first observed already Fulfilled", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("so1", "Started", nil)), pollTime)

		events, next := w.Detect(prev, recordSnapshot(
			testRecord("so1", "Started", nil),
			testRecord("so2", StatusFulfilled, nil),
		))
		assert.Empty(t, events)

		// and it never fires for so2 on later cycles either
		next.LastPollTime = &pollTime
		events, _ = w.Detect(next, recordSnapshot(testRecord("so2", StatusFulfilled, nil)))
		assert.Empty(t, events)
	})

	t.Run("suppresses transitions from an empty recorded status", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("so1", "", nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("so1", StatusFulfilled, nil)))
		assert.Empty(t, events)
	})

	t.Run("does not re-emit while the order stays Fulfilled", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("so1", "Started", nil)), pollTime)

		events, next := w.Detect(prev, recordSnapshot(testRecord("so1", StatusFulfilled, nil)))
		require.Len(t, events, 1)

		next.LastPollTime = &pollTime
		events, _ = w.Detect(next, recordSnapshot(testRecord("so1", StatusFulfilled, nil)))
		assert.Empty(t, events)
	})
}

func TestStatusWatcher_PurchaseOrderReceived(t *testing.T) {
	w := newStatusWatcher(
		WatchedEvent{Resource: ResourcePurchaseOrder, Action: ActionReceived},
		StatusReceived, StatusOpen)
	pollTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("emits only for the Open to Received transition", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(
			testRecord("po1", StatusOpen, nil),
			testRecord("po2", "Draft", nil),
		), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(
			testRecord("po1", StatusReceived, nil),
			testRecord("po2", StatusReceived, nil),
		))

		require.Len(t, events, 1)
		assert.Equal(t, "purchaseOrder.received", events[0].Name)
	})

	t.Run("suppresses orders first observed already Received", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("po1", StatusOpen, nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(
			testRecord("po1", StatusOpen, nil),
			testRecord("po2", StatusReceived, nil),
		))
		assert.Empty(t, events)
	})
}

func TestStatusWatcher_StockTransferCompleted(t *testing.T) {
	w := newStatusWatcher(
		WatchedEvent{Resource: ResourceStockTransfer, Action: ActionCompleted},
		StatusCompleted, StatusOpen)
	pollTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("emits for Open to Completed", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("st1", StatusOpen, nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("st1", StatusCompleted, nil)))
		require.Len(t, events, 1)
		assert.Equal(t, "stockTransfer.completed", events[0].Name)
	})

	t.Run("ignores other predecessors", func(t *testing.T) {
		prev := seeded(t, w, recordSnapshot(testRecord("st1", "InTransit", nil)), pollTime)

		events, _ := w.Detect(prev, recordSnapshot(testRecord("st1", StatusCompleted, nil)))
		assert.Empty(t, events)
	})
}
