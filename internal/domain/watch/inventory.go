package watch

// inventoryWatcher emits inventory.changed for every product whose on-hand
// quantity differs from the quantity recorded on the previous poll. Products
// appearing in the report for the first time are recorded but never emitted;
// their baseline is this cycle's quantity.
type inventoryWatcher struct{}

func newInventoryWatcher() *inventoryWatcher {
	return &inventoryWatcher{}
}

// Event returns the (resource, action) pair this watcher detects
func (w *inventoryWatcher) Event() WatchedEvent {
	return WatchedEvent{Resource: ResourceInventory, Action: ActionChanged}
}

// SnapshotKind reports which snapshot shape Detect consumes
func (w *inventoryWatcher) SnapshotKind() SnapshotKind {
	return SnapshotQuantities
}

// Detect emits quantity deltas and fully replaces the quantity map with the
// report's quantities.
func (w *inventoryWatcher) Detect(prev Checkpoint, snap Snapshot) ([]Event, Checkpoint) {
	next := Checkpoint{QuantityByID: quantitiesFrom(snap.Quantities)}

	if prev.IsBootstrap() {
		return nil, next
	}

	var events []Event
	name := w.Event().Name()
	for _, entry := range snap.Quantities {
		previous, known := prev.QuantityByID[entry.ProductID]
		if !known || previous.Equal(entry.Quantity) {
			continue
		}
		events = append(events, Event{Name: name, Data: InventoryChange{
			Product:          entry.Raw,
			ProductID:        entry.ProductID,
			PreviousQuantity: previous,
			CurrentQuantity:  entry.Quantity,
			Change:           entry.Quantity.Sub(previous),
		}})
	}
	return events, next
}

var _ Watcher = (*inventoryWatcher)(nil)
