package watch

// createdWatcher emits <resource>.created for every snapshot record whose id
// was not observed on the previous poll. stockAdjustment.created is the same
// detection over its own dedicated id set; since each polling job owns its
// checkpoint exclusively, no separate field is needed.
type createdWatcher struct {
	resource ResourceType
}

func newCreatedWatcher(resource ResourceType) *createdWatcher {
	return &createdWatcher{resource: resource}
}

// Event returns the (resource, action) pair this watcher detects
func (w *createdWatcher) Event() WatchedEvent {
	return WatchedEvent{Resource: w.resource, Action: ActionCreated}
}

// SnapshotKind reports which snapshot shape Detect consumes
func (w *createdWatcher) SnapshotKind() SnapshotKind {
	return SnapshotRecords
}

// Detect emits created events for unseen ids and fully replaces the known-id
// set with the ids of the new snapshot.
func (w *createdWatcher) Detect(prev Checkpoint, snap Snapshot) ([]Event, Checkpoint) {
	next := Checkpoint{KnownIDs: knownIDsFrom(snap.Records)}

	if prev.IsBootstrap() {
		return nil, next
	}

	var events []Event
	name := w.Event().Name()
	for _, rec := range snap.Records {
		if !prev.KnownIDs.Has(rec.ID) {
			events = append(events, Event{Name: name, Data: rec.Raw})
		}
	}
	return events, next
}

var _ Watcher = (*createdWatcher)(nil)
