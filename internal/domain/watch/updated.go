package watch

// updatedWatcher emits <resource>.updated for every snapshot record that was
// already known on the previous poll and whose update timestamp is strictly
// after the last poll time. Records seen for the first time are suppressed
// even when their timestamp qualifies; they belong to a created cycle, not an
// updated one.
type updatedWatcher struct {
	resource ResourceType
}

func newUpdatedWatcher(resource ResourceType) *updatedWatcher {
	return &updatedWatcher{resource: resource}
}

// Event returns the (resource, action) pair this watcher detects
func (w *updatedWatcher) Event() WatchedEvent {
	return WatchedEvent{Resource: w.resource, Action: ActionUpdated}
}

// SnapshotKind reports which snapshot shape Detect consumes
func (w *updatedWatcher) SnapshotKind() SnapshotKind {
	return SnapshotRecords
}

// Detect emits updated events for known, freshly modified records and fully
// replaces the known-id set with the ids of the new snapshot.
func (w *updatedWatcher) Detect(prev Checkpoint, snap Snapshot) ([]Event, Checkpoint) {
	next := Checkpoint{KnownIDs: knownIDsFrom(snap.Records)}

	if prev.IsBootstrap() {
		return nil, next
	}

	var events []Event
	name := w.Event().Name()
	for _, rec := range snap.Records {
		if !prev.KnownIDs.Has(rec.ID) {
			continue
		}
		if rec.UpdatedAt == nil || !rec.UpdatedAt.After(*prev.LastPollTime) {
			continue
		}
		events = append(events, Event{Name: name, Data: rec.Raw})
	}
	return events, next
}

var _ Watcher = (*updatedWatcher)(nil)
