package watch

// Remote status values involved in status-transition detection.
const (
	// StatusOpen is the expected predecessor for purchase order and stock
	// transfer transitions
	StatusOpen = "Open"
	// StatusFulfilled is the terminal sales order status
	StatusFulfilled = "Fulfilled"
	// StatusReceived is the terminal purchase order status
	StatusReceived = "Received"
	// StatusCompleted is the terminal stock transfer status
	StatusCompleted = "Completed"
)

// statusWatcher emits a transition event when a record reaches its terminal
// status from the expected predecessor. When predecessor is empty, any
// recorded non-empty status other than the terminal one qualifies (the sales
// order rule); an empty recorded status is suppressed the same way a missing
// one is. Either way a record whose first observed status is already terminal
// never emits, because its previous status was not recorded.
type statusWatcher struct {
	event       WatchedEvent
	terminal    string
	predecessor string
}

func newStatusWatcher(event WatchedEvent, terminal, predecessor string) *statusWatcher {
	return &statusWatcher{event: event, terminal: terminal, predecessor: predecessor}
}

// Event returns the (resource, action) pair this watcher detects
func (w *statusWatcher) Event() WatchedEvent {
	return w.event
}

// SnapshotKind reports which snapshot shape Detect consumes
func (w *statusWatcher) SnapshotKind() SnapshotKind {
	return SnapshotRecords
}

// Detect emits transition events and fully replaces the status map with the
// snapshot's statuses, including records with no previous entry.
func (w *statusWatcher) Detect(prev Checkpoint, snap Snapshot) ([]Event, Checkpoint) {
	next := Checkpoint{StatusByID: statusesFrom(snap.Records)}

	if prev.IsBootstrap() {
		return nil, next
	}

	var events []Event
	name := w.event.Name()
	for _, rec := range snap.Records {
		if rec.Status != w.terminal {
			continue
		}
		previous := prev.StatusByID[rec.ID]
		if w.predecessor != "" {
			if previous != w.predecessor {
				continue
			}
		} else if previous == "" || previous == w.terminal {
			continue
		}
		events = append(events, Event{Name: name, Data: rec.Raw})
	}
	return events, next
}

var _ Watcher = (*statusWatcher)(nil)
