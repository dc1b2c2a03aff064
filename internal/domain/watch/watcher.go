package watch

import "github.com/shopspring/decimal"

// Watcher detects changes for one (resource, action) pair. Detect is a pure
// function over the previous checkpoint and a freshly fetched snapshot: it
// returns the events for this cycle and the next checkpoint, and never
// mutates its inputs. The caller stamps LastPollTime on the returned
// checkpoint and performs the single store write.
//
// On a bootstrap cycle (prev.IsBootstrap() is true) every watcher returns
// zero events and a checkpoint seeded from the snapshot, so the first real
// detection cycle has a valid baseline and existing records are never
// reported as new.
type Watcher interface {
	// Event returns the (resource, action) pair this watcher detects
	Event() WatchedEvent

	// SnapshotKind reports which snapshot shape Detect consumes
	SnapshotKind() SnapshotKind

	// Detect classifies the differences between prev and snap
	Detect(prev Checkpoint, snap Snapshot) ([]Event, Checkpoint)
}

// knownIDsFrom builds the full-replacement id set for a snapshot. Items
// absent from the snapshot drop out of tracking; an id that scrolls off the
// fetched page and later reappears is reported as created again. That is an
// accepted boundary of the single-page fetch, not something the watchers
// compensate for.
func knownIDsFrom(records []Record) IDSet {
	ids := make(IDSet, len(records))
	for _, rec := range records {
		ids[rec.ID] = true
	}
	return ids
}

// statusesFrom builds the full-replacement status map for a snapshot
func statusesFrom(records []Record) map[string]string {
	statuses := make(map[string]string, len(records))
	for _, rec := range records {
		statuses[rec.ID] = rec.Status
	}
	return statuses
}

// quantitiesFrom builds the full-replacement quantity map for a report
func quantitiesFrom(entries []QuantityEntry) map[string]decimal.Decimal {
	quantities := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		quantities[entry.ProductID] = entry.Quantity
	}
	return quantities
}
