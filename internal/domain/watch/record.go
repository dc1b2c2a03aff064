package watch

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a normalized remote entity observed in one snapshot fetch.
// Identity is ID; uniqueness is guaranteed by the remote system. Raw is the
// full remote payload, borrowed from the client response and passed through
// unmodified in emitted events.
type Record struct {
	// ID is the stable opaque identifier of the entity
	ID string
	// Status is the entity's mutable status, empty when the collection has none
	Status string
	// UpdatedAt is the entity's last-modified timestamp, nil when absent
	UpdatedAt *time.Time
	// Raw is the full remote record
	Raw json.RawMessage
}

// QuantityEntry is one row of the per-product quantity report. Its identity
// is ProductID, a distinct id space from entity ids.
type QuantityEntry struct {
	// ProductID identifies the product the quantity belongs to
	ProductID string
	// Quantity is the observed on-hand quantity
	Quantity decimal.Decimal
	// Raw is the full report row
	Raw json.RawMessage
}

// Snapshot is the result of one bounded fetch of a watched collection.
// Exactly one of Records or Quantities is populated, depending on the
// watched event's snapshot kind. Iteration order is the remote API's
// natural response order and is preserved in emitted events.
type Snapshot struct {
	Records    []Record
	Quantities []QuantityEntry
}

// SnapshotKind identifies which snapshot shape a watcher consumes
type SnapshotKind int

const (
	// SnapshotRecords is a page of entity records
	SnapshotRecords SnapshotKind = iota
	// SnapshotQuantities is a per-product quantity report
	SnapshotQuantities
)

// InventoryChange is the payload of an inventory.changed event
type InventoryChange struct {
	// Product is the full report row for the product
	Product json.RawMessage `json:"product"`
	// ProductID identifies the product
	ProductID string `json:"productId"`
	// PreviousQuantity is the quantity recorded on the previous poll
	PreviousQuantity decimal.Decimal `json:"previousQuantity"`
	// CurrentQuantity is the quantity observed this poll
	CurrentQuantity decimal.Decimal `json:"currentQuantity"`
	// Change is CurrentQuantity minus PreviousQuantity
	Change decimal.Decimal `json:"change"`
}
