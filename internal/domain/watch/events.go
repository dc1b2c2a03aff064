package watch

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Watch Errors
// ---------------------------------------------------------------------------

var (
	// ErrUnsupportedEvent is returned when a (resource, action) pair has no watcher
	ErrUnsupportedEvent = errors.New("watch: unsupported watched event")

	// ErrInvalidEventName is returned when an event name cannot be parsed
	ErrInvalidEventName = errors.New("watch: invalid event name")
)

// ---------------------------------------------------------------------------
// ResourceType represents a remotely managed collection
// ---------------------------------------------------------------------------

// ResourceType represents a remotely managed collection
type ResourceType string

const (
	// ResourceCustomer represents the customers collection
	ResourceCustomer ResourceType = "customer"
	// ResourceProduct represents the products collection
	ResourceProduct ResourceType = "product"
	// ResourceVendor represents the vendors collection
	ResourceVendor ResourceType = "vendor"
	// ResourceSalesOrder represents the sales orders collection
	ResourceSalesOrder ResourceType = "salesOrder"
	// ResourcePurchaseOrder represents the purchase orders collection
	ResourcePurchaseOrder ResourceType = "purchaseOrder"
	// ResourceStockTransfer represents the stock transfers collection
	ResourceStockTransfer ResourceType = "stockTransfer"
	// ResourceStockAdjustment represents the stock adjustments collection
	ResourceStockAdjustment ResourceType = "stockAdjustment"
	// ResourceInventory represents the per-product quantity report
	ResourceInventory ResourceType = "inventory"
)

// IsValid returns true if the resource type is valid
func (r ResourceType) IsValid() bool {
	switch r {
	case ResourceCustomer, ResourceProduct, ResourceVendor,
		ResourceSalesOrder, ResourcePurchaseOrder, ResourceStockTransfer,
		ResourceStockAdjustment, ResourceInventory:
		return true
	default:
		return false
	}
}

// String returns the string representation of ResourceType
func (r ResourceType) String() string {
	return string(r)
}

// ---------------------------------------------------------------------------
// ActionType represents the change a polling job detects
// ---------------------------------------------------------------------------

// ActionType represents the change a polling job detects
type ActionType string

const (
	// ActionCreated fires when a previously unseen record appears
	ActionCreated ActionType = "created"
	// ActionUpdated fires when a known record's update timestamp moves past the last poll
	ActionUpdated ActionType = "updated"
	// ActionFulfilled fires when a sales order transitions to Fulfilled
	ActionFulfilled ActionType = "fulfilled"
	// ActionReceived fires when a purchase order transitions from Open to Received
	ActionReceived ActionType = "received"
	// ActionCompleted fires when a stock transfer transitions from Open to Completed
	ActionCompleted ActionType = "completed"
	// ActionChanged fires when a product's on-hand quantity differs between polls
	ActionChanged ActionType = "changed"
)

// String returns the string representation of ActionType
func (a ActionType) String() string {
	return string(a)
}

// ---------------------------------------------------------------------------
// WatchedEvent is the (resource, action) pair a polling job is configured for
// ---------------------------------------------------------------------------

// WatchedEvent is the (resource, action) pair a polling job is configured for.
// The set of valid pairs is fixed; use ParseWatchedEvent or check IsValid
// before building a job around one.
type WatchedEvent struct {
	Resource ResourceType
	Action   ActionType
}

// Name returns the canonical event name, e.g. "salesOrder.fulfilled"
func (e WatchedEvent) Name() string {
	return fmt.Sprintf("%s.%s", e.Resource, e.Action)
}

// IsValid returns true if this (resource, action) pair is a supported watch target
func (e WatchedEvent) IsValid() bool {
	for _, known := range AllWatchedEvents() {
		if known == e {
			return true
		}
	}
	return false
}

// AllWatchedEvents returns the fixed enumeration of supported watch targets
func AllWatchedEvents() []WatchedEvent {
	return []WatchedEvent{
		{ResourceCustomer, ActionCreated},
		{ResourceCustomer, ActionUpdated},
		{ResourceProduct, ActionCreated},
		{ResourceProduct, ActionUpdated},
		{ResourceVendor, ActionCreated},
		{ResourceVendor, ActionUpdated},
		{ResourceSalesOrder, ActionCreated},
		{ResourceSalesOrder, ActionUpdated},
		{ResourceSalesOrder, ActionFulfilled},
		{ResourcePurchaseOrder, ActionCreated},
		{ResourcePurchaseOrder, ActionUpdated},
		{ResourcePurchaseOrder, ActionReceived},
		{ResourceStockTransfer, ActionCreated},
		{ResourceStockTransfer, ActionCompleted},
		{ResourceStockAdjustment, ActionCreated},
		{ResourceInventory, ActionChanged},
	}
}

// ParseWatchedEvent parses a canonical "resource.action" event name
func ParseWatchedEvent(name string) (WatchedEvent, error) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return WatchedEvent{}, fmt.Errorf("%w: %q", ErrInvalidEventName, name)
	}

	ev := WatchedEvent{
		Resource: ResourceType(parts[0]),
		Action:   ActionType(parts[1]),
	}
	if !ev.IsValid() {
		return WatchedEvent{}, fmt.Errorf("%w: %q", ErrUnsupportedEvent, name)
	}
	return ev, nil
}

// ---------------------------------------------------------------------------
// Event is a detected change handed to the poll scheduler
// ---------------------------------------------------------------------------

// Event is a detected change handed to the poll scheduler. It is created
// during one detection cycle and never retained by the detector afterward.
type Event struct {
	// Name is the canonical event name, e.g. "product.created"
	Name string `json:"event"`
	// Data is the entity or derived payload for the event
	Data any `json:"data"`
}
