package watch

import "fmt"

// WatcherFor returns the watcher for a watched event. Unknown pairs are a
// configuration error and are rejected here, at job setup, never mid-poll.
func WatcherFor(event WatchedEvent) (Watcher, error) {
	switch event.Action {
	case ActionCreated:
		switch event.Resource {
		case ResourceCustomer, ResourceProduct, ResourceVendor,
			ResourceSalesOrder, ResourcePurchaseOrder, ResourceStockTransfer,
			ResourceStockAdjustment:
			return newCreatedWatcher(event.Resource), nil
		}
	case ActionUpdated:
		switch event.Resource {
		case ResourceCustomer, ResourceProduct, ResourceVendor,
			ResourceSalesOrder, ResourcePurchaseOrder:
			return newUpdatedWatcher(event.Resource), nil
		}
	case ActionFulfilled:
		if event.Resource == ResourceSalesOrder {
			return newStatusWatcher(event, StatusFulfilled, ""), nil
		}
	case ActionReceived:
		if event.Resource == ResourcePurchaseOrder {
			return newStatusWatcher(event, StatusReceived, StatusOpen), nil
		}
	case ActionCompleted:
		if event.Resource == ResourceStockTransfer {
			return newStatusWatcher(event, StatusCompleted, StatusOpen), nil
		}
	case ActionChanged:
		if event.Resource == ResourceInventory {
			return newInventoryWatcher(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEvent, event.Name())
}
