package remoteapi

import (
	"fmt"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// collectionDescriptor maps a watched resource type onto the remote API's
// collection endpoint and the record fields the normalizer reads. The remote
// service names the identifier differently per collection; everything else is
// uniform.
type collectionDescriptor struct {
	// path is the collection endpoint relative to the company root
	path string
	// idField is the stable identifier field in each raw record
	idField string
	// statusField is the workflow status field, empty when the collection
	// has none
	statusField string
	// updatedField is the last-modified timestamp field
	updatedField string
}

var collections = map[watch.ResourceType]collectionDescriptor{
	watch.ResourceCustomer: {
		path:         "/customers",
		idField:      "customerId",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourceProduct: {
		path:         "/products",
		idField:      "productId",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourceVendor: {
		path:         "/vendors",
		idField:      "vendorId",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourceSalesOrder: {
		path:         "/sales-orders",
		idField:      "salesOrderId",
		statusField:  "status",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourcePurchaseOrder: {
		path:         "/purchase-orders",
		idField:      "purchaseOrderId",
		statusField:  "status",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourceStockTransfer: {
		path:         "/stock-transfers",
		idField:      "transferId",
		statusField:  "status",
		updatedField: "lastModifiedDateTime",
	},
	watch.ResourceStockAdjustment: {
		path:         "/stock-adjustments",
		idField:      "adjustmentId",
		updatedField: "lastModifiedDateTime",
	},
}

// inventorySummaryPath is the per-product quantity report endpoint
const inventorySummaryPath = "/inventory-summary"

// locationsPath is the locations collection endpoint
const locationsPath = "/locations"

// categoriesPath is the product categories collection endpoint
const categoriesPath = "/categories"

// descriptorFor resolves the collection descriptor for a resource type
func descriptorFor(resource watch.ResourceType) (collectionDescriptor, error) {
	desc, ok := collections[resource]
	if !ok {
		return collectionDescriptor{}, fmt.Errorf("%w: %s", remote.ErrUnknownCollection, resource)
	}
	return desc, nil
}
