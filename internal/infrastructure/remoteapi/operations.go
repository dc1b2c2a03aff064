package remoteapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// Typed list operations over the watched collections. These are thin shims
// over FetchPage for callers that want a named operation per collection
// instead of a resource-type parameter.

// ListProducts returns one page of the products collection
func (c *HTTPClient) ListProducts(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceProduct, q)
}

// ListCustomers returns one page of the customers collection
func (c *HTTPClient) ListCustomers(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceCustomer, q)
}

// ListVendors returns one page of the vendors collection
func (c *HTTPClient) ListVendors(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceVendor, q)
}

// ListSalesOrders returns one page of the sales orders collection
func (c *HTTPClient) ListSalesOrders(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceSalesOrder, q)
}

// ListPurchaseOrders returns one page of the purchase orders collection
func (c *HTTPClient) ListPurchaseOrders(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourcePurchaseOrder, q)
}

// ListStockTransfers returns one page of the stock transfers collection
func (c *HTTPClient) ListStockTransfers(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceStockTransfer, q)
}

// ListStockAdjustments returns one page of the stock adjustments collection
func (c *HTTPClient) ListStockAdjustments(ctx context.Context, q remote.PageQuery) ([]watch.Record, error) {
	return c.FetchPage(ctx, watch.ResourceStockAdjustment, q)
}

// ListLocations returns the company's stocking locations. Locations are not
// watchable; this exists so operators can look up filter IDs.
func (c *HTTPClient) ListLocations(ctx context.Context) ([]remote.Location, error) {
	body, err := c.doRequest(ctx, locationsPath, nil)
	if err != nil {
		return nil, err
	}

	var locations []remote.Location
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, fmt.Errorf("%w: failed to parse locations: %v", remote.ErrInvalidResponse, err)
	}
	return locations, nil
}

// ListCategories returns the company's product categories, for filter lookup
func (c *HTTPClient) ListCategories(ctx context.Context) ([]remote.Category, error) {
	body, err := c.doRequest(ctx, categoriesPath, nil)
	if err != nil {
		return nil, err
	}

	var categories []remote.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("%w: failed to parse categories: %v", remote.ErrInvalidResponse, err)
	}
	return categories, nil
}

// Ensure HTTPClient implements the lookup port
var _ remote.Lookup = (*HTTPClient)(nil)
