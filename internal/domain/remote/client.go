// Package remote defines the port interface for the third-party inventory
// management service. It follows the Ports & Adapters pattern: the interface
// lives here in the domain layer, and the concrete HTTP adapter is in the
// infrastructure layer.
package remote

import (
	"context"
	"errors"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// ---------------------------------------------------------------------------
// Remote Service Errors
// ---------------------------------------------------------------------------

var (
	// ErrNotConfigured indicates the remote service credentials are missing
	ErrNotConfigured = errors.New("remote: service not configured")
	// ErrUnavailable indicates a network-level failure reaching the service
	ErrUnavailable = errors.New("remote: service temporarily unavailable")
	// ErrRequestFailed indicates the service answered with an HTTP error
	ErrRequestFailed = errors.New("remote: request failed")
	// ErrInvalidResponse indicates the response body could not be interpreted
	ErrInvalidResponse = errors.New("remote: invalid response")
	// ErrUnknownCollection indicates a resource type with no remote collection
	ErrUnknownCollection = errors.New("remote: unknown collection")
)

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// PageQuery bounds one collection fetch. The change detector only ever sets
// Count and the pass-through filters; After is the cursor for callers that
// page beyond the first Count records.
type PageQuery struct {
	// Count is the maximum number of records to return
	Count int
	// After is the opaque cursor of the last record of the previous page
	After string
	// LocationID restricts the fetch to one location, empty for all
	LocationID string
	// CategoryID restricts the fetch to one category, empty for all
	CategoryID string
}

// QuantityQuery bounds one fetch of the per-product quantity report
type QuantityQuery struct {
	// LocationID restricts the report to one location, empty for all
	LocationID string
	// CategoryID restricts the report to one category, empty for all
	CategoryID string
}

// ---------------------------------------------------------------------------
// Client Port Interface
// ---------------------------------------------------------------------------

// Client issues authenticated calls against the remote inventory service.
// Every method reports HTTP and network failures as errors wrapping the
// sentinel errors above; the change detector treats any of them as "no
// events this cycle".
type Client interface {
	// FetchPage returns at most q.Count normalized records of a collection,
	// in the service's natural response order
	FetchPage(ctx context.Context, resource watch.ResourceType, q PageQuery) ([]watch.Record, error)

	// FetchQuantities returns the per-product quantity report rows
	FetchQuantities(ctx context.Context, q QuantityQuery) ([]watch.QuantityEntry, error)
}

// ---------------------------------------------------------------------------
// Filter Lookup
// ---------------------------------------------------------------------------

// Location is one stocking location of the company
type Location struct {
	LocationID string `json:"locationId"`
	Name       string `json:"name"`
	IsActive   bool   `json:"isActive"`
}

// Category is one product category of the company
type Category struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
}

// Lookup resolves the IDs usable as job filters. Locations and categories are
// not watchable collections themselves.
type Lookup interface {
	// ListLocations returns the company's stocking locations
	ListLocations(ctx context.Context) ([]Location, error)

	// ListCategories returns the company's product categories
	ListCategories(ctx context.Context) ([]Category, error)
}
