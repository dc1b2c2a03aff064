package remoteapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// maxResponseSize is the maximum allowed response size from the remote API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// HTTPClient implements the remote.Client port against the inventory
// service's JSON REST API. All calls are scoped to one company and
// authenticated with a bearer API key.
type HTTPClient struct {
	config     *Config
	httpClient *http.Client
}

// NewHTTPClient creates a remote API client with the given configuration
func NewHTTPClient(config *Config) (*HTTPClient, error) {
	if config == nil {
		return nil, remote.ErrNotConfigured
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrNotConfigured, err)
	}

	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// SetHTTPClient replaces the underlying HTTP client (for testing)
func (c *HTTPClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// doRequest issues one authenticated GET and returns the response body
func (c *HTTPClient) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.config.BaseURL + "/" + c.config.CompanyID + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteapi: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("remoteapi: failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", remote.ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", remote.ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// FetchPage returns at most q.Count normalized records of a collection
func (c *HTTPClient) FetchPage(ctx context.Context, resource watch.ResourceType, q remote.PageQuery) ([]watch.Record, error) {
	desc, err := descriptorFor(resource)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if q.Count > 0 {
		query.Set("count", strconv.Itoa(q.Count))
	}
	if q.After != "" {
		query.Set("after", q.After)
	}
	if q.LocationID != "" {
		query.Set("locationId", q.LocationID)
	}
	if q.CategoryID != "" {
		query.Set("categoryId", q.CategoryID)
	}

	body, err := c.doRequest(ctx, desc.path, query)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s response: %v", remote.ErrInvalidResponse, desc.path, err)
	}

	records := make([]watch.Record, 0, len(raws))
	for _, raw := range raws {
		rec, err := normalizeRecord(raw, desc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// normalizeRecord extracts the identity, status and timestamp fields the
// change detector compares, keeping the full record as the event payload
func normalizeRecord(raw json.RawMessage, desc collectionDescriptor) (watch.Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return watch.Record{}, fmt.Errorf("%w: record is not an object: %v", remote.ErrInvalidResponse, err)
	}

	rec := watch.Record{Raw: raw}

	idRaw, ok := fields[desc.idField]
	if !ok {
		return watch.Record{}, fmt.Errorf("%w: record missing %s", remote.ErrInvalidResponse, desc.idField)
	}
	if err := json.Unmarshal(idRaw, &rec.ID); err != nil || rec.ID == "" {
		return watch.Record{}, fmt.Errorf("%w: record has invalid %s", remote.ErrInvalidResponse, desc.idField)
	}

	if desc.statusField != "" {
		if statusRaw, ok := fields[desc.statusField]; ok {
			// A malformed status is treated as absent, not fatal
			_ = json.Unmarshal(statusRaw, &rec.Status)
		}
	}

	if updatedRaw, ok := fields[desc.updatedField]; ok {
		var ts time.Time
		if err := json.Unmarshal(updatedRaw, &ts); err == nil {
			rec.UpdatedAt = &ts
		}
	}

	return rec, nil
}

// quantityRow is one row of the per-product quantity report
type quantityRow struct {
	ProductID      string          `json:"productId"`
	QuantityOnHand decimal.Decimal `json:"quantityOnHand"`
}

// FetchQuantities returns the per-product quantity report rows
func (c *HTTPClient) FetchQuantities(ctx context.Context, q remote.QuantityQuery) ([]watch.QuantityEntry, error) {
	query := url.Values{}
	if q.LocationID != "" {
		query.Set("locationId", q.LocationID)
	}
	if q.CategoryID != "" {
		query.Set("categoryId", q.CategoryID)
	}

	body, err := c.doRequest(ctx, inventorySummaryPath, query)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%w: failed to parse inventory summary: %v", remote.ErrInvalidResponse, err)
	}

	entries := make([]watch.QuantityEntry, 0, len(raws))
	for _, raw := range raws {
		var row quantityRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("%w: invalid inventory summary row: %v", remote.ErrInvalidResponse, err)
		}
		if row.ProductID == "" {
			return nil, fmt.Errorf("%w: inventory summary row missing productId", remote.ErrInvalidResponse)
		}
		entries = append(entries, watch.QuantityEntry{
			ProductID: row.ProductID,
			Quantity:  row.QuantityOnHand,
			Raw:       raw,
		})
	}
	return entries, nil
}

// Ensure HTTPClient implements the remote client port
var _ remote.Client = (*HTTPClient)(nil)
