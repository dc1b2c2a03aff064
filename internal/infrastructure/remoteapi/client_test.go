package remoteapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/domain/watch"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(NewConfig(srv.URL, "test-key", "company-1"))
	require.NoError(t, err)
	return client, srv
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("rejects nil configuration", func(t *testing.T) {
		_, err := NewHTTPClient(nil)
		assert.ErrorIs(t, err, remote.ErrNotConfigured)
	})

	t.Run("rejects missing credentials", func(t *testing.T) {
		_, err := NewHTTPClient(NewConfig("https://api.example.com", "", "company-1"))
		assert.ErrorIs(t, err, remote.ErrNotConfigured)
	})

	t.Run("trims a trailing slash off the base URL", func(t *testing.T) {
		cfg := NewConfig("https://api.example.com/", "key", "company-1")
		_, err := NewHTTPClient(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	})
}

func TestHTTPClient_FetchPage(t *testing.T) {
	ctx := context.Background()

	t.Run("issues an authenticated company-scoped request", func(t *testing.T) {
		var gotPath, gotAuth, gotAccept string
		var gotQuery map[string][]string

		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			gotQuery = r.URL.Query()
			w.Write([]byte(`[]`))
		})

		_, err := client.FetchPage(ctx, watch.ResourceProduct, remote.PageQuery{
			Count:      50,
			LocationID: "loc-1",
		})
		require.NoError(t, err)

		assert.Equal(t, "/company-1/products", gotPath)
		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, []string{"50"}, gotQuery["count"])
		assert.Equal(t, []string{"loc-1"}, gotQuery["locationId"])
		assert.NotContains(t, gotQuery, "after")
		assert.NotContains(t, gotQuery, "categoryId")
	})

	t.Run("normalizes id, status and timestamp", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/company-1/sales-orders", r.URL.Path)
			w.Write([]byte(`[
				{"salesOrderId":"so-1","status":"Open","lastModifiedDateTime":"2026-08-25T10:00:00Z","customField":1},
				{"salesOrderId":"so-2","status":"Fulfilled"}
			]`))
		})

		records, err := client.FetchPage(ctx, watch.ResourceSalesOrder, remote.PageQuery{Count: 50})
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "so-1", records[0].ID)
		assert.Equal(t, "Open", records[0].Status)
		require.NotNil(t, records[0].UpdatedAt)
		assert.Equal(t, 2026, records[0].UpdatedAt.Year())
		assert.JSONEq(t,
			`{"salesOrderId":"so-1","status":"Open","lastModifiedDateTime":"2026-08-25T10:00:00Z","customField":1}`,
			string(records[0].Raw))

		assert.Equal(t, "so-2", records[1].ID)
		assert.Nil(t, records[1].UpdatedAt)
	})

	t.Run("record without an id is an invalid response", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"name":"no id here"}]`))
		})

		_, err := client.FetchPage(ctx, watch.ResourceCustomer, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrInvalidResponse)
	})

	t.Run("non-array body is an invalid response", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"unexpected"}`))
		})

		_, err := client.FetchPage(ctx, watch.ResourceVendor, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrInvalidResponse)
	})

	t.Run("server errors map to ErrUnavailable", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.FetchPage(ctx, watch.ResourceProduct, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrUnavailable)
	})

	t.Run("client errors map to ErrRequestFailed", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.FetchPage(ctx, watch.ResourceProduct, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrRequestFailed)
	})

	t.Run("network failures map to ErrUnavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		client, err := NewHTTPClient(NewConfig(srv.URL, "key", "company-1"))
		require.NoError(t, err)
		srv.Close()

		_, err = client.FetchPage(ctx, watch.ResourceProduct, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrUnavailable)
	})

	t.Run("unknown collections are rejected without a request", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})

		_, err := client.FetchPage(ctx, watch.ResourceInventory, remote.PageQuery{})
		assert.ErrorIs(t, err, remote.ErrUnknownCollection)
	})
}

func TestHTTPClient_FetchQuantities(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches the inventory summary report", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/company-1/inventory-summary", r.URL.Path)
			assert.Equal(t, "cat-1", r.URL.Query().Get("categoryId"))
			w.Write([]byte(`[
				{"productId":"p1","quantityOnHand":"12.5","name":"Widget"},
				{"productId":"p2","quantityOnHand":3}
			]`))
		})

		entries, err := client.FetchQuantities(ctx, remote.QuantityQuery{CategoryID: "cat-1"})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, "p1", entries[0].ProductID)
		assert.Equal(t, "12.5", entries[0].Quantity.String())
		assert.JSONEq(t, `{"productId":"p1","quantityOnHand":"12.5","name":"Widget"}`, string(entries[0].Raw))
		assert.Equal(t, "3", entries[1].Quantity.String())
	})

	t.Run("row without a product id is an invalid response", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"quantityOnHand":5}]`))
		})

		_, err := client.FetchQuantities(ctx, remote.QuantityQuery{})
		assert.ErrorIs(t, err, remote.ErrInvalidResponse)
	})
}
