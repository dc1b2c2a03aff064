package poller

import (
	"context"

	"github.com/stockwatch/backend/internal/domain/remote"
	"github.com/stockwatch/backend/internal/domain/watch"
)

// DefaultPageSize is the fixed page bound for snapshot fetches. The detector
// only ever sees the first page of a collection; changes beyond it are
// invisible until they enter the page. This is a documented boundary of the
// polling design, not something the fetcher works around.
const DefaultPageSize = 50

// SnapshotFetcher retrieves one bounded snapshot of the collection a watcher
// consumes.
type SnapshotFetcher interface {
	FetchSnapshot(ctx context.Context, kind watch.SnapshotKind, resource watch.ResourceType, opts Options) (watch.Snapshot, error)
}

// ClientFetcher adapts the remote client port into snapshots. Job options
// are passed through as query filters verbatim.
type ClientFetcher struct {
	client   remote.Client
	pageSize int
}

// NewClientFetcher creates a fetcher over the remote client. A non-positive
// pageSize falls back to DefaultPageSize.
func NewClientFetcher(client remote.Client, pageSize int) *ClientFetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ClientFetcher{client: client, pageSize: pageSize}
}

// FetchSnapshot fetches either the first page of a collection or the
// per-product quantity report, depending on the watcher's snapshot kind.
func (f *ClientFetcher) FetchSnapshot(ctx context.Context, kind watch.SnapshotKind, resource watch.ResourceType, opts Options) (watch.Snapshot, error) {
	if kind == watch.SnapshotQuantities {
		quantities, err := f.client.FetchQuantities(ctx, remote.QuantityQuery{
			LocationID: opts.LocationID,
			CategoryID: opts.CategoryID,
		})
		if err != nil {
			return watch.Snapshot{}, err
		}
		return watch.Snapshot{Quantities: quantities}, nil
	}

	records, err := f.client.FetchPage(ctx, resource, remote.PageQuery{
		Count:      f.pageSize,
		LocationID: opts.LocationID,
		CategoryID: opts.CategoryID,
	})
	if err != nil {
		return watch.Snapshot{}, err
	}
	return watch.Snapshot{Records: records}, nil
}

var _ SnapshotFetcher = (*ClientFetcher)(nil)
