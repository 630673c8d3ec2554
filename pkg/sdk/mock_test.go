package mediasearch

import (
	"context"

	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	healthuc "github.com/kailas-cloud/mediasearch/internal/usecase/health"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, tenant string, q query.Query) searchuc.Response
}

func (m *mockSearchUC) Search(ctx context.Context, tenant string, q query.Query) searchuc.Response {
	return m.searchFn(ctx, tenant, q)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	upsertFn func(ctx context.Context, tenant string, items []indexer.MediaItem) (int, []indexer.ItemError)
	deleteFn func(ctx context.Context, tenant, docID string) bool
}

func (m *mockIndexUC) UpsertBatch(
	ctx context.Context, tenant string, items []indexer.MediaItem,
) (int, []indexer.ItemError) {
	return m.upsertFn(ctx, tenant, items)
}

func (m *mockIndexUC) Delete(ctx context.Context, tenant, docID string) bool {
	return m.deleteFn(ctx, tenant, docID)
}

// --- storeUseCase mock ---

type mockStoreUC struct {
	deleteFn func(ctx context.Context, tenant string) bool
}

func (m *mockStoreUC) Delete(ctx context.Context, tenant string) bool {
	return m.deleteFn(ctx, tenant)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- helpers ---

func testClient(searchSvc searchUseCase, indexSvc indexUseCase, storeSvc storeUseCase) *Client {
	return &Client{
		searchSvc:    searchSvc,
		indexSvc:     indexSvc,
		storeSvc:     storeSvc,
		maxBatchSize: defaultMaxBatchSize,
	}
}
