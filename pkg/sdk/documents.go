package mediasearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
)

// UpsertBatch indexes items for a tenant. Per-item failures are reported in
// the result; the error is non-nil only for an invalid call.
func (c *Client) UpsertBatch(ctx context.Context, tenant string, items []MediaItem) (res BatchResult, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if len(res.Errors) > 0 {
			status = "partial"
		}
		c.obs.observe("upsert_batch", start, status, err)
	}()

	if tenant == "" {
		return BatchResult{}, fmt.Errorf("upsert batch: %w: tenant is required", domain.ErrInvalidRequest)
	}
	if len(items) == 0 || len(items) > c.maxBatchSize {
		return BatchResult{}, fmt.Errorf("upsert batch: %w: items count must be between 1 and %d",
			domain.ErrInvalidRequest, c.maxBatchSize)
	}

	internal := make([]indexer.MediaItem, len(items))
	for i := range items {
		internal[i] = toInternalItem(&items[i])
	}

	indexed, errs := c.indexSvc.UpsertBatch(ctx, tenant, internal)
	res = BatchResult{Indexed: indexed, Errors: make([]ItemError, len(errs))}
	for i, e := range errs {
		res.Errors[i] = ItemError{ID: e.ID, Err: e.Err}
	}
	return res, nil
}

// DeleteDocument removes one document. A missing document counts as deleted.
func (c *Client) DeleteDocument(ctx context.Context, tenant, id string) bool {
	start := time.Now()
	ok := c.indexSvc.Delete(ctx, tenant, id)
	c.obs.observe("delete_document", start, okStatus(ok), nil)
	return ok
}

// DeleteStore drops the tenant's primary store.
func (c *Client) DeleteStore(ctx context.Context, tenant string) bool {
	start := time.Now()
	ok := c.storeSvc.Delete(ctx, tenant)
	c.obs.observe("delete_store", start, okStatus(ok), nil)
	return ok
}

func okStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func toInternalItem(m *MediaItem) indexer.MediaItem {
	return indexer.MediaItem{
		ID:                m.ID,
		Type:              m.Type,
		Source:            m.Source,
		Title:             m.Title,
		Description:       m.Description,
		Prompt:            m.Prompt,
		Summary:           m.Summary,
		VisionDescription: m.VisionDescription,
		VisionKeywords:    m.VisionKeywords,
		VisionCategories:  m.VisionCategories,
		Tags:              m.Tags,
		Collections:       m.Collections,
		URL:               m.URL,
		ThumbnailURL:      m.ThumbnailURL,
		CreatedAt:         m.CreatedAt,
	}
}
