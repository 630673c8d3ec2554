package mediasearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
)

func TestUpsertBatch_ConvertsItemsAndErrors(t *testing.T) {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var got []indexer.MediaItem
	svc := &mockIndexUC{upsertFn: func(_ context.Context, _ string, items []indexer.MediaItem) (int, []indexer.ItemError) {
		got = items
		return 1, []indexer.ItemError{{ID: "b", Err: domain.ErrTransient}}
	}}
	c := testClient(nil, svc, nil)

	res, err := c.UpsertBatch(context.Background(), "acme", []MediaItem{
		{ID: "a", Type: "image", Title: "A", VisionKeywords: []string{"sky"}, CreatedAt: created},
		{ID: "b", Type: "video"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[0].VisionKeywords[0] != "sky" || !got[0].CreatedAt.Equal(created) {
		t.Errorf("items not converted: %+v", got)
	}
	if res.Indexed != 1 || len(res.Errors) != 1 || res.Errors[0].ID != "b" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !errors.Is(res.Errors[0].Err, domain.ErrTransient) {
		t.Errorf("error not preserved: %v", res.Errors[0].Err)
	}
}

func TestUpsertBatch_Limits(t *testing.T) {
	svc := &mockIndexUC{upsertFn: func(context.Context, string, []indexer.MediaItem) (int, []indexer.ItemError) {
		t.Fatal("indexer should not run")
		return 0, nil
	}}
	c := testClient(nil, svc, nil)

	tests := []struct {
		name   string
		tenant string
		n      int
	}{
		{"no tenant", "", 1},
		{"empty", "acme", 0},
		{"too many", "acme", defaultMaxBatchSize + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.UpsertBatch(context.Background(), tt.tenant, make([]MediaItem, tt.n))
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestDeletes(t *testing.T) {
	var deletedDoc, deletedStore string
	c := testClient(nil,
		&mockIndexUC{deleteFn: func(_ context.Context, tenant, id string) bool {
			deletedDoc = tenant + "/" + id
			return true
		}},
		&mockStoreUC{deleteFn: func(_ context.Context, tenant string) bool {
			deletedStore = tenant
			return false
		}},
	)

	if !c.DeleteDocument(context.Background(), "acme", "d1") || deletedDoc != "acme/d1" {
		t.Errorf("DeleteDocument: got %q", deletedDoc)
	}
	if c.DeleteStore(context.Background(), "acme") || deletedStore != "acme" {
		t.Errorf("DeleteStore: got %q", deletedStore)
	}
}
