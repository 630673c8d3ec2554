package indexer

import (
	"context"

	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
)

// StoreResolver yields the tenant's primary store.
type StoreResolver interface {
	GetOrCreate(ctx context.Context, tenant string) (domds.Handle, bool)
	Resolve(ctx context.Context, tenant string) (domds.Handle, bool)
}

// DocumentStore writes documents into a primary store.
type DocumentStore interface {
	Create(ctx context.Context, h domds.Handle, doc domdoc.Indexed) error
	Update(ctx context.Context, h domds.Handle, doc domdoc.Indexed) error
	Delete(ctx context.Context, h domds.Handle, id string) error
}

// Mirror receives a copy of every indexed document for the fallback backend.
type Mirror interface {
	Upsert(ctx context.Context, tenant string, doc domdoc.Document) error
	Delete(ctx context.Context, tenant, docID string) error
}
