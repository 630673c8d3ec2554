package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/repository/dberr"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
)

const contentField = "__content"

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo stores indexed documents as hashes under the store's document prefix.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a document repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Create writes a new document. Returns domain.ErrAlreadyExists if the id is taken.
func (r *Repo) Create(ctx context.Context, h domds.Handle, doc domdoc.Indexed) error {
	key := r.keys.Doc(h.StoreID(), doc.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return dberr.Wrap("check exists "+key, err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.write(ctx, key, doc)
}

// Update overwrites an existing document. Returns domain.ErrDocumentNotFound if absent.
func (r *Repo) Update(ctx context.Context, h domds.Handle, doc domdoc.Indexed) error {
	key := r.keys.Doc(h.StoreID(), doc.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return dberr.Wrap("check exists "+key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return r.write(ctx, key, doc)
}

// Delete removes a document. Returns domain.ErrDocumentNotFound if absent.
func (r *Repo) Delete(ctx context.Context, h domds.Handle, id string) error {
	key := r.keys.Doc(h.StoreID(), id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return dberr.Wrap("check exists "+key, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return dberr.Wrap("del "+key, err)
	}
	return nil
}

// write stores every field, empty ones included, so an update never leaves
// stale values behind.
func (r *Repo) write(ctx context.Context, key string, doc domdoc.Indexed) error {
	fields := make(map[string]string, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	fields[contentField] = doc.Content

	if err := r.store.HSet(ctx, key, fields); err != nil {
		return dberr.Wrap(fmt.Sprintf("hset %s", key), err)
	}
	return nil
}
