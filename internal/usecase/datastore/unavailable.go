package datastore

import (
	"context"

	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
)

// Unavailable stands in for the Manager when no primary index is deployed.
// Every tenant resolves to no store, and deletes succeed trivially.
type Unavailable struct{}

// GetOrCreate never yields a store.
func (Unavailable) GetOrCreate(context.Context, string) (domds.Handle, bool) {
	return domds.Handle{}, false
}

// Resolve never yields a store.
func (Unavailable) Resolve(context.Context, string) (domds.Handle, bool) {
	return domds.Handle{}, false
}

// Invalidate is a no-op.
func (Unavailable) Invalidate(string) {}

// Delete reports success; there is nothing to remove.
func (Unavailable) Delete(context.Context, string) bool { return true }
