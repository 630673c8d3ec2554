package datastore

import (
	"context"

	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
)

// Backend is the primary store lifecycle contract.
// GetStore and DeleteStore on a base id follow the alias saved by SetAlias.
type Backend interface {
	CreateStore(ctx context.Context, tenant, storeID string) (domds.Operation, error)
	GetStore(ctx context.Context, tenant, storeID string) (domds.Handle, error)
	DeleteStore(ctx context.Context, tenant, storeID string) (domds.Operation, error)
	WaitOperation(ctx context.Context, op domds.Operation) (domds.Handle, error)
	SetAlias(ctx context.Context, tenant, baseID, storeID string) error
}
