package datastore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/mediasearch/internal/db"
	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	"github.com/kailas-cloud/mediasearch/internal/repository/dberr"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
)

const (
	defaultPollInterval = 200 * time.Millisecond
	aliasTarget         = "target"
)

// store is the consumer interface for store lifecycle (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (db.IndexStatus, error)
}

// Repo implements the primary store lifecycle on Redis: a metadata hash per
// store plus one FT index over the store's document prefix.
type Repo struct {
	store        store
	keys         keyspace.Keyspace
	pollInterval time.Duration
	now          func() time.Time
}

// New creates a datastore repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys, pollInterval: defaultPollInterval, now: time.Now}
}

// WithPollInterval sets how often WaitOperation re-checks the index.
func (r *Repo) WithPollInterval(d time.Duration) *Repo {
	if d > 0 {
		r.pollInterval = d
	}
	return r
}

// CreateStore starts creating storeID for tenant.
// Returns ErrAlreadyExists if the store is live and ErrStoreDeleting if a
// previous incarnation is still being dropped.
func (r *Repo) CreateStore(ctx context.Context, tenant, storeID string) (domds.Operation, error) {
	metaKey := r.keys.StoreMeta(storeID)
	indexName := r.keys.Index(storeID)

	meta, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return domds.Operation{}, dberr.Wrap("hgetall store "+storeID, err)
	}
	indexExists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return domds.Operation{}, dberr.Wrap("check index "+storeID, err)
	}

	if domds.State(meta["state"]) == domds.StateDeleting {
		if indexExists {
			return domds.Operation{}, domain.ErrStoreDeleting
		}
		// drop finished but nobody waited on it
		if err := r.store.Del(ctx, metaKey); err != nil {
			return domds.Operation{}, dberr.Wrap("reap store "+storeID, err)
		}
	} else if indexExists {
		return domds.Operation{}, domain.ErrAlreadyExists
	}

	// a new store under the base id supersedes its alias
	target, err := r.target(ctx, storeID)
	if err != nil {
		return domds.Operation{}, err
	}
	if target != storeID {
		if err := r.store.Del(ctx, r.keys.Alias(storeID)); err != nil {
			return domds.Operation{}, dberr.Wrap("del alias "+storeID, err)
		}
	}

	def, err := r.buildIndex(storeID)
	if err != nil {
		return domds.Operation{}, fmt.Errorf("build index: %w", err)
	}

	opID := uuid.NewString()
	now := r.now()
	if err := r.store.HSet(ctx, metaKey, map[string]string{
		"store_id":     storeID,
		"tenant":       tenant,
		"state":        string(domds.StateCreating),
		"created_at":   strconv.FormatInt(now.UnixMilli(), 10),
		"operation_id": opID,
	}); err != nil {
		return domds.Operation{}, dberr.Wrap("hset store "+storeID, err)
	}

	// FT.CREATE, rollback HSET on error
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return domds.Operation{}, domain.ErrAlreadyExists
		}
		cleanupErr := r.store.Del(ctx, metaKey)
		return domds.Operation{}, errors.Join(dberr.Wrap("create index "+storeID, err), cleanupErr)
	}

	return domds.Operation{
		ID:     opID,
		Kind:   domds.OpCreate,
		Handle: domds.NewHandle(tenant, storeID, indexName, domds.StateCreating, now),
	}, nil
}

// GetStore returns the live store storeID, following its alias.
// Missing, half-dropped and index-less stores all report domain.ErrNotFound.
func (r *Repo) GetStore(ctx context.Context, tenant, storeID string) (domds.Handle, error) {
	storeID, err := r.target(ctx, storeID)
	if err != nil {
		return domds.Handle{}, err
	}

	meta, err := r.store.HGetAll(ctx, r.keys.StoreMeta(storeID))
	if err != nil {
		return domds.Handle{}, dberr.Wrap("hgetall store "+storeID, err)
	}
	if len(meta) == 0 {
		return domds.Handle{}, domain.ErrNotFound
	}
	state := domds.State(meta["state"])
	if state == domds.StateDeleting {
		return domds.Handle{}, domain.ErrNotFound
	}

	indexName := r.keys.Index(storeID)
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return domds.Handle{}, dberr.Wrap("check index "+storeID, err)
	}
	if !exists {
		return domds.Handle{}, domain.ErrNotFound
	}

	return domds.NewHandle(tenant, storeID, indexName, state, r.now()), nil
}

// DeleteStore marks storeID deleting and drops its index with documents.
// An aliased base id deletes the store it points at and drops the alias.
func (r *Repo) DeleteStore(ctx context.Context, tenant, baseID string) (domds.Operation, error) {
	storeID, err := r.target(ctx, baseID)
	if err != nil {
		return domds.Operation{}, err
	}
	metaKey := r.keys.StoreMeta(storeID)
	indexName := r.keys.Index(storeID)

	meta, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return domds.Operation{}, dberr.Wrap("hgetall store "+storeID, err)
	}
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return domds.Operation{}, dberr.Wrap("check index "+storeID, err)
	}
	if len(meta) == 0 && !exists {
		if err := r.dropAlias(ctx, baseID, storeID); err != nil {
			return domds.Operation{}, err
		}
		return domds.Operation{}, domain.ErrNotFound
	}

	opID := uuid.NewString()
	if err := r.store.HSet(ctx, metaKey, map[string]string{
		"store_id":     storeID,
		"tenant":       tenant,
		"state":        string(domds.StateDeleting),
		"deleted_at":   strconv.FormatInt(r.now().UnixMilli(), 10),
		"operation_id": opID,
	}); err != nil {
		return domds.Operation{}, dberr.Wrap("hset store "+storeID, err)
	}

	if exists {
		if err := r.store.DropIndex(ctx, indexName, true); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return domds.Operation{}, dberr.Wrap("drop index "+storeID, err)
		}
	}
	if err := r.dropAlias(ctx, baseID, storeID); err != nil {
		return domds.Operation{}, err
	}

	return domds.Operation{
		ID:     opID,
		Kind:   domds.OpDelete,
		Handle: domds.NewHandle(tenant, storeID, indexName, domds.StateDeleting, r.now()),
	}, nil
}

// SetAlias points baseID at storeID so that later lookups of the base id,
// including those of other processes, find the suffixed store.
func (r *Repo) SetAlias(ctx context.Context, tenant, baseID, storeID string) error {
	if err := r.store.HSet(ctx, r.keys.Alias(baseID), map[string]string{
		aliasTarget: storeID,
		"tenant":    tenant,
	}); err != nil {
		return dberr.Wrap("hset alias "+baseID, err)
	}
	return nil
}

// target resolves the alias of storeID, or storeID itself when there is none.
func (r *Repo) target(ctx context.Context, storeID string) (string, error) {
	alias, err := r.store.HGetAll(ctx, r.keys.Alias(storeID))
	if err != nil {
		return "", dberr.Wrap("hgetall alias "+storeID, err)
	}
	if t := alias[aliasTarget]; t != "" {
		return t, nil
	}
	return storeID, nil
}

func (r *Repo) dropAlias(ctx context.Context, baseID, storeID string) error {
	if baseID == storeID {
		return nil
	}
	if err := r.store.Del(ctx, r.keys.Alias(baseID)); err != nil {
		return dberr.Wrap("del alias "+baseID, err)
	}
	return nil
}

// WaitOperation blocks until op completes or ctx ends.
// A finished create marks the store active; a finished delete removes its metadata.
func (r *Repo) WaitOperation(ctx context.Context, op domds.Operation) (domds.Handle, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		done, h, err := r.poll(ctx, op)
		if err != nil || done {
			return h, err
		}
		select {
		case <-ctx.Done():
			return domds.Handle{}, fmt.Errorf("wait %s %s: %w", op.Kind, op.Handle.StoreID(), ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Repo) poll(ctx context.Context, op domds.Operation) (bool, domds.Handle, error) {
	h := op.Handle
	metaKey := r.keys.StoreMeta(h.StoreID())

	switch op.Kind {
	case domds.OpCreate:
		st, err := r.store.IndexInfo(ctx, h.IndexName())
		if errors.Is(err, db.ErrIndexNotFound) {
			return true, domds.Handle{}, domain.ErrNotFound
		}
		if err != nil {
			return true, domds.Handle{}, dberr.Wrap("index info "+h.StoreID(), err)
		}
		if st.Indexing {
			return false, domds.Handle{}, nil
		}
		if err := r.store.HSet(ctx, metaKey, map[string]string{"state": string(domds.StateActive)}); err != nil {
			return true, domds.Handle{}, dberr.Wrap("activate store "+h.StoreID(), err)
		}
		return true, domds.NewHandle(h.Tenant(), h.StoreID(), h.IndexName(), domds.StateActive, r.now()), nil

	case domds.OpDelete:
		exists, err := r.store.IndexExists(ctx, h.IndexName())
		if err != nil {
			return true, domds.Handle{}, dberr.Wrap("check index "+h.StoreID(), err)
		}
		if exists {
			return false, domds.Handle{}, nil
		}
		if err := r.store.Del(ctx, metaKey); err != nil {
			return true, domds.Handle{}, dberr.Wrap("del store "+h.StoreID(), err)
		}
		return true, h, nil

	default:
		return true, domds.Handle{}, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
