package datastore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	"github.com/kailas-cloud/mediasearch/internal/logger"
	"github.com/kailas-cloud/mediasearch/internal/metrics"
)

// Defaults for store lifecycle bounds.
const (
	DefaultCreateTimeout     = 120 * time.Second
	DefaultDeleteWait        = 10 * time.Second
	DefaultMaxCreateAttempts = 3
)

// Manager owns the tenant -> primary store mapping for this process.
// Handles are created lazily, cached, and dropped from the cache on delete
// or when a caller reports the store gone. Every drop bumps the tenant's
// generation; lookups that started under an older generation do not cache.
type Manager struct {
	backend       Backend
	logger        *zap.Logger
	createTimeout time.Duration
	deleteWait    time.Duration
	maxAttempts   int
	now           func() time.Time

	mu      sync.RWMutex
	ids     map[string]string // tenant -> store id, including suffixed ids
	handles map[string]domds.Handle
	gens    map[string]uint64
	group   singleflight.Group
}

// NewManager creates a store manager.
func NewManager(backend Backend, l *zap.Logger) *Manager {
	if l == nil {
		l = zap.NewNop()
	}
	return &Manager{
		backend:       backend,
		logger:        l,
		createTimeout: DefaultCreateTimeout,
		deleteWait:    DefaultDeleteWait,
		maxAttempts:   DefaultMaxCreateAttempts,
		now:           time.Now,
		ids:           make(map[string]string),
		handles:       make(map[string]domds.Handle),
		gens:          make(map[string]uint64),
	}
}

// WithCreateTimeout bounds how long a store creation may take.
func (m *Manager) WithCreateTimeout(d time.Duration) *Manager {
	if d > 0 {
		m.createTimeout = d
	}
	return m
}

// WithDeleteWait bounds how long Delete waits for the drop to finish.
func (m *Manager) WithDeleteWait(d time.Duration) *Manager {
	if d > 0 {
		m.deleteWait = d
	}
	return m
}

// WithMaxCreateAttempts bounds the uniqueness retries of a creation.
func (m *Manager) WithMaxCreateAttempts(n int) *Manager {
	if n > 0 {
		m.maxAttempts = n
	}
	return m
}

// GetOrCreate returns the tenant's store, creating it when missing.
// ok is false when no usable store could be obtained; the cause is logged.
func (m *Manager) GetOrCreate(ctx context.Context, tenant string) (domds.Handle, bool) {
	if h, ok := m.cached(tenant); ok {
		return h, true
	}

	// Concurrent first calls share one creation. The creation outlives a
	// cancelled caller so the others still get a store.
	ch := m.group.DoChan(tenant, func() (any, error) {
		gen := m.generation(tenant)
		createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.createTimeout)
		defer cancel()
		return m.getOrCreate(createCtx, tenant, gen)
	})

	select {
	case <-ctx.Done():
		m.log(ctx).Warn("Store lookup abandoned by caller",
			zap.String("tenant", tenant), zap.Error(ctx.Err()))
		return domds.Handle{}, false
	case res := <-ch:
		if res.Err != nil {
			m.log(ctx).Error("Primary store unavailable",
				zap.String("tenant", tenant), zap.Error(res.Err))
			return domds.Handle{}, false
		}
		return res.Val.(domds.Handle), true
	}
}

// Resolve returns the tenant's store without creating one.
func (m *Manager) Resolve(ctx context.Context, tenant string) (domds.Handle, bool) {
	if h, ok := m.cached(tenant); ok {
		return h, true
	}

	gen := m.generation(tenant)
	storeID := m.storeID(tenant)
	h, err := m.backend.GetStore(ctx, tenant, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.log(ctx).Debug("Primary store not provisioned",
				zap.String("tenant", tenant), zap.String("store_id", storeID))
		} else {
			m.log(ctx).Warn("Get primary store failed",
				zap.String("tenant", tenant), zap.String("store_id", storeID), zap.Error(err))
		}
		return domds.Handle{}, false
	}
	m.remember(tenant, h, gen)
	return h, true
}

// Invalidate drops the cached store of tenant. Lookups already in flight
// return their result to their callers but do not cache it.
func (m *Manager) Invalidate(tenant string) {
	m.mu.Lock()
	m.gens[tenant]++
	delete(m.ids, tenant)
	delete(m.handles, tenant)
	m.mu.Unlock()
	m.group.Forget(tenant)
}

// Delete removes the tenant's store. A store that does not exist counts as
// deleted. The cache entry is dropped in every case.
func (m *Manager) Delete(ctx context.Context, tenant string) bool {
	storeID := m.storeID(tenant)
	m.Invalidate(tenant)
	defer m.Invalidate(tenant)

	op, err := m.backend.DeleteStore(ctx, tenant, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.DatastoreOperationsTotal.WithLabelValues("delete", "not_found").Inc()
		return true
	}
	if err != nil {
		metrics.DatastoreOperationsTotal.WithLabelValues("delete", "error").Inc()
		m.log(ctx).Error("Delete primary store failed",
			zap.String("tenant", tenant), zap.String("store_id", storeID), zap.Error(err))
		return false
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.deleteWait)
	defer cancel()
	if _, err := m.backend.WaitOperation(waitCtx, op); err != nil {
		m.log(ctx).Warn("Store deletion still in progress",
			zap.String("tenant", tenant), zap.String("store_id", storeID), zap.Error(err))
	}
	metrics.DatastoreOperationsTotal.WithLabelValues("delete", "ok").Inc()
	return true
}

func (m *Manager) getOrCreate(ctx context.Context, tenant string, gen uint64) (domds.Handle, error) {
	if h, ok := m.cached(tenant); ok {
		return h, nil
	}

	baseID := m.storeID(tenant)
	h, err := m.backend.GetStore(ctx, tenant, baseID)
	if err == nil {
		m.remember(tenant, h, gen)
		return h, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domds.Handle{}, fmt.Errorf("get store %s: %w", baseID, err)
	}

	var created domds.Handle
	storeID, err := m.createUnique(ctx, baseID, func(id string) error {
		h, err := m.create(ctx, tenant, id)
		if err != nil {
			return err
		}
		created = h
		return nil
	})
	if err != nil {
		metrics.DatastoreOperationsTotal.WithLabelValues("create", "error").Inc()
		return domds.Handle{}, err
	}

	metrics.DatastoreOperationsTotal.WithLabelValues("create", "ok").Inc()
	if storeID != baseID {
		if err := m.backend.SetAlias(ctx, tenant, baseID, storeID); err != nil {
			m.log(ctx).Warn("Store alias not saved",
				zap.String("tenant", tenant), zap.String("store_id", storeID), zap.Error(err))
		}
	}
	m.log(ctx).Info("Primary store ready",
		zap.String("tenant", tenant), zap.String("store_id", storeID))
	m.remember(tenant, created, gen)
	return created, nil
}

// create makes one creation attempt under id. A store that already exists
// is fetched and adopted.
func (m *Manager) create(ctx context.Context, tenant, id string) (domds.Handle, error) {
	op, err := m.backend.CreateStore(ctx, tenant, id)
	if errors.Is(err, domain.ErrAlreadyExists) {
		h, gerr := m.backend.GetStore(ctx, tenant, id)
		if gerr != nil {
			return domds.Handle{}, fmt.Errorf("get existing store %s: %w", id, gerr)
		}
		return h, nil
	}
	if err != nil {
		return domds.Handle{}, fmt.Errorf("create store %s: %w", id, err)
	}

	waited, werr := m.backend.WaitOperation(ctx, op)
	if werr != nil {
		m.log(ctx).Warn("Store creation wait failed",
			zap.String("tenant", tenant), zap.String("store_id", id), zap.Error(werr))
	}

	verified, verr := m.backend.GetStore(ctx, tenant, id)
	switch {
	case verr == nil:
		return verified, nil
	case werr == nil && !waited.IsZero():
		return waited, nil
	default:
		return op.Handle, nil
	}
}

// createUnique calls attempt with baseID, then with timestamp-suffixed ids
// while the previous id is still being deleted.
func (m *Manager) createUnique(ctx context.Context, baseID string, attempt func(id string) error) (string, error) {
	id := baseID
	var lastErr error
	for i := 0; i < m.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("create store %s: %w", baseID, err)
		}
		lastErr = attempt(id)
		if lastErr == nil {
			return id, nil
		}
		if !errors.Is(lastErr, domain.ErrStoreDeleting) {
			return "", lastErr
		}
		m.log(ctx).Info("Store id is being deleted, retrying with suffix",
			zap.String("store_id", id), zap.Int("attempt", i+1))
		id = domds.SuffixedID(baseID, m.now().Add(time.Duration(i)*time.Second))
	}
	return "", fmt.Errorf("create store %s after %d attempts: %w", baseID, m.maxAttempts, lastErr)
}

func (m *Manager) storeID(tenant string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.ids[tenant]; ok {
		return id
	}
	return domds.StoreIDFor(tenant)
}

func (m *Manager) cached(tenant string) (domds.Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[tenant]
	return h, ok
}

func (m *Manager) generation(tenant string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gens[tenant]
}

// remember caches h unless the tenant was invalidated after gen was read.
func (m *Manager) remember(tenant string, h domds.Handle, gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[tenant] != gen {
		return
	}
	m.ids[tenant] = h.StoreID()
	m.handles[tenant] = h
}

func (m *Manager) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, m.logger)
}
