package datastore

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IDPrefix starts every derived store id.
const IDPrefix = "ds-"

// State is the lifecycle state of a primary store.
type State string

// Store states.
const (
	StateCreating State = "creating"
	StateActive   State = "active"
	StateDeleting State = "deleting"
)

// Handle is a resolved reference to a tenant's primary store.
type Handle struct {
	tenant     string
	storeID    string
	path       string
	indexName  string
	state      State
	verifiedAt time.Time
}

// NewHandle creates a store handle.
func NewHandle(tenant, storeID, indexName string, state State, verifiedAt time.Time) Handle {
	return Handle{
		tenant:     tenant,
		storeID:    storeID,
		path:       PathFor(tenant, storeID),
		indexName:  indexName,
		state:      state,
		verifiedAt: verifiedAt,
	}
}

// Tenant returns the owning tenant.
func (h Handle) Tenant() string { return h.tenant }

// StoreID returns the store identifier, possibly timestamp-suffixed.
func (h Handle) StoreID() string { return h.storeID }

// Path returns the full resource path.
func (h Handle) Path() string { return h.path }

// IndexName returns the backing search index.
func (h Handle) IndexName() string { return h.indexName }

// State returns the lifecycle state seen at resolution time.
func (h Handle) State() State { return h.state }

// VerifiedAt returns when the store was last confirmed to exist.
func (h Handle) VerifiedAt() time.Time { return h.verifiedAt }

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool { return h.storeID == "" }

// StoreIDFor derives the deterministic store id of a tenant: lowercased,
// runs of characters outside [a-z0-9] collapsed to "-", trimmed, prefixed.
func StoreIDFor(tenant string) string {
	var b strings.Builder
	b.Grow(len(IDPrefix) + len(tenant))
	b.WriteString(IDPrefix)

	pendingSep := false
	wrote := false
	for _, r := range strings.ToLower(tenant) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && wrote {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingSep = false
			wrote = true
			continue
		}
		pendingSep = true
	}
	if !wrote {
		b.WriteString("default")
	}
	return b.String()
}

// SuffixedID returns the conflict-avoiding variant of base at t.
func SuffixedID(base string, t time.Time) string {
	return base + "-" + strconv.FormatInt(t.Unix(), 10)
}

// PathFor builds the resource path of a store.
func PathFor(tenant, storeID string) string {
	return fmt.Sprintf("tenants/%s/stores/%s", tenant, storeID)
}

// OperationKind is the long-running operation type.
type OperationKind string

// Operation kinds.
const (
	OpCreate OperationKind = "create"
	OpDelete OperationKind = "delete"
)

// Operation is a long-running store create or delete.
type Operation struct {
	ID     string
	Kind   OperationKind
	Handle Handle
}
