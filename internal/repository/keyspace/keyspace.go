// Package keyspace lays out the Redis keys shared by the primary-store repositories.
package keyspace

import (
	"strings"

	"github.com/kailas-cloud/mediasearch/internal/domain"
)

// Keyspace builds keys under a common prefix.
type Keyspace struct {
	prefix string
}

// New creates a Keyspace. An empty prefix selects domain.DefaultKeyPrefix.
func New(prefix string) Keyspace {
	if prefix == "" {
		prefix = domain.DefaultKeyPrefix
	}
	return Keyspace{prefix: prefix}
}

// Prefix returns the common key prefix.
func (k Keyspace) Prefix() string { return k.prefix }

// StoreMeta is the metadata hash of a store.
func (k Keyspace) StoreMeta(storeID string) string {
	return k.prefix + "store:" + storeID
}

// Alias points a base store id at the suffixed store that replaced it.
func (k Keyspace) Alias(baseID string) string {
	return k.prefix + "alias:" + baseID
}

// Index is the FT index of a store.
func (k Keyspace) Index(storeID string) string {
	return k.prefix + storeID + ":idx"
}

// DocPrefix is the key prefix indexed by a store.
func (k Keyspace) DocPrefix(storeID string) string {
	return k.prefix + storeID + ":doc:"
}

// Doc is the hash key of a document.
func (k Keyspace) Doc(storeID, docID string) string {
	return k.DocPrefix(storeID) + docID
}

// DocID extracts the document id from a document key.
func (k Keyspace) DocID(storeID, key string) string {
	return strings.TrimPrefix(key, k.DocPrefix(storeID))
}

// Settings is the per-tenant search preference hash.
func (k Keyspace) Settings(tenant string) string {
	return k.prefix + "settings:" + tenant
}
