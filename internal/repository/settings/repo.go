package settings

import (
	"context"
	"strconv"

	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
	"github.com/kailas-cloud/mediasearch/internal/repository/dberr"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
)

// store is the consumer interface for settings (ISP).
type store interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo reads per-tenant search preferences; unset fields fall back to defaults.
type Repo struct {
	store    store
	keys     keyspace.Keyspace
	defaults domset.Preference
}

// New creates a settings repository.
func New(s store, keys keyspace.Keyspace, defaults domset.Preference) *Repo {
	return &Repo{store: s, keys: keys, defaults: defaults}
}

// GetSearchPreference returns the tenant's preference.
func (r *Repo) GetSearchPreference(ctx context.Context, tenant string) (domset.Preference, error) {
	m, err := r.store.HGetAll(ctx, r.keys.Settings(tenant))
	if err != nil {
		return r.defaults, dberr.Wrap("hgetall settings "+tenant, err)
	}

	pref := r.defaults
	if b, err := domset.ParseBackend(m["backend"]); err == nil {
		pref.Backend = b
	}
	if v, err := strconv.ParseBool(m["auto_index"]); err == nil {
		pref.AutoIndex = v
	}
	return pref, nil
}

// Static serves one preference for every tenant. Used when no primary store is configured.
type Static struct {
	Preference domset.Preference
}

// GetSearchPreference returns the fixed preference.
func (s Static) GetSearchPreference(context.Context, string) (domset.Preference, error) {
	return s.Preference, nil
}
