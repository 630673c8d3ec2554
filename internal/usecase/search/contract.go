package search

import (
	"context"

	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
)

// Backend runs one query for a tenant.
type Backend interface {
	Name() result.Backend
	Search(ctx context.Context, tenant string, req Request) Outcome
}

// Request is one query against one backend.
type Request struct {
	Text      string
	Filters   query.Filters
	PageSize  int
	PageToken string
	// AutoIndex allows the primary backend to create a missing store.
	AutoIndex bool
}

// StoreResolver yields the tenant's primary store.
// Invalidate drops a handle whose index turned out to be gone.
type StoreResolver interface {
	GetOrCreate(ctx context.Context, tenant string) (domds.Handle, bool)
	Resolve(ctx context.Context, tenant string) (domds.Handle, bool)
	Invalidate(tenant string)
}

// PrimarySearcher queries a primary store.
type PrimarySearcher interface {
	Search(
		ctx context.Context, h domds.Handle,
		text string, filters filter.Expression, pageSize int, pageToken string,
	) (result.Page, error)
}

// FallbackQuerier lists a tenant's documents newest first with equality filters.
type FallbackQuerier interface {
	Query(ctx context.Context, tenant string, equality map[string][]string, limit int) ([]domdoc.Document, error)
}

// Expander rewrites a query into alternative phrasings.
type Expander interface {
	Expand(ctx context.Context, q string) ([]string, error)
}

// SettingsReader returns a tenant's search preference.
type SettingsReader interface {
	GetSearchPreference(ctx context.Context, tenant string) (domset.Preference, error)
}
