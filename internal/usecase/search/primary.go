package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/logger"
	"github.com/kailas-cloud/mediasearch/internal/retry"
)

// PrimaryBackend searches the tenant's primary index.
//
// The source, collections and tags filters are pushed down to the index.
// The type filter is applied to each fetched page afterwards, so a page can
// hold fewer than PageSize hits while later pages still have matches.
// Total is the backend count before type filtering.
type PrimaryBackend struct {
	stores   StoreResolver
	searcher PrimarySearcher
	retry    retry.Config
	logger   *zap.Logger
}

// NewPrimaryBackend creates the primary backend.
func NewPrimaryBackend(stores StoreResolver, searcher PrimarySearcher, l *zap.Logger) *PrimaryBackend {
	if l == nil {
		l = zap.NewNop()
	}
	return &PrimaryBackend{stores: stores, searcher: searcher, retry: retry.DefaultConfig(), logger: l}
}

// WithRetry overrides the transient error backoff.
func (b *PrimaryBackend) WithRetry(cfg retry.Config) *PrimaryBackend {
	b.retry = cfg
	return b
}

// Name implements Backend.
func (b *PrimaryBackend) Name() result.Backend { return result.BackendPrimary }

// Search implements Backend.
func (b *PrimaryBackend) Search(ctx context.Context, tenant string, req Request) Outcome {
	l := logger.FromContextOr(ctx, b.logger)

	resolve := b.stores.Resolve
	if req.AutoIndex {
		resolve = b.stores.GetOrCreate
	}
	h, ok := resolve(ctx, tenant)
	if !ok {
		return Outcome{Status: StatusNotConfigured, Err: domain.ErrNotConfigured}
	}

	expr, err := pushdownFilter(req.Filters)
	if err != nil {
		l.Warn("Filter cannot be pushed to primary index",
			zap.String("tenant", tenant), zap.Error(err))
		return Outcome{Status: StatusEmpty, Err: err}
	}

	page, err := b.query(ctx, h, req, expr)
	if errors.Is(err, domain.ErrNotFound) {
		// the cached store was dropped behind our back
		b.stores.Invalidate(tenant)
		l.Info("Primary store vanished, dropped cached handle",
			zap.String("tenant", tenant), zap.String("store_id", h.StoreID()))
		if req.AutoIndex {
			if h, ok = b.stores.GetOrCreate(ctx, tenant); ok {
				page, err = b.query(ctx, h, req, expr)
			}
		}
	}

	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPermissionDenied):
		l.Error("Primary search permission denied",
			zap.String("tenant", tenant), zap.String("store_id", h.StoreID()), zap.Error(err))
		return Outcome{Status: StatusPermissionDenied, Err: err}
	case errors.Is(err, domain.ErrNotFound):
		return Outcome{Status: StatusNotConfigured, Err: err}
	case errors.Is(err, domain.ErrInvalidRequest):
		l.Warn("Primary search rejected request",
			zap.String("tenant", tenant), zap.Error(err))
		return Outcome{Status: StatusEmpty, Err: err}
	default:
		l.Warn("Primary search failed",
			zap.String("tenant", tenant), zap.String("store_id", h.StoreID()), zap.Error(err))
		return Outcome{Status: StatusTransientError, Err: err}
	}

	hits := page.Hits
	if len(req.Filters.Types) > 0 {
		hits = make([]result.Ranked, 0, len(page.Hits))
		for _, hit := range page.Hits {
			if req.Filters.AllowsType(hit.Document().Type) {
				hits = append(hits, hit)
			}
		}
	}
	return okOrEmpty(hits, page.Total, page.NextPageToken)
}

func (b *PrimaryBackend) query(ctx context.Context, h domds.Handle, req Request, expr filter.Expression) (result.Page, error) {
	var page result.Page
	err := retry.Do(ctx, b.retry, func(ctx context.Context) error {
		var serr error
		page, serr = b.searcher.Search(ctx, h, req.Text, expr, req.PageSize, req.PageToken)
		return serr
	}, isTransient)
	return page, err
}

// pushdownFilter translates the source, collections and tags filters into
// an AND of OR groups.
func pushdownFilter(f query.Filters) (filter.Expression, error) {
	sources := make([]string, len(f.Sources))
	for i, s := range f.Sources {
		sources[i] = string(s)
	}

	var groups []filter.Group
	for _, g := range []struct {
		key    string
		values []string
	}{
		{domdoc.FieldSource, sources},
		{domdoc.FieldCollections, f.Collections},
		{domdoc.FieldTags, f.Tags},
	} {
		if len(g.values) == 0 {
			continue
		}
		group, err := filter.NewGroup(g.key, g.values...)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("build %s filter: %w", g.key, err)
		}
		groups = append(groups, group)
	}
	return filter.NewExpression(groups...), nil
}

func isTransient(err error) bool {
	return errors.Is(err, domain.ErrTransient)
}
