package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/mediasearch/internal/db"
	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/repository/dberr"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
)

const contentField = "__content"

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo runs full-text searches against a tenant's primary index.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a search repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Search runs a BM25 query with filters pushed down as tag clauses.
// pageToken is the decimal offset of the page; the returned token is empty
// on the last page. Scores are mapped into [0,1) as s/(1+s).
// An empty text lists the newest documents first.
func (r *Repo) Search(
	ctx context.Context, h domds.Handle,
	text string, filters filter.Expression, pageSize int, pageToken string,
) (result.Page, error) {
	if pageSize <= 0 {
		return result.Page{}, fmt.Errorf("page size must be positive: %w", domain.ErrInvalidRequest)
	}

	offset := 0
	if pageToken != "" {
		parsed, err := strconv.Atoi(pageToken)
		if err != nil || parsed < 0 {
			return result.Page{}, fmt.Errorf("invalid page token %q: %w", pageToken, domain.ErrInvalidRequest)
		}
		offset = parsed
	}

	q := &db.TextQuery{
		IndexName: h.IndexName(),
		Query:     text,
		TextField: contentField,
		Filters:   filters,
		Offset:    offset,
		Limit:     pageSize,
	}
	if text == "" {
		q.SortBy, q.SortDesc = domdoc.FieldCreatedAt, true
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return result.Page{}, fmt.Errorf("search %s: %w", h.StoreID(), domain.ErrNotFound)
		}
		return result.Page{}, dberr.Wrap("search "+h.StoreID(), err)
	}

	page := result.Page{Total: sr.Total}
	page.Hits = make([]result.Ranked, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		doc := domdoc.FromIndexed(domdoc.Indexed{
			ID:      r.keys.DocID(h.StoreID(), e.Key),
			Content: e.Fields[contentField],
			Fields:  e.Fields,
		})
		page.Hits = append(page.Hits, result.NewRanked(doc, normalizeScore(e.Score), result.BackendPrimary))
	}

	if next := offset + len(sr.Entries); len(sr.Entries) > 0 && next < sr.Total {
		page.NextPageToken = strconv.Itoa(next)
	}
	return page, nil
}

func normalizeScore(s float64) float64 {
	if s <= 0 {
		return 0
	}
	return s / (1 + s)
}
