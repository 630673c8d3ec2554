package mediasearch

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

// Search runs a tenant search. The error is non-nil only for invalid input.
func (c *Client) Search(ctx context.Context, tenant string, req SearchRequest) (resp SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, resp.Status, err) }()

	if tenant == "" {
		return SearchResponse{}, fmt.Errorf("search: %w: tenant is required", domain.ErrInvalidRequest)
	}
	if req.PageSize < 0 {
		return SearchResponse{}, fmt.Errorf("search: %w: page size must not be negative", domain.ErrInvalidRequest)
	}
	filters, err := query.ParseFilters(req.Types, req.Sources, req.Collections, req.Tags)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w: %w", domain.ErrInvalidRequest, err)
	}

	r := c.searchSvc.Search(ctx, tenant, query.Query{
		Text:      req.Query,
		Queries:   req.Queries,
		Filters:   filters,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	})
	return fromSearchResponse(&r), nil
}

func fromSearchResponse(r *searchuc.Response) SearchResponse {
	out := SearchResponse{
		Status:                r.Status.String(),
		Results:               make([]SearchResult, len(r.Results)),
		Total:                 r.Total,
		BackendUsed:           string(r.BackendUsed),
		NextPageToken:         r.NextPageToken,
		Partial:               r.Partial,
		PaginationUnsupported: r.PaginationUnsupported,
		Queries:               r.Queries,
	}
	for i := range r.Results {
		f := &r.Results[i]
		d := f.Document()
		out.Results[i] = SearchResult{
			ID:           d.ID,
			Type:         string(d.Type),
			Source:       string(d.Source),
			Title:        d.Title,
			Description:  d.Description,
			URL:          d.URL,
			ThumbnailURL: d.ThumbnailURL,
			Tags:         d.Tags,
			Collections:  d.Collections,
			CreatedAt:    d.CreatedAt,
			Score:        f.Combined(),
			RRFScore:     f.RRF(),
			AvgScore:     f.AvgScore(),
			QueryCount:   f.QueryCount(),
		}
	}
	return out
}
