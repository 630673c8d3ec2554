package chi

import (
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	ErrorCodeUnavailable      ErrorCode = "unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchFilters restrict a search.
type SearchFilters struct {
	Type        []string `json:"type,omitempty"`
	Source      []string `json:"source,omitempty"`
	Collections []string `json:"collections,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// SearchRequest is the body of POST /tenants/{tenant}/search.
type SearchRequest struct {
	Query     string         `json:"query"`
	Queries   []string       `json:"queries,omitempty"`
	Filters   *SearchFilters `json:"filters,omitempty"`
	PageSize  int            `json:"page_size,omitempty"`
	PageToken string         `json:"page_token,omitempty"`
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Source       string     `json:"source"`
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
	URL          string     `json:"url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Collections  []string   `json:"collections,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	Score        float64    `json:"score"`
	RRFScore     float64    `json:"rrf_score,omitempty"`
	AvgScore     float64    `json:"avg_score"`
	QueryCount   int        `json:"query_count"`
}

// SearchResponse is always returned with 200.
type SearchResponse struct {
	Status                string             `json:"status"`
	Results               []SearchResultItem `json:"results"`
	TotalCount            int                `json:"total_count"`
	BackendUsed           string             `json:"backend_used"`
	NextPageToken         string             `json:"next_page_token,omitempty"`
	Partial               bool               `json:"partial"`
	PaginationUnsupported bool               `json:"pagination_unsupported,omitempty"`
	Queries               []string           `json:"queries,omitempty"`
}

// BatchUpsertRequest is the body of POST /tenants/{tenant}/documents/batch.
type BatchUpsertRequest struct {
	Items []indexer.MediaItem `json:"items"`
}

// BatchItemError reports one item that was not indexed.
type BatchItemError struct {
	ID      string    `json:"id"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// BatchUpsertResponse summarises a batch.
type BatchUpsertResponse struct {
	IndexedCount int              `json:"indexed_count"`
	Errors       []BatchItemError `json:"errors"`
}

// DeleteResponse reports a delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func queryFromRequest(req SearchRequest) (query.Query, error) {
	q := query.Query{
		Text:      req.Query,
		Queries:   req.Queries,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	}
	if req.PageSize < 0 {
		return query.Query{}, fmt.Errorf("page_size must not be negative")
	}
	if req.Filters == nil {
		return q, nil
	}

	f, err := query.ParseFilters(req.Filters.Type, req.Filters.Source, req.Filters.Collections, req.Filters.Tags)
	if err != nil {
		return query.Query{}, err
	}
	q.Filters = f
	return q, nil
}

func searchResponseFrom(resp *searchuc.Response) SearchResponse {
	out := SearchResponse{
		Status:                resp.Status.String(),
		Results:               make([]SearchResultItem, len(resp.Results)),
		TotalCount:            resp.Total,
		BackendUsed:           string(resp.BackendUsed),
		NextPageToken:         resp.NextPageToken,
		Partial:               resp.Partial,
		PaginationUnsupported: resp.PaginationUnsupported,
		Queries:               resp.Queries,
	}
	for i := range resp.Results {
		out.Results[i] = resultItemFrom(&resp.Results[i])
	}
	return out
}

func resultItemFrom(r *result.Fused) SearchResultItem {
	d := r.Document()
	item := SearchResultItem{
		ID:           d.ID,
		Type:         string(d.Type),
		Source:       string(d.Source),
		Title:        d.Title,
		Description:  d.Description,
		URL:          d.URL,
		ThumbnailURL: d.ThumbnailURL,
		Tags:         d.Tags,
		Collections:  d.Collections,
		Score:        r.Combined(),
		RRFScore:     r.RRF(),
		AvgScore:     r.AvgScore(),
		QueryCount:   r.QueryCount(),
	}
	if !d.CreatedAt.IsZero() {
		t := d.CreatedAt
		item.CreatedAt = &t
	}
	return item
}

func batchErrorFrom(e indexer.ItemError) BatchItemError {
	item := BatchItemError{ID: e.ID, Code: batchErrorCode(e.Err), Message: safeDomainMessage(e.Err)}
	if item.Code == ErrorCodeValidationFailed {
		item.Message = e.Err.Error()
	}
	return item
}

func batchErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrorCodeValidationFailed
	case errors.Is(err, domain.ErrPermissionDenied):
		return ErrorCodePermissionDenied
	case errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrNotConfigured):
		return ErrorCodeUnavailable
	default:
		return ErrorCodeInternalError
	}
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrPermissionDenied,
		domain.ErrTransient,
		domain.ErrNotConfigured,
		domain.ErrAlreadyExists,
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
