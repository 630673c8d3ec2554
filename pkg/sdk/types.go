package mediasearch

import "time"

// MediaItem is one media record to index.
type MediaItem struct {
	ID                string
	Type              string // image, video, other
	Source            string // upload, ai-generated, curated, edited
	Title             string
	Description       string
	Prompt            string
	Summary           string
	VisionDescription string
	VisionKeywords    []string
	VisionCategories  []string
	Tags              []string
	Collections       []string
	URL               string
	ThumbnailURL      string
	CreatedAt         time.Time
}

// SearchRequest is a tenant search. Queries, when set, replaces expansion of Query.
type SearchRequest struct {
	Query       string
	Queries     []string
	Types       []string
	Sources     []string
	Collections []string
	Tags        []string
	PageSize    int
	PageToken   string
}

// SearchResult is a single ranked document.
type SearchResult struct {
	ID           string
	Type         string
	Source       string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	Tags         []string
	Collections  []string
	CreatedAt    time.Time
	Score        float64 // combined fused score
	RRFScore     float64
	AvgScore     float64
	QueryCount   int
}

// SearchResponse is the outcome of a search. Backend failures are reported
// in Status rather than as an error.
type SearchResponse struct {
	Status                string // ok, empty, not_configured, transient_error, permission_denied
	Results               []SearchResult
	Total                 int
	BackendUsed           string // primary, fallback, none
	NextPageToken         string
	Partial               bool
	PaginationUnsupported bool
	Queries               []string
}

// ItemError reports one item that was not indexed.
type ItemError struct {
	ID  string
	Err error
}

// BatchResult summarises an UpsertBatch call.
type BatchResult struct {
	Indexed int
	Errors  []ItemError
}
