package db

import "github.com/kailas-cloud/mediasearch/internal/domain/search/filter"

// TextQuery is the input for BM25 text search.
type TextQuery struct {
	IndexName string
	// Query is matched against the TEXT field; empty matches everything.
	Query        string
	TextField    string
	Filters      filter.Expression
	Offset       int
	Limit        int
	SortBy       string
	SortDesc     bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
