package result

import "github.com/kailas-cloud/mediasearch/internal/domain/document"

// Backend identifies which search backend produced a result.
type Backend string

// Backends.
const (
	BackendPrimary  Backend = "primary"
	BackendFallback Backend = "fallback"
	BackendNone     Backend = "none"
)

// Ranked is a single hit from one backend: relevance for the primary index,
// match confidence for the fallback store.
type Ranked struct {
	doc     document.Document
	score   float64
	backend Backend
}

// NewRanked creates a ranked hit.
func NewRanked(doc document.Document, score float64, backend Backend) Ranked {
	return Ranked{doc: doc, score: score, backend: backend}
}

// ID returns the document identifier.
func (r Ranked) ID() string { return r.doc.ID }

// Document returns the matched document.
func (r Ranked) Document() document.Document { return r.doc }

// Score returns the backend score in [0,1].
func (r Ranked) Score() float64 { return r.score }

// Backend returns the producing backend.
func (r Ranked) Backend() Backend { return r.backend }

// Fused is a hit after reciprocal rank fusion across several queries.
type Fused struct {
	doc        document.Document
	backend    Backend
	rrf        float64
	avg        float64
	combined   float64
	queryCount int
}

// NewFused creates a fused hit.
func NewFused(doc document.Document, backend Backend, rrf, avg, combined float64, queryCount int) Fused {
	return Fused{doc: doc, backend: backend, rrf: rrf, avg: avg, combined: combined, queryCount: queryCount}
}

// FromRanked wraps a single-query hit so both modes share one result shape.
func FromRanked(r Ranked) Fused {
	return Fused{
		doc: r.doc, backend: r.backend,
		avg: r.score, combined: r.score, queryCount: 1,
	}
}

// ID returns the document identifier.
func (f Fused) ID() string { return f.doc.ID }

// Document returns the matched document.
func (f Fused) Document() document.Document { return f.doc }

// Backend returns the producing backend.
func (f Fused) Backend() Backend { return f.backend }

// RRF returns the reciprocal rank fusion score.
func (f Fused) RRF() float64 { return f.rrf }

// AvgScore returns the mean backend score across matching queries.
func (f Fused) AvgScore() float64 { return f.avg }

// Combined returns the final ordering score.
func (f Fused) Combined() float64 { return f.combined }

// QueryCount returns how many queries matched the document.
func (f Fused) QueryCount() int { return f.queryCount }

// Page is one page of single-query hits.
type Page struct {
	Hits          []Ranked
	Total         int
	NextPageToken string
}
