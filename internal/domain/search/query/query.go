package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mediasearch/internal/domain/document"
)

// Filters restrict a search. Empty slices mean no restriction.
type Filters struct {
	Types       []document.Type
	Sources     []document.Source
	Collections []string
	Tags        []string
}

// ParseFilters validates raw filter values. Types and sources must be known
// values; collections and tags pass through.
func ParseFilters(types, sources, collections, tags []string) (Filters, error) {
	var f Filters
	for _, t := range types {
		typ := document.Type(strings.ToLower(strings.TrimSpace(t)))
		switch typ {
		case document.TypeImage, document.TypeVideo, document.TypeOther:
		default:
			return Filters{}, fmt.Errorf("unknown type %q", t)
		}
		f.Types = append(f.Types, typ)
	}
	for _, s := range sources {
		if strings.TrimSpace(s) == "" {
			return Filters{}, fmt.Errorf("unknown source %q", s)
		}
		src, err := document.ParseSource(s)
		if err != nil {
			return Filters{}, err
		}
		f.Sources = append(f.Sources, src)
	}
	f.Collections = collections
	f.Tags = tags
	return f, nil
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.Sources) == 0 && len(f.Collections) == 0 && len(f.Tags) == 0
}

// AllowsType reports whether t passes the type filter.
func (f Filters) AllowsType(t document.Type) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}

// AllowsSource reports whether s passes the source filter.
func (f Filters) AllowsSource(s document.Source) bool {
	if len(f.Sources) == 0 {
		return true
	}
	for _, want := range f.Sources {
		if want == s {
			return true
		}
	}
	return false
}

// AllowsSets checks the collections and tags filters against a document:
// each non-empty filter must intersect the document's set.
func (f Filters) AllowsSets(d *document.Document) bool {
	return intersects(f.Collections, d.Collections) && intersects(f.Tags, d.Tags)
}

// Allows applies every filter to d.
func (f Filters) Allows(d *document.Document) bool {
	return f.AllowsType(d.Type) && f.AllowsSource(d.Source) && f.AllowsSets(d)
}

func intersects(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(w, h) {
				return true
			}
		}
	}
	return false
}

// Query is a single- or multi-query search request.
type Query struct {
	// Text is the caller's query. Queries, when set, replaces expansion.
	Text      string
	Queries   []string
	Filters   Filters
	PageSize  int
	PageToken string
}
