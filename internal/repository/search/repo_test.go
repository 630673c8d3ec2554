package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/mediasearch/internal/db"
	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/repository/keyspace"
)

var testHandle = domds.NewHandle("acme", "ds-acme", "ms:ds-acme:idx", domds.StateActive, time.Now())

func TestSearch_Success(t *testing.T) {
	var got *db.TextQuery
	s := &mockStore{
		searchTextFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
			got = q
			return &db.SearchResult{
				Total: 25,
				Entries: []db.SearchEntry{
					{Key: "ms:ds-acme:doc:doc1", Score: 3, Fields: map[string]string{
						"__content": "Red sports car",
						"title":     "Red sports car",
						"type":      "image",
						"tags":      "car,red",
					}},
					{Key: "ms:ds-acme:doc:doc2", Score: 1, Fields: map[string]string{"type": "video"}},
				},
			}, nil
		},
	}
	tags, _ := filter.NewGroup(domdoc.FieldTags, "car")

	page, err := New(s, keyspace.New("ms:")).Search(
		context.Background(), testHandle, "car", filter.NewExpression(tags), 2, "10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.IndexName != "ms:ds-acme:idx" || got.Offset != 10 || got.Limit != 2 {
		t.Errorf("unexpected query: %+v", got)
	}
	if got.SortBy != "" {
		t.Errorf("text query should rank by relevance, got SortBy %q", got.SortBy)
	}
	if page.Total != 25 || len(page.Hits) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.NextPageToken != "12" {
		t.Errorf("NextPageToken = %q, want 12", page.NextPageToken)
	}

	first := page.Hits[0]
	if first.ID() != "doc1" || first.Backend() != result.BackendPrimary {
		t.Errorf("unexpected first hit: %+v", first)
	}
	if math.Abs(first.Score()-0.75) > 1e-9 {
		t.Errorf("score = %v, want 0.75", first.Score())
	}
	doc := first.Document()
	if doc.Title != "Red sports car" || doc.Type != domdoc.TypeImage || len(doc.Tags) != 2 {
		t.Errorf("document not rebuilt: %+v", doc)
	}
}

func TestSearch_LastPage(t *testing.T) {
	s := &mockStore{
		searchTextFn: func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
			return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{{Key: "ms:ds-acme:doc:d"}}}, nil
		},
	}
	page, err := New(s, keyspace.New("ms:")).Search(context.Background(), testHandle, "x", filter.Expression{}, 5, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.NextPageToken != "" {
		t.Errorf("NextPageToken = %q, want empty", page.NextPageToken)
	}
}

func TestSearch_EmptyTextSortsByCreation(t *testing.T) {
	var got *db.TextQuery
	s := &mockStore{
		searchTextFn: func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
			got = q
			return &db.SearchResult{}, nil
		},
	}
	if _, err := New(s, keyspace.New("ms:")).Search(context.Background(), testHandle, "", filter.Expression{}, 5, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SortBy != domdoc.FieldCreatedAt || !got.SortDesc {
		t.Errorf("expected created_at DESC, got %q desc=%v", got.SortBy, got.SortDesc)
	}
}

func TestSearch_InvalidToken(t *testing.T) {
	r := New(&mockStore{}, keyspace.New("ms:"))
	for _, tok := range []string{"abc", "-1"} {
		_, err := r.Search(context.Background(), testHandle, "x", filter.Expression{}, 5, tok)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("token %q: expected ErrInvalidRequest, got %v", tok, err)
		}
	}
}

func TestSearch_IndexMissing(t *testing.T) {
	s := &mockStore{
		searchTextFn: func(context.Context, *db.TextQuery) (*db.SearchResult, error) {
			return nil, db.ErrIndexNotFound
		},
	}
	_, err := New(s, keyspace.New("ms:")).Search(context.Background(), testHandle, "x", filter.Expression{}, 5, "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeScore(t *testing.T) {
	if normalizeScore(0) != 0 || normalizeScore(-1) != 0 {
		t.Error("non-positive scores should map to 0")
	}
	if normalizeScore(1) != 0.5 {
		t.Errorf("normalizeScore(1) = %v", normalizeScore(1))
	}
	if normalizeScore(1e9) >= 1 {
		t.Error("normalized score must stay below 1")
	}
}
