package search

import (
	"context"
	"sync"
	"time"

	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/filter"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
)

// --- Mocks ---

type mockStores struct {
	ok              bool
	createCalls     int
	resolveCalls    int
	invalidateCalls int
}

func (m *mockStores) GetOrCreate(context.Context, string) (domds.Handle, bool) {
	m.createCalls++
	return testHandle(), m.ok
}

func (m *mockStores) Resolve(context.Context, string) (domds.Handle, bool) {
	m.resolveCalls++
	return testHandle(), m.ok
}

func (m *mockStores) Invalidate(string) { m.invalidateCalls++ }

type mockSearcher struct {
	searchFn func(text string, filters filter.Expression, pageSize int, pageToken string) (result.Page, error)
	calls    int
}

func (m *mockSearcher) Search(
	_ context.Context, _ domds.Handle, text string, filters filter.Expression, pageSize int, pageToken string,
) (result.Page, error) {
	m.calls++
	return m.searchFn(text, filters, pageSize, pageToken)
}

type mockFallbackStore struct {
	docs      []domdoc.Document
	err       error
	gotLimit  int
	gotFilter map[string][]string
}

func (m *mockFallbackStore) Query(_ context.Context, _ string, equality map[string][]string, limit int) ([]domdoc.Document, error) {
	m.gotLimit, m.gotFilter = limit, equality
	if m.err != nil {
		return nil, m.err
	}
	if len(m.docs) > limit {
		return m.docs[:limit], nil
	}
	return m.docs, nil
}

// mockBackend answers per query text.
type mockBackend struct {
	name     result.Backend
	searchFn func(ctx context.Context, req Request) Outcome

	mu    sync.Mutex
	texts []string
}

func (m *mockBackend) Name() result.Backend { return m.name }

func (m *mockBackend) Search(ctx context.Context, _ string, req Request) Outcome {
	m.mu.Lock()
	m.texts = append(m.texts, req.Text)
	m.mu.Unlock()
	return m.searchFn(ctx, req)
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.texts)
}

// byQuery returns fixed rankings keyed by query text.
func byQuery(name result.Backend, lists map[string][]string) *mockBackend {
	return &mockBackend{name: name, searchFn: func(_ context.Context, req Request) Outcome {
		ids := lists[req.Text]
		hits := make([]result.Ranked, len(ids))
		for i, id := range ids {
			hits[i] = result.NewRanked(testDoc(id), 0.5, name)
		}
		return okOrEmpty(hits, len(hits), "")
	}}
}

func statusBackend(name result.Backend, st Status) *mockBackend {
	return &mockBackend{name: name, searchFn: func(context.Context, Request) Outcome {
		return Outcome{Status: st}
	}}
}

type mockExpander struct {
	queries []string
	err     error
	calls   int
}

func (m *mockExpander) Expand(context.Context, string) ([]string, error) {
	m.calls++
	return m.queries, m.err
}

type staticSettings struct {
	pref domset.Preference
	err  error
}

func (s staticSettings) GetSearchPreference(context.Context, string) (domset.Preference, error) {
	return s.pref, s.err
}

func testHandle() domds.Handle {
	return domds.NewHandle("t1", "ds-t1", "mediasearch:ds-t1:idx", domds.StateActive, time.Now())
}

func testDoc(id string) domdoc.Document {
	return domdoc.Document{ID: id, Type: domdoc.TypeImage, Source: domdoc.SourceUpload, Title: "doc " + id}
}

func ranked(id string, score float64) result.Ranked {
	return result.NewRanked(testDoc(id), score, result.BackendPrimary)
}

func ids(rs []result.Fused) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID()
	}
	return out
}
