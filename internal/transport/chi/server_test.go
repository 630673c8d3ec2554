package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/mediasearch/internal/usecase/health"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	gotTenant string
	gotQuery  query.Query
	resp      searchuc.Response
}

func (m *mockSearcher) Search(_ context.Context, tenant string, q query.Query) searchuc.Response {
	m.gotTenant, m.gotQuery = tenant, q
	return m.resp
}

type mockIndexer struct {
	gotItems []indexer.MediaItem
	indexed  int
	errs     []indexer.ItemError
	deleted  bool
}

func (m *mockIndexer) UpsertBatch(_ context.Context, _ string, items []indexer.MediaItem) (int, []indexer.ItemError) {
	m.gotItems = items
	return m.indexed, m.errs
}

func (m *mockIndexer) Delete(context.Context, string, string) bool { return m.deleted }

type mockStoreDeleter struct {
	gotTenant string
	ok        bool
}

func (m *mockStoreDeleter) Delete(_ context.Context, tenant string) bool {
	m.gotTenant = tenant
	return m.ok
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type fixture struct {
	search *mockSearcher
	idx    *mockIndexer
	stores *mockStoreDeleter
	health *mockHealth
	router http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		search: &mockSearcher{},
		idx:    &mockIndexer{},
		stores: &mockStoreDeleter{},
		health: &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
	r := chi.NewRouter()
	NewServer(f.search, f.idx, f.stores, f.health, nil).Routes(r)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return v
}

// --- Tests ---

func TestSearch_MapsRequestAndResponse(t *testing.T) {
	f := newFixture()
	doc := domdoc.Document{ID: "d1", Type: domdoc.TypeImage, Source: domdoc.SourceUpload, Title: "Cat"}
	f.search.resp = searchuc.Response{
		Status:      searchuc.StatusOK,
		Results:     []result.Fused{result.NewFused(doc, result.BackendPrimary, 0.03, 0.5, 0.218, 2)},
		Total:       1,
		BackendUsed: result.BackendPrimary,
		Queries:     []string{"cat", "kitten"},
	}

	rr := f.do(t, "POST", "/api/v1/tenants/acme/search",
		`{"query":"cat","filters":{"type":["image"],"source":["curated"],"tags":["pets"]},"page_size":5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	if f.search.gotTenant != "acme" {
		t.Errorf("tenant: got %q", f.search.gotTenant)
	}
	q := f.search.gotQuery
	if q.Text != "cat" || q.PageSize != 5 {
		t.Errorf("unexpected query %+v", q)
	}
	if len(q.Filters.Types) != 1 || q.Filters.Types[0] != domdoc.TypeImage {
		t.Errorf("unexpected type filter %v", q.Filters.Types)
	}
	if len(q.Filters.Sources) != 1 || q.Filters.Sources[0] != domdoc.SourceCurated {
		t.Errorf("unexpected source filter %v", q.Filters.Sources)
	}

	resp := decodeBody[SearchResponse](t, rr)
	if resp.Status != "ok" || resp.BackendUsed != "primary" || resp.TotalCount != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "d1" || resp.Results[0].QueryCount != 2 {
		t.Errorf("unexpected results %+v", resp.Results)
	}
}

func TestSearch_BackendOutageStill200(t *testing.T) {
	f := newFixture()
	f.search.resp = searchuc.Response{
		Status:      searchuc.StatusTransientError,
		Results:     []result.Fused{},
		BackendUsed: result.BackendFallback,
	}

	rr := f.do(t, "POST", "/api/v1/tenants/acme/search", `{"query":"cat"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeBody[SearchResponse](t, rr)
	if resp.Status != "transient_error" || resp.Results == nil {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"unknown type", `{"query":"cat","filters":{"type":["gif"]}}`},
		{"unknown source", `{"query":"cat","filters":{"source":["scraped"]}}`},
		{"negative page size", `{"query":"cat","page_size":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			rr := f.do(t, "POST", "/api/v1/tenants/acme/search", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestSearch_TenantTooLong(t *testing.T) {
	f := newFixture()
	rr := f.do(t, "POST", "/api/v1/tenants/"+strings.Repeat("a", maxTenantLength+1)+"/search", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}

func TestBatchUpsert(t *testing.T) {
	f := newFixture()
	f.idx.indexed = 1
	f.idx.errs = []indexer.ItemError{{ID: "b", Err: domain.ErrTransient}}

	rr := f.do(t, "POST", "/api/v1/tenants/acme/documents/batch",
		`{"items":[{"id":"a","type":"image","title":"A","tags":["x"]},{"id":"b"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(f.idx.gotItems) != 2 || f.idx.gotItems[0].Tags[0] != "x" {
		t.Errorf("items not decoded: %+v", f.idx.gotItems)
	}

	resp := decodeBody[BatchUpsertResponse](t, rr)
	if resp.IndexedCount != 1 || len(resp.Errors) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Errors[0].ID != "b" || resp.Errors[0].Code != ErrorCodeUnavailable {
		t.Errorf("unexpected item error %+v", resp.Errors[0])
	}
}

func TestBatchUpsert_SizeLimits(t *testing.T) {
	f := newFixture()
	if rr := f.do(t, "POST", "/api/v1/tenants/acme/documents/batch", `{"items":[]}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", rr.Code)
	}

	items := make([]string, maxBatchSize+1)
	for i := range items {
		items[i] = `{"id":"x"}`
	}
	body := `{"items":[` + strings.Join(items, ",") + `]}`
	if rr := f.do(t, "POST", "/api/v1/tenants/acme/documents/batch", body); rr.Code != http.StatusBadRequest {
		t.Errorf("oversized batch: expected 400, got %d", rr.Code)
	}
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture()
	f.idx.deleted = true

	rr := f.do(t, "DELETE", "/api/v1/tenants/acme/documents/d1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resp := decodeBody[DeleteResponse](t, rr); !resp.Deleted {
		t.Error("expected deleted=true")
	}
}

func TestDeleteStore(t *testing.T) {
	f := newFixture()
	f.stores.ok = false

	rr := f.do(t, "DELETE", "/api/v1/tenants/acme/store", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if resp := decodeBody[DeleteResponse](t, rr); resp.Deleted {
		t.Error("expected deleted=false")
	}
	if f.stores.gotTenant != "acme" {
		t.Errorf("tenant: got %q", f.stores.gotTenant)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		f := newFixture()
		f.health.report = healthuc.Report{
			Status: tt.status,
			Checks: map[string]healthuc.CheckResult{"fallback": healthuc.CheckOK},
		}
		rr := f.do(t, "GET", "/health", "")
		if rr.Code != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.status, tt.want, rr.Code)
		}
		resp := decodeBody[HealthResponse](t, rr)
		if resp.Status != string(tt.status) || resp.Checks["fallback"] != "ok" {
			t.Errorf("unexpected body %+v", resp)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture()
	rr := f.do(t, "GET", "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
