package mediasearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoBackend(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no backend configured")
	}
}

func TestNew_UnknownFallbackDriver(t *testing.T) {
	_, err := New(context.Background(), WithFallback("mysql", "dsn"))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	reg := prometheus.NewRegistry()
	opts := []Option{
		WithRedis("localhost:6379", "secret"),
		WithKeyPrefix("media:"),
		WithAutoIndex(),
		WithFallback("postgres", "postgres://x"),
		WithFuzzyThreshold(0.8),
		WithExpansion("key", "http://llm", "small"),
		WithIndexBatching(5, time.Second),
		WithMaxParallel(3),
		WithMaxBatchSize(50),
		WithPrometheus(reg),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) != 1 || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("redis not applied: %v %q", cfg.addrs, cfg.password)
	}
	if cfg.keyPrefix != "media:" || !cfg.autoIndex {
		t.Errorf("primary options not applied: %+v", cfg)
	}
	if cfg.fallbackDriver != "postgres" || cfg.fallbackDSN != "postgres://x" || cfg.fuzzyThreshold != 0.8 {
		t.Errorf("fallback options not applied: %+v", cfg)
	}
	if cfg.expansionKey != "key" || cfg.expansionURL != "http://llm" || cfg.expansionModel != "small" {
		t.Errorf("expansion options not applied: %+v", cfg)
	}
	if cfg.batchSize != 5 || cfg.batchDelay != time.Second || cfg.maxParallel != 3 || cfg.maxBatchSize != 50 {
		t.Errorf("tuning options not applied: %+v", cfg)
	}
	if cfg.metricsReg != reg {
		t.Error("registerer not applied")
	}
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("search", time.Now(), "ok", nil)
	obs.observe("search", time.Now(), "empty", nil)
	obs.observe("search", time.Now(), "", errors.New("boom"))

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok count = %f, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "empty")); got != 1 {
		t.Errorf("empty count = %f, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("error count = %f, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first observer: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second observer: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the registered counter to be reused")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("search", time.Now(), "ok", nil)
}

func TestFallbackOnly_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, WithFallback("sqlite", ":memory:"), WithIndexBatching(10, 0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	res, err := c.UpsertBatch(ctx, "acme", []MediaItem{
		{ID: "img-1", Type: "image", Title: "Sunset over the bay", Tags: []string{"beach"}},
		{ID: "img-2", Type: "image", Title: "Mountain lake", Tags: []string{"alps"}},
	})
	if err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	if res.Indexed != 0 || len(res.Errors) != 0 {
		t.Errorf("without a primary nothing is indexed: %+v", res)
	}

	resp, err := c.Search(ctx, "acme", SearchRequest{Query: "sunset"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.BackendUsed != "fallback" || resp.Status != "ok" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "img-1" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}

	if other, _ := c.Search(ctx, "globex", SearchRequest{Query: "sunset"}); len(other.Results) != 0 {
		t.Errorf("tenant isolation broken: %+v", other.Results)
	}

	if !c.DeleteDocument(ctx, "acme", "img-1") {
		t.Fatal("DeleteDocument returned false")
	}
	resp, _ = c.Search(ctx, "acme", SearchRequest{Query: "sunset"})
	if len(resp.Results) != 0 {
		t.Errorf("expected no results after delete, got %+v", resp.Results)
	}

	if !c.DeleteStore(ctx, "acme") {
		t.Error("DeleteStore without a primary should succeed")
	}

	h := c.Health(ctx)
	if h.Status != "ok" || h.Checks["fallback"] != "ok" {
		t.Errorf("unexpected health %+v", h)
	}
}
