package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	domset "github.com/kailas-cloud/mediasearch/internal/domain/settings"
	"github.com/kailas-cloud/mediasearch/internal/logger"
	"github.com/kailas-cloud/mediasearch/internal/metrics"
)

// Orchestrator defaults.
const (
	DefaultExpandMinChars = 3
	DefaultPageSize       = 20
	DefaultMaxPageSize    = 100
)

// Response is what a search returns. It never carries an error: failures
// surface as Status with an empty result set.
type Response struct {
	Status        Status
	Results       []result.Fused
	Total         int
	BackendUsed   result.Backend
	NextPageToken string
	Partial       bool
	// PaginationUnsupported is set for fused multi-query results.
	PaginationUnsupported bool
	Queries               []string
}

// Orchestrator picks the backend, expands the query, runs it and falls back
// from the primary to the fallback backend when the primary gives nothing.
type Orchestrator struct {
	settings       SettingsReader
	primary        Backend
	fallback       Backend
	exec           *MultiQueryExecutor
	expander       Expander
	logger         *zap.Logger
	expandMinChars int
	pageSize       int
	maxPageSize    int
}

// NewOrchestrator creates an orchestrator. primary may be nil when no
// primary store is configured.
func NewOrchestrator(
	settings SettingsReader, primary, fallback Backend, exec *MultiQueryExecutor, l *zap.Logger,
) *Orchestrator {
	if l == nil {
		l = zap.NewNop()
	}
	if exec == nil {
		exec = NewMultiQueryExecutor(l)
	}
	return &Orchestrator{
		settings:       settings,
		primary:        primary,
		fallback:       fallback,
		exec:           exec,
		logger:         l,
		expandMinChars: DefaultExpandMinChars,
		pageSize:       DefaultPageSize,
		maxPageSize:    DefaultMaxPageSize,
	}
}

// WithExpander enables query expansion.
func (o *Orchestrator) WithExpander(e Expander) *Orchestrator {
	o.expander = e
	return o
}

// WithExpandMinChars sets the query length above which expansion runs.
func (o *Orchestrator) WithExpandMinChars(n int) *Orchestrator {
	if n >= 0 {
		o.expandMinChars = n
	}
	return o
}

// WithPageSize sets the default and maximum page sizes.
func (o *Orchestrator) WithPageSize(def, maxSize int) *Orchestrator {
	if def > 0 {
		o.pageSize = def
	}
	if maxSize > 0 {
		o.maxPageSize = maxSize
	}
	if o.pageSize > o.maxPageSize {
		o.pageSize = o.maxPageSize
	}
	return o
}

// Search runs q for tenant.
func (o *Orchestrator) Search(ctx context.Context, tenant string, q query.Query) Response {
	l := logger.FromContextOr(ctx, o.logger).With(zap.String("tenant", tenant))

	pref, err := o.settings.GetSearchPreference(ctx, tenant)
	if err != nil {
		l.Warn("Read search preference failed, using defaults", zap.Error(err))
	}

	queries := o.queries(ctx, l, q)
	req := Request{
		Filters:   q.Filters,
		PageSize:  o.clampPageSize(q.PageSize),
		PageToken: q.PageToken,
		AutoIndex: pref.AutoIndex,
	}

	if pref.Backend != domset.BackendFallback && o.primary != nil {
		res := o.run(ctx, o.primary, tenant, queries, req)
		if res.Status == StatusOK && len(res.Results) > 0 {
			return o.respond(res, result.BackendPrimary, queries)
		}
		if o.fallback == nil {
			return o.respond(res, result.BackendPrimary, queries)
		}
		metrics.SearchFallbacksTotal.WithLabelValues(res.Status.String()).Inc()
		l.Info("Primary search gave no results, using fallback",
			zap.String("status", res.Status.String()))
		// fallback results are unpaged; a primary token means nothing there
		req.PageToken = ""
	}

	if o.fallback == nil {
		return Response{Status: StatusNotConfigured, BackendUsed: result.BackendNone, Queries: queries}
	}
	res := o.run(ctx, o.fallback, tenant, queries, req)
	return o.respond(res, result.BackendFallback, queries)
}

func (o *Orchestrator) run(ctx context.Context, b Backend, tenant string, queries []string, req Request) MultiResult {
	start := time.Now()
	res := o.exec.SearchMulti(ctx, b, tenant, queries, req)
	metrics.SearchRequestDuration.WithLabelValues(string(b.Name())).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(string(b.Name()), res.Status.String()).Inc()
	return res
}

func (o *Orchestrator) respond(res MultiResult, backend result.Backend, queries []string) Response {
	resp := Response{
		Status:      res.Status,
		Results:     res.Results,
		Total:       res.Total,
		BackendUsed: backend,
		Partial:     res.Partial,
		Queries:     queries,
	}
	if res.Fused {
		resp.PaginationUnsupported = true
	} else {
		resp.NextPageToken = res.NextPageToken
	}
	if resp.Results == nil {
		resp.Results = []result.Fused{}
	}
	return resp
}

// queries returns the query set to run. Caller-supplied queries are used
// verbatim; otherwise long enough text is expanded, keeping the original first.
func (o *Orchestrator) queries(ctx context.Context, l *zap.Logger, q query.Query) []string {
	if supplied := dedupe(q.Queries); len(supplied) > 0 {
		return supplied
	}

	text := strings.TrimSpace(q.Text)
	if o.expander == nil || len([]rune(text)) <= o.expandMinChars {
		return []string{text}
	}

	expanded, err := o.expander.Expand(ctx, text)
	if err != nil {
		l.Warn("Query expansion failed", zap.String("query", text), zap.Error(err))
		return []string{text}
	}
	return dedupe(append([]string{text}, expanded...))
}

func (o *Orchestrator) clampPageSize(n int) int {
	switch {
	case n <= 0:
		return o.pageSize
	case n > o.maxPageSize:
		return o.maxPageSize
	default:
		return n
	}
}

func dedupe(qs []string) []string {
	seen := make(map[string]struct{}, len(qs))
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		q = strings.TrimSpace(q)
		key := strings.ToLower(q)
		if q == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	return out
}
