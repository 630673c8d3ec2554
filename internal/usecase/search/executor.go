package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/logger"
)

// DefaultMaxParallel bounds concurrent per-query searches.
const DefaultMaxParallel = 5

// MultiResult is the merged answer of one or more queries on one backend.
type MultiResult struct {
	Status        Status
	Results       []result.Fused
	Total         int
	NextPageToken string
	// Fused is set when more than one query contributed; such results do not paginate.
	Fused bool
	// Partial is set when the context ended before every query finished.
	Partial bool
}

// MultiQueryExecutor runs a query set against one backend and fuses the rankings.
type MultiQueryExecutor struct {
	maxParallel int
	logger      *zap.Logger
}

// NewMultiQueryExecutor creates an executor.
func NewMultiQueryExecutor(l *zap.Logger) *MultiQueryExecutor {
	if l == nil {
		l = zap.NewNop()
	}
	return &MultiQueryExecutor{maxParallel: DefaultMaxParallel, logger: l}
}

// WithMaxParallel sets the concurrency limit.
func (e *MultiQueryExecutor) WithMaxParallel(n int) *MultiQueryExecutor {
	if n > 0 {
		e.maxParallel = n
	}
	return e
}

// SearchMulti runs queries against b. A single query is delegated as is.
// Otherwise each query fetches 2*PageSize hits and the rankings are fused.
// Failed queries are logged and left out.
func (e *MultiQueryExecutor) SearchMulti(
	ctx context.Context, b Backend, tenant string, queries []string, req Request,
) MultiResult {
	if len(queries) <= 1 {
		if len(queries) == 1 {
			req.Text = queries[0]
		}
		out := b.Search(ctx, tenant, req)
		res := MultiResult{
			Status:        out.Status,
			Total:         out.Total,
			NextPageToken: out.NextPageToken,
			Partial:       ctx.Err() != nil,
		}
		res.Results = make([]result.Fused, len(out.Hits))
		for i, h := range out.Hits {
			res.Results[i] = result.FromRanked(h)
		}
		return res
	}

	l := logger.FromContextOr(ctx, e.logger)
	outcomes := make([]Outcome, len(queries))
	ran := make([]bool, len(queries))

	var g errgroup.Group
	g.SetLimit(e.maxParallel)
	for i, q := range queries {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			sub := req
			sub.Text = q
			sub.PageSize = 2 * req.PageSize
			sub.PageToken = ""
			outcomes[i] = b.Search(ctx, tenant, sub)
			ran[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var lists [][]result.Ranked
	worst := StatusEmpty
	for i, out := range outcomes {
		if !ran[i] {
			continue
		}
		switch out.Status {
		case StatusOK:
			lists = append(lists, out.Hits)
		case StatusEmpty:
		default:
			l.Warn("Query failed, skipping",
				zap.String("tenant", tenant),
				zap.String("backend", string(b.Name())),
				zap.String("query", queries[i]),
				zap.String("status", out.Status.String()),
				zap.Error(out.Err))
		}
		if out.Status.severity() > worst.severity() {
			worst = out.Status
		}
	}

	res := MultiResult{Fused: true, Partial: ctx.Err() != nil}
	res.Results, res.Total = fuse(lists, req.PageSize)
	if len(res.Results) > 0 {
		res.Status = StatusOK
	} else {
		res.Status = worst
	}
	return res
}
