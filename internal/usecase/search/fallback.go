package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/domain/match"
	"github.com/kailas-cloud/mediasearch/internal/domain/search/result"
	"github.com/kailas-cloud/mediasearch/internal/logger"
)

// Fallback scan window bounds.
const (
	fallbackWindowSlack = 20
	fallbackWindowMax   = 100
)

// FallbackBackend scans the newest documents of a tenant and keeps the ones
// the fuzzy matcher accepts. It does not paginate.
type FallbackBackend struct {
	store   FallbackQuerier
	matcher *match.Matcher
	logger  *zap.Logger
}

// NewFallbackBackend creates the fallback backend. A nil matcher uses the default threshold.
func NewFallbackBackend(store FallbackQuerier, matcher *match.Matcher, l *zap.Logger) *FallbackBackend {
	if matcher == nil {
		matcher = match.New(match.DefaultThreshold)
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &FallbackBackend{store: store, matcher: matcher, logger: l}
}

// Name implements Backend.
func (b *FallbackBackend) Name() result.Backend { return result.BackendFallback }

// Search implements Backend.
func (b *FallbackBackend) Search(ctx context.Context, tenant string, req Request) Outcome {
	if req.PageSize <= 0 {
		return Outcome{Status: StatusEmpty}
	}

	equality := make(map[string][]string, 2)
	for _, t := range req.Filters.Types {
		equality[domdoc.FieldType] = append(equality[domdoc.FieldType], string(t))
	}
	for _, s := range req.Filters.Sources {
		equality[domdoc.FieldSource] = append(equality[domdoc.FieldSource], string(s))
	}

	docs, err := b.store.Query(ctx, tenant, equality, fallbackWindow(req.PageSize))
	if err != nil {
		logger.FromContextOr(ctx, b.logger).Warn("Fallback query failed",
			zap.String("tenant", tenant), zap.Error(err))
		if errors.Is(err, domain.ErrPermissionDenied) {
			return Outcome{Status: StatusPermissionDenied, Err: err}
		}
		return Outcome{Status: StatusTransientError, Err: err}
	}

	text := strings.TrimSpace(req.Text)
	hits := make([]result.Ranked, 0, req.PageSize)
	for i := range docs {
		doc := &docs[i]
		if !req.Filters.Allows(doc) {
			continue
		}
		score, ok := 1.0, true
		if text != "" {
			score, ok = b.score(text, doc)
		}
		if !ok {
			continue
		}
		hits = append(hits, result.NewRanked(*doc, score, result.BackendFallback))
		if len(hits) == req.PageSize {
			break
		}
	}
	return okOrEmpty(hits, len(hits), "")
}

// score matches text against the free-text fields and, separately, against
// the tag-like fields. The better of the two wins.
func (b *FallbackBackend) score(text string, d *domdoc.Document) (float64, bool) {
	textScore, textOK := b.matcher.Match(text,
		d.Title, d.Description, d.Prompt, d.Summary, d.VisionDescription, d.SearchText)

	tagFields := make([]string, 0, len(d.Tags)+len(d.VisionKeywords)+len(d.VisionCategories))
	tagFields = append(tagFields, d.Tags...)
	tagFields = append(tagFields, d.VisionKeywords...)
	tagFields = append(tagFields, d.VisionCategories...)
	tagScore, tagOK := b.matcher.Match(text, tagFields...)

	switch {
	case textOK && tagOK:
		return max(textScore, tagScore), true
	case textOK:
		return textScore, true
	case tagOK:
		return tagScore, true
	default:
		return 0, false
	}
}

func fallbackWindow(pageSize int) int {
	return min(pageSize+fallbackWindowSlack, fallbackWindowMax)
}
