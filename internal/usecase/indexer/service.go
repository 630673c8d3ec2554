package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain"
	domds "github.com/kailas-cloud/mediasearch/internal/domain/datastore"
	domdoc "github.com/kailas-cloud/mediasearch/internal/domain/document"
	"github.com/kailas-cloud/mediasearch/internal/logger"
	"github.com/kailas-cloud/mediasearch/internal/metrics"
)

// Defaults for batched indexing.
const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = 100 * time.Millisecond
)

// ItemError is a failure to index one item.
type ItemError struct {
	ID  string
	Err error
}

func (e ItemError) Error() string { return fmt.Sprintf("item %s: %v", e.ID, e.Err) }

// Unwrap returns the underlying error.
func (e ItemError) Unwrap() error { return e.Err }

// Service writes media items into the tenant's primary store.
type Service struct {
	stores     StoreResolver
	docs       DocumentStore
	mirror     Mirror
	logger     *zap.Logger
	batchSize  int
	batchDelay time.Duration
}

// New creates an indexer.
func New(stores StoreResolver, docs DocumentStore, l *zap.Logger) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		stores:     stores,
		docs:       docs,
		logger:     l,
		batchSize:  DefaultBatchSize,
		batchDelay: DefaultBatchDelay,
	}
}

// WithBatchSize sets the number of items written between pauses.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithBatchDelay sets the pause between batches. Zero disables it.
func (s *Service) WithBatchDelay(d time.Duration) *Service {
	if d >= 0 {
		s.batchDelay = d
	}
	return s
}

// WithMirror copies every indexed document into m.
func (s *Service) WithMirror(m Mirror) *Service {
	s.mirror = m
	return s
}

// UpsertBatch indexes items, creating or updating each by id.
// Failures are isolated per item. When the primary store is unavailable
// nothing is indexed and no errors are reported.
func (s *Service) UpsertBatch(ctx context.Context, tenant string, items []MediaItem) (int, []ItemError) {
	l := logger.FromContextOr(ctx, s.logger)
	if len(items) == 0 {
		return 0, nil
	}

	h, ok := s.stores.GetOrCreate(ctx, tenant)
	if !ok {
		l.Warn("Primary store unavailable, skipping indexing",
			zap.String("tenant", tenant), zap.Int("items", len(items)))
		s.mirrorAll(ctx, tenant, items)
		return 0, nil
	}

	indexed := 0
	var errs []ItemError
	for start := 0; start < len(items); start += s.batchSize {
		if start > 0 && s.batchDelay > 0 {
			select {
			case <-ctx.Done():
				for _, item := range items[start:] {
					errs = append(errs, ItemError{ID: item.ID, Err: ctx.Err()})
				}
				return indexed, errs
			case <-time.After(s.batchDelay):
			}
		}

		end := min(start+s.batchSize, len(items))
		for _, item := range items[start:end] {
			doc := ToDocument(item)
			if err := s.upsert(ctx, h, doc); err != nil {
				metrics.IndexItemsTotal.WithLabelValues("error").Inc()
				l.Warn("Index item failed",
					zap.String("tenant", tenant), zap.String("doc_id", item.ID), zap.Error(err))
				errs = append(errs, ItemError{ID: item.ID, Err: err})
				continue
			}
			indexed++
			s.mirrorOne(ctx, tenant, doc)
		}
	}

	l.Info("Indexed batch",
		zap.String("tenant", tenant), zap.Int("indexed", indexed), zap.Int("failed", len(errs)))
	return indexed, errs
}

// Delete removes a document. A missing document or store counts as deleted.
func (s *Service) Delete(ctx context.Context, tenant, docID string) bool {
	l := logger.FromContextOr(ctx, s.logger)

	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, tenant, docID); err != nil && !errors.Is(err, domain.ErrDocumentNotFound) {
			l.Warn("Fallback mirror delete failed",
				zap.String("tenant", tenant), zap.String("doc_id", docID), zap.Error(err))
		}
	}

	h, ok := s.stores.Resolve(ctx, tenant)
	if !ok {
		return true
	}
	err := s.docs.Delete(ctx, h, docID)
	if err == nil || errors.Is(err, domain.ErrDocumentNotFound) || errors.Is(err, domain.ErrNotFound) {
		return true
	}
	l.Error("Delete document failed",
		zap.String("tenant", tenant), zap.String("doc_id", docID), zap.Error(err))
	return false
}

func (s *Service) upsert(ctx context.Context, h domds.Handle, doc domdoc.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	ix := domdoc.Index(doc)
	err := s.docs.Create(ctx, h, ix)
	if errors.Is(err, domain.ErrAlreadyExists) {
		if err = s.docs.Update(ctx, h, ix); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		metrics.IndexItemsTotal.WithLabelValues("updated").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	metrics.IndexItemsTotal.WithLabelValues("created").Inc()
	return nil
}

func (s *Service) mirrorOne(ctx context.Context, tenant string, doc domdoc.Document) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Upsert(ctx, tenant, doc); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("Fallback mirror write failed",
			zap.String("tenant", tenant), zap.String("doc_id", doc.ID), zap.Error(err))
	}
}

// mirrorAll keeps the fallback store populated while the primary is down.
func (s *Service) mirrorAll(ctx context.Context, tenant string, items []MediaItem) {
	if s.mirror == nil {
		return
	}
	for _, item := range items {
		doc := ToDocument(item)
		if doc.Validate() != nil {
			continue
		}
		s.mirrorOne(ctx, tenant, doc)
	}
}
