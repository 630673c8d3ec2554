package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mediasearch/internal/domain/search/query"
	"github.com/kailas-cloud/mediasearch/internal/logger"
	healthuc "github.com/kailas-cloud/mediasearch/internal/usecase/health"
	"github.com/kailas-cloud/mediasearch/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/mediasearch/internal/usecase/search"
)

// Request limits.
const (
	maxBatchSize    = 100
	maxTenantLength = 128
	maxBodyBytes    = 8 << 20
)

// Searcher answers tenant searches.
type Searcher interface {
	Search(ctx context.Context, tenant string, q query.Query) searchuc.Response
}

// Indexer writes and deletes tenant documents.
type Indexer interface {
	UpsertBatch(ctx context.Context, tenant string, items []indexer.MediaItem) (int, []indexer.ItemError)
	Delete(ctx context.Context, tenant, docID string) bool
}

// StoreDeleter drops a tenant's primary store.
type StoreDeleter interface {
	Delete(ctx context.Context, tenant string) bool
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API.
type Server struct {
	search  Searcher
	indexer Indexer
	stores  StoreDeleter
	health  HealthChecker
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	idx Indexer,
	stores StoreDeleter,
	health HealthChecker,
	l *zap.Logger,
) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{search: search, indexer: idx, stores: stores, health: health, logger: l}
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1/tenants/{tenant}", func(r chi.Router) {
		r.Use(tenantValidator)
		r.Post("/search", s.Search)
		r.Post("/documents/batch", s.BatchUpsert)
		r.Delete("/documents/{id}", s.DeleteDocument)
		r.Delete("/store", s.DeleteStore)
	})
}

// Search handles POST /api/v1/tenants/{tenant}/search.
// Backend failures never produce an error status.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decode(w, r, &req) {
		return
	}

	q, err := queryFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	resp := s.search.Search(r.Context(), chi.URLParam(r, "tenant"), q)
	writeJSON(w, http.StatusOK, searchResponseFrom(&resp))
}

// BatchUpsert handles POST /api/v1/tenants/{tenant}/documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	var req BatchUpsertRequest
	if !decode(w, r, &req) {
		return
	}

	if len(req.Items) == 0 || len(req.Items) > maxBatchSize {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("items count must be between 1 and %d", maxBatchSize))
		return
	}

	tenant := chi.URLParam(r, "tenant")
	indexed, errs := s.indexer.UpsertBatch(r.Context(), tenant, req.Items)

	resp := BatchUpsertResponse{IndexedCount: indexed, Errors: make([]BatchItemError, len(errs))}
	for i, e := range errs {
		resp.Errors[i] = batchErrorFrom(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteDocument handles DELETE /api/v1/tenants/{tenant}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	deleted := s.indexer.Delete(r.Context(), chi.URLParam(r, "tenant"), chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// DeleteStore handles DELETE /api/v1/tenants/{tenant}/store.
func (s *Server) DeleteStore(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")
	deleted := s.stores.Delete(r.Context(), tenant)
	logger.FromContextOr(r.Context(), s.logger).Info("Store delete requested",
		zap.String("tenant", tenant), zap.Bool("deleted", deleted))
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func tenantValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant := chi.URLParam(r, "tenant")
		if tenant == "" || len(tenant) > maxTenantLength {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("tenant must be 1 to %d characters", maxTenantLength))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
