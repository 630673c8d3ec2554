package mediasearch

import "github.com/kailas-cloud/mediasearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrNotFound         = domain.ErrNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrAlreadyExists    = domain.ErrAlreadyExists
	ErrNotConfigured    = domain.ErrNotConfigured
	ErrTransient        = domain.ErrTransient
	ErrPermissionDenied = domain.ErrPermissionDenied
)
