package domain

import "errors"

var (
	// ErrNotFound signals a missing data store.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAlreadyExists signals a duplicate store or document.
	ErrAlreadyExists = errors.New("already exists")
	// ErrStoreDeleting signals that a store with the same id is still being deleted.
	ErrStoreDeleting = errors.New("failed precondition: resource is being deleted")
	// ErrNotConfigured signals that the backend is not configured for this deployment.
	ErrNotConfigured = errors.New("backend not configured")
	// ErrTransient signals a timeout or an unavailable backend.
	ErrTransient = errors.New("transient backend error")
	// ErrPermissionDenied signals that the backend rejected our credentials.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidRequest signals malformed input.
	ErrInvalidRequest = errors.New("invalid request")
)

// IsConflict reports whether err is an "already exists" or "being deleted" conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) || errors.Is(err, ErrStoreDeleting)
}
