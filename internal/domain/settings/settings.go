package settings

import "fmt"

// Backend is the tenant's preferred search backend.
type Backend string

// Backend preferences.
const (
	BackendPrimary  Backend = "primary"
	BackendFallback Backend = "fallback"
)

// ParseBackend validates a raw backend preference.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case BackendPrimary, BackendFallback:
		return Backend(s), nil
	default:
		return "", fmt.Errorf("unknown backend %q", s)
	}
}

// Preference is a tenant's search configuration.
type Preference struct {
	Backend Backend
	// AutoIndex lets search reads create a missing primary store.
	AutoIndex bool
}
