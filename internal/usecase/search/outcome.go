package search

import "github.com/kailas-cloud/mediasearch/internal/domain/search/result"

// Status classifies a backend call.
type Status int

// Backend call statuses.
const (
	StatusOK Status = iota
	StatusEmpty
	StatusNotConfigured
	StatusTransientError
	StatusPermissionDenied
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusNotConfigured:
		return "not_configured"
	case StatusTransientError:
		return "transient_error"
	case StatusPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// severity orders non-OK statuses when several queries disagree.
func (s Status) severity() int {
	switch s {
	case StatusPermissionDenied:
		return 4
	case StatusTransientError:
		return 3
	case StatusNotConfigured:
		return 2
	case StatusEmpty:
		return 1
	default:
		return 0
	}
}

// Outcome is the result of one backend call. Err is set for the error statuses.
type Outcome struct {
	Status        Status
	Hits          []result.Ranked
	Total         int
	NextPageToken string
	Err           error
}

func okOrEmpty(hits []result.Ranked, total int, next string) Outcome {
	if len(hits) == 0 {
		return Outcome{Status: StatusEmpty, Total: total}
	}
	return Outcome{Status: StatusOK, Hits: hits, Total: total, NextPageToken: next}
}
