// Package dberr translates db-layer failures into domain sentinels.
package dberr

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/mediasearch/internal/db"
	"github.com/kailas-cloud/mediasearch/internal/domain"
)

// Wrap annotates err with op and attaches the matching domain sentinel.
// Unclassified errors are wrapped with op only.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, db.ErrPermission):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPermissionDenied, err)
	case db.IsRetryable(err):
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransient, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
