package dberr

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/mediasearch/internal/db"
	"github.com/kailas-cloud/mediasearch/internal/domain"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"permission", &db.Error{Op: db.OpHSet, Err: db.ErrPermission}, domain.ErrPermissionDenied},
		{"unavailable", &db.Error{Op: db.OpSearch, Err: db.ErrUnavailable}, domain.ErrTransient},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Wrap("op", tc.err)
			if !errors.Is(err, tc.want) {
				t.Errorf("Wrap = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, tc.err) {
				t.Error("original error must stay in the chain")
			}
		})
	}
}

func TestWrap_Unclassified(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap("hset doc", cause)
	if err.Error() != "hset doc: boom" {
		t.Errorf("Error() = %q", err)
	}
	if errors.Is(err, domain.ErrTransient) || errors.Is(err, domain.ErrPermissionDenied) {
		t.Error("unclassified error must not carry a domain sentinel")
	}
	if Wrap("op", nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}
