package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

var errDown = errors.New("down")

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New().
		WithBackend("primary", &mockPinger{}).
		WithBackend("fallback", &mockPinger{}).
		WithDependency("expansion", &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"primary", "fallback", "expansion"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_PrimaryDownIsDegraded(t *testing.T) {
	svc := New().
		WithBackend("primary", &mockPinger{err: errDown}).
		WithBackend("fallback", &mockPinger{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["primary"] != CheckError {
		t.Errorf("expected primary %q, got %q", CheckError, r.Checks["primary"])
	}
}

func TestCheck_DependencyDownIsDegraded(t *testing.T) {
	svc := New().
		WithBackend("fallback", &mockPinger{}).
		WithDependency("expansion", &mockPinger{err: errDown})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
}

func TestCheck_AllBackendsDown(t *testing.T) {
	svc := New().
		WithBackend("primary", &mockPinger{err: errDown}).
		WithBackend("fallback", &mockPinger{err: errDown})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilPingerSkipped(t *testing.T) {
	svc := New().WithBackend("primary", nil).WithBackend("fallback", &mockPinger{})
	r := svc.Check(context.Background())

	if _, ok := r.Checks["primary"]; ok {
		t.Error("nil pinger should not be registered")
	}
	if names := svc.Names(); len(names) != 1 || names[0] != "fallback" {
		t.Errorf("unexpected names %v", names)
	}
}
