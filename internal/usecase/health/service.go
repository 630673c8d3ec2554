package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Search still answers.
	Degraded Status = "degraded"
	// Unhealthy indicates no search backend is reachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name    string
	pinger  Pinger
	backend bool
}

// Service coordinates health checks.
type Service struct {
	components []component
}

// New creates a Service with no components.
func New() *Service {
	return &Service{}
}

// WithBackend adds a search backend. Search is down only when every backend is.
func (s *Service) WithBackend(name string, p Pinger) *Service {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p, backend: true})
	}
	return s
}

// WithDependency adds a component whose failure only degrades service.
func (s *Service) WithDependency(name string, p Pinger) *Service {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p})
	}
	return s
}

// Names lists the registered components in order.
func (s *Service) Names() []string {
	names := make([]string, len(s.components))
	for i, c := range s.components {
		names[i] = c.name
	}
	sort.Strings(names)
	return names
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	backends, backendsUp, failed := 0, 0, 0

	for _, c := range s.components {
		res := CheckOK
		if err := c.pinger.Ping(ctx); err != nil {
			res = CheckError
			failed++
		}
		checks[c.name] = res
		if c.backend {
			backends++
			if res == CheckOK {
				backendsUp++
			}
		}
	}

	status := Healthy
	switch {
	case backends > 0 && backendsUp == 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
