package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSearchMetrics_Idempotent(t *testing.T) {
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	var already prometheus.AlreadyRegisteredError
	if err := prometheus.Register(SearchRequestsTotal); !errors.As(err, &already) {
		t.Errorf("expected AlreadyRegisteredError, got %v", err)
	}
}

func TestSearchMetrics_Record(t *testing.T) {
	SearchFallbacksTotal.WithLabelValues("empty").Inc()
	if got := testutil.ToFloat64(SearchFallbacksTotal.WithLabelValues("empty")); got < 1 {
		t.Errorf("expected search_fallbacks_total >= 1, got %f", got)
	}

	SearchRequestDuration.WithLabelValues("primary").Observe(0.02)
	if n := testutil.CollectAndCount(SearchRequestDuration); n == 0 {
		t.Error("expected search_request_duration_seconds to have series")
	}
}
