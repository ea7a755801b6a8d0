package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBackendMetricsObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBackendMetrics(reg)

	m.ObserveCall("GET /districts", "ok", 0.02)
	m.ObserveCall("GET /districts", "ok", 0.03)
	m.ObserveCall("POST /appointments", "http_error", 0.1)

	if got := testutil.ToFloat64(m.callsTotal.WithLabelValues("GET /districts", "ok")); got != 2 {
		t.Fatalf("calls_total{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.callsTotal.WithLabelValues("POST /appointments", "http_error")); got != 1 {
		t.Fatalf("calls_total{http_error} = %v, want 1", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var b *BackendMetrics
	var h *HTTPMetrics
	var g *GeneratorMetrics
	b.ObserveCall("x", "ok", 1)
	h.ObserveRequest("GET", "/", "200", 1)
	g.ObserveBatch(1, 1)
}

func TestGeneratorMetricsObserveBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewGeneratorMetrics(reg)
	m.ObserveBatch(95, 5)

	if got := testutil.ToFloat64(m.generated.WithLabelValues("created")); got != 95 {
		t.Fatalf("created = %v, want 95", got)
	}
	if got := testutil.ToFloat64(m.generated.WithLabelValues("failed")); got != 5 {
		t.Fatalf("failed = %v, want 5", got)
	}
}
