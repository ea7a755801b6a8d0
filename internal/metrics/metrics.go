// Package metrics exposes Prometheus collectors for the portal.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BackendMetrics counts calls made to the BQOMIS backend.
type BackendMetrics struct {
	callsTotal  *prometheus.CounterVec
	callLatency *prometheus.HistogramVec
}

func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	m := &BackendMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bqomis",
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total calls to the BQOMIS backend",
		}, []string{"endpoint", "outcome"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bqomis",
			Subsystem: "backend",
			Name:      "call_latency_seconds",
			Help:      "Latency of calls to the BQOMIS backend",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency)
	return m
}

// ObserveCall records one backend call.  Outcome is "ok", "http_error" or
// "transport_error".
func (m *BackendMetrics) ObserveCall(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.callLatency.WithLabelValues(endpoint).Observe(seconds)
}

// HTTPMetrics counts requests served by the portal.
type HTTPMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bqomis",
			Subsystem: "portal",
			Name:      "requests_total",
			Help:      "Total HTTP requests served by the portal",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bqomis",
			Subsystem: "portal",
			Name:      "request_latency_seconds",
			Help:      "Latency of portal HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(seconds)
}

// GeneratorMetrics counts synthetic appointments produced by dev tooling.
type GeneratorMetrics struct {
	generated *prometheus.CounterVec
}

func NewGeneratorMetrics(reg prometheus.Registerer) *GeneratorMetrics {
	m := &GeneratorMetrics{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bqomis",
			Subsystem: "devdata",
			Name:      "appointments_total",
			Help:      "Synthetic appointments submitted, by backend result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.generated)
	return m
}

func (m *GeneratorMetrics) ObserveBatch(created, failed int) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues("created").Add(float64(created))
	m.generated.WithLabelValues("failed").Add(float64(failed))
}
