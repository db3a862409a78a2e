// Package metrics exposes Prometheus instrumentation for the web process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "panini"

// Metrics owns a private Prometheus registry and the collectors of the app.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	paymentsRecorded    *prometheus.CounterVec
	installmentAdvances prometheus.Counter
	billingCycles       prometheus.Counter
	eventsPublished     *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	rateLimited         prometheus.Counter
	suspiciousRequests  prometheus.Counter
}

// New builds a dedicated registry so tests can create as many instances as they need.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		paymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded, split by Panini contribution.",
		}, []string{"panini"}),
		installmentAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installment_advances_total",
			Help:      "Installment plans advanced by one payment.",
		}),
		billingCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_cycles_opened_total",
			Help:      "Payments that opened a new billing cycle.",
		}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_events_published_total",
			Help:      "Ledger events handed to the broker.",
		}, []string{"kind", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		suspiciousRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_suspicious_requests_total",
			Help:      "Requests matching a known probing pattern.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.paymentsRecorded,
		m.installmentAdvances,
		m.billingCycles,
		m.eventsPublished,
		m.httpRequests,
		m.httpDuration,
		m.rateLimited,
		m.suspiciousRequests,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// All recorders accept a nil receiver so metrics stay optional for callers.

// PaymentRecorded counts a payment and the installment plans it advanced.
func (m *Metrics) PaymentRecorded(panini bool, plansAdvanced int64, openedCycle bool) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(strconv.FormatBool(panini)).Inc()
	if openedCycle {
		m.billingCycles.Inc()
	}
	if plansAdvanced > 0 {
		m.installmentAdvances.Add(float64(plansAdvanced))
	}
}

// EventPublished counts a publish attempt by kind and outcome.
func (m *Metrics) EventPublished(kind string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(kind, result).Inc()
}

// ObserveHTTP records a finished request.
func (m *Metrics) ObserveHTTP(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// SuspiciousRequest counts a blocked scanner request.
func (m *Metrics) SuspiciousRequest() {
	if m == nil {
		return
	}
	m.suspiciousRequests.Inc()
}
