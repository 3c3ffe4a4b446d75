// Package metrics exposes the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they need.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	documents    *prometheus.CounterVec
	pdfRender    *prometheus.HistogramVec
	emails       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_documents_total",
			Help: "Document writes by kind (proposal, invoice) and operation.",
		}, []string{"kind", "op"}),
		pdfRender: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_pdf_render_seconds",
			Help:    "PDF rendering time.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2},
		}, []string{"kind"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_emails_total",
			Help: "Email send attempts by outcome.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.documents, m.pdfRender, m.emails,
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) DocumentWritten(kind, op string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(kind, op).Inc()
}

func (m *Metrics) PDFRendered(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pdfRender.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) EmailSent(status string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(status).Inc()
}
