// Package metrics holds the Prometheus collectors for the HTTP layer and the record services.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics uses its own registry so tests can build as many as they like.
// All observe methods are safe on a nil receiver.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	submissionsTotal *prometheus.CounterVec
	mediaTotal       *prometheus.CounterVec
	fieldFillsTotal  *prometheus.CounterVec
	prefillTotal     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archive_http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_submissions_total",
			Help: "Subject submissions by kind and result",
		},
		[]string{"kind", "result"},
	)
	m.mediaTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_media_rows_total",
			Help: "Media rows inserted by subject kind and media kind",
		},
		[]string{"kind", "media_kind"},
	)
	m.fieldFillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_field_fills_total",
			Help: "Community field fills by result",
		},
		[]string{"result"},
	)
	m.prefillTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_prefill_requests_total",
			Help: "Social post prefill lookups by source and result",
		},
		[]string{"source", "result"},
	)

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.submissionsTotal,
		m.mediaTotal,
		m.fieldFillsTotal,
		m.prefillTotal,
	)
	return m
}

// Middleware records request count and latency, labelled by the route
// pattern rather than the raw path to keep cardinality flat.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		m.httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (m *Metrics) ObserveSubmission(kind string, ok bool) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(kind, result(ok)).Inc()
}

func (m *Metrics) ObserveMedia(kind, mediaKind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.mediaTotal.WithLabelValues(kind, mediaKind).Add(float64(n))
}

// ObserveFieldFill: outcome is ok, conflict, rate_limited, invalid or error.
func (m *Metrics) ObserveFieldFill(outcome string) {
	if m == nil {
		return
	}
	m.fieldFillsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePrefill(source string, ok bool) {
	if m == nil {
		return
	}
	m.prefillTotal.WithLabelValues(source, result(ok)).Inc()
}
