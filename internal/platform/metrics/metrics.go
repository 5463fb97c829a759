// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the media service.

Each [Metrics] owns a private registry so tests and multiple servers in one
process never collide on global registration.

Series:

  - yomira_media_http_requests_total{method,route,status}
  - yomira_media_http_request_duration_seconds{method,route}
  - yomira_media_uploads_total{kind,outcome}
  - yomira_media_pages_written_total{source}
  - yomira_media_files_removed_total{reason}
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "yomira"
	subsystem = "media"
)

// Metrics groups the service collectors and the registry serving them.
type Metrics struct {
	registry        *prometheus.Registry
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	pagesWritten    *prometheus.CounterVec
	filesRemoved    *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"method", "route"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uploads_total",
			Help:      "Single file uploads by resource kind and outcome.",
		}, []string{"kind", "outcome"}),
		pagesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pages_written_total",
			Help:      "Chapter page files written, by source (archive, inline).",
		}, []string{"source"}),
		filesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "files_removed_total",
			Help:      "Files deleted from storage, by reason.",
		}, []string{"reason"}),
	}

	registry.MustRegister(m.requestCounter, m.requestDuration, m.uploads, m.pagesWritten, m.filesRemoved)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// # Domain Recorders
//
// All recorders are nil-safe so components can run without instrumentation.

// Upload records the outcome of a single-file upload.
func (m *Metrics) Upload(kind, outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind, outcome).Inc()
}

// PagesWritten adds n pages produced from source.
func (m *Metrics) PagesWritten(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pagesWritten.WithLabelValues(source).Add(float64(n))
}

// FilesRemoved adds n deleted files for reason.
func (m *Metrics) FilesRemoved(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.filesRemoved.WithLabelValues(reason).Add(float64(n))
}

// # HTTP Middleware

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (recorder *statusRecorder) Unwrap() http.ResponseWriter {
	return recorder.ResponseWriter
}

// Middleware counts requests per chi route pattern (never raw paths, which
// would explode label cardinality with ids and file names).
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(recorder, request)

			route := "unmatched"
			if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
				if pattern := routeContext.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			m.requestCounter.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
			m.requestDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
