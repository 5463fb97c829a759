// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

/*
TestMetrics_Recorders checks the domain counters and their nil safety.
*/
func TestMetrics_Recorders(t *testing.T) {
	m := New()

	m.Upload("series", "ok")
	m.Upload("series", "ok")
	m.PagesWritten("archive", 3)
	m.PagesWritten("inline", 0)
	m.FilesRemoved("reconcile", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploads.WithLabelValues("series", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.pagesWritten.WithLabelValues("archive")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pagesWritten.WithLabelValues("inline")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesRemoved.WithLabelValues("reconcile")))

	var disabled *Metrics
	assert.NotPanics(t, func() {
		disabled.Upload("user", "ok")
		disabled.PagesWritten("archive", 1)
		disabled.FilesRemoved("remove", 1)
	})
}

/*
TestMetrics_Middleware checks that requests are labelled by route pattern.
*/
func TestMetrics_Middleware(t *testing.T) {
	m := New()

	router := chi.NewRouter()
	router.Use(m.Middleware())
	router.Get("/user/{id}/{name}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})
	router.Get("/metrics", m.Handler().ServeHTTP)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/7/avatar", nil))

	count := testutil.ToFloat64(m.requestCounter.WithLabelValues(http.MethodGet, "/user/{id}/{name}", "404"))
	assert.Equal(t, 1.0, count)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "yomira_media_http_requests_total")
}

/*
TestMetrics_MiddlewareKeepsResponseController checks that flushing through
the instrumented writer reaches the underlying one.
*/
func TestMetrics_MiddlewareKeepsResponseController(t *testing.T) {
	m := New()

	var flushErr error
	handler := m.Middleware()(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte("chunk"))
		flushErr = http.NewResponseController(writer).Flush()
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/assets/logo", nil))

	assert.NoError(t, flushErr)
	assert.True(t, recorder.Flushed)
}
