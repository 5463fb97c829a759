// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-media/internal/platform/constants"
	"github.com/taibuivan/yomira-media/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-media/internal/platform/middleware"
)

type corsConfig struct {
	development bool
	origins     []string
}

func (c corsConfig) IsDevelopment() bool { return c.development }
func (c corsConfig) Origins() []string   { return c.origins }

func ok(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
}

/*
TestRequestID_GeneratesAndPropagates checks both the generated and the client-supplied ID.
*/
func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", recorder.Header().Get(constants.HeaderXRequestID))
}

/*
TestStructuredLogger_LogsStatusAndInjectsLogger checks the final record and the per-request logger.
*/
func TestStructuredLogger_LogsStatusAndInjectsLogger(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	handler := middleware.RequestID()(middleware.StructuredLogger(logger)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctxutil.GetLogger(request.Context()).Info("inside")
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte("nope"))
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/user/7/avatar", nil))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 2)

	var inside, finished map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &inside))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &finished))

	assert.Equal(t, "/user/7/avatar", inside["path"])
	assert.NotEmpty(t, inside["request_id"])
	assert.Equal(t, "http_request_finished", finished["msg"])
	assert.Equal(t, "WARN", finished["level"])
	assert.Equal(t, 404.0, finished["status"])
	assert.Equal(t, 4.0, finished["bytes"])
}

/*
TestBodyLimit covers declared and streamed bodies over the cap.
*/
func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := middleware.BodyLimit(4)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, readErr = io.ReadAll(request.Body)
		writer.WriteHeader(http.StatusOK)
	}))

	t.Run("declared_length", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "PAYLOAD_TOO_LARGE")
	})

	t.Run("streamed", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long"))
		request.ContentLength = -1
		handler.ServeHTTP(httptest.NewRecorder(), request)

		var maxBytes *http.MaxBytesError
		assert.True(t, errors.As(readErr, &maxBytes))
	})

	t.Run("within_limit", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.NoError(t, readErr)
	})
}

/*
TestPanicRecovery returns a JSON 500 instead of crashing.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestCORS covers the development wildcard, the production allow-list and pre-flight.
*/
func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		cfg       corsConfig
		origin    string
		method    string
		wantAllow string
		wantCode  int
	}{
		{"dev_any_origin", corsConfig{development: true}, "http://localhost:3000", http.MethodGet, "http://localhost:3000", http.StatusOK},
		{"prod_listed", corsConfig{origins: []string{"https://reader.example"}}, "https://reader.example", http.MethodGet, "https://reader.example", http.StatusOK},
		{"prod_unlisted", corsConfig{origins: []string{"https://reader.example"}}, "https://evil.example", http.MethodGet, "", http.StatusOK},
		{"preflight", corsConfig{development: true}, "http://localhost:3000", http.MethodOptions, "http://localhost:3000", http.StatusNoContent},
		{"no_origin", corsConfig{}, "", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				request.Header.Set(constants.HeaderOrigin, tt.origin)
			}
			recorder := httptest.NewRecorder()
			middleware.CORS(tt.cfg)(http.HandlerFunc(ok)).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, tt.wantAllow, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

/*
TestRealIP checks the proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.4")
	assert.Equal(t, "198.51.100.4", middleware.RealIP(request))
}
