package middleware_test

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/api/middleware"
)

func writeBody(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestCompression(t *testing.T) {
	handler := middleware.Compression(writeBody(http.StatusOK, `{"departments":[]}`))

	t.Run("gzips when the client accepts it", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, `{"departments":[]}`, string(body))
	})

	t.Run("passes through otherwise", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/departments", nil))

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"departments":[]}`, w.Body.String())
	})
}

func TestETag(t *testing.T) {
	handler := middleware.ETag(writeBody(http.StatusOK, "hello"))

	t.Run("tags successful responses and answers 304 on a match", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/departments", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "hello", w.Body.String())
		assert.Equal(t, "private, must-revalidate", w.Header().Get("Cache-Control"))
		etag := w.Header().Get("ETag")
		require.NotEmpty(t, etag)

		req := httptest.NewRequest(http.MethodGet, "/api/departments", nil)
		req.Header.Set("If-None-Match", etag)
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotModified, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("skips non-GET requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/recommendations", nil))

		assert.Empty(t, w.Header().Get("ETag"))
		assert.Equal(t, "hello", w.Body.String())
	})

	t.Run("skips error responses", func(t *testing.T) {
		w := httptest.NewRecorder()
		middleware.ETag(writeBody(http.StatusNotFound, "missing")).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/departments", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Header().Get("ETag"))
		assert.Equal(t, "missing", w.Body.String())
	})
}

func TestResponseOptimization_CachePolicy(t *testing.T) {
	handler := middleware.ResponseOptimization(writeBody(http.StatusOK, "{}"))

	tests := []struct {
		path string
		want string
	}{
		{"/api/departments", "public, max-age=3600, must-revalidate"},
		{"/api/recommendations/doctor", "no-store"},
		{"/api/symptoms/validate", "no-store"},
		{"/health", "private, no-cache, must-revalidate"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.want, w.Header().Get("Cache-Control"))
			assert.NotEmpty(t, w.Header().Get("ETag"))
		})
	}
}
