package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"booksearch/internal/config"
	"booksearch/internal/platform/googlebooks"
	"booksearch/internal/search"
	"booksearch/internal/testutil"
)

type fakeReadiness bool

func (f fakeReadiness) Ready() bool { return bool(f) }

func testRouter(t *testing.T, ready bool) http.Handler {
	t.Helper()
	cfg := config.ServerConfig{CORSAllowedOrigins: "http://localhost:3000", RateLimitRPS: 100, RateLimitBurst: 100}
	return testRouterWith(t, cfg, ready)
}

func testRouterWith(t *testing.T, cfg config.ServerConfig, ready bool) http.Handler {
	t.Helper()
	upstream := testutil.NewCatalogServer(t, http.StatusOK, `{"totalItems":0}`)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := search.NewService(googlebooks.NewClient(upstream.URL), "")
	return newRouter(ctx, cfg, search.NewHTTPHandler(svc), fakeReadiness(ready))
}

func serve(h http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.NewRequest(method, target, header))
	return w
}

func TestRouting(t *testing.T) {
	h := testRouter(t, true)

	t.Run("books at root and under /api", func(t *testing.T) {
		for _, target := range []string{"/books?key=k", "/api/books?key=k"} {
			w := serve(h, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusOK, w.Code, target)
			assert.JSONEq(t, `{"totalItems":0}`, w.Body.String(), target)
		}
	})

	t.Run("validation goes through the router", func(t *testing.T) {
		w := serve(h, http.MethodGet, "/api/books?key=k&maxResults=lots", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, `"maxResults" must be a number`, w.Body.String())
	})

	t.Run("api root answers empty", func(t *testing.T) {
		w := serve(h, http.MethodGet, "/api/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		w := serve(h, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())

		w = serve(h, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		serve(h, http.MethodGet, "/books?key=k", nil)
		w := serve(h, http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "booksearch_http_requests_total")
	})

	t.Run("request id and security headers", func(t *testing.T) {
		w := serve(h, http.MethodGet, "/healthz", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("cors for allowed origin", func(t *testing.T) {
		w := serve(h, http.MethodGet, "/books?key=k", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

		w = serve(h, http.MethodGet, "/books?key=k", map[string]string{"Origin": "http://evil.test"})
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown route and method", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/nope", nil).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodPost, "/books", nil).Code)
	})
}

func TestRouting_NotReady(t *testing.T) {
	h := testRouter(t, false)
	w := serve(h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouting_RateLimit(t *testing.T) {
	h := testRouterWith(t, config.ServerConfig{CORSAllowedOrigins: "*", RateLimitRPS: 1, RateLimitBurst: 1}, true)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/books?key=k", nil).Code)

	res := testutil.RecordHTTPResponse(serve(h, http.MethodGet, "/books?key=k", nil))
	assert.Equal(t, http.StatusTooManyRequests, res.Code)
	assert.Equal(t, "Too many requests", res.Body["error"])

	// health stays outside the limiter
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", nil).Code)
}
