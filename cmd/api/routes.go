package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"booksearch/internal/config"
	"booksearch/internal/httpx"
	"booksearch/internal/search"
)

// readiness is implemented by the catalog client.
type readiness interface {
	Ready() bool
}

func newRouter(ctx context.Context, cfg config.ServerConfig, searchHandler *search.HTTPHandler, upstream readiness) http.Handler {
	router := chi.NewRouter()

	router.Use(httpx.RequestIDMiddleware)
	router.Use(httpx.AccessLogMiddleware)
	router.Use(httpx.RecoveryMiddleware)
	router.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	empty := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !upstream.Ready() {
			http.Error(w, "catalog unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("/metrics", promhttp.Handler())

	rateLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRPS > 0 {
		rateLimit = httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware
	}

	router.Get("/", empty)
	router.With(rateLimit).Get("/books", searchHandler.Search)

	router.Route("/api", func(r chi.Router) {
		r.Get("/", empty)
		r.With(rateLimit).Get("/books", searchHandler.Search)
	})

	return router
}
