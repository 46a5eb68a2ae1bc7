package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booksearch/internal/config"
	"booksearch/internal/platform/googlebooks"
	"booksearch/internal/platform/logging"
	"booksearch/internal/search"
)

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	catalogOpts := []googlebooks.Option{googlebooks.WithTimeout(cfg.Upstream.Timeout)}
	if cfg.Upstream.BreakerEnabled {
		catalogOpts = append(catalogOpts, googlebooks.WithBreaker(googlebooks.BreakerConfig{
			FailureThreshold: cfg.Upstream.BreakerFailureThreshold,
			OpenTimeout:      cfg.Upstream.BreakerOpenTimeout,
		}))
	}
	catalog := googlebooks.NewClient(cfg.Upstream.BaseURL, catalogOpts...)
	searchService := search.NewService(catalog, cfg.Upstream.APIKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// No WriteTimeout: a slow catalog reply is relayed whenever it arrives.
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(ctx, cfg.Server, search.NewHTTPHandler(searchService), catalog),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", cfg.Server.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Bool("server_credential", cfg.Upstream.APIKey != "").
			Msg("starting server")
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
