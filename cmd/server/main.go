package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul4469/linguist-ai/internal/config"
	"github.com/rahul4469/linguist-ai/internal/logutil"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/rahul4469/linguist-ai/internal/views"
	"github.com/rahul4469/linguist-ai/templates"
)

const (
	janitorInterval = 15 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logutil.FromConfig(cfg.Logging)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup Services ---------------
	gemini := services.NewGeminiService(services.GeminiOptions{
		APIKey:  cfg.APIs.GeminiAPIKey,
		Model:   cfg.APIs.GeminiModel,
		BaseURL: cfg.APIs.GeminiBaseURL,
		Timeout: cfg.APIs.GeminiTimeout,
	})
	store := services.NewSessionStore(gemini, logger)
	store.MaxSessions = cfg.Security.MaxSessions
	store.StartJanitor(ctx, janitorInterval, cfg.Security.SessionDuration)

	views.TemplateFS = templates.FS

	handler, err := newRouter(cfg, store, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_starting",
			"addr", srv.Addr,
			"env", cfg.Server.Environment,
			"model", gemini.Model(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
