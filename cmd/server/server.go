package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/linguist-ai/internal/config"
	"github.com/rahul4469/linguist-ai/internal/controllers"
	"github.com/rahul4469/linguist-ai/internal/crypto"
	"github.com/rahul4469/linguist-ai/internal/middleware"
	"github.com/rahul4469/linguist-ai/internal/services"
	"github.com/rahul4469/linguist-ai/internal/views"
)

// newRouter wires middleware, controllers and routes. views.TemplateFS must
// be set before it is called.
func newRouter(cfg *config.Config, store *services.SessionStore, logger *slog.Logger) (http.Handler, error) {
	encryptor, err := crypto.NewEncryptorFromSecret(cfg.Security.SessionSecret)
	if err != nil {
		return nil, fmt.Errorf("session encryptor: %w", err)
	}
	sessionMw := middleware.NewSessionMiddleware(
		store,
		encryptor,
		cfg.Security.SessionCookieName,
		cfg.Security.SessionDuration,
		cfg.Security.SecureCookies,
		logger,
	)

	page, err := views.ParseFS("pages/analyze.gohtml")
	if err != nil {
		return nil, err
	}
	analyzeCtrl := controllers.NewAnalyzeController(
		controllers.AnalyzeTemplates{Page: page},
		logger,
		cfg.IsDevelopment(),
	)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", controllers.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware(cfg))
		r.Use(sessionMw.SetSession)

		r.Get("/", analyzeCtrl.GetAnalyze)
		r.Post("/analyze", analyzeCtrl.PostAnalyze)
		r.Post("/retry", analyzeCtrl.PostRetry)
		r.Get("/report", analyzeCtrl.GetReport)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", analyzeCtrl.GetState)
			r.Post("/analyze", analyzeCtrl.PostAPIAnalyze)
		})
	})

	return r, nil
}

// csrfMiddleware protects unsafe methods. Without secure cookies requests are
// marked as plaintext HTTP so the Referer check does not demand TLS.
func csrfMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		[]byte(cfg.Security.CSRFSecret),
		csrf.Secure(cfg.Security.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.TrustedOrigins(cfg.Security.TrustedOrigins),
	)
	if cfg.Security.SecureCookies {
		return protect
	}
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
