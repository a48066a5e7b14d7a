// Package web serves the question importer over HTTP: the import and preview
// endpoints, template downloads and import history.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/QuizImport/internal/config"
	"github.com/JonMunkholm/QuizImport/internal/core"
	"github.com/JonMunkholm/QuizImport/internal/metrics"
	"github.com/JonMunkholm/QuizImport/internal/store"
	mw "github.com/JonMunkholm/QuizImport/internal/web/middleware"
)

var errRateLimited = errors.New("rate limit exceeded")

// History is the read side of the question store.
type History interface {
	ListImports(ctx context.Context, limit int) ([]store.ImportSummary, error)
	ImportQuestions(ctx context.Context, importID string) ([]core.QuestionRecord, error)
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the importer.
type Server struct {
	service  *core.Service
	history  History
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer creates a Server. history may be nil, in which case the
// history endpoints answer 503.
func NewServer(service *core.Service, history History, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		history: history,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	sec := s.cfg.Security

	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(sec.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(securityHeaders(sec.EnableCSP))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: sec.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
		MaxAge:         300,
	}))
	s.router.Use(mw.APIKeyAuth(sec, "/health", "/metrics"))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/health/ready", s.handleReady)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/formats", s.handleFormats)
			r.Get("/template/{format}", s.handleTemplate)
			r.Get("/imports", s.handleListImports)
			r.Get("/imports/{importID}/questions", s.handleImportQuestions)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Import.Timeout))
			if s.cfg.Rate.Enabled {
				r.Use(s.newLimiter(s.cfg.Rate.ImportLimit))
			}

			r.Post("/import", s.handleImport)
			r.Post("/import/preview", s.handlePreview)
		})
	})
}

func (s *Server) newLimiter(perMinute int) func(http.Handler) http.Handler {
	rl := newRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	return rl.handler(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
	})
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for in-flight ones and then for
// running imports to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.Close()
	}
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	return s.service.Drain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders sets the standard hardening headers.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}
