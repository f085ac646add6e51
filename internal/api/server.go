// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package api is the HTTP composition root: it builds the chi router, installs
// the middleware chain and mounts the operational and catalog routes.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/bookshelf/internal/core/book"
	"github.com/taibuivan/bookshelf/internal/platform/config"
	"github.com/taibuivan/bookshelf/internal/platform/constants"
	"github.com/taibuivan/bookshelf/internal/platform/middleware"
	"github.com/taibuivan/bookshelf/internal/users/auth"
)

// Handlers are the route targets. Images and Metrics are optional.
type Handlers struct {
	Liveness  http.HandlerFunc
	Readiness http.HandlerFunc
	Auth      *auth.Handler
	Books     *book.Handler

	// Images serves covers from the disk backend. Nil for object storage,
	// where cover URLs point at the bucket instead.
	Images http.Handler

	Metrics http.Handler
}

// Server owns the router and the listening [http.Server].
type Server struct {
	httpServer *http.Server
	router     chi.Router
	log        *slog.Logger
}

// NewServer builds the router. ctx bounds background work started by the
// middleware, such as the rate limiter's sweeper.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	router := chi.NewRouter()

	router.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(log),
		middleware.Metrics,
		middleware.PanicRecovery(log),
		middleware.RateLimit(ctx),
		middleware.CORS(cfg),
		chimw.Timeout(constants.GlobalRequestTimeout),
		chimw.CleanPath,
		middleware.Authenticate(verifier),
	)

	mountOperational(router, h)

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Mount("/auth", h.Auth.Routes())
		v1.Mount("/books", h.Books.Routes())
	})

	return &Server{
		router: router,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           router,
			ReadTimeout:       constants.DefaultReadTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		},
	}
}

// mountOperational registers probes, metrics and, for the disk backend, covers.
func mountOperational(router chi.Router, h Handlers) {
	router.Get("/health", h.Liveness)
	router.Get("/ready", h.Readiness)

	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics)
	}
	if h.Images != nil {
		router.Handle(constants.ImagesPath+"/*", http.StripPrefix(constants.ImagesPath, h.Images))
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ImageServer serves stored covers from dir. Cover names are never reused,
// so responses are marked immutable. Directory paths answer 404.
func ImageServer(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "" || strings.HasSuffix(request.URL.Path, "/") {
			http.NotFound(writer, request)
			return
		}
		header := writer.Header()
		header.Set("Cache-Control", "public, max-age=31536000, immutable")
		header.Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(writer, request)
	})
}

// ListenAndServe blocks until the server stops. After [Server.Shutdown] it
// returns [http.ErrServerClosed].
func (s *Server) ListenAndServe() error {
	s.log.Info("server_listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
