// Package web serves catalog lookups and the saved library over HTTP as JSON.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr    string
	Catalog Catalog
	// Library is optional. Without it the /library routes answer 503.
	Library Library
	Logger  logrus.FieldLogger
}

// Server is the HTTP server for the lookup API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	log      logrus.FieldLogger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("module", "web")

	router := chi.NewRouter()
	s := &Server{
		router:   router,
		handlers: NewHandlers(cfg.Catalog, cfg.Library, logger),
		log:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	s.router.Get("/artists/{id}", s.handlers.Artist)
	s.router.Get("/artists/{id}/top-tracks", s.handlers.ArtistTopTracks)
	s.router.Get("/tracks/{id}", s.handlers.Track)
	s.router.Get("/albums/{id}", s.handlers.Album)
	s.router.Get("/playlists/{id}", s.handlers.Playlist)

	s.router.Route("/library/{kind}", func(r chi.Router) {
		r.Get("/", s.handlers.ListLibrary)
		r.Post("/{id}", s.handlers.SaveToLibrary)
	})
}

// requestLogger logs one line per request at Info level.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Starting server at http://%s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("Server stopped")
	return nil
}
