// Package webapi is the HTTP surface (C12): file intake, status, mapping
// review, and template management, over the ingestion pipeline.
package webapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/borderops/ingestor/internal/batch"
	"github.com/borderops/ingestor/internal/config"
	"github.com/borderops/ingestor/internal/pipeline"
	"github.com/borderops/ingestor/internal/storage"
	"github.com/borderops/ingestor/internal/templatestore"
	"github.com/borderops/ingestor/internal/validate"
	"github.com/borderops/ingestor/internal/webapi/middleware"
)

// Server is the ingestion HTTP API.
type Server struct {
	pool      *pgxpool.Pool
	storage   *storage.Store
	templates *templatestore.Store
	pipeline  *pipeline.Pipeline
	batch     *batch.Processor
	rules     *validate.Rules
	security  *config.SecurityConfig
	log       *slog.Logger

	router *chi.Mux
	server *http.Server
}

// Deps bundles the components a Server wires together, built by main().
type Deps struct {
	Pool      *pgxpool.Pool
	Storage   *storage.Store
	Templates *templatestore.Store
	Pipeline  *pipeline.Pipeline
	Batch     *batch.Processor
	Rules     *validate.Rules
	Security  *config.SecurityConfig
	Log       *slog.Logger
}

// New builds a Server and wires its routes.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Security == nil {
		d.Security = &config.SecurityConfig{}
	}
	s := &Server{
		pool:      d.Pool,
		storage:   d.Storage,
		templates: d.Templates,
		pipeline:  d.Pipeline,
		batch:     d.Batch,
		rules:     d.Rules,
		security:  d.Security,
		log:       d.Log,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.APIKeyAuth(s.security))
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health/", s.handleHealth)

	s.router.Route("/files", func(r chi.Router) {
		r.Post("/upload", s.handleFileUpload)
		r.Get("/api", s.handleListFiles)
		r.Get("/{id}/api", s.handleGetFile)
		r.Get("/{id}/errors/api", s.handleGetFileErrors)
		r.Post("/{id}/reprocess", s.handleReprocessFile)
		r.Delete("/{id}/delete", s.handleDeleteFile)
	})

	s.router.Route("/mappings", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Post("/upload", s.handleUploadTemplate)
		r.Get("/file/{id}", s.handleFileMapping)
		r.Post("/file/{id}/save", s.handleSaveFileMapping)
		r.Get("/template/{id}/edit", s.handleGetTemplate)
		r.Post("/template/{id}/edit", s.handleUpdateTemplate)
		r.Delete("/template/{id}/delete", s.handleDeleteTemplate)
	})
}

// Router exposes the underlying chi router, for tests.
func (s *Server) Router() *chi.Mux { return s.router }

// Start begins listening for HTTP requests on addr.
func (s *Server) Start(addr string, readTimeout, writeTimeout, idleTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.log.Info("webapi: starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
