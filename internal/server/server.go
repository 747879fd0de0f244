// Package server provides the HTTP API for bunko.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bunkolab/bunko/internal/artifact"
	"github.com/bunkolab/bunko/internal/config"
	"github.com/bunkolab/bunko/internal/pipeline"
	"github.com/bunkolab/bunko/internal/rag"
	"github.com/bunkolab/bunko/internal/store"
)

// NamedStore pairs a write backend with its configured name, so removal
// can report per-target outcomes.
type NamedStore struct {
	Name  string
	Store store.VectorStore
}

// Server is the HTTP server for the bunko API.
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	files     *artifact.Store
	backends  []NamedStore
	read      store.VectorStore
	readName  string
	scheduler *pipeline.Scheduler
	rag       *rag.Engine
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	files *artifact.Store,
	backends []NamedStore,
	read store.VectorStore,
	readName string,
	scheduler *pipeline.Scheduler,
	ragEngine *rag.Engine,
) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		files:     files,
		backends:  backends,
		read:      read,
		readName:  readName,
		scheduler: scheduler,
		rag:       ragEngine,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Post("/api/v1/documents", s.handleUpload)
	r.Get("/api/v1/documents", s.handleListDocuments)
	r.Get("/api/v1/documents/{name}/text", s.handleDocumentText)
	r.Get("/api/v1/documents/{name}/download", s.handleDownload)
	r.Delete("/api/v1/documents/{name}", s.handleRemoveDocument)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/api/v1/status", s.handleStatus)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and drains background indexing.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.scheduler.Wait()
	return nil
}
