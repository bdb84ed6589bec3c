// Package server provides the HTTP API for textintel.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/config"
	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/search"
	"github.com/hyperjump/textintel/pkg/utils"
)

// Store is the semantic store the API serves.
type Store interface {
	AddDocument(ctx context.Context, text string) error
	SearchSimilar(ctx context.Context, query string, opts ...search.SearchOption) ([]models.Match, error)
	RebuildIndex(ctx context.Context) (int, error)
	Stats(ctx context.Context) (models.Stats, error)
	Paths() []string
}

// TextAnalyzer provides the model-backed text endpoints.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error)
	Summarize(ctx context.Context, text string) (string, error)
}

// Server is the HTTP server for the textintel API.
type Server struct {
	store    Store
	analyzer TextAnalyzer
	config   *config.ServerConfig
	logger   *zap.Logger
	provider string
	server   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithEmbeddingProvider sets the provider name reported by /status.
func WithEmbeddingProvider(name string) Option {
	return func(s *Server) { s.provider = name }
}

// NewServer creates a server with the given dependencies.
func NewServer(store Store, analyzer TextAnalyzer, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		store:    store,
		analyzer: analyzer,
		config:   cfg,
		logger:   utils.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.config != nil && s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	r.Post("/analyze", s.handleAnalyze)
	r.Post("/summarize", s.handleSummarize)
	r.Post("/add-document", s.handleAddDocument)
	r.Post("/semantic-search", s.handleSemanticSearch)
	r.Post("/rebuild-index", s.handleRebuildIndex)
	r.Get("/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
