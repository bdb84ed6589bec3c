package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/analysis"
	"github.com/hyperjump/textintel/internal/cli"
	"github.com/hyperjump/textintel/internal/config"
	"github.com/hyperjump/textintel/internal/embedding"
	"github.com/hyperjump/textintel/internal/llm"
	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/search"
	"github.com/hyperjump/textintel/internal/storage"
	"github.com/hyperjump/textintel/internal/vector"
)

// Components holds the wired local services.
type Components struct {
	Client    *llm.Client
	Embedder  embedding.Embedder
	Documents storage.DocumentStore
	Engine    *search.Engine
	Analyzer  *analysis.Analyzer
	Provider  string
}

// Close releases the embedder and document store.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Documents != nil {
		_ = c.Documents.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Provider: cfg.Embedding.Provider}

	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewClient(llm.Config{
			APIKey:         cfg.OpenAI.APIKey,
			BaseURL:        cfg.OpenAI.BaseURL,
			ChatModel:      cfg.OpenAI.ChatModel,
			EmbeddingModel: cfg.OpenAI.EmbeddingModel,
			Timeout:        cfg.OpenAI.Timeout,
			MaxRetries:     cfg.OpenAI.MaxRetries,
			Logger:         logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		c.Client = client
	}

	embedder, err := embedding.NewEmbedder(embedding.Config{
		Provider:   cfg.Embedding.Provider,
		Dimensions: cfg.Embedding.Dimensions,
		ModelPath:  cfg.Embedding.ModelPath,
		MaxTokens:  cfg.Embedding.MaxTokens,
		CacheSize:  cfg.Embedding.CacheSize,
		Client:     c.Client,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	docs, err := storage.NewDocumentStore(cfg.Storage.DocumentsBackend, cfg.Storage.DocumentsPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}
	c.Documents = docs

	metric, err := vector.ParseMetric(cfg.Vector.Metric)
	if err != nil {
		c.Close()
		return nil, err
	}
	minScore := cfg.Search.MinScore()
	engine, err := search.NewEngine(embedder, docs, search.Config{
		IndexPath:       cfg.Storage.IndexPath,
		IndexType:       cfg.Vector.IndexType,
		Metric:          metric,
		Dimensions:      cfg.Embedding.Dimensions,
		DefaultTopK:     cfg.Search.DefaultTopK,
		DefaultMinScore: &minScore,
	}, search.WithLogger(logger))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize search engine: %w", err)
	}
	c.Engine = engine

	var model analysis.Completer
	if c.Client != nil {
		model = c.Client
	}
	c.Analyzer = analysis.NewAnalyzer(model,
		analysis.WithLogger(logger),
		analysis.WithKeywordsTopK(cfg.Analysis.KeywordsTopK),
		analysis.WithSummaryMaxWords(cfg.Analysis.SummaryMaxWords),
	)

	logger.Info("components initialized",
		zap.String("embedding_provider", c.Provider),
		zap.String("index_type", cfg.Vector.IndexType),
		zap.String("metric", string(metric)),
		zap.Bool("faiss_available", vector.IsFAISSAvailable()),
		zap.Bool("chat_model", c.Client != nil))
	return c, nil
}

// backend is what the one-shot commands need, served locally or by a remote server.
type backend interface {
	AddDocument(ctx context.Context, text string) error
	Search(ctx context.Context, req models.SemanticSearchRequest) ([]models.Match, error)
	Rebuild(ctx context.Context) (int, error)
	Status(ctx context.Context) (*models.StoreStatus, error)
	Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error)
	Summarize(ctx context.Context, text string) (string, error)
	Close() error
}

type localBackend struct {
	c *Components
}

func (b *localBackend) AddDocument(ctx context.Context, text string) error {
	return b.c.Engine.AddDocument(ctx, text)
}

func (b *localBackend) Search(ctx context.Context, req models.SemanticSearchRequest) ([]models.Match, error) {
	opts := []search.SearchOption{search.WithTopK(*req.TopK)}
	if req.MinScore != nil {
		opts = append(opts, search.WithMinScore(*req.MinScore))
	}
	return b.c.Engine.SearchSimilar(ctx, req.Query, opts...)
}

func (b *localBackend) Rebuild(ctx context.Context) (int, error) {
	return b.c.Engine.RebuildIndex(ctx)
}

func (b *localBackend) Status(ctx context.Context) (*models.StoreStatus, error) {
	stats, err := b.c.Engine.Stats(ctx)
	if err != nil {
		return nil, err
	}
	st := &models.StoreStatus{Stats: stats, InSync: stats.InSync(), Embedding: b.c.Provider}
	if n, err := storage.DiskUsageBytes(b.c.Engine.Paths()...); err == nil {
		st.DiskUsageBytes = n
	}
	return st, nil
}

func (b *localBackend) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	return b.c.Analyzer.Analyze(ctx, text)
}

func (b *localBackend) Summarize(ctx context.Context, text string) (string, error) {
	return b.c.Analyzer.Summarize(ctx, text)
}

func (b *localBackend) Close() error {
	b.c.Close()
	return nil
}

type remoteBackend struct {
	*cli.Client
}

func (remoteBackend) Close() error { return nil }

// openBackend returns a remote backend when --server is set, else the local store.
func (o *options) openBackend() (backend, error) {
	if o.serverURL != "" {
		return remoteBackend{cli.NewClient(o.serverURL, nil)}, nil
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := commandLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}
	c, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &localBackend{c: c}, nil
}
