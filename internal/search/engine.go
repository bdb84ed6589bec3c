// Package search provides the semantic store: a vector index and the aligned document log
// behind a single lock.
package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/doclog"
	"github.com/hyperjump/textintel/internal/embedding"
	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/storage"
	"github.com/hyperjump/textintel/internal/vector"
	"github.com/hyperjump/textintel/pkg/utils"
)

const (
	// DefaultTopK is the number of matches returned when the caller does not say.
	DefaultTopK = 5
	// DefaultMinScore is the cosine threshold used when neither Config nor the caller sets one.
	DefaultMinScore = 0.75

	rebuildBatchSize = 64
)

// Config describes where the index lives and how it scores.
// A nil DefaultMinScore means DefaultMinScore; an explicit 0 is kept.
type Config struct {
	IndexPath       string
	IndexType       string
	Metric          vector.Metric
	Dimensions      int
	DefaultTopK     int
	DefaultMinScore *float64
}

// Engine owns the index artifact and the document store. Every operation loads both,
// works on them in memory and saves what changed, holding mu for the whole cycle.
type Engine struct {
	embedder embedding.Embedder
	docs     storage.DocumentStore
	cfg      Config
	logger   *zap.Logger

	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = utils.OrNop(l)
	}
}

// NewEngine creates an engine. Nothing is read from disk until the first operation.
func NewEngine(embedder embedding.Embedder, docs storage.DocumentStore, cfg Config, opts ...Option) (*Engine, error) {
	if embedder == nil || docs == nil {
		return nil, fmt.Errorf("search engine: embedder and document store are required")
	}
	if cfg.IndexPath == "" {
		return nil, fmt.Errorf("search engine: index path is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("search engine: dimensions must be positive, got %d", cfg.Dimensions)
	}
	if cfg.Metric == "" {
		cfg.Metric = vector.MetricInnerProduct
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = DefaultTopK
	}
	if cfg.DefaultMinScore == nil {
		v := DefaultMinScore
		cfg.DefaultMinScore = &v
	}
	e := &Engine{
		embedder: embedder,
		docs:     docs,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AddDocument embeds text and appends it to the store.
func (e *Engine) AddDocument(ctx context.Context, text string) error {
	vec, err := e.embedText(ctx, text)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, log, err := e.load(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.Add(ctx, vec); err != nil {
		return fmt.Errorf("add vector: %w", err)
	}
	pos := log.Append(text)

	if err := e.save(ctx, idx, log); err != nil {
		return err
	}
	e.logger.Debug("document added", zap.Int("position", pos), zap.Int("documents", log.Len()))
	return nil
}

// SearchOption overrides search defaults.
type SearchOption func(*searchParams)

type searchParams struct {
	topK     int
	minScore float64
}

// WithTopK limits the number of matches.
func WithTopK(k int) SearchOption {
	return func(p *searchParams) { p.topK = k }
}

// WithMinScore drops matches scoring strictly below s.
func WithMinScore(s float64) SearchOption {
	return func(p *searchParams) { p.minScore = s }
}

// SearchSimilar returns up to topK stored documents ordered by descending cosine similarity
// to query. An empty store yields an empty slice.
func (e *Engine) SearchSimilar(ctx context.Context, query string, opts ...SearchOption) ([]models.Match, error) {
	p := searchParams{topK: e.cfg.DefaultTopK, minScore: *e.cfg.DefaultMinScore}
	for _, opt := range opts {
		opt(&p)
	}

	start := time.Now()
	vec, err := e.embedText(ctx, query)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, err := e.loadIndex()
	if err != nil {
		return nil, err
	}
	defer idx.Close()

	matches := []models.Match{}
	if idx.Size() == 0 || p.topK <= 0 {
		return matches, nil
	}

	texts, err := e.docs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	log := doclog.New(texts)

	k := p.topK
	if k > idx.Size() {
		k = idx.Size()
	}
	results, err := idx.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	for _, r := range results {
		text, err := log.Get(r.Position)
		if err != nil {
			e.logger.Warn("index references missing document; run rebuild",
				zap.Int("position", r.Position),
				zap.Int("documents", log.Len()),
				zap.Int("vectors", idx.Size()))
			continue
		}
		score := e.cfg.Metric.Cosine(r.Score)
		if score < p.minScore {
			continue
		}
		matches = append(matches, models.Match{Text: text, Score: score, Position: r.Position})
	}

	e.logger.Debug("semantic search",
		zap.Int("candidates", len(results)),
		zap.Int("matches", len(matches)),
		zap.Duration("took", time.Since(start)))
	return matches, nil
}

// RebuildIndex re-embeds every stored document in order and replaces the index artifact,
// including one built for another metric. Returns the number of documents indexed.
func (e *Engine) RebuildIndex(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	texts, err := e.docs.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}

	idx, err := vector.NewVectorIndex(e.cfg.IndexType, e.cfg.Metric, e.cfg.Dimensions)
	if err != nil {
		return 0, err
	}
	defer idx.Close()

	for start := 0; start < len(texts); start += rebuildBatchSize {
		end := start + rebuildBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return 0, fmt.Errorf("embedding failed at document %d: %w", start, err)
		}
		if len(vecs) != end-start {
			return 0, fmt.Errorf("embedder returned %d vectors for %d documents", len(vecs), end-start)
		}
		batch := make([][]float32, len(vecs))
		for i, v := range vecs {
			if batch[i], err = e.prepareVector(v); err != nil {
				return 0, fmt.Errorf("document %d: %w", start+i, err)
			}
		}
		if err := idx.Add(ctx, batch...); err != nil {
			return 0, fmt.Errorf("add vectors: %w", err)
		}
	}

	if err := idx.Save(e.cfg.IndexPath); err != nil {
		return 0, fmt.Errorf("save index: %w", err)
	}
	e.logger.Info("index rebuilt",
		zap.Int("documents", len(texts)),
		zap.String("metric", string(e.cfg.Metric)),
		zap.String("path", e.cfg.IndexPath))
	return len(texts), nil
}

// Stats reports document and vector counts from the persisted artifacts.
func (e *Engine) Stats(ctx context.Context) (models.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, log, err := e.load(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	defer idx.Close()

	return models.Stats{
		Documents:  log.Len(),
		Vectors:    idx.Size(),
		Metric:     string(idx.Metric()),
		Dimensions: idx.Dimensions(),
		IndexType:  idx.Type(),
	}, nil
}

// Paths returns the artifact locations, for disk usage reporting.
func (e *Engine) Paths() []string {
	return []string{e.cfg.IndexPath, e.docs.Path()}
}

// load reads both artifacts. Callers hold mu.
func (e *Engine) load(ctx context.Context) (vector.VectorIndex, *doclog.Log, error) {
	idx, err := e.loadIndex()
	if err != nil {
		return nil, nil, err
	}
	texts, err := e.docs.Load(ctx)
	if err != nil {
		idx.Close()
		return nil, nil, fmt.Errorf("load documents: %w", err)
	}
	return idx, doclog.New(texts), nil
}

func (e *Engine) loadIndex() (vector.VectorIndex, error) {
	idx, err := vector.LoadIndex(e.cfg.IndexType, e.cfg.IndexPath, e.cfg.Metric, e.cfg.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	return idx, nil
}

// save writes the index first, then the documents. A failure between the two leaves a
// vector without a document, which searches skip until the next rebuild.
func (e *Engine) save(ctx context.Context, idx vector.VectorIndex, log *doclog.Log) error {
	if err := idx.Save(e.cfg.IndexPath); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := e.docs.Save(ctx, log.Texts()); err != nil {
		e.logger.Error("documents not saved after index; store out of sync until rebuild",
			zap.String("index_path", e.cfg.IndexPath),
			zap.String("documents_path", e.docs.Path()),
			zap.Error(err))
		return fmt.Errorf("save documents: %w", err)
	}
	return nil
}
