// Package indexer turns files and long texts into documents in the semantic store.
package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/extract"
	"github.com/hyperjump/textintel/pkg/utils"
)

// DocumentAdder receives the documents produced by the indexer.
type DocumentAdder interface {
	AddDocument(ctx context.Context, text string) error
}

// Config controls how text is cut into documents.
type Config struct {
	// ChunkSize is the maximum words per document; <= 0 keeps each segment whole.
	ChunkSize    int
	ChunkOverlap int
	// SplitParagraphs makes each blank-line separated paragraph its own segment.
	SplitParagraphs bool
}

// Indexer extracts, segments and adds documents.
type Indexer struct {
	store     DocumentAdder
	extractor *extract.Extractor
	chunker   *Chunker
	split     bool
	logger    *zap.Logger

	mu   sync.Mutex
	seen map[string][sha256.Size]byte
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the indexer logger.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Indexer) { idx.logger = utils.OrNop(l) }
}

// NewIndexer creates an indexer. A nil extractor uses extract.NewExtractor().
func NewIndexer(store DocumentAdder, extractor *extract.Extractor, cfg Config, opts ...Option) *Indexer {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	idx := &Indexer{
		store:     store,
		extractor: extractor,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		split:     cfg.SplitParagraphs,
		logger:    zap.NewNop(),
		seen:      make(map[string][sha256.Size]byte),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Segments returns the documents text would be stored as, in order.
func (idx *Indexer) Segments(text string) []string {
	blocks := []string{text}
	if idx.split {
		blocks = extract.Paragraphs(text)
	}
	var out []string
	for _, block := range blocks {
		out = append(out, idx.chunker.Chunk(Preprocess(block))...)
	}
	return out
}

// IndexText adds the segments of text and returns how many were added. On error the
// count covers the documents added before the failure.
func (idx *Indexer) IndexText(ctx context.Context, text string) (int, error) {
	segments := idx.Segments(text)
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := idx.store.AddDocument(ctx, seg); err != nil {
			return i, fmt.Errorf("add segment %d of %d: %w", i+1, len(segments), err)
		}
	}
	return len(segments), nil
}

// IndexFile extracts path and adds its segments. A file whose extracted text is unchanged
// since this indexer last added it is skipped and reports 0.
func (idx *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, err
	}
	text, err := idx.extractor.Extract(abs)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}
	sum := sha256.Sum256([]byte(text))

	idx.mu.Lock()
	prev, ok := idx.seen[abs]
	idx.mu.Unlock()
	if ok && prev == sum {
		idx.logger.Debug("file unchanged, skipped", zap.String("path", abs))
		return 0, nil
	}

	n, err := idx.IndexText(ctx, text)
	if err != nil {
		return n, fmt.Errorf("index %s: %w", path, err)
	}
	idx.mu.Lock()
	idx.seen[abs] = sum
	idx.mu.Unlock()
	idx.logger.Info("file indexed", zap.String("path", abs), zap.Int("documents", n))
	return n, nil
}
