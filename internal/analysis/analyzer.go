// Package analysis provides sentiment, keyword and summary extraction for free text.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/pkg/utils"
)

// Sentiment labels.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// ErrNoModel is returned by model-backed operations when no language model is configured.
var ErrNoModel = errors.New("no language model configured")

// Completer sends one system/user exchange to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error)
}

// Analyzer combines a chat model for sentiment and summaries with local keyword extraction.
type Analyzer struct {
	model           Completer
	keywords        *KeywordExtractor
	keywordsTopK    int
	summaryMaxWords int
	logger          *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the analyzer logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = utils.OrNop(l) }
}

// WithKeywordsTopK sets how many keywords Analyze returns.
func WithKeywordsTopK(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.keywordsTopK = n
		}
	}
}

// WithSummaryMaxWords bounds summary length.
func WithSummaryMaxWords(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.summaryMaxWords = n
		}
	}
}

// NewAnalyzer returns an analyzer. model may be nil; Sentiment and Summarize then return ErrNoModel.
func NewAnalyzer(model Completer, opts ...Option) *Analyzer {
	a := &Analyzer{
		model:           model,
		keywords:        NewKeywordExtractor(),
		keywordsTopK:    5,
		summaryMaxWords: 60,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

const sentimentPrompt = `You are a sentiment classifier. Reply with exactly one lowercase word: positive, negative, or neutral.`

// Sentiment classifies text as positive, negative or neutral.
func (a *Analyzer) Sentiment(ctx context.Context, text string) (string, error) {
	if a.model == nil {
		return "", ErrNoModel
	}
	reply, err := a.model.Complete(ctx, sentimentPrompt, text, 0, 3)
	if err != nil {
		return "", fmt.Errorf("sentiment: %w", err)
	}
	label := parseLabel(reply)
	if label == "" {
		a.logger.Warn("unrecognized sentiment label, using neutral", zap.String("reply", utils.Truncate(reply, 80)))
		label = Neutral
	}
	return label, nil
}

func parseLabel(reply string) string {
	reply = strings.ToLower(strings.TrimSpace(reply))
	reply = strings.Trim(reply, ".!\"' ")
	for _, label := range []string{Positive, Negative, Neutral} {
		if strings.HasPrefix(reply, label) {
			return label
		}
	}
	return ""
}

// Keywords returns up to topK keywords from text.
func (a *Analyzer) Keywords(text string, topK int) ([]string, error) {
	return a.keywords.Extract(text, topK)
}

// Summarize condenses text to at most the configured number of words.
func (a *Analyzer) Summarize(ctx context.Context, text string) (string, error) {
	if a.model == nil {
		return "", ErrNoModel
	}
	system := fmt.Sprintf("Summarize the user's text in at most %d words. Reply with the summary only.", a.summaryMaxWords)
	summary, err := a.model.Complete(ctx, system, text, 0.3, a.summaryMaxWords*2)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}

// Analyze returns sentiment and keywords for text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	keywords, err := a.Keywords(text, a.keywordsTopK)
	if err != nil {
		return nil, err
	}
	sentiment, err := a.Sentiment(ctx, text)
	if err != nil {
		return nil, err
	}
	return &models.AnalyzeResponse{Sentiment: sentiment, Keywords: keywords}, nil
}
