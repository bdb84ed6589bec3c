// Package llm wraps the OpenAI API for embeddings and chat completions with retries.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/textintel/pkg/utils"
)

const (
	// DefaultChatModel is used for sentiment and summaries.
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is used for document and query embeddings.
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("OpenAI API key is required (set openai.api_key or OPENAI_API_KEY)")

// Config holds OpenAI client settings.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	Logger         *zap.Logger
}

// Client calls the OpenAI API, retrying failed requests with backoff.
type Client struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	logger         *zap.Logger
}

// NewClient builds a client from cfg. Empty fields fall back to defaults.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
		logger:         utils.OrNop(cfg.Logger),
	}, nil
}

// ChatModel returns the configured chat model name.
func (c *Client) ChatModel() string { return c.chatModel }

// Embed returns one embedding per input, in input order. dimensions > 0 asks the
// model to shorten its output to that length.
func (c *Client) Embed(ctx context.Context, texts []string, dimensions int) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	req := openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      c.embeddingModel,
		Dimensions: dimensions,
	}
	var out [][]float32
	err := c.retry(ctx, "embeddings", func(ctx context.Context) error {
		resp, err := c.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) != len(texts) {
			return fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
		}
		vecs := make([][]float32, len(texts))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(texts) {
				return fmt.Errorf("embedding index %d out of range", d.Index)
			}
			vecs[d.Index] = d.Embedding
		}
		out = vecs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Complete sends a system and user message and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float32, maxTokens int) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	var content string
	err := c.retry(ctx, "chat completion", func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	return content, err
}

func (c *Client) retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(utils.CalculateBackoff(c.retryDelay, attempt)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := fn(callCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
		c.logger.Debug("openai request failed", zap.String("op", op), zap.Int("attempt", attempt+1), zap.Error(err))
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, c.maxRetries+1, lastErr)
}
