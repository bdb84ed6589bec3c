package embedding

import (
	"fmt"

	"github.com/hyperjump/textintel/internal/llm"
)

// Provider names accepted by NewEmbedder.
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
	ProviderONNX   = "onnx"
)

// Config selects and parameterizes an embedding provider.
type Config struct {
	Provider   string
	Dimensions int
	ModelPath  string
	MaxTokens  int
	// CacheSize > 0 wraps the provider in a CachedEmbedder.
	CacheSize int
	// Client is required for the openai provider.
	Client *llm.Client
}

// NewEmbedder builds the configured provider. An empty provider selects mock.
func NewEmbedder(cfg Config) (Embedder, error) {
	var e Embedder
	switch cfg.Provider {
	case ProviderMock, "":
		e = NewMockEmbedder(cfg.Dimensions)
	case ProviderOpenAI:
		oe, err := NewOpenAIEmbedder(cfg.Client, cfg.Dimensions)
		if err != nil {
			return nil, err
		}
		e = oe
	case ProviderONNX:
		oe, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		e = oe
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: mock, openai, onnx)", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}
