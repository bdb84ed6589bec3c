// Package config provides configuration loading and structs for the textintel service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/textintel/internal/vector"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Vector    VectorConfig    `yaml:"vector"`
	Search    SearchConfig    `yaml:"search"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds artifact locations. IndexPath and DocumentsPath default to files in DataDir.
type StorageConfig struct {
	DataDir          string `yaml:"data_dir"`
	IndexPath        string `yaml:"index_path"`
	DocumentsPath    string `yaml:"documents_path"`
	DocumentsBackend string `yaml:"documents_backend"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Dimensions int    `yaml:"dimensions"`
	ModelPath  string `yaml:"model_path"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// VectorConfig selects the index implementation and scoring family.
type VectorConfig struct {
	Metric    string `yaml:"metric"`
	IndexType string `yaml:"index_type"`
}

// SearchConfig holds search defaults. DefaultMinScore is a pointer so an explicit 0 survives defaulting.
type SearchConfig struct {
	DefaultTopK     int      `yaml:"default_top_k"`
	DefaultMinScore *float64 `yaml:"default_min_score"`
}

// MinScore returns the configured threshold or 0.75.
func (s SearchConfig) MinScore() float64 {
	if s.DefaultMinScore != nil {
		return *s.DefaultMinScore
	}
	return defaultMinScore
}

// OpenAIConfig holds OpenAI API settings. APIKey is usually supplied through OPENAI_API_KEY.
type OpenAIConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	ChatModel      string        `yaml:"chat_model"`
	EmbeddingModel string        `yaml:"embedding_model"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
}

// AnalysisConfig tunes keyword extraction and summaries.
type AnalysisConfig struct {
	KeywordsTopK    int `yaml:"keywords_top_k"`
	SummaryMaxWords int `yaml:"summary_max_words"`
}

// WatchConfig holds directory ingestion settings for "serve --watch" and "watch".
type WatchConfig struct {
	Directories     []string      `yaml:"directories"`
	Extensions      []string      `yaml:"extensions"`
	Recursive       *bool         `yaml:"recursive"`
	Debounce        time.Duration `yaml:"debounce"`
	ChunkSize       int           `yaml:"chunk_size"`
	ChunkOverlap    int           `yaml:"chunk_overlap"`
	SplitParagraphs bool          `yaml:"split_paragraphs"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive == nil {
		return true
	}
	return *w.Recursive
}

// Load reads and parses the config file at path, applies defaults, environment overrides
// and expands paths relative to the config file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	finish(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults with paths
// relative to the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		return nil, err
	}
	cwd, cwdErr := os.Getwd()
	if cwdErr != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", cwdErr)
	}
	cfg = &Config{}
	finish(cfg, cwd)
	return cfg, nil
}

func finish(cfg *Config, configDir string) {
	ApplyDefaults(cfg)
	ApplyEnv(cfg)

	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = filepath.Join(cfg.Storage.DataDir, "vectors.index")
	} else {
		cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)
	}
	if cfg.Storage.DocumentsPath == "" {
		name := "documents.json"
		if cfg.Storage.DocumentsBackend == "sqlite" {
			name = "documents.db"
		}
		cfg.Storage.DocumentsPath = filepath.Join(cfg.Storage.DataDir, name)
	} else {
		cfg.Storage.DocumentsPath = expandPath(cfg.Storage.DocumentsPath, configDir)
	}
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
}

// ApplyEnv overrides secrets and endpoints from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
}

// Validate reports settings that would fail at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	switch c.Embedding.Provider {
	case "mock", "onnx":
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("embedding.provider is openai but no API key is set (openai.api_key or OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown embedding.provider: %s (supported: mock, openai, onnx)", c.Embedding.Provider)
	}
	if c.Embedding.Provider == "onnx" && c.Embedding.ModelPath == "" {
		return fmt.Errorf("embedding.model_path is required for the onnx provider")
	}
	if _, err := vector.ParseMetric(c.Vector.Metric); err != nil {
		return fmt.Errorf("vector.metric: %w", err)
	}
	switch vector.IndexType(c.Vector.IndexType) {
	case vector.IndexTypeFlat, vector.IndexTypeFAISS:
	default:
		return fmt.Errorf("unknown vector.index_type: %s (supported: flat, faiss)", c.Vector.IndexType)
	}
	switch c.Storage.DocumentsBackend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown storage.documents_backend: %s (supported: json, sqlite)", c.Storage.DocumentsBackend)
	}
	if c.Search.DefaultTopK <= 0 {
		return fmt.Errorf("search.default_top_k must be positive, got %d", c.Search.DefaultTopK)
	}
	if m := c.Search.MinScore(); m < -1 || m > 1 {
		return fmt.Errorf("search.default_min_score must be between -1 and 1, got %g", m)
	}
	if c.Watch.ChunkSize < 0 || c.Watch.ChunkOverlap < 0 {
		return fmt.Errorf("watch.chunk_size and watch.chunk_overlap must not be negative")
	}
	if c.Watch.ChunkSize > 0 && c.Watch.ChunkOverlap >= c.Watch.ChunkSize {
		return fmt.Errorf("watch.chunk_overlap (%d) must be smaller than watch.chunk_size (%d)", c.Watch.ChunkOverlap, c.Watch.ChunkSize)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. "~/" is the home directory; other relative
// paths are relative to configDir.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Join(configDir, path)
}
