// Package config loads and validates the policyqa configuration.
//
// Precedence, lowest to highest: built-in defaults, the YAML config file,
// environment variables. Validation runs on the merged result; invalid
// values are reported, never silently clamped.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/policyqa/policyqa/internal/chunk"
	"github.com/policyqa/policyqa/internal/search"
	"github.com/policyqa/policyqa/internal/store"
)

// Config is the complete policyqa configuration.
type Config struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CorpusConfig locates the policy documents.
type CorpusConfig struct {
	// Dir is the directory scanned for .txt and .md documents.
	Dir string `yaml:"dir"`
}

// ChunkingConfig configures the fragment splitter.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`

	// Separators overrides the split priority, coarsest boundary first.
	// Empty keeps the built-in hierarchy.
	Separators []string `yaml:"separators"`
}

// SearchConfig configures hybrid retrieval.
type SearchConfig struct {
	// Alpha weights the dense signal; 1-alpha weights lexical. [0, 1].
	Alpha float64 `yaml:"alpha"`

	// TopKWide is the dense candidate pool size before fusion.
	TopKWide int `yaml:"top_k_wide"`

	// FinalK is the number of fragments returned per query.
	FinalK int `yaml:"final_k"`

	// DenseBackend is "flat" (exact) or "hnsw" (approximate).
	DenseBackend string `yaml:"dense_backend"`

	BM25K1 float64 `yaml:"bm25_k1"`
	BM25B  float64 `yaml:"bm25_b"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "openai" (any OpenAI-compatible API) or "static"
	// (offline hash embedder, no network).
	Provider string `yaml:"provider"`

	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
	CacheSize int    `yaml:"cache_size"`
}

// GenerationConfig configures answer generation.
type GenerationConfig struct {
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// PromptVersion selects the answer prompt: 1 for plain text, 2 for
	// strict JSON output with source attribution and confidence.
	PromptVersion int `yaml:"prompt_version"`

	MaxTokens int `yaml:"max_tokens"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// TraceFile, when set, receives one JSON line per query with the
	// retrieved fragments and their scores.
	TraceFile string `yaml:"trace_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Dir: "docs",
		},
		Chunking: ChunkingConfig{
			ChunkSize: chunk.DefaultChunkSize,
			Overlap:   chunk.DefaultOverlap,
		},
		Search: SearchConfig{
			Alpha:        search.DefaultAlpha,
			TopKWide:     search.DefaultTopKWide,
			FinalK:       search.DefaultFinalK,
			DenseBackend: search.DenseBackendFlat,
			BM25K1:       store.DefaultBM25Config().K1,
			BM25B:        store.DefaultBM25Config().B,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "openai",
			BatchSize: 64,
			CacheSize: 1000,
		},
		Generation: GenerationConfig{
			Model:         "llama-3.3-70b-versatile",
			PromptVersion: 2,
			MaxTokens:     1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path, if it exists, over the defaults and
// applies environment overrides. An empty path skips the file step. The
// merged result is validated before being returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides maps POLICYQA_* environment variables onto the config.
// Unparseable numeric values are left for Validate to reject via the file
// value they failed to replace.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POLICYQA_CORPUS_DIR"); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv("POLICYQA_ALPHA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.Alpha = f
		}
	}
	if v := os.Getenv("POLICYQA_FINAL_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.FinalK = n
		}
	}
	if v := os.Getenv("POLICYQA_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("POLICYQA_EMBEDDINGS_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("POLICYQA_GENERATION_BASE_URL"); v != "" {
		c.Generation.BaseURL = v
	}
	if v := os.Getenv("POLICYQA_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the merged configuration. The first violation found is
// returned.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunking.chunk_size must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must be non-negative, got %d", c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.chunk_size (%d)",
			c.Chunking.Overlap, c.Chunking.ChunkSize)
	}
	if c.Search.Alpha < 0 || c.Search.Alpha > 1 {
		return fmt.Errorf("search.alpha must be between 0 and 1, got %v", c.Search.Alpha)
	}
	if c.Search.TopKWide <= 0 {
		return fmt.Errorf("search.top_k_wide must be positive, got %d", c.Search.TopKWide)
	}
	if c.Search.FinalK <= 0 {
		return fmt.Errorf("search.final_k must be positive, got %d", c.Search.FinalK)
	}
	switch c.Search.DenseBackend {
	case search.DenseBackendFlat, search.DenseBackendHNSW:
	default:
		return fmt.Errorf("search.dense_backend must be %q or %q, got %q",
			search.DenseBackendFlat, search.DenseBackendHNSW, c.Search.DenseBackend)
	}
	if c.Search.BM25K1 < 0 {
		return fmt.Errorf("search.bm25_k1 must be non-negative, got %v", c.Search.BM25K1)
	}
	if c.Search.BM25B < 0 || c.Search.BM25B > 1 {
		return fmt.Errorf("search.bm25_b must be between 0 and 1, got %v", c.Search.BM25B)
	}
	switch c.Embeddings.Provider {
	case "openai", "static":
	default:
		return fmt.Errorf("embeddings.provider must be 'openai' or 'static', got %q", c.Embeddings.Provider)
	}
	if c.Generation.PromptVersion != 1 && c.Generation.PromptVersion != 2 {
		return fmt.Errorf("generation.prompt_version must be 1 or 2, got %d", c.Generation.PromptVersion)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// SearchOptions translates the configuration into pipeline options.
func (c *Config) SearchOptions() search.Options {
	opts := search.DefaultOptions()
	opts.Chunking.ChunkSize = c.Chunking.ChunkSize
	opts.Chunking.Overlap = c.Chunking.Overlap
	if len(c.Chunking.Separators) > 0 {
		opts.Chunking.Separators = c.Chunking.Separators
	}
	opts.Alpha = c.Search.Alpha
	opts.TopKWide = c.Search.TopKWide
	opts.FinalK = c.Search.FinalK
	opts.DenseBackend = c.Search.DenseBackend
	opts.BM25 = store.BM25Config{K1: c.Search.BM25K1, B: c.Search.BM25B}
	return opts
}
