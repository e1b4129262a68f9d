package embed

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"
)

// ErrMissingAPIKey is returned when no API key is configured for the
// OpenAI-compatible embedder.
var ErrMissingAPIKey = errors.New("embedding API key is required")

// OpenAI embedding defaults.
const (
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultBatchSize      = 64
	DefaultConcurrency    = 4
)

// OpenAIConfig configures the OpenAI-compatible embedder.
type OpenAIConfig struct {
	// APIKey authenticates against the embedding endpoint.
	APIKey string

	// BaseURL overrides the API endpoint. Empty means api.openai.com;
	// any OpenAI-compatible server works.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected vector dimensionality. Zero means the
	// known default for Model.
	Dimensions int

	// BatchSize is the number of texts per embedding request.
	BatchSize int

	// Concurrency bounds parallel embedding requests during a build.
	Concurrency int
}

// OpenAIEmbedder generates embeddings via an OpenAI-compatible API.
// Vectors are L2-normalized so Euclidean search behaves like cosine.
type OpenAIEmbedder struct {
	client *openai.Client
	config OpenAIConfig
}

// NewOpenAIEmbedder creates an embedder from config, applying defaults.
func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = defaultDimensions(cfg.Model)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		config: cfg,
	}, nil
}

// defaultDimensions maps known embedding models to their vector size.
func defaultDimensions(model string) int {
	if model == "text-embedding-3-large" {
		return 3072
	}
	return 1536
}

// Embed generates the embedding for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.request(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for all texts, issuing bounded-parallel
// requests of at most BatchSize texts each. Any request failure fails the
// whole batch; partial results are never returned.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)

	for start := 0; start < len(texts); start += e.config.BatchSize {
		end := start + e.config.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		start, end := start, end
		g.Go(func() error {
			vecs, err := e.request(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(results[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// request embeds one batch of texts and normalizes the result.
func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.config.Model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		if len(vec) != e.config.Dimensions {
			return nil, fmt.Errorf("model %s returned %d dimensions, expected %d",
				e.config.Model, len(vec), e.config.Dimensions)
		}
		normalizeInPlace(vec)
		vecs[d.Index] = vec
	}
	return vecs, nil
}

// Dimensions returns the embedding dimensionality.
func (e *OpenAIEmbedder) Dimensions() int { return e.config.Dimensions }

// ModelName returns the model identifier.
func (e *OpenAIEmbedder) ModelName() string { return "openai-" + e.config.Model }

var _ Embedder = (*OpenAIEmbedder)(nil)
