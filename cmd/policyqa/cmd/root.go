// Package cmd provides the CLI commands for policyqa.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/policyqa/policyqa/internal/config"
	"github.com/policyqa/policyqa/internal/embed"
	"github.com/policyqa/policyqa/internal/loader"
	"github.com/policyqa/policyqa/internal/logging"
	"github.com/policyqa/policyqa/internal/rag"
	"github.com/policyqa/policyqa/internal/search"
	"github.com/policyqa/policyqa/pkg/version"
)

// DefaultConfigFile is the config file looked up in the working directory.
const DefaultConfigFile = "policyqa.yaml"

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root command for the policyqa CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policyqa",
		Short: "Grounded question answering over policy documents",
		Long: `policyqa answers questions about a policy document corpus using
hybrid retrieval (semantic + keyword) and a grounded prompt that refuses
to answer from outside knowledge.

Put .txt or .md policy documents in the corpus directory, then:

  policyqa search "refund window"     retrieval only
  policyqa ask "What is the refund policy?"
  policyqa eval                       run the evaluation question set`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// API keys commonly live in a local .env during development.
			_ = godotenv.Load()
		},
	}

	cmd.SetVersionTemplate("policyqa version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigFile, "Path to config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newEvalCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig loads the config file and applies the log-level flag before
// installing the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Setup(logging.Config{Level: cfg.Logging.Level})
	return cfg, nil
}

// newEmbedder builds the configured embedding provider wrapped in the LRU
// cache.
func newEmbedder(cfg *config.Config) (embed.Embedder, error) {
	var (
		inner embed.Embedder
		err   error
	)
	switch cfg.Embeddings.Provider {
	case "static":
		inner = embed.NewStaticEmbedder()
	case "openai":
		inner, err = embed.NewOpenAIEmbedder(embed.OpenAIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			BaseURL:   cfg.Embeddings.BaseURL,
			Model:     cfg.Embeddings.Model,
			BatchSize: cfg.Embeddings.BatchSize,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", cfg.Embeddings.Provider)
	}
	return embed.NewCachedEmbedder(inner, cfg.Embeddings.CacheSize), nil
}

// buildPipeline loads the corpus and builds a query-ready snapshot.
func buildPipeline(ctx context.Context, cfg *config.Config) (*search.Pipeline, error) {
	docs, err := loader.Load(cfg.Corpus.Dir)
	if err != nil {
		return nil, err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	return search.Build(ctx, docs, embedder, cfg.SearchOptions())
}

// newGenerator builds the answer generator. The Groq key takes precedence;
// an OpenAI key works against any compatible base URL.
func newGenerator(cfg *config.Config) (*rag.Generator, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return rag.NewGenerator(rag.GeneratorConfig{
		APIKey:        apiKey,
		BaseURL:       cfg.Generation.BaseURL,
		Model:         cfg.Generation.Model,
		PromptVersion: cfg.Generation.PromptVersion,
		MaxTokens:     cfg.Generation.MaxTokens,
	})
}

// newTracer opens the retrieval trace file when one is configured. A nil
// tracer is a no-op.
func newTracer(cfg *config.Config) (*logging.Tracer, error) {
	if cfg.Logging.TraceFile == "" {
		return nil, nil
	}
	return logging.NewTracer(cfg.Logging.TraceFile)
}
