package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/policyqa/policyqa/internal/search"
)

// ErrMissingAPIKey is returned when no generation API key is configured.
var ErrMissingAPIKey = errors.New("rag: missing API key (set GROQ_API_KEY or OPENAI_API_KEY)")

// DefaultModel is the Groq-hosted model used for answer generation.
const DefaultModel = "llama-3.3-70b-versatile"

// DefaultBaseURL points at Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// chatCompleter is the slice of the OpenAI client the generator needs.
// Tests substitute a canned implementation.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// APIKey authenticates against the chat API. Required.
	APIKey string

	// BaseURL overrides the chat endpoint. Empty selects Groq.
	BaseURL string

	// Model is the chat model name. Empty selects DefaultModel.
	Model string

	// PromptVersion is PromptV1 or PromptV2.
	PromptVersion int

	// MaxTokens caps the completion length. Zero means the API default.
	MaxTokens int
}

// Answer is a generated answer with its provenance.
type Answer struct {
	// Raw is the unmodified model output.
	Raw string

	// Structured is the parsed V2 response, nil for V1 or when the model
	// returned invalid JSON.
	Structured *StructuredAnswer

	// Fragments are the retrieved fragments the answer was grounded on.
	Fragments []search.ScoredFragment

	PromptVersion int
}

// Generator produces grounded answers from retrieved fragments.
type Generator struct {
	client        chatCompleter
	model         string
	promptVersion int
	maxTokens     int
}

// NewGenerator validates the configuration and builds a Generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	version := cfg.PromptVersion
	if version == 0 {
		version = PromptV2
	}
	if version != PromptV1 && version != PromptV2 {
		return nil, fmt.Errorf("rag: unknown prompt version %d", version)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         model,
		promptVersion: version,
		maxTokens:     cfg.MaxTokens,
	}, nil
}

// Answer generates a grounded answer for the question from the retrieved
// fragments. With no fragments the refusal is returned directly without an
// API call; there is nothing to ground an answer on.
func (g *Generator) Answer(ctx context.Context, question string, fragments []search.ScoredFragment) (*Answer, error) {
	if len(fragments) == 0 {
		return &Answer{
			Raw:           Refusal,
			Structured:    refusalStructured(),
			Fragments:     []search.ScoredFragment{},
			PromptVersion: g.promptVersion,
		}, nil
	}

	prompt, err := BuildPrompt(g.promptVersion, BuildContext(fragments), question)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Deterministic output keeps answers reproducible across runs.
		Temperature: 0,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	answer := &Answer{
		Raw:           raw,
		Fragments:     fragments,
		PromptVersion: g.promptVersion,
	}

	if g.promptVersion == PromptV2 {
		if parsed, err := ParseStructured(raw); err == nil {
			answer.Structured = &parsed
		} else {
			slog.Warn("structured_parse_failed", slog.String("error", err.Error()))
		}
	}
	return answer, nil
}

func refusalStructured() *StructuredAnswer {
	return &StructuredAnswer{
		Answer:         Refusal,
		SourceDocument: "Not specified",
		Confidence:     "Low",
		Reasoning:      "No fragments were retrieved for this question.",
	}
}
