package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/policyqa/policyqa/internal/rag"
	"github.com/policyqa/policyqa/internal/search"
)

// Retriever is the retrieval side of the system under evaluation.
type Retriever interface {
	Query(ctx context.Context, query string) ([]search.ScoredFragment, error)
}

// Answerer is the generation side of the system under evaluation.
type Answerer interface {
	Answer(ctx context.Context, question string, fragments []search.ScoredFragment) (*rag.Answer, error)
}

// Result is one evaluated question.
type Result struct {
	QuestionID    int       `json:"question_id"`
	Question      string    `json:"question"`
	Category      string    `json:"category"`
	ExpectedType  string    `json:"expected_type"`
	PromptVersion int       `json:"prompt_version"`
	Answer        string    `json:"answer"`
	Refused       bool      `json:"refused"`
	NumFragments  int       `json:"num_fragments"`
	Grounding     Grounding `json:"grounding"`
	Timestamp     time.Time `json:"timestamp"`
}

// Summary aggregates a run.
type Summary struct {
	Total          int `json:"total"`
	LikelyGrounded int `json:"likely_grounded"`

	// CorrectRefusals counts unanswerable questions the system refused.
	CorrectRefusals int `json:"correct_refusals"`

	// MissedRefusals counts unanswerable questions the system answered
	// anyway, the main hallucination signal.
	MissedRefusals int `json:"missed_refusals"`
}

// Runner evaluates a retrieval+generation stack against a question set.
type Runner struct {
	retriever Retriever
	answerer  Answerer
}

// NewRunner wires the system under evaluation.
func NewRunner(retriever Retriever, answerer Answerer) *Runner {
	return &Runner{retriever: retriever, answerer: answerer}
}

const answerPreviewLimit = 200

// Run evaluates every question in order. A failing question aborts the run;
// partial results are not useful for comparing prompt versions.
func (r *Runner) Run(ctx context.Context, questions []Question) ([]Result, error) {
	results := make([]Result, 0, len(questions))
	for _, q := range questions {
		fragments, err := r.retriever.Query(ctx, q.Question)
		if err != nil {
			return nil, fmt.Errorf("question %d: retrieval failed: %w", q.ID, err)
		}

		answer, err := r.answerer.Answer(ctx, q.Question, fragments)
		if err != nil {
			return nil, fmt.Errorf("question %d: generation failed: %w", q.ID, err)
		}

		text := answer.Raw
		refused := false
		if answer.Structured != nil {
			text = answer.Structured.Answer
			refused = answer.Structured.IsRefusal()
		} else if text == rag.Refusal {
			refused = true
		}

		grounding := AssessGrounding(text, rag.BuildContext(fragments))
		slog.Info("eval_question",
			slog.Int("id", q.ID),
			slog.String("category", q.Category),
			slog.Bool("refused", refused),
			slog.Bool("likely_grounded", grounding.LikelyGrounded),
		)

		results = append(results, Result{
			QuestionID:    q.ID,
			Question:      q.Question,
			Category:      q.Category,
			ExpectedType:  q.ExpectedType,
			PromptVersion: answer.PromptVersion,
			Answer:        truncate(text, answerPreviewLimit),
			Refused:       refused,
			NumFragments:  len(fragments),
			Grounding:     grounding,
			Timestamp:     time.Now().UTC(),
		})
	}
	return results, nil
}

// Summarize aggregates results into the run summary.
func Summarize(results []Result) Summary {
	var s Summary
	s.Total = len(results)
	for _, r := range results {
		if r.Grounding.LikelyGrounded {
			s.LikelyGrounded++
		}
		if r.ExpectedType == "unanswerable" {
			if r.Refused {
				s.CorrectRefusals++
			} else {
				s.MissedRefusals++
			}
		}
	}
	return s
}

// WriteResults encodes results and their summary as indented JSON.
func WriteResults(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Summary Summary  `json:"summary"`
		Results []Result `json:"results"`
	}{Summarize(results), results})
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
