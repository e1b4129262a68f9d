// Package eval runs the question-set evaluation harness: every question is
// retrieved and answered, then checked with a grounding heuristic.
package eval

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/policyqa/policyqa/configs"
)

// Question is one evaluation case.
type Question struct {
	ID       int    `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
	Category string `yaml:"category" json:"category"`

	// ExpectedType is "answerable", "partially_answerable", or
	// "unanswerable".
	ExpectedType string `yaml:"expected_type" json:"expected_type"`

	Notes string `yaml:"notes" json:"notes,omitempty"`
}

// ParseQuestions decodes a YAML question set.
func ParseQuestions(data []byte) ([]Question, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing question set: %w", err)
	}
	if len(doc.Questions) == 0 {
		return nil, fmt.Errorf("question set is empty")
	}
	return doc.Questions, nil
}

// LoadQuestions reads a YAML question set from path.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading question set %s: %w", path, err)
	}
	return ParseQuestions(data)
}

// DefaultQuestions returns the built-in question set.
func DefaultQuestions() []Question {
	qs, err := ParseQuestions([]byte(configs.EvalQuestions))
	if err != nil {
		// The embedded set is validated by tests; failing here means a
		// broken build, not a runtime condition.
		panic(err)
	}
	return qs
}
