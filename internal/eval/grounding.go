package eval

import (
	"strings"
)

// uncertaintyMarkers are phrases that signal the model is speculating
// rather than quoting the context.
var uncertaintyMarkers = []string{
	"i think", "probably", "might be", "generally", "usually",
	"in my experience", "typically", "most companies",
}

// Grounding is the result of the hallucination heuristic for one answer.
type Grounding struct {
	HasUncertaintyMarkers bool    `json:"has_uncertainty_markers"`
	WordOverlapRatio      float64 `json:"word_overlap_ratio"`
	LikelyGrounded        bool    `json:"likely_grounded"`
}

// AssessGrounding applies a word-overlap heuristic: an answer is likely
// grounded when more than 30% of its words appear in the retrieved context
// and it carries no uncertainty markers. A coarse check, useful for
// catching obvious hallucinations, not a substitute for manual review.
func AssessGrounding(answer, context string) Grounding {
	answerLower := strings.ToLower(answer)

	uncertain := false
	for _, marker := range uncertaintyMarkers {
		if strings.Contains(answerLower, marker) {
			uncertain = true
			break
		}
	}

	answerWords := strings.Fields(answerLower)
	contextWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(context)) {
		contextWords[w] = true
	}

	overlap := 0.0
	if len(answerWords) > 0 {
		matched := 0
		for _, w := range answerWords {
			if contextWords[w] {
				matched++
			}
		}
		overlap = float64(matched) / float64(len(answerWords))
	}

	return Grounding{
		HasUncertaintyMarkers: uncertain,
		WordOverlapRatio:      overlap,
		LikelyGrounded:        overlap > 0.3 && !uncertain,
	}
}
