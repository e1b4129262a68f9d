package rag

import (
	"encoding/json"
	"strings"
)

// StructuredAnswer is the JSON shape the V2 prompt demands.
type StructuredAnswer struct {
	Answer         string `json:"answer"`
	SourceDocument string `json:"source_document"`
	Confidence     string `json:"confidence"`
	Reasoning      string `json:"reasoning"`
}

// IsRefusal reports whether the answer is the grounded refusal sentence.
func (a StructuredAnswer) IsRefusal() bool {
	return strings.Contains(a.Answer, Refusal)
}

// ParseStructured decodes a V2 model response. Markdown code fences around
// the JSON are stripped first; models add them despite instructions.
func ParseStructured(raw string) (StructuredAnswer, error) {
	var ans StructuredAnswer
	err := json.Unmarshal([]byte(stripFences(raw)), &ans)
	return ans, err
}

// stripFences removes a surrounding ```json ... ``` or ``` ... ``` block.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
