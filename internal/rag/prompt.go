// Package rag turns retrieved fragments into grounded answers: context
// assembly, prompt construction, LLM inference, and structured response
// parsing.
package rag

import (
	"fmt"
	"strings"

	"github.com/policyqa/policyqa/internal/search"
)

// Refusal is the exact sentence the model is instructed to return when the
// context cannot answer the question. The eval harness keys off it.
const Refusal = "The provided policy documents do not contain sufficient information to answer this question."

// Prompt versions. V1 is a plain instruction; V2 demands strict JSON with
// source attribution and confidence, and forbids outside knowledge.
const (
	PromptV1 = 1
	PromptV2 = 2
)

const promptV1Template = `Answer the question using the context below.

Context:
%s

Question:
%s

Answer:
`

const promptV2Template = `You are an expert assistant for company policy documents.

STRICT INSTRUCTIONS:
1. Answer ONLY using the provided context below
2. Do NOT use outside knowledge or make assumptions
3. If the answer is not present or unclear, respond with:
   "` + Refusal + `"
4. Always cite the source document name in your answer
5. Be precise and quote exact policy terms when relevant

Context:
%s

Question:
%s

Respond in valid JSON format:
{
  "answer": "<your answer or refusal message>",
  "source_document": "<policy document name or 'Not specified'>",
  "confidence": "High | Medium | Low",
  "reasoning": "<brief explanation of how you arrived at this answer>"
}

JSON Response:
`

// BuildContext joins retrieved fragments into the context block, each
// prefixed with its source document.
func BuildContext(fragments []search.ScoredFragment) string {
	blocks := make([]string, len(fragments))
	for i, f := range fragments {
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", f.Source, f.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt renders the selected prompt version with the context and
// question filled in.
func BuildPrompt(version int, context, question string) (string, error) {
	switch version {
	case PromptV1:
		return fmt.Sprintf(promptV1Template, context, question), nil
	case PromptV2:
		return fmt.Sprintf(promptV2Template, context, question), nil
	}
	return "", fmt.Errorf("unknown prompt version %d", version)
}
