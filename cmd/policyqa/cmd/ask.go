package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newAskCmd creates the ask command: retrieve, then generate a grounded
// answer.
func newAskCmd() *cobra.Command {
	var jsonOutput bool
	var promptVersion int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the policy corpus",
		Long: `Ask retrieves the most relevant fragments and generates an answer
grounded in them. With prompt version 2 (the default) the model must
answer in strict JSON, cite the source document, and refuse when the
context is insufficient.

Requires GROQ_API_KEY or OPENAI_API_KEY (a .env file is read if present).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if promptVersion != 0 {
				cfg.Generation.PromptVersion = promptVersion
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			pipeline, err := buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			generator, err := newGenerator(cfg)
			if err != nil {
				return err
			}
			tracer, err := newTracer(cfg)
			if err != nil {
				return err
			}
			defer tracer.Close()

			question := args[0]
			start := time.Now()
			fragments, err := pipeline.Query(cmd.Context(), question)
			if err != nil {
				return err
			}
			if err := recordTrace(tracer, question, start, fragments); err != nil {
				return err
			}

			answer, err := generator.Answer(cmd.Context(), question, fragments)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(answer)
			}

			if answer.Structured != nil {
				fmt.Fprintf(out, "Answer: %s\n", answer.Structured.Answer)
				fmt.Fprintf(out, "Source: %s\n", answer.Structured.SourceDocument)
				fmt.Fprintf(out, "Confidence: %s\n", answer.Structured.Confidence)
				if answer.Structured.Reasoning != "" {
					fmt.Fprintf(out, "Reasoning: %s\n", answer.Structured.Reasoning)
				}
			} else {
				fmt.Fprintln(out, answer.Raw)
			}

			fmt.Fprintf(out, "\nGrounded on %d fragments:\n", len(answer.Fragments))
			for _, f := range answer.Fragments {
				fmt.Fprintf(out, "  - %s (fragment %d, score %.4f)\n", f.Source, f.FragmentID, f.Score)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full answer as JSON")
	cmd.Flags().IntVar(&promptVersion, "prompt", 0, "Prompt version override (1 = plain, 2 = strict JSON)")
	return cmd
}
