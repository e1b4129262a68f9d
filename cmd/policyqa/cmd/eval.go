package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/policyqa/policyqa/internal/eval"
)

// newEvalCmd creates the eval command: run the question set end to end and
// report grounding statistics.
func newEvalCmd() *cobra.Command {
	var questionsPath string
	var outputPath string
	var promptVersion int

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation question set",
		Long: `Eval retrieves and answers every question in the set, applies a
word-overlap grounding heuristic to each answer, and reports how many
unanswerable questions were correctly refused. Without --questions the
built-in question set is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			questions := eval.DefaultQuestions()
			if questionsPath != "" {
				questions, err = eval.LoadQuestions(questionsPath)
				if err != nil {
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

			runner := eval.NewRunner(pipeline, generator)
			results, err := runner.Run(cmd.Context(), questions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("creating results file: %w", err)
				}
				defer f.Close()
				if err := eval.WriteResults(f, results); err != nil {
					return err
				}
				fmt.Fprintf(out, "Results written to %s\n", outputPath)
			} else if err := eval.WriteResults(out, results); err != nil {
				return err
			}

			s := eval.Summarize(results)
			fmt.Fprintf(out, "\n%d questions: %d likely grounded, %d correct refusals, %d missed refusals\n",
				s.Total, s.LikelyGrounded, s.CorrectRefusals, s.MissedRefusals)
			return nil
		},
	}

	cmd.Flags().StringVar(&questionsPath, "questions", "", "Path to a YAML question set (default: built-in)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write JSON results to this file")
	cmd.Flags().IntVar(&promptVersion, "prompt", 0, "Prompt version override (1 = plain, 2 = strict JSON)")
	return cmd
}
