package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/policyqa/policyqa/internal/logging"
	"github.com/policyqa/policyqa/internal/search"
)

// newSearchCmd creates the search command: retrieval only, no generation.
func newSearchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve the most relevant policy fragments",
		Long: `Search runs hybrid retrieval only and prints the fused ranking.
Useful for inspecting what the ask command would ground its answer on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipeline, err := buildPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			tracer, err := newTracer(cfg)
			if err != nil {
				return err
			}
			defer tracer.Close()

			start := time.Now()
			results, err := pipeline.Query(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := recordTrace(tracer, args[0], start, results); err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No fragments retrieved.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s (fragment %d, score %.4f)\n%s\n\n",
					i+1, r.Source, r.FragmentID, r.Score, r.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	return cmd
}

// recordTrace appends one trace entry for a served query.
func recordTrace(tracer *logging.Tracer, query string, start time.Time, results []search.ScoredFragment) error {
	traced := make([]logging.TraceResult, len(results))
	for i, r := range results {
		traced[i] = logging.TraceResult{
			FragmentID: r.FragmentID,
			Source:     r.Source,
			Score:      r.Score,
		}
	}
	return tracer.Record(logging.TraceEntry{
		Query:     query,
		ElapsedMS: time.Since(start).Milliseconds(),
		Results:   traced,
	})
}
