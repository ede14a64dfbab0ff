package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reductor/reductor/internal/adapters/outbound/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		projectPath string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past run metrics for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := history.New().Load(projectPath)
			if err != nil {
				return fmt.Errorf("loading history: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			for _, e := range entries {
				commit := e.CommitHash
				if len(commit) > 8 {
					commit = commit[:8]
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s %8s  %d tests, %d redundant (%.2f%%)\n",
					e.Timestamp, e.RunID, commit,
					e.Metrics.TotalTests, e.Metrics.RedundantTests, e.Metrics.ReductionPercentage)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root holding the history")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")

	return cmd
}
