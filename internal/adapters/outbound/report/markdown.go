package report

import (
	"fmt"
	"strings"

	"github.com/reductor/reductor/internal/domain"
)

// MarkdownRenderer produces the human-readable report committed to PRs and
// pasted into CI summaries.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(result *domain.RunResult) (string, error) {
	var b strings.Builder

	b.WriteString("# Test Redundancy Report\n\n")
	fmt.Fprintf(&b, "Run `%s`", result.RunID)
	if result.CommitHash != "" {
		fmt.Fprintf(&b, " at commit `%s`", shortHash(result.CommitHash))
	}
	fmt.Fprintf(&b, " — analyzed in %.2fs\n\n", result.ExecutionTimeSec)

	if !result.Success {
		b.WriteString("## Run failed\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		return b.String(), nil
	}

	m := result.Metrics
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Tests | Clusters | Findings | Redundant tests | Potential reduction |\n")
	fmt.Fprintf(&b, "|------:|---------:|---------:|----------------:|--------------------:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %.2f%% |\n\n",
		m.TotalTests, m.ClustersFound, m.RedundancyFindings, m.RedundantTests, m.ReductionPercentage)

	if len(result.Findings) == 0 {
		b.WriteString("No redundancy found.\n")
		return b.String(), nil
	}

	b.WriteString("## Findings\n\n")
	for i, f := range result.Findings {
		fmt.Fprintf(&b, "### %d. Cluster %d — %s priority\n\n", i+1, f.ClusterID, f.Priority)
		fmt.Fprintf(&b, "%s\n\n", f.Recommendation)
		fmt.Fprintf(&b, "- **Keep:** `%s`\n", f.RepresentativeTestID)
		fmt.Fprintf(&b, "- **Candidates for removal:**\n")
		for _, id := range f.RedundantTestIDs {
			fmt.Fprintf(&b, "  - `%s`\n", id)
		}
		fmt.Fprintf(&b, "- **Score:** %.3f, cluster size %d, coverage overlap %.1f%%\n",
			f.RedundancyScore, f.Analysis.ClusterSize, f.Analysis.CoverageOverlapPct)
		if f.Savings != nil {
			fmt.Fprintf(&b, "- **Savings:** %.1fs per run, %d fewer tests\n",
				f.Savings.TimeSavedSec, f.Savings.TestCountReduction)
		}
		if len(f.Rationale) > 0 {
			b.WriteString("\n")
			for _, line := range f.Rationale {
				fmt.Fprintf(&b, "> %s\n", line)
			}
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
