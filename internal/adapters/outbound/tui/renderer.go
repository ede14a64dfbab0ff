// Package tui renders the interactive terminal summary of a run.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reductor/reductor/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	priorityStyles = map[string]lipgloss.Style{
		domain.PriorityHigh:   lipgloss.NewStyle().Foreground(danger).Bold(true),
		domain.PriorityMedium: lipgloss.NewStyle().Foreground(warning).Bold(true),
		domain.PriorityLow:    lipgloss.NewStyle().Foreground(dim),
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderSummary renders the post-run terminal summary: headline metrics in
// a box, then the findings from highest priority down.
func RenderSummary(result *domain.RunResult) string {
	var b strings.Builder

	title := headerStyle.Render("reductor")
	subtitle := dimStyle.Render("Test Redundancy Analysis")

	if !result.Success {
		headline := failStyle.Render("run failed")
		b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + headline))
		b.WriteString("\n\n")
		for _, e := range result.Errors {
			b.WriteString("  " + failStyle.Render("✗ ") + e + "\n")
		}
		return b.String()
	}

	m := result.Metrics
	headline := lipgloss.NewStyle().Bold(true).Foreground(reductionColor(m.ReductionPercentage)).
		Render(fmt.Sprintf("%.2f%% potential reduction", m.ReductionPercentage))
	counts := dimStyle.Render(fmt.Sprintf("%d tests · %d clusters · %d findings",
		m.TotalTests, m.ClustersFound, m.RedundancyFindings))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + headline + "\n" + counts))
	b.WriteString("\n\n")

	if len(result.Findings) == 0 {
		b.WriteString("  " + passStyle.Render("No redundant tests found.") + "\n")
		return b.String()
	}

	b.WriteString("  " + titleStyle.Render("Findings") + "\n\n")
	for _, f := range result.Findings {
		renderFinding(&b, f)
	}

	b.WriteString("  " + separatorLine + "\n")
	fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("analyzed in %.2fs", result.ExecutionTimeSec)))

	return b.String()
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	tag := priorityStyles[f.Priority].Render(strings.ToUpper(f.Priority))
	fmt.Fprintf(b, "  %s  cluster %d — keep %s\n", tag, f.ClusterID, titleStyle.Render(f.RepresentativeTestID))
	for _, id := range f.RedundantTestIDs {
		fmt.Fprintf(b, "      %s %s\n", faintStyle.Render("−"), dimStyle.Render(id))
	}
	fmt.Fprintf(b, "      %s\n\n", dimStyle.Render(f.Recommendation))
}

func reductionColor(pct float64) lipgloss.Color {
	switch {
	case pct >= 30:
		return danger
	case pct >= 10:
		return warning
	default:
		return success
	}
}
