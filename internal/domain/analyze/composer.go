package analyze

import (
	"fmt"
	"math"

	"github.com/reductor/reductor/internal/domain"
)

// Compose enriches findings with an action, rationale bullets, and a
// numeric priority for downstream sorting in dashboards. The findings slice
// is modified in place and returned.
func Compose(findings []domain.Finding) []domain.Finding {
	for i := range findings {
		composeFinding(&findings[i])
	}
	return findings
}

func composeFinding(f *domain.Finding) {
	f.Action = actionFor(f.RedundancyScore)
	f.Rationale = rationaleFor(f)
	f.PriorityScore = numericPriority(f)
}

// actionFor maps a redundancy score to the recommended action.
func actionFor(score float64) string {
	switch {
	case score >= 0.95:
		return domain.ActionMerge
	case score >= 0.85:
		return domain.ActionConsolidate
	case score >= 0.70:
		return domain.ActionReview
	default:
		return domain.ActionMonitor
	}
}

// rationaleFor builds the human-readable bullets backing the recommendation.
func rationaleFor(f *domain.Finding) []string {
	pct := int(math.Round(f.RedundancyScore * 100))
	bullets := []string{}

	switch {
	case f.RedundancyScore >= 0.95:
		bullets = append(bullets, fmt.Sprintf("Tests in this cluster are %d%% similar; all but the representative exercise the same behavior.", pct))
	case f.RedundancyScore >= 0.85:
		bullets = append(bullets, fmt.Sprintf("Tests in this cluster overlap at %d%%; several could be merged or parameterized.", pct))
	default:
		bullets = append(bullets, fmt.Sprintf("Tests in this cluster show %d%% similarity; worth a look during the next cleanup.", pct))
	}

	bullets = append(bullets, fmt.Sprintf("%d of %d tests add no distinct coverage beyond %s.",
		len(f.RedundantTestIDs), f.Analysis.ClusterSize, f.RepresentativeTestID))

	if f.Savings != nil && f.Savings.TimeSavedMs > 0 {
		bullets = append(bullets, fmt.Sprintf("Removing them saves about %.1fs per suite run.", f.Savings.TimeSavedSec))
	}
	if f.Analysis.CoverageOverlapPct > 0 {
		bullets = append(bullets, fmt.Sprintf("Raw coverage overlap across the cluster averages %.0f%%.", f.Analysis.CoverageOverlapPct))
	}
	return bullets
}

// numericPriority folds the label, score, set size, and time savings into a
// single sortable number.
func numericPriority(f *domain.Finding) float64 {
	var base float64
	switch f.Priority {
	case domain.PriorityHigh:
		base = 100
	case domain.PriorityMedium:
		base = 50
	default:
		base = 10
	}

	sizeBonus := math.Min(float64(len(f.RedundantTestIDs))*2, 20)

	var timeBonus float64
	if f.Savings != nil {
		timeBonus = math.Min(float64(f.Savings.TimeSavedMs)/100, 10)
	}

	return base + f.RedundancyScore*20 + sizeBonus + timeBonus
}
