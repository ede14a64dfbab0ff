// Package analyze scores clusters of similar tests and turns them into
// redundancy findings with recommendations.
package analyze

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/reductor/reductor/internal/domain"
)

// similarityGate is the minimum representative-to-member cosine for a member
// to become a redundancy candidate.
const similarityGate = 0.85

// coveragePreservationMin is the minimum share of a candidate's covered
// lines that the representative must also cover. Removing a candidate below
// this bar could drop real coverage.
const coveragePreservationMin = 0.95

// overlapSampleSize bounds the pairwise Jaccard diagnostic to the first 10
// members of a cluster.
const overlapSampleSize = 10

// Analyzer examines each cluster of a partition independently.
type Analyzer struct {
	minClusterSize int
}

// NewAnalyzer creates an Analyzer. Clusters smaller than minClusterSize are
// skipped (the floor is 2: a singleton has no redundancy).
func NewAnalyzer(cfg domain.EngineConfig) *Analyzer {
	min := cfg.MinClusterSize
	if min < 2 {
		min = 2
	}
	return &Analyzer{minClusterSize: min}
}

// Analyze emits one finding per cluster with at least one surviving
// redundant member, sorted by priority (high first) then score descending.
// Clusters never read each other's data, so they are analyzed in parallel.
func (a *Analyzer) Analyze(p *domain.Partition, byID map[string]domain.FeatureRecord) []domain.Finding {
	ids := p.ClusterIDs()
	results := make([]*domain.Finding, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(slot, clusterID int) {
			defer wg.Done()
			results[slot] = a.analyzeCluster(clusterID, p.Clusters[clusterID], byID)
		}(i, id)
	}
	wg.Wait()

	findings := make([]domain.Finding, 0, len(results))
	for _, f := range results {
		if f != nil {
			findings = append(findings, *f)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := domain.PriorityRank(findings[i].Priority), domain.PriorityRank(findings[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return findings[i].RedundancyScore > findings[j].RedundancyScore
	})
	return findings
}

// analyzeCluster runs the full per-cluster pipeline: similarity matrix,
// representative selection, redundancy gating, scoring, classification.
// Returns nil when the cluster produces no finding.
func (a *Analyzer) analyzeCluster(clusterID int, memberIDs []string, byID map[string]domain.FeatureRecord) *domain.Finding {
	members := make([]domain.FeatureRecord, 0, len(memberIDs))
	for _, id := range memberIDs {
		if r, ok := byID[id]; ok {
			members = append(members, r)
		}
	}
	k := len(members)
	if k < a.minClusterSize {
		return nil
	}

	vectors := make([][]float64, k)
	for i, m := range members {
		vectors[i] = m.Vector
	}
	s := similarityMatrix(vectors)

	rep := selectRepresentative(s, members)

	redundant := make([]string, 0, k-1)
	var timeSavedMs int64
	var linesReduced int
	for j, m := range members {
		if j == rep {
			continue
		}
		if s[rep][j] < similarityGate {
			continue
		}
		if overlapRatio(m.Metadata.CoverageLines, members[rep].Metadata.CoverageLines) < coveragePreservationMin {
			continue
		}
		redundant = append(redundant, m.TestID)
		timeSavedMs += m.Metadata.ExecutionTimeMs
		linesReduced += m.Metadata.LinesCovered
	}
	if len(redundant) == 0 {
		return nil
	}

	score := upperTriangleMean(s)

	f := &domain.Finding{
		ClusterID:            clusterID,
		RepresentativeTestID: members[rep].TestID,
		RedundantTestIDs:     redundant,
		RedundancyScore:      score,
		Recommendation:       recommendationText(score, len(redundant)),
		Priority:             classifyPriority(score, len(redundant)),
		Analysis: domain.FindingAnalysis{
			AvgSimilarity:         score,
			ClusterSize:           k,
			RedundantCount:        len(redundant),
			ExecutionTimeSavedSec: float64(timeSavedMs) / 1000,
			CoverageOverlapPct:    coverageOverlapPct(members),
		},
	}
	f.Savings = &domain.PotentialSavings{
		TimeSavedMs:         timeSavedMs,
		TimeSavedSec:        float64(timeSavedMs) / 1000,
		LinesReduction:      linesReduced,
		TestCountReduction:  len(redundant),
		PercentageReduction: math.Round(float64(len(redundant))/float64(k)*100*100) / 100,
	}
	return f
}

// selectRepresentative scores every member on centrality, speed, and
// coverage breadth, returning the argmax (lowest index on ties).
func selectRepresentative(s [][]float64, members []domain.FeatureRecord) int {
	best := 0
	bestScore := math.Inf(-1)
	for i, m := range members {
		speed := 1 / (1 + float64(m.Metadata.ExecutionTimeMs)/1000)
		breadth := math.Min(float64(m.Metadata.LinesCovered)/100, 1)
		score := 0.7*avgSimilarityOf(s, i) + 0.2*speed + 0.1*breadth
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// classifyPriority maps score and redundant-set size to a priority label.
func classifyPriority(score float64, redundantCount int) string {
	switch {
	case score >= 0.95 || redundantCount >= 10:
		return domain.PriorityHigh
	case score >= 0.85 || redundantCount >= 5:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// recommendationText renders the user-facing recommendation for a score band.
func recommendationText(score float64, redundantCount int) string {
	pct := int(math.Round(score * 100))
	switch {
	case score >= 0.95:
		return fmt.Sprintf("Remove %d highly redundant tests (%d%% similar). Keep only the representative test for this functionality.", redundantCount, pct)
	case score >= 0.85:
		return fmt.Sprintf("Consider consolidating %d similar tests (%d%% overlap). Review for potential merge or parameterization opportunities.", redundantCount, pct)
	default:
		return fmt.Sprintf("Review %d related tests for optimization opportunities. Minor redundancy detected (%d%% similarity).", redundantCount, pct)
	}
}

// coverageOverlapPct averages the pairwise Jaccard of raw coverage sets over
// the first overlapSampleSize members. Bounded work on huge clusters.
func coverageOverlapPct(members []domain.FeatureRecord) float64 {
	n := len(members)
	if n > overlapSampleSize {
		n = overlapSampleSize
	}
	if n < 2 {
		return 0
	}
	var sum float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += Jaccard(members[i].Metadata.CoverageLines, members[j].Metadata.CoverageLines)
			pairs++
		}
	}
	return math.Round(sum/float64(pairs)*100*100) / 100
}
