package analyze_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/reductor/reductor/internal/domain"
	"github.com/reductor/reductor/internal/domain/analyze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyzerConfig() domain.EngineConfig {
	return domain.DefaultEngineConfig(domain.AlgorithmKMeans)
}

func record(id string, vector []float64, execMs int64, coverage ...string) domain.FeatureRecord {
	return domain.FeatureRecord{
		TestID: id,
		Vector: vector,
		Metadata: domain.FeatureMetadata{
			CoverageLines:   coverage,
			ExecutionTimeMs: execMs,
			LinesCovered:    len(coverage),
		},
	}
}

func index(records ...domain.FeatureRecord) map[string]domain.FeatureRecord {
	byID := make(map[string]domain.FeatureRecord, len(records))
	for _, r := range records {
		byID[r.TestID] = r
	}
	return byID
}

// correlatedVectors returns n unit vectors with pairwise cosine exactly c:
// sqrt(c) on a shared axis plus sqrt(1-c) on a per-vector axis.
func correlatedVectors(n int, c float64) [][]float64 {
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		v := make([]float64, n+1)
		v[0] = math.Sqrt(c)
		v[i+1] = math.Sqrt(1 - c)
		out[i] = v
	}
	return out
}

func TestAnalyze_TrivialDuplicates(t *testing.T) {
	vec := []float64{0.6, 0.8}
	cov := []string{"a.php:1", "a.php:2"}
	byID := index(
		record("t1", vec, 100, cov...),
		record("t2", vec, 100, cov...),
		record("t3", vec, 100, cov...),
	)
	p := domain.NewPartition(map[int][]string{0: {"t1", "t2", "t3"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "t1", f.RepresentativeTestID)
	assert.Equal(t, []string{"t2", "t3"}, f.RedundantTestIDs)
	assert.InDelta(t, 1.0, f.RedundancyScore, 1e-9)
	assert.Equal(t, domain.PriorityHigh, f.Priority)
	assert.True(t, strings.HasPrefix(f.Recommendation, "Remove 2 highly redundant tests (100% similar)."),
		"got %q", f.Recommendation)
	assert.Equal(t, 3, f.Analysis.ClusterSize)
	assert.Equal(t, 2, f.Analysis.RedundantCount)
	assert.InDelta(t, 0.2, f.Analysis.ExecutionTimeSavedSec, 1e-9)
	assert.InDelta(t, 100, f.Analysis.CoverageOverlapPct, 1e-9)
}

func TestAnalyze_CoverageGateBlocksRemoval(t *testing.T) {
	// Near-identical sources but only 50% coverage overlap: removing t2
	// would lose half its lines, so no finding is emitted.
	vecs := correlatedVectors(2, 0.97)
	cov1 := []string{"a:1", "a:2", "a:3", "a:4", "a:5", "a:6", "a:7", "a:8", "a:9", "a:10"}
	cov2 := []string{"a:1", "a:2", "a:3", "a:4", "a:5", "b:11", "b:12", "b:13", "b:14", "b:15"}
	byID := index(
		record("t1", vecs[0], 50, cov1...),
		record("t2", vecs[1], 50, cov2...),
	)
	p := domain.NewPartition(map[int][]string{0: {"t1", "t2"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	assert.Empty(t, findings)
}

func TestAnalyze_EmptyCandidateCoveragePassesGate(t *testing.T) {
	vec := []float64{1, 0}
	byID := index(
		record("t1", vec, 10, "a:1"),
		record("t2", vec, 10), // no coverage at all
	)
	p := domain.NewPartition(map[int][]string{0: {"t1", "t2"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 1)
	assert.Equal(t, []string{"t2"}, findings[0].RedundantTestIDs)
}

func TestAnalyze_LargeClusterForcesHighPriority(t *testing.T) {
	// Pairwise cosine 0.87: below the 0.95 score band but 11 redundant
	// members trip the size rule.
	const n = 12
	vecs := correlatedVectors(n, 0.87)
	cov := []string{"a:1", "a:2"}
	records := make([]domain.FeatureRecord, n)
	members := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t%d", i)
		records[i] = record(id, vecs[i], 100, cov...)
		members[i] = id
	}
	p := domain.NewPartition(map[int][]string{0: members})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, index(records...))

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Len(t, f.RedundantTestIDs, n-1)
	assert.Equal(t, domain.PriorityHigh, f.Priority)
	assert.InDelta(t, 0.87, f.RedundancyScore, 1e-9)
}

func TestAnalyze_MediumPriorityBand(t *testing.T) {
	vecs := correlatedVectors(3, 0.90)
	cov := []string{"a:1"}
	byID := index(
		record("t1", vecs[0], 10, cov...),
		record("t2", vecs[1], 10, cov...),
		record("t3", vecs[2], 10, cov...),
	)
	p := domain.NewPartition(map[int][]string{0: {"t1", "t2", "t3"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 1)
	assert.Equal(t, domain.PriorityMedium, findings[0].Priority)
	assert.True(t, strings.HasPrefix(findings[0].Recommendation, "Consider consolidating 2 similar tests (90% overlap)."),
		"got %q", findings[0].Recommendation)
}

func TestAnalyze_NoiseBucketExcluded(t *testing.T) {
	vec := []float64{1, 0}
	byID := index(
		record("t1", vec, 10, "a:1"),
		record("t2", vec, 10, "a:1"),
		record("out1", vec, 10, "z:1"),
		record("out2", vec, 10, "z:2"),
	)
	p := domain.NewPartition(map[int][]string{
		0:  {"t1", "t2"},
		-1: {"out1", "out2"},
	})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 1)
	for _, f := range findings {
		assert.NotContains(t, f.RedundantTestIDs, "out1")
		assert.NotContains(t, f.RedundantTestIDs, "out2")
		assert.NotEqual(t, "out1", f.RepresentativeTestID)
	}
}

func TestAnalyze_SingletonClusterSkipped(t *testing.T) {
	byID := index(record("t1", []float64{1, 0}, 10, "a:1"))
	p := domain.NewPartition(map[int][]string{0: {"t1"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	assert.Empty(t, findings)
}

func TestAnalyze_ZeroVectorsProduceNoFindings(t *testing.T) {
	// All coverage shared and excluded upstream: cosine of zero vectors is
	// 0, below every gate.
	zero := make([]float64, 4)
	byID := index(
		record("t1", zero, 10, "a:1"),
		record("t2", zero, 10, "a:1"),
	)
	p := domain.NewPartition(map[int][]string{0: {"t1", "t2"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	assert.Empty(t, findings)
}

func TestAnalyze_RepresentativePrefersFasterBroaderTests(t *testing.T) {
	vec := []float64{0.6, 0.8}
	wide := make([]string, 100)
	for i := range wide {
		wide[i] = fmt.Sprintf("a:%d", i+1)
	}
	byID := index(
		record("slow", vec, 5000, wide[:2]...),
		record("fast", vec, 10, wide...),
	)
	p := domain.NewPartition(map[int][]string{0: {"slow", "fast"}})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 1)
	assert.Equal(t, "fast", findings[0].RepresentativeTestID)
	assert.Equal(t, []string{"slow"}, findings[0].RedundantTestIDs)
}

func TestAnalyze_FindingsSortedByPriorityThenScore(t *testing.T) {
	mk := func(base int, n int, c float64) ([]string, []domain.FeatureRecord) {
		vecs := correlatedVectors(n, c)
		ids := make([]string, n)
		recs := make([]domain.FeatureRecord, n)
		for i := 0; i < n; i++ {
			ids[i] = fmt.Sprintf("t%d_%d", base, i)
			recs[i] = record(ids[i], vecs[i], 10, "a:1")
		}
		return ids, recs
	}

	lowIDs, lowRecs := mk(0, 2, 0.99)    // high: score ≥ 0.95
	midIDs, midRecs := mk(1, 2, 0.90)    // medium
	highIDs, highRecs := mk(2, 2, 0.96)  // high, lower score than 0.99
	byID := index(append(append(lowRecs, midRecs...), highRecs...)...)

	p := domain.NewPartition(map[int][]string{
		0: lowIDs,
		1: midIDs,
		2: highIDs,
	})

	findings := analyze.NewAnalyzer(analyzerConfig()).Analyze(p, byID)

	require.Len(t, findings, 3)
	assert.Equal(t, domain.PriorityHigh, findings[0].Priority)
	assert.InDelta(t, 0.99, findings[0].RedundancyScore, 1e-9)
	assert.Equal(t, domain.PriorityHigh, findings[1].Priority)
	assert.InDelta(t, 0.96, findings[1].RedundancyScore, 1e-9)
	assert.Equal(t, domain.PriorityMedium, findings[2].Priority)
}
