package domain

import (
	"fmt"
	"math"
)

// FingerprintSize is the number of MinHash positions in a coverage fingerprint.
const FingerprintSize = 256

// SemanticSize is the number of components in a semantic TF-IDF vector.
const SemanticSize = 384

// NoiseClusterID is the DBSCAN bucket for tests not assigned to any cluster.
// Noise members are excluded from analysis.
const NoiseClusterID = -1

// CoverageLine is a single (file, line) pair executed by a test.
type CoverageLine struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Key returns the canonical string form of the line. Equality is bytewise.
func (c CoverageLine) Key() string {
	return fmt.Sprintf("%s:%d", c.File, c.Line)
}

// TestRecord is one test as read from the store.
// TestID has the form "<class_or_path>::<method>".
type TestRecord struct {
	TestID         string         `json:"test_id"`
	Path           string         `json:"path"`
	Method         string         `json:"method"`
	ExecTimeMs     int64          `json:"exec_time_ms"`
	RecentFailRate float64        `json:"recent_fail_rate"`
	SourceText     string         `json:"source_text,omitempty"`
	CoverageLines  []CoverageLine `json:"coverage_lines"`
}

// CoverageKeys returns the deduplicated line keys of the test, preserving
// first-seen order.
func (t TestRecord) CoverageKeys() []string {
	seen := make(map[string]struct{}, len(t.CoverageLines))
	keys := make([]string, 0, len(t.CoverageLines))
	for _, l := range t.CoverageLines {
		k := l.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// RunInfo carries store-level counts for progress reporting.
type RunInfo struct {
	RunID             string `json:"run_id"`
	TestCount         int    `json:"test_count"`
	CoverageLineCount int    `json:"coverage_line_count"`
	UniqueFiles       int    `json:"unique_files"`
}

// FeatureMetadata is the per-test metadata carried alongside the semantic
// vector. CoverageLines is the raw (pre-exclusion) key list; the analyzer's
// coverage-preservation gate depends on it.
type FeatureMetadata struct {
	CoverageLines   []string `json:"coverage_lines"`
	ExecutionTimeMs int64    `json:"execution_time_ms"`
	LinesCovered    int      `json:"lines_covered"`
	Path            string   `json:"path"`
	Method          string   `json:"method"`
	RecentFailRate  float64  `json:"recent_fail_rate"`
}

// FeatureRecord binds a test to its semantic vector and metadata.
type FeatureRecord struct {
	TestID   string          `json:"test_id"`
	Vector   []float64       `json:"vector"`
	Metadata FeatureMetadata `json:"metadata"`
}

// Partition maps cluster IDs to their member test IDs, with the inverse
// mapping kept consistent. Cluster IDs are small non-negative integers,
// plus the optional noise bucket NoiseClusterID.
type Partition struct {
	Clusters map[int][]string `json:"clusters"`
	ByTest   map[string]int   `json:"-"`
	Scores   map[int]float64  `json:"scores,omitempty"`
}

// NewPartition builds a Partition and its inverse from a cluster map.
func NewPartition(clusters map[int][]string) *Partition {
	p := &Partition{
		Clusters: clusters,
		ByTest:   make(map[string]int),
	}
	for id, members := range clusters {
		for _, t := range members {
			p.ByTest[t] = id
		}
	}
	return p
}

// ClusterIDs returns the non-noise cluster IDs in ascending order.
func (p *Partition) ClusterIDs() []int {
	ids := make([]int, 0, len(p.Clusters))
	for id := range p.Clusters {
		if id == NoiseClusterID {
			continue
		}
		ids = append(ids, id)
	}
	sortInts(ids)
	return ids
}

func sortInts(a []int) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && a[j] < a[j-1]; j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

// Finding priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// PriorityRank orders priorities for sorting; lower rank sorts first.
func PriorityRank(p string) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// FindingAnalysis holds the per-cluster diagnostics attached to a finding.
type FindingAnalysis struct {
	AvgSimilarity         float64 `json:"avg_similarity"`
	ClusterSize           int     `json:"cluster_size"`
	RedundantCount        int     `json:"redundant_count"`
	ExecutionTimeSavedSec float64 `json:"execution_time_saved_sec"`
	CoverageOverlapPct    float64 `json:"coverage_overlap_pct"`
}

// PotentialSavings estimates what removing the redundant tests would save.
type PotentialSavings struct {
	TimeSavedMs         int64   `json:"time_saved_ms"`
	TimeSavedSec        float64 `json:"time_saved_sec"`
	LinesReduction      int     `json:"lines_reduction"`
	TestCountReduction  int     `json:"test_count_reduction"`
	PercentageReduction float64 `json:"percentage_reduction"`
}

// Finding is one redundancy finding: a cluster's representative, the members
// judged redundant against it, and the attached recommendation.
type Finding struct {
	ClusterID            int               `json:"cluster_id"`
	RepresentativeTestID string            `json:"representative_test_id"`
	RedundantTestIDs     []string          `json:"redundant_test_ids"`
	RedundancyScore      float64           `json:"redundancy_score"`
	Recommendation       string            `json:"recommendation"`
	Priority             string            `json:"priority"`
	Analysis             FindingAnalysis   `json:"analysis"`
	Action               string            `json:"action,omitempty"`
	Rationale            []string          `json:"rationale,omitempty"`
	PriorityScore        float64           `json:"priority_score,omitempty"`
	Savings              *PotentialSavings `json:"potential_savings,omitempty"`
}

// Recommendation actions, from strongest to weakest.
const (
	ActionMerge       = "merge"
	ActionConsolidate = "consolidate"
	ActionReview      = "review"
	ActionMonitor     = "monitor"
)

// RunMetrics summarizes a completed run.
type RunMetrics struct {
	TotalTests          int     `json:"total_tests"`
	ClustersFound       int     `json:"clusters_found"`
	RedundancyFindings  int     `json:"redundancy_findings"`
	RedundantTests      int     `json:"redundant_tests"`
	ReductionPercentage float64 `json:"reduction_percentage"`
}

// ComputeMetrics derives run metrics from a partition and findings.
// ReductionPercentage is rounded to two decimals and 0 for an empty run.
func ComputeMetrics(totalTests int, p *Partition, findings []Finding) RunMetrics {
	m := RunMetrics{
		TotalTests:         totalTests,
		RedundancyFindings: len(findings),
	}
	if p != nil {
		m.ClustersFound = len(p.ClusterIDs())
	}
	for _, f := range findings {
		m.RedundantTests += len(f.RedundantTestIDs)
	}
	if totalTests > 0 {
		pct := float64(m.RedundantTests) / float64(totalTests) * 100
		m.ReductionPercentage = math.Round(pct*100) / 100
	}
	return m
}

// RunResult is the single envelope returned for every run: findings,
// partition, and metrics on success, the collected errors on failure.
type RunResult struct {
	RunID            string     `json:"run_id"`
	Success          bool       `json:"success"`
	CommitHash       string     `json:"commit_hash,omitempty"`
	Findings         []Finding  `json:"findings,omitempty"`
	Partition        *Partition `json:"cluster_partition,omitempty"`
	Metrics          RunMetrics `json:"metrics"`
	Errors           []string   `json:"errors,omitempty"`
	ExecutionTimeSec float64    `json:"execution_time_sec"`
}

// RunEntry is one line of the persisted run history.
type RunEntry struct {
	Timestamp  string     `json:"timestamp"`
	CommitHash string     `json:"commit_hash,omitempty"`
	RunID      string     `json:"run_id"`
	Metrics    RunMetrics `json:"metrics"`
}
