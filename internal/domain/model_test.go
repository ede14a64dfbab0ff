package domain_test

import (
	"testing"

	"github.com/reductor/reductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoverageLine_Key(t *testing.T) {
	l := domain.CoverageLine{File: "app/Models/User.php", Line: 42}
	assert.Equal(t, "app/Models/User.php:42", l.Key())
}

func TestTestRecord_CoverageKeysDeduplicates(t *testing.T) {
	rec := domain.TestRecord{
		CoverageLines: []domain.CoverageLine{
			{File: "a.php", Line: 1},
			{File: "a.php", Line: 2},
			{File: "a.php", Line: 1},
		},
	}
	assert.Equal(t, []string{"a.php:1", "a.php:2"}, rec.CoverageKeys())
}

func TestNewPartition_InverseIsConsistent(t *testing.T) {
	p := domain.NewPartition(map[int][]string{
		0:  {"t::a", "t::b"},
		1:  {"t::c"},
		-1: {"t::noise"},
	})

	assert.Equal(t, 0, p.ByTest["t::a"])
	assert.Equal(t, 1, p.ByTest["t::c"])
	assert.Equal(t, domain.NoiseClusterID, p.ByTest["t::noise"])
	assert.Equal(t, []int{0, 1}, p.ClusterIDs())
}

func TestComputeMetrics(t *testing.T) {
	p := domain.NewPartition(map[int][]string{
		0:  {"t::a", "t::b", "t::c"},
		1:  {"t::d", "t::e"},
		-1: {"t::f"},
	})
	findings := []domain.Finding{
		{RedundantTestIDs: []string{"t::b", "t::c"}},
		{RedundantTestIDs: []string{"t::e"}},
	}

	m := domain.ComputeMetrics(6, p, findings)

	assert.Equal(t, 6, m.TotalTests)
	assert.Equal(t, 2, m.ClustersFound, "noise bucket is not a cluster")
	assert.Equal(t, 2, m.RedundancyFindings)
	assert.Equal(t, 3, m.RedundantTests)
	assert.InDelta(t, 50.0, m.ReductionPercentage, 1e-9)
}

func TestComputeMetrics_RoundsToTwoDecimals(t *testing.T) {
	findings := []domain.Finding{{RedundantTestIDs: []string{"t::a"}}}

	m := domain.ComputeMetrics(3, nil, findings)

	assert.InDelta(t, 33.33, m.ReductionPercentage, 1e-9)
}

func TestComputeMetrics_EmptyRun(t *testing.T) {
	m := domain.ComputeMetrics(0, nil, nil)

	assert.Zero(t, m.ReductionPercentage)
	assert.Zero(t, m.TotalTests)
	require.Zero(t, m.RedundantTests)
}

func TestPriorityRank_Ordering(t *testing.T) {
	assert.Less(t, domain.PriorityRank(domain.PriorityHigh), domain.PriorityRank(domain.PriorityMedium))
	assert.Less(t, domain.PriorityRank(domain.PriorityMedium), domain.PriorityRank(domain.PriorityLow))
}
