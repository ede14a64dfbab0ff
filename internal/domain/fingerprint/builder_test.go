package fingerprint_test

import (
	"fmt"
	"testing"

	"github.com/reductor/reductor/internal/domain"
	"github.com/reductor/reductor/internal/domain/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWithLines(id string, lines ...domain.CoverageLine) domain.TestRecord {
	return domain.TestRecord{TestID: id, CoverageLines: lines}
}

func line(file string, n int) domain.CoverageLine {
	return domain.CoverageLine{File: file, Line: n}
}

func defaultConfig() domain.EngineConfig {
	return domain.DefaultEngineConfig(domain.AlgorithmKMeans)
}

func TestBuild_AllElementsInUnitInterval(t *testing.T) {
	tests := []domain.TestRecord{
		testWithLines("a.php::testOne", line("a.php", 1), line("a.php", 2), line("b.php", 10)),
		testWithLines("a.php::testTwo", line("a.php", 1), line("c.php", 3)),
		testWithLines("a.php::testThree", line("d.php", 7)),
	}

	sigs := fingerprint.NewBuilder(defaultConfig()).Build(tests)

	require.Len(t, sigs, 3)
	for id, sig := range sigs {
		require.Len(t, sig, domain.FingerprintSize, "test %s", id)
		for i, v := range sig {
			assert.GreaterOrEqual(t, v, 0.0, "test %s position %d", id, i)
			assert.LessOrEqual(t, v, 1.0, "test %s position %d", id, i)
		}
	}
}

func TestBuild_EmptyCoverageYieldsZeroVector(t *testing.T) {
	tests := []domain.TestRecord{
		testWithLines("t::empty"),
		testWithLines("t::full", line("a.php", 1)),
	}

	sigs := fingerprint.NewBuilder(defaultConfig()).Build(tests)

	for _, v := range sigs["t::empty"] {
		assert.Zero(t, v)
	}
}

func TestBuild_IdenticalSetsProduceIdenticalSignatures(t *testing.T) {
	shared := []domain.CoverageLine{line("a.php", 1), line("a.php", 2), line("b.php", 5)}
	tests := []domain.TestRecord{
		{TestID: "t::one", CoverageLines: shared},
		{TestID: "t::two", CoverageLines: shared},
		testWithLines("t::other", line("z.php", 99)),
	}

	cfg := defaultConfig()
	cfg.ExcludeSharedCoverage = false // 2 of 3 tests share every line; keep them
	sigs := fingerprint.NewBuilder(cfg).Build(tests)

	assert.Equal(t, sigs["t::one"], sigs["t::two"])
	assert.NotEqual(t, sigs["t::one"], sigs["t::other"])
}

func TestBuild_DeterministicAcrossBuilders(t *testing.T) {
	tests := []domain.TestRecord{
		testWithLines("t::a", line("x.php", 1), line("x.php", 2)),
		testWithLines("t::b", line("x.php", 2), line("y.php", 3)),
	}

	first := fingerprint.NewBuilder(defaultConfig()).Build(tests)
	second := fingerprint.NewBuilder(defaultConfig()).Build(tests)

	assert.Equal(t, first, second)
}

func TestBuild_SharedLinesExcluded(t *testing.T) {
	// 10 tests all covering the same bootstrap block, each with 2 unique
	// lines. With N=10 the shared threshold is max(0.8*10, 2) = 8, so the
	// bootstrap lines (df=10) are removed and only the unique lines remain.
	var tests []domain.TestRecord
	for i := 0; i < 10; i++ {
		lines := make([]domain.CoverageLine, 0, 102)
		for l := 1; l <= 100; l++ {
			lines = append(lines, line("bootstrap.php", l))
		}
		lines = append(lines, line("unique.php", i*2+1), line("unique.php", i*2+2))
		tests = append(tests, domain.TestRecord{
			TestID:        fmt.Sprintf("t::test%d", i),
			CoverageLines: lines,
		})
	}

	sigs := fingerprint.NewBuilder(defaultConfig()).Build(tests)

	// Unique lines survive, so no signature is the zero vector and no two
	// signatures coincide.
	seen := make(map[string][]float64)
	for id, sig := range sigs {
		zero := true
		for _, v := range sig {
			if v != 0 {
				zero = false
				break
			}
		}
		assert.False(t, zero, "test %s lost all coverage signal", id)
		for other, otherSig := range seen {
			assert.NotEqual(t, otherSig, sig, "%s and %s collide", other, id)
		}
		seen[id] = sig
	}
}

func TestBuild_FullOverlapCollapsesToZeroVectors(t *testing.T) {
	// Every test covers exactly the same lines: exclusion strips them all.
	shared := []domain.CoverageLine{line("a.php", 1), line("a.php", 2)}
	var tests []domain.TestRecord
	for i := 0; i < 5; i++ {
		tests = append(tests, domain.TestRecord{
			TestID:        fmt.Sprintf("t::dup%d", i),
			CoverageLines: shared,
		})
	}

	sigs := fingerprint.NewBuilder(defaultConfig()).Build(tests)

	for id, sig := range sigs {
		for _, v := range sig {
			assert.Zero(t, v, "test %s", id)
		}
	}
}

func TestBuild_EmptyBatch(t *testing.T) {
	sigs := fingerprint.NewBuilder(defaultConfig()).Build(nil)
	assert.Empty(t, sigs)
}

func TestSimilarity_IdenticalAndDisjoint(t *testing.T) {
	tests := []domain.TestRecord{
		testWithLines("t::a", line("a.php", 1), line("a.php", 2)),
		testWithLines("t::b", line("a.php", 1), line("a.php", 2)),
		testWithLines("t::c", line("z.php", 50), line("z.php", 51)),
	}

	cfg := defaultConfig()
	cfg.ExcludeSharedCoverage = false
	sigs := fingerprint.NewBuilder(cfg).Build(tests)

	assert.InDelta(t, 1.0, fingerprint.Similarity(sigs["t::a"], sigs["t::b"]), 1e-9)
	assert.Less(t, fingerprint.Similarity(sigs["t::a"], sigs["t::c"]), 1.0)
}

func TestSimilarity_DimensionMismatchPanics(t *testing.T) {
	good := make([]float64, domain.FingerprintSize)
	bad := make([]float64, 10)

	assert.Panics(t, func() { fingerprint.Similarity(bad, good) })
	assert.Panics(t, func() { fingerprint.Similarity(good, bad) })
}
