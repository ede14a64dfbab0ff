// Package fingerprint builds per-test MinHash sketches of coverage sets.
//
// Each test's set of covered "<file>:<line>" keys is reduced to a 256
// position signature. Lines covered by most of the suite can be excluded
// first, and the remaining lines can be IDF-weighted so rare lines dominate
// the sketch. Signatures are positional: the same position is comparable
// across all tests of a run.
package fingerprint

import (
	"github.com/reductor/reductor/internal/domain"
)

// Builder computes coverage fingerprints for one run. It owns a per-run
// line-hash cache and must not be shared across goroutines.
type Builder struct {
	excludeShared bool
	useIDF        bool
	seeds         [domain.FingerprintSize]seedTriple
	cache         *lineCache
}

// NewBuilder creates a Builder configured from the engine config.
func NewBuilder(cfg domain.EngineConfig) *Builder {
	return &Builder{
		excludeShared: cfg.ExcludeSharedCoverage,
		useIDF:        cfg.UseIDFWeighting,
		seeds:         newSeedTriples(),
		cache:         newLineCache(),
	}
}

// Build returns testID → fingerprint for the whole batch. Tests whose sets
// are empty after shared-line exclusion get the zero vector.
func (b *Builder) Build(tests []domain.TestRecord) map[string][]float64 {
	n := len(tests)
	out := make(map[string][]float64, n)
	if n == 0 {
		return out
	}

	testLines := make([][]string, n)
	for i, t := range tests {
		testLines[i] = t.CoverageKeys()
	}

	df := documentFrequency(testLines)

	if b.excludeShared {
		testLines = excludeShared(testLines, df, sharedThreshold(n))
	}

	var idf map[string]float64
	if b.useIDF {
		idf = idfWeights(testLines, df, n)
	}

	for i, t := range tests {
		out[t.TestID] = signature(testLines[i], idf, b.cache, &b.seeds)
	}
	return out
}

// CacheLen reports the number of memoized line-hash arrays.
func (b *Builder) CacheLen() int { return b.cache.len() }
