package fingerprint

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/reductor/reductor/internal/domain"
)

// seedTriple is one per-position hash parameterization. The same 256 triples
// are reused for every test in a run.
type seedTriple struct {
	a, b, c uint32
}

// mix32 is a splitmix-style finalizer; it spreads the position index into a
// well-distributed 32-bit value.
func mix32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// newSeedTriples derives the position seeds deterministically from the
// position index. a is forced odd so the multiply never degenerates.
func newSeedTriples() [domain.FingerprintSize]seedTriple {
	var seeds [domain.FingerprintSize]seedTriple
	for i := range seeds {
		n := uint32(i)
		seeds[i] = seedTriple{
			a: mix32(n*2654435761+0x9e3779b9) | 1,
			b: mix32(n*40503+0x85ebca6b) | 1,
			c: mix32(n*0xc2b2ae35 + 0x27d4eb2f),
		}
	}
	return seeds
}

// baseHashes computes the two 32-bit base hashes of a line key. FNV-1a and
// FNV-1 differ enough that the pair parameterizes the per-position family.
func baseHashes(lineKey string) (uint32, uint32) {
	h1 := fnv.New32a()
	h1.Write([]byte(lineKey))
	h2 := fnv.New32()
	h2.Write([]byte(lineKey))
	return h1.Sum32(), h2.Sum32()
}

// positionHashes computes the 256 per-position hashes of a line:
// |((h1*a + h2*b) XOR c)| at each position. Overflow wraps; the absolute
// value keeps every hash in [0, MaxInt64].
func positionHashes(lineKey string, seeds *[domain.FingerprintSize]seedTriple) *[domain.FingerprintSize]int64 {
	h1, h2 := baseHashes(lineKey)
	var out [domain.FingerprintSize]int64
	for i, s := range seeds {
		v := int64(h1)*int64(s.a) + int64(h2)*int64(s.b)
		v ^= int64(s.c)
		if v < 0 {
			if v == math.MinInt64 {
				v = math.MaxInt64
			} else {
				v = -v
			}
		}
		out[i] = v
	}
	return &out
}

// signature computes the MinHash signature of one test's line set. idf maps
// a line key to its weight; a nil map disables weighting. An empty line set
// yields the zero vector.
func signature(lines []string, idf map[string]float64, cache *lineCache, seeds *[domain.FingerprintSize]seedTriple) []float64 {
	sig := make([]float64, domain.FingerprintSize)
	if len(lines) == 0 {
		return sig
	}

	mins := make([]float64, domain.FingerprintSize)
	for i := range mins {
		mins[i] = math.Inf(1)
	}

	for _, line := range lines {
		hashes := cache.get(line, seeds)
		weight := 1.0
		if idf != nil {
			w, ok := idf[line]
			if !ok {
				// A line surviving exclusion always has a weight; a miss
				// means the document-frequency pass was inconsistent.
				panic(fmt.Sprintf("line %q present without an IDF weight", line))
			}
			weight = w
		}
		for i, h := range hashes {
			// Dividing by a larger IDF shrinks the value, so rare lines are
			// more likely to win the per-position minimum.
			v := float64(h) / weight
			if v < mins[i] {
				mins[i] = v
			}
		}
	}

	for i, m := range mins {
		sig[i] = m / float64(math.MaxInt64)
	}
	return sig
}

// Similarity reports the fraction of positions at which two fingerprints
// agree to within a small tolerance. Diagnostic only; the analyzer compares
// semantic vectors, never fingerprints.
func Similarity(a, b []float64) float64 {
	if len(a) != domain.FingerprintSize {
		panic(&domain.FingerprintDimensionMismatch{Have: len(a), Want: domain.FingerprintSize})
	}
	if len(b) != domain.FingerprintSize {
		panic(&domain.FingerprintDimensionMismatch{Have: len(b), Want: domain.FingerprintSize})
	}
	const tolerance = 1e-4
	equal := 0
	for i := range a {
		if math.Abs(a[i]-b[i]) <= tolerance {
			equal++
		}
	}
	return float64(equal) / float64(domain.FingerprintSize)
}
