package fingerprint

import (
	"fmt"
	"math"
)

// documentFrequency counts, for every distinct line key, how many tests
// cover it. Sets must already be deduplicated per test.
func documentFrequency(testLines [][]string) map[string]int {
	df := make(map[string]int)
	for _, lines := range testLines {
		for _, l := range lines {
			df[l]++
		}
	}
	return df
}

// sharedThreshold returns the document-frequency threshold at or above which
// a line counts as shared. The bands loosen as the suite grows: a bootstrap
// line covered by most tests carries no distinguishing signal.
func sharedThreshold(n int) float64 {
	switch {
	case n > 100:
		return math.Max(0.6*float64(n), 60)
	case n > 50:
		return math.Max(0.7*float64(n), 35)
	default:
		return math.Max(0.8*float64(n), 2)
	}
}

// excludeShared removes lines with df >= threshold from every test's set.
func excludeShared(testLines [][]string, df map[string]int, threshold float64) [][]string {
	out := make([][]string, len(testLines))
	for i, lines := range testLines {
		kept := make([]string, 0, len(lines))
		for _, l := range lines {
			if float64(df[l]) < threshold {
				kept = append(kept, l)
			}
		}
		out[i] = kept
	}
	return out
}

// idfWeights computes log(N/df) + 1 for every line still present in any
// test's set. A present line with df = 0 is an internal inconsistency and
// aborts the run.
func idfWeights(testLines [][]string, df map[string]int, n int) map[string]float64 {
	idf := make(map[string]float64)
	for _, lines := range testLines {
		for _, l := range lines {
			if _, ok := idf[l]; ok {
				continue
			}
			d := df[l]
			if d <= 0 {
				panic(fmt.Sprintf("line %q present with document frequency %d", l, d))
			}
			idf[l] = math.Log(float64(n)/float64(d)) + 1
		}
	}
	return idf
}
