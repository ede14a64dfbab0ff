package analyze

import (
	"math"

	"github.com/reductor/reductor/internal/domain"
)

// Cosine returns the cosine similarity of two equal-length vectors. The
// cosine against a zero vector is defined as 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(&domain.FingerprintDimensionMismatch{Have: len(b), Want: len(a)})
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// similarityMatrix builds the k×k symmetric cosine matrix over the members'
// semantic vectors, with 1 on the diagonal.
func similarityMatrix(vectors [][]float64) [][]float64 {
	k := len(vectors)
	s := make([][]float64, k)
	for i := range s {
		s[i] = make([]float64, k)
		s[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			c := Cosine(vectors[i], vectors[j])
			s[i][j] = c
			s[j][i] = c
		}
	}
	return s
}

// avgSimilarityOf returns the mean of row i excluding the diagonal.
func avgSimilarityOf(s [][]float64, i int) float64 {
	k := len(s)
	if k < 2 {
		return 0
	}
	var sum float64
	for j := 0; j < k; j++ {
		if j != i {
			sum += s[i][j]
		}
	}
	return sum / float64(k-1)
}

// upperTriangleMean averages all unordered pairs of the matrix; 0 when there
// are no pairs.
func upperTriangleMean(s [][]float64) float64 {
	k := len(s)
	if k < 2 {
		return 0
	}
	var sum float64
	pairs := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			sum += s[i][j]
			pairs++
		}
	}
	return sum / float64(pairs)
}

// Jaccard returns |a ∩ b| / |a ∪ b| over two line-key sets; 1 when both are
// empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := make(map[string]struct{}, len(a))
	for _, k := range a {
		setA[k] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, k := range b {
		setB[k] = struct{}{}
	}
	inter := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// overlapRatio returns |candidate ∩ representative| / |candidate|, the
// coverage-preservation measure. An empty candidate set passes with 1.
func overlapRatio(candidate, representative []string) float64 {
	if len(candidate) == 0 {
		return 1
	}
	repSet := make(map[string]struct{}, len(representative))
	for _, k := range representative {
		repSet[k] = struct{}{}
	}
	inter := 0
	seen := make(map[string]struct{}, len(candidate))
	for _, k := range candidate {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := repSet[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(seen))
}
