package semantic

import (
	"math"
	"sort"

	"github.com/reductor/reductor/internal/domain"
)

// maxVocabulary caps the number of distinct terms considered before the
// positional resize to domain.SemanticSize.
const maxVocabulary = 768

// Vectorize turns the documents into length-384 TF-IDF vectors over a shared
// vocabulary. Each vector is L2-normalized over the full vocabulary before
// the positional resize, so a vector cut down from a larger vocabulary can
// have a norm below 1. An empty corpus yields no vectors; an empty document
// yields the zero vector.
func Vectorize(docs []Document) map[string][]float64 {
	out := make(map[string][]float64, len(docs))
	if len(docs) == 0 {
		return out
	}

	vocab := buildVocabulary(docs)
	idf := inverseDocumentFrequency(docs, vocab)

	for _, doc := range docs {
		out[doc.TestID] = vectorizeDocument(doc, vocab, idf)
	}
	return out
}

// buildVocabulary selects the top min(768, distinct) terms by corpus
// frequency and returns term → index with terms ordered lexicographically.
// Frequency ties break lexicographically so the vocabulary is deterministic.
func buildVocabulary(docs []Document) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		for _, term := range doc.Terms {
			counts[term]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > maxVocabulary {
		terms = terms[:maxVocabulary]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return vocab
}

// inverseDocumentFrequency computes log(N/df) + 1 per vocabulary term;
// terms appearing in no document get 0. The +1 smoothing keeps terms shared
// by every document contributing: without it two identical tests would
// vectorize to zero and never be flagged as redundant.
func inverseDocumentFrequency(docs []Document, vocab map[string]int) []float64 {
	df := make([]int, len(vocab))
	for _, doc := range docs {
		seen := make(map[int]struct{}, len(doc.Terms))
		for _, term := range doc.Terms {
			if idx, ok := vocab[term]; ok {
				seen[idx] = struct{}{}
			}
		}
		for idx := range seen {
			df[idx]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, d := range df {
		if d > 0 {
			idf[i] = math.Log(n/float64(d)) + 1
		}
	}
	return idf
}

// vectorizeDocument computes tf·idf over the vocabulary, L2-normalizes, and
// resizes positionally to domain.SemanticSize.
func vectorizeDocument(doc Document, vocab map[string]int, idf []float64) []float64 {
	full := make([]float64, len(vocab))
	if len(doc.Terms) > 0 {
		counts := make(map[int]int, len(doc.Terms))
		for _, term := range doc.Terms {
			if idx, ok := vocab[term]; ok {
				counts[idx]++
			}
		}
		total := float64(len(doc.Terms))
		for idx, c := range counts {
			tf := float64(c) / total
			full[idx] = tf * idf[idx]
		}
		normalize(full)
	}

	// Positional prefix or zero padding, never top-k: positions must stay
	// comparable across tests.
	resized := make([]float64, domain.SemanticSize)
	copy(resized, full)
	return resized
}

// normalize scales the vector to unit L2 norm in place; the zero vector is
// left untouched.
func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
}
