// Package retriever ranks candidate chunks against a query embedding by
// cosine similarity.
package retriever

import (
	"errors"
	"math"
	"sort"
)

// ErrNoCandidates is returned when ranking is asked to run over an empty
// candidate set.
var ErrNoCandidates = errors.New("no candidates to rank")

// ErrDimensionMismatch is returned when candidates exist but none matches the
// query's dimension: the corpus was embedded under a different model.
var ErrDimensionMismatch = errors.New("no candidates match the query dimension")

// cosineEpsilon guards the denominator against zero vectors.
const cosineEpsilon = 1e-8

// Candidate is one rankable chunk with its source document.
type Candidate struct {
	Source string
	Text   string
	Vector []float32
}

// Match is a ranked candidate.
type Match struct {
	Source string  `json:"source"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
}

// Cosine returns the cosine similarity of a and b in float64.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + cosineEpsilon)
}

// TopK returns the min(k, len) best matches for query, sorted by descending
// score. Ties keep the original candidate order. Candidates whose dimension
// differs from the query belong to another model and are skipped; when that
// skips every candidate the result is ErrDimensionMismatch rather than an
// empty success. k <= 0 requests no matches and returns an empty result.
func TopK(query []float32, candidates []Candidate, k int) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			continue
		}
		matches = append(matches, Match{
			Source: c.Source,
			Text:   c.Text,
			Score:  Cosine(query, c.Vector),
		})
	}
	if len(matches) == 0 {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return []Match{}, nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}
