package retriever

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSelf(t *testing.T) {
	v := []float32{0.3, -0.5, 0.8, 0.1}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Cosine(v, v) = %f, want ~1", got)
	}
}

func TestCosineOpposite(t *testing.T) {
	a := []float32{0.3, -0.5, 0.8}
	b := []float32{-0.3, 0.5, -0.8}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-6 {
		t.Errorf("Cosine(a, -a) = %f, want ~-1", got)
	}
}

func TestCosineOrthogonal(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-6 {
		t.Errorf("orthogonal cosine = %f, want ~0", got)
	}
}

func TestCosineZeroVector(t *testing.T) {
	got := Cosine([]float32{0, 0}, []float32{1, 1})
	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Errorf("zero vector cosine = %f, want finite", got)
	}
}

func TestTopKRanking(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Source: "a", Text: "orthogonal", Vector: []float32{0, 1}},
		{Source: "b", Text: "aligned", Vector: []float32{2, 0}},
		{Source: "c", Text: "diagonal", Vector: []float32{1, 1}},
	}
	got, err := TopK(query, candidates, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].Text != "aligned" || got[1].Text != "diagonal" {
		t.Errorf("order = %q, %q", got[0].Text, got[1].Text)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("scores not descending: %f < %f", got[0].Score, got[1].Score)
	}
}

func TestTopKFewerCandidatesThanK(t *testing.T) {
	got, err := TopK([]float32{1}, []Candidate{{Source: "a", Vector: []float32{1}}}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d matches, want 1", len(got))
	}
}

func TestTopKEmpty(t *testing.T) {
	if _, err := TopK([]float32{1}, nil, 3); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates", err)
	}
}

func TestTopKStableTies(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Source: "first", Vector: []float32{3, 0}},
		{Source: "second", Vector: []float32{5, 0}},
		{Source: "third", Vector: []float32{1, 0}},
	}
	got, err := TopK(query, candidates, 3)
	if err != nil {
		t.Fatal(err)
	}
	// All three score identically; input order must be preserved.
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if got[i].Source != w {
			t.Errorf("match %d = %q, want %q", i, got[i].Source, w)
		}
	}
}

func TestTopKNonPositiveK(t *testing.T) {
	candidates := []Candidate{{Source: "a", Vector: []float32{1, 0}}}
	for _, k := range []int{0, -1, -10} {
		got, err := TopK([]float32{1, 0}, candidates, k)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if len(got) != 0 {
			t.Errorf("k=%d: got %d matches, want 0", k, len(got))
		}
	}
}

func TestTopKAllDimensionsMismatch(t *testing.T) {
	candidates := []Candidate{
		{Source: "a", Vector: []float32{1, 0, 0}},
		{Source: "b", Vector: []float32{0, 1, 0}},
	}
	if _, err := TopK([]float32{1, 0}, candidates, 3); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestTopKSkipsDimensionMismatch(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{Source: "other-model", Vector: []float32{1, 0, 0}},
		{Source: "same-model", Vector: []float32{1, 0}},
	}
	got, err := TopK(query, candidates, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Source != "same-model" {
		t.Errorf("got %v, want only the matching-dimension candidate", got)
	}
}
