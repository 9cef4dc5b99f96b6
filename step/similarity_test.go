package step

import (
	"math"
	"testing"
)

func TestSimilarityScoreSingleCells(t *testing.T) {
	curr, err := NewFloatGridFrom([][]float64{{1.0, 0.0}})
	if err != nil {
		t.Fatal(err)
	}
	prev, err := NewFloatGridFrom([][]float64{{0.0, 1.0}})
	if err != nil {
		t.Fatal(err)
	}
	phi := 0.5
	// Two unit-weight cells one column apart.
	score := SimilarityScore([]int{0}, []int{1}, curr, prev, phi)
	expected := math.Exp(-phi)
	if math.Abs(score-expected) > eps {
		t.Errorf("wrong score: %v, expected %v", score, expected)
	}
}

func TestSimilarityScoreIdenticalFootprint(t *testing.T) {
	intensity, err := NewFloatGridFrom([][]float64{
		{10.0, 10.0, 0.0},
		{10.0, 10.0, 0.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	cells := []int{0, 1, 3, 4}
	phi := 1.0
	score := SimilarityScore(cells, cells, intensity, intensity, phi)
	// 16 uniform weight pairs: 4 coincident, 8 at distance 1, 4 at
	// distance sqrt(2).
	expected := 0.0625 * (4 + 8*math.Exp(-1) + 4*math.Exp(-math.Sqrt2))
	if math.Abs(score-expected) > eps {
		t.Errorf("wrong score: %v, expected %v", score, expected)
	}
}

func TestSimilarityScoreZeroIntensityFootprint(t *testing.T) {
	curr := NewFloatGrid(2, 2)
	prev, err := NewFloatGridFrom([][]float64{
		{1.0, 1.0},
		{0.0, 0.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	if score := SimilarityScore([]int{0, 1}, []int{0, 1}, curr, prev, 0.5); score != 0 {
		t.Errorf("zero-intensity current footprint must score 0, got %v", score)
	}
	if score := SimilarityScore([]int{0, 1}, []int{2, 3}, prev, curr, 0.5); score != 0 {
		t.Errorf("zero-intensity previous footprint must score 0, got %v", score)
	}
}

func TestSimilarityScoreAsymmetryTolerated(t *testing.T) {
	curr, err := NewFloatGridFrom([][]float64{{1.0, 3.0, 0.0}})
	if err != nil {
		t.Fatal(err)
	}
	prev, err := NewFloatGridFrom([][]float64{{0.0, 2.0, 2.0}})
	if err != nil {
		t.Fatal(err)
	}
	forward := SimilarityScore([]int{0, 1}, []int{1, 2}, curr, prev, 0.5)
	backward := SimilarityScore([]int{1, 2}, []int{0, 1}, prev, curr, 0.5)
	// The two directions normalize against different totals and are
	// not required to agree; both just have to be well-formed.
	for _, score := range []float64{forward, backward} {
		if math.IsNaN(score) || math.IsInf(score, 0) || score <= 0 {
			t.Errorf("score must be a positive finite value, got %v", score)
		}
	}
}
