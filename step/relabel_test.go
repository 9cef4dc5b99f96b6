package step

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRelabelSequential(t *testing.T) {
	g0, err := NewIntGridFrom([][]int{
		{0, 3, 3},
		{0, 0, 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	g1, err := NewIntGridFrom([][]int{
		{0, 3, 0},
		{12, 12, 7},
	})
	if err != nil {
		t.Fatal(err)
	}

	out, mapping := RelabelSequential([]*IntGrid{g0, g1})
	expected := map[int]int{0: 0, 3: 1, 7: 2, 12: 3}
	if diff := cmp.Diff(expected, mapping); diff != "" {
		t.Errorf("wrong mapping (-want +got):\n%s", diff)
	}
	if out[0].At(0, 1) != 1 || out[0].At(1, 2) != 2 || out[1].At(1, 0) != 3 {
		t.Errorf("labels not compacted: %v %v", out[0], out[1])
	}
	if out[0].At(0, 0) != 0 {
		t.Error("background must stay 0")
	}
	// Inputs must be left untouched.
	if g0.At(0, 1) != 3 {
		t.Error("relabeling must not mutate its input")
	}
}

func TestRelabelSequentialIdempotent(t *testing.T) {
	g, err := NewIntGridFrom([][]int{
		{0, 5, 5},
		{9, 0, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	once, _ := RelabelSequential([]*IntGrid{g})
	twice, mapping := RelabelSequential(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("relabeling an already-compacted series must be a no-op (-once +twice):\n%s", diff)
	}
	for from, to := range mapping {
		if from != to {
			t.Errorf("second mapping must be the identity, got %d -> %d", from, to)
		}
	}
}

func TestRelabelSequentialEmptyGrids(t *testing.T) {
	out, mapping := RelabelSequential([]*IntGrid{NewIntGrid(2, 2)})
	if len(mapping) != 1 || mapping[0] != 0 {
		t.Errorf("background-only series must map 0 -> 0 and nothing else, got %v", mapping)
	}
	if !out[0].Equal(NewIntGrid(2, 2)) {
		t.Error("background-only grid must stay all zero")
	}
}
