package step

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// assignFrame is the MatchingHungarian alternative to the greedy
// scan: it gathers the gated similarity of every (current, previous)
// storm pair into one matrix and solves a globally optimal one-to-one
// assignment over it. Storms left unassigned, or whose assigned score
// is zero, are treated as new births by the caller.
func (sl *StormLinker) assignFrame(t int, currLabels []int, currCells map[int][]int, prevLabels []int, prevCells map[int][]int, currIntensity, prevIntensity *FloatGrid) []int {
	matches := make([]int, len(currLabels))
	if len(prevLabels) == 0 {
		return matches
	}

	// go-hungarian expects a square matrix; pad the short side with
	// zero-score dummies.
	size := len(currLabels)
	if len(prevLabels) > size {
		size = len(prevLabels)
	}
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}
	sl.forEachLabel(len(currLabels), func(i int) {
		label := currLabels[i]
		cells := currCells[label]
		currCentroid, ok := CentroidOf(cells, currIntensity)
		if !ok {
			sl.trace("storm has zero total intensity, cannot match", "frame", t, "label", label)
			return
		}
		for j, candidate := range prevLabels {
			if score, ok := sl.gatedScore(t, cells, prevCells[candidate], currCentroid, candidate, currIntensity, prevIntensity); ok {
				matrix[i][j] = score
			}
		}
	})

	for i, row := range hungarian.SolveMax(matrix) {
		if i >= len(currLabels) {
			continue
		}
		for j, score := range row {
			if score > 0 && j < len(prevLabels) {
				matches[i] = prevLabels[j]
				sl.trace("assignment selected", "frame", t, "label", currLabels[i],
					"candidate", prevLabels[j], "similarity", score)
			}
		}
	}
	return matches
}

// gatedScore returns the similarity of one (current, previous) storm
// pair when every acceptance gate passes, and false otherwise.
func (sl *StormLinker) gatedScore(t int, cells, footprint []int, currCentroid Point, candidate int, currIntensity, prevIntensity *FloatGrid) (float64, bool) {
	score := SimilarityScore(cells, footprint, currIntensity, prevIntensity, sl.params.Phi)
	if score <= sl.params.Tau {
		return 0, false
	}
	prevCentroid, ok := CentroidOf(footprint, prevIntensity)
	if !ok {
		return 0, false
	}
	displacement := Displacement(currCentroid, prevCentroid)
	if displacement.Magnitude() < sl.params.MaxDisplacement {
		return score, true
	}
	if sl.directionGate(t, candidate, displacement) {
		return score, true
	}
	return 0, false
}
