package step

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SimilarityScore computes the spatial-intensity similarity between a
// storm footprint in the current frame and a storm footprint in the
// previous frame. Footprints are flat cell indices into their
// respective intensity grids (both grids share one shape). Higher
// scores mean the two footprints are more likely the same storm.
//
// Each footprint's intensity is first normalized to a relative-weight
// distribution over its own cells. The score is the sum, over every
// coordinate pair in the union of the two footprints, of the product
// of current and previous weights decayed by exp(-phi * distance).
//
// The score is not symmetric under swapping the current and previous
// sides: each side normalizes against its own frame's intensity, so
// the two directions may disagree. That is intentional.
//
// A footprint whose total intensity is zero scores 0 against anything.
// Cost grows with the square of the union size; very large storms are
// the dominant performance risk here.
func SimilarityScore(currCells, prevCells []int, currIntensity, prevIntensity *FloatGrid, phi float64) float64 {
	currVals := gatherIntensity(currCells, currIntensity)
	prevVals := gatherIntensity(prevCells, prevIntensity)
	currTotal := floats.Sum(currVals)
	prevTotal := floats.Sum(prevVals)
	if currTotal == 0 || prevTotal == 0 {
		return 0
	}

	// Union of the two footprints in a deterministic order: current
	// cells first, then previous cells not already present. Both
	// inputs arrive in row-major order, so summation order below is
	// reproducible run to run.
	union := make([]int, 0, len(currCells)+len(prevCells))
	position := make(map[int]int, len(currCells)+len(prevCells))
	for _, cell := range currCells {
		position[cell] = len(union)
		union = append(union, cell)
	}
	for _, cell := range prevCells {
		if _, ok := position[cell]; !ok {
			position[cell] = len(union)
			union = append(union, cell)
		}
	}

	n := len(union)
	currWeights := make([]float64, n)
	prevWeights := make([]float64, n)
	for i, cell := range currCells {
		currWeights[position[cell]] = currVals[i] / currTotal
	}
	for i, cell := range prevCells {
		prevWeights[position[cell]] = prevVals[i] / prevTotal
	}

	// Outer product of the weight vectors gives every pairwise
	// current-weight x previous-weight combination at once.
	var products mat.Dense
	products.Outer(1, mat.NewVecDense(n, currWeights), mat.NewVecDense(n, prevWeights))

	cols := currIntensity.Cols()
	score := 0.0
	for i := 0; i < n; i++ {
		ri := float64(union[i] / cols)
		ci := float64(union[i] % cols)
		for j := 0; j < n; j++ {
			w := products.At(i, j)
			if w == 0 {
				continue
			}
			dr := ri - float64(union[j]/cols)
			dc := ci - float64(union[j]%cols)
			score += w * math.Exp(-phi*math.Sqrt(dr*dr+dc*dc))
		}
	}
	return score
}

func gatherIntensity(cells []int, intensity *FloatGrid) []float64 {
	vals := make([]float64, len(cells))
	for i, cell := range cells {
		vals[i] = intensity.atFlat(cell)
	}
	return vals
}
