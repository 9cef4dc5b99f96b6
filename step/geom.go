package step

import "math"

// Point is a real-valued grid position in (row, col) order.
type Point struct {
	Row float64
	Col float64
}

// Vector is a displacement between two points, in grid-cell units.
type Vector struct {
	Row float64
	Col float64
}

// Displacement returns cur - prev.
func Displacement(cur, prev Point) Vector {
	return Vector{
		Row: cur.Row - prev.Row,
		Col: cur.Col - prev.Col,
	}
}

// Magnitude returns the Euclidean norm of the vector.
func (v Vector) Magnitude() float64 {
	return math.Sqrt(v.Row*v.Row + v.Col*v.Col)
}

// AngleBetween returns the angle between two vectors in radians,
// in [0, pi]. It reports false when either vector has zero magnitude,
// in which case the angle is undefined.
func AngleBetween(u, v Vector) (float64, bool) {
	nu := u.Magnitude()
	nv := v.Magnitude()
	if nu == 0 || nv == 0 {
		return 0, false
	}
	cos := (u.Row*v.Row + u.Col*v.Col) / (nu * nv)
	// Rounding can push the ratio just outside [-1, 1].
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos), true
}

// CentroidOf returns the intensity-weighted centroid of a footprint
// given as flat cell indices into the intensity grid. It reports
// false when the footprint's total intensity is zero, in which case
// the centroid is undefined.
func CentroidOf(cells []int, intensity *FloatGrid) (Point, bool) {
	cols := intensity.Cols()
	total := 0.0
	rowSum := 0.0
	colSum := 0.0
	for _, cell := range cells {
		w := intensity.atFlat(cell)
		total += w
		rowSum += w * float64(cell/cols)
		colSum += w * float64(cell%cols)
	}
	if total == 0 {
		return Point{}, false
	}
	return Point{Row: rowSum / total, Col: colSum / total}, true
}
