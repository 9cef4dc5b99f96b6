package step

import "github.com/pkg/errors"

// IntGrid is a 2D grid of integer storm labels stored row-major.
// Label 0 is the background.
type IntGrid struct {
	rows, cols int
	data       []int
}

// NewIntGrid creates a zeroed grid of the given shape.
func NewIntGrid(rows, cols int) *IntGrid {
	return &IntGrid{
		rows: rows,
		cols: cols,
		data: make([]int, rows*cols),
	}
}

// NewIntGridFrom creates a grid from a rectangular [][]int.
func NewIntGridFrom(values [][]int) (*IntGrid, error) {
	if len(values) == 0 {
		return nil, errors.New("label grid must have at least one row")
	}
	g := NewIntGrid(len(values), len(values[0]))
	for r, row := range values {
		if len(row) != g.cols {
			return nil, errors.Errorf("label grid row %d has %d columns, expected %d", r, len(row), g.cols)
		}
		copy(g.data[r*g.cols:(r+1)*g.cols], row)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *IntGrid) Rows() int {
	return g.rows
}

// Cols returns the number of columns.
func (g *IntGrid) Cols() int {
	return g.cols
}

// At returns the value at (row, col).
func (g *IntGrid) At(row, col int) int {
	return g.data[row*g.cols+col]
}

// Set sets the value at (row, col).
func (g *IntGrid) Set(row, col, value int) {
	g.data[row*g.cols+col] = value
}

func (g *IntGrid) setFlat(cell, value int) {
	g.data[cell] = value
}

// Clone returns a deep copy of the grid.
func (g *IntGrid) Clone() *IntGrid {
	out := NewIntGrid(g.rows, g.cols)
	copy(out.data, g.data)
	return out
}

// Max returns the maximum value in the grid, or 0 for an empty grid.
func (g *IntGrid) Max() int {
	max := 0
	for _, v := range g.data {
		if v > max {
			max = v
		}
	}
	return max
}

// Equal reports whether two grids have identical shape and contents.
func (g *IntGrid) Equal(other *IntGrid) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.rows != other.rows || g.cols != other.cols {
		return false
	}
	for i, v := range g.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}

// FloatGrid is a 2D grid of non-negative intensity values stored row-major.
type FloatGrid struct {
	rows, cols int
	data       []float64
}

// NewFloatGrid creates a zeroed grid of the given shape.
func NewFloatGrid(rows, cols int) *FloatGrid {
	return &FloatGrid{
		rows: rows,
		cols: cols,
		data: make([]float64, rows*cols),
	}
}

// NewFloatGridFrom creates a grid from a rectangular [][]float64.
func NewFloatGridFrom(values [][]float64) (*FloatGrid, error) {
	if len(values) == 0 {
		return nil, errors.New("intensity grid must have at least one row")
	}
	g := NewFloatGrid(len(values), len(values[0]))
	for r, row := range values {
		if len(row) != g.cols {
			return nil, errors.Errorf("intensity grid row %d has %d columns, expected %d", r, len(row), g.cols)
		}
		copy(g.data[r*g.cols:(r+1)*g.cols], row)
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *FloatGrid) Rows() int {
	return g.rows
}

// Cols returns the number of columns.
func (g *FloatGrid) Cols() int {
	return g.cols
}

// At returns the value at (row, col).
func (g *FloatGrid) At(row, col int) float64 {
	return g.data[row*g.cols+col]
}

// Set sets the value at (row, col).
func (g *FloatGrid) Set(row, col int, value float64) {
	g.data[row*g.cols+col] = value
}

func (g *FloatGrid) atFlat(cell int) float64 {
	return g.data[cell]
}

// Clone returns a deep copy of the grid.
func (g *FloatGrid) Clone() *FloatGrid {
	out := NewFloatGrid(g.rows, g.cols)
	copy(out.data, g.data)
	return out
}

// Frame is one time slice: a label grid co-registered with its
// intensity grid.
type Frame struct {
	Labels    *IntGrid
	Intensity *FloatGrid
}

// Series is an ordered sequence of frames. Index order is temporal
// order. Construct with NewSeries or NewSeriesFrom3D so shape and
// value constraints are checked once, up front.
type Series struct {
	frames []Frame
}

// NewSeries validates the frames and wraps them into a Series.
// Any shape mismatch between label and intensity grids, across the
// series, or any negative label/intensity is a fatal configuration
// error reported before linking starts.
func NewSeries(frames []Frame) (*Series, error) {
	if len(frames) == 0 {
		return nil, errors.New("series must contain at least one frame")
	}
	rows, cols := 0, 0
	for t, frame := range frames {
		if frame.Labels == nil || frame.Intensity == nil {
			return nil, errors.Errorf("frame %d is missing a label or intensity grid", t)
		}
		if frame.Labels.rows != frame.Intensity.rows || frame.Labels.cols != frame.Intensity.cols {
			return nil, errors.Errorf("frame %d: label grid is %dx%d but intensity grid is %dx%d",
				t, frame.Labels.rows, frame.Labels.cols, frame.Intensity.rows, frame.Intensity.cols)
		}
		if t == 0 {
			rows, cols = frame.Labels.rows, frame.Labels.cols
		} else if frame.Labels.rows != rows || frame.Labels.cols != cols {
			return nil, errors.Errorf("frame %d is %dx%d, expected %dx%d to match frame 0",
				t, frame.Labels.rows, frame.Labels.cols, rows, cols)
		}
		for _, v := range frame.Labels.data {
			if v < 0 {
				return nil, errors.Errorf("frame %d contains negative label %d", t, v)
			}
		}
		for _, v := range frame.Intensity.data {
			if v < 0 {
				return nil, errors.Errorf("frame %d contains negative intensity %f", t, v)
			}
		}
	}
	return &Series{frames: frames}, nil
}

// NewSeriesFrom3D builds a Series from (T, R, C) shaped slices, the
// exchange format produced by the identification step.
func NewSeriesFrom3D(labels [][][]int, intensity [][][]float64) (*Series, error) {
	if len(labels) != len(intensity) {
		return nil, errors.Errorf("label series has %d frames but intensity series has %d", len(labels), len(intensity))
	}
	frames := make([]Frame, len(labels))
	for t := range labels {
		lg, err := NewIntGridFrom(labels[t])
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", t)
		}
		ig, err := NewFloatGridFrom(intensity[t])
		if err != nil {
			return nil, errors.Wrapf(err, "frame %d", t)
		}
		frames[t] = Frame{Labels: lg, Intensity: ig}
	}
	return NewSeries(frames)
}

// Len returns the number of frames.
func (s *Series) Len() int {
	return len(s.frames)
}

// Frame returns the frame at time index t.
func (s *Series) Frame(t int) Frame {
	return s.frames[t]
}

// labelCells maps every non-zero label in the grid to its footprint,
// as flat row-major cell indices in ascending order.
func labelCells(g *IntGrid) map[int][]int {
	cells := make(map[int][]int)
	for i, v := range g.data {
		if v != 0 {
			cells[v] = append(cells[v], i)
		}
	}
	return cells
}
