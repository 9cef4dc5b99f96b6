package step

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Track is the explicit per-storm record maintained by the linker:
// one entry per persistent label, updated incrementally as frames
// resolve. It carries everything the matching fallback needs (last
// centroid, last displacement) plus per-frame centroid history and a
// Kalman-smoothed position for downstream consumers. The smoothed
// state is observational only; linking decisions always use the raw
// intensity-weighted centroids.
type Track struct {
	id               uuid.UUID
	label            int
	firstFrame       int
	lastSeenFrame    int
	lastCentroid     Point
	lastDisplacement Vector
	hasDisplacement  bool
	centroidValid    bool
	frames           []int
	centroids        []Point
	smoothed         Point
	filter           *kalman_filter.Kalman2D
}

func newTrack(label, frameIndex int, centroid Point, centroidValid bool) *Track {
	/* Kalman filter props, one frame per step */
	dt := 1.0
	ux := 1.0
	uy := 1.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
		kalman_filter.WithState2D(centroid.Row, centroid.Col))
	return &Track{
		id:            uuid.New(),
		label:         label,
		firstFrame:    frameIndex,
		lastSeenFrame: frameIndex,
		lastCentroid:  centroid,
		centroidValid: centroidValid,
		frames:        []int{frameIndex},
		centroids:     []Point{centroid},
		smoothed:      centroid,
		filter:        kf,
	}
}

// observe records the track's centroid at frameIndex. The stored
// displacement is only valid when the track was also seen in the
// immediately preceding frame and both centroids were defined.
func (t *Track) observe(frameIndex int, centroid Point, centroidValid bool) error {
	if centroidValid && t.centroidValid && frameIndex == t.lastSeenFrame+1 {
		t.lastDisplacement = Displacement(centroid, t.lastCentroid)
		t.hasDisplacement = true
	} else {
		t.hasDisplacement = false
	}
	t.lastCentroid = centroid
	t.centroidValid = centroidValid
	t.lastSeenFrame = frameIndex
	t.frames = append(t.frames, frameIndex)
	t.centroids = append(t.centroids, centroid)

	if centroidValid {
		t.filter.Predict()
		if err := t.filter.Update(centroid.Row, centroid.Col); err != nil {
			return errors.Wrapf(err, "can't update position filter for storm %d", t.label)
		}
		row, col := t.filter.GetState()
		t.smoothed = Point{Row: row, Col: col}
	}
	return nil
}

// ID returns the track's globally unique external identifier.
func (t *Track) ID() uuid.UUID {
	return t.id
}

// Label returns the track's persistent label as it appears in the
// output grid.
func (t *Track) Label() int {
	return t.label
}

// FirstFrame returns the time index at which the storm was born.
func (t *Track) FirstFrame() int {
	return t.firstFrame
}

// LastSeenFrame returns the last time index at which the storm was
// matched.
func (t *Track) LastSeenFrame() int {
	return t.lastSeenFrame
}

// Duration returns the number of frames the storm persisted.
func (t *Track) Duration() int {
	return t.lastSeenFrame - t.firstFrame + 1
}

// LastCentroid returns the storm's most recent intensity-weighted
// centroid.
func (t *Track) LastCentroid() Point {
	return t.lastCentroid
}

// LastDisplacement returns the storm's displacement between its two
// most recent consecutive frames. It reports false when no such
// displacement exists.
func (t *Track) LastDisplacement() (Vector, bool) {
	return t.lastDisplacement, t.hasDisplacement
}

// Frames returns the time indices at which the storm was observed.
func (t *Track) Frames() []int {
	return t.frames
}

// Centroids returns the storm's centroid at each observed frame,
// aligned with Frames. Be careful: this is not a copy.
func (t *Track) Centroids() []Point {
	return t.centroids
}

// SmoothedCentroid returns the Kalman-smoothed position after the
// latest observation.
func (t *Track) SmoothedCentroid() Point {
	return t.smoothed
}
