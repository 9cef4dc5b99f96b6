package step

import (
	"math"
	"testing"
)

func TestTrackDisplacementRequiresConsecutiveFrames(t *testing.T) {
	track := newTrack(1, 0, Point{Row: 1, Col: 1}, true)
	if _, ok := track.LastDisplacement(); ok {
		t.Error("a track seen once has no displacement")
	}

	if err := track.observe(1, Point{Row: 1, Col: 3}, true); err != nil {
		t.Fatal(err)
	}
	displacement, ok := track.LastDisplacement()
	if !ok {
		t.Fatal("consecutive observations must produce a displacement")
	}
	if math.Abs(displacement.Row) > eps || math.Abs(displacement.Col-2) > eps {
		t.Errorf("wrong displacement: %+v, expected (0, 2)", displacement)
	}

	// A gap invalidates the stored displacement.
	if err := track.observe(3, Point{Row: 1, Col: 7}, true); err != nil {
		t.Fatal(err)
	}
	if _, ok := track.LastDisplacement(); ok {
		t.Error("an observation gap must invalidate the displacement")
	}
}

func TestTrackUndefinedCentroidInvalidatesDisplacement(t *testing.T) {
	track := newTrack(1, 0, Point{Row: 1, Col: 1}, true)
	if err := track.observe(1, Point{}, false); err != nil {
		t.Fatal(err)
	}
	if _, ok := track.LastDisplacement(); ok {
		t.Error("an undefined centroid must not produce a displacement")
	}
}

func TestTrackLifespan(t *testing.T) {
	track := newTrack(4, 2, Point{Row: 0, Col: 0}, true)
	if err := track.observe(3, Point{Row: 0, Col: 1}, true); err != nil {
		t.Fatal(err)
	}
	if err := track.observe(4, Point{Row: 0, Col: 2}, true); err != nil {
		t.Fatal(err)
	}
	if track.FirstFrame() != 2 || track.LastSeenFrame() != 4 {
		t.Errorf("wrong lifespan: %d..%d", track.FirstFrame(), track.LastSeenFrame())
	}
	if track.Duration() != 3 {
		t.Errorf("wrong duration: %d", track.Duration())
	}
	if len(track.Frames()) != 3 || len(track.Centroids()) != 3 {
		t.Errorf("history out of sync: %d frames, %d centroids", len(track.Frames()), len(track.Centroids()))
	}
	smoothed := track.SmoothedCentroid()
	if math.IsNaN(smoothed.Row) || math.IsNaN(smoothed.Col) {
		t.Error("smoothed centroid must be finite")
	}
}
