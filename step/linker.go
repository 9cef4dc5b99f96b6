package step

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// StormLinker assigns persistent identities to per-frame storm
// labels, iterating time forward. For every storm in frame t it
// decides which storm in frame t-1 it continues, or mints a new
// identity when no candidate passes the acceptance gates.
type StormLinker struct {
	params Params
	logger *slog.Logger

	// State carried across one Link run.
	tracks   map[int]*Track
	births   []int
	maxLabel int
}

// Option configures a StormLinker.
type Option func(*StormLinker)

// WithLogger sets the logger used for diagnostic traces.
func WithLogger(logger *slog.Logger) Option {
	return func(sl *StormLinker) {
		sl.logger = logger
	}
}

// NewStormLinker creates a linker with the given parameters.
func NewStormLinker(params Params, opts ...Option) (*StormLinker, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid linking parameters")
	}
	sl := &StormLinker{
		params: params,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(sl)
	}
	return sl, nil
}

// LinkResult is the output of one Link run: the space-time consistent
// labeling plus the per-storm track records, in birth order. Labels
// form the dense range {1..K} with 0 reserved for the background.
type LinkResult struct {
	Grids  []*IntGrid
	Tracks []*Track
}

// Link resolves the whole series and returns the compacted labeling.
// Frame 0 is copied verbatim; every later frame is resolved against
// the already-resolved frame before it. The context is checked at
// each time-step boundary so a long run can be aborted between
// frames.
func (sl *StormLinker) Link(ctx context.Context, series *Series) (*LinkResult, error) {
	if series == nil || series.Len() == 0 {
		return nil, errors.New("series must contain at least one frame")
	}
	resolved, err := sl.resolveSeries(ctx, series)
	if err != nil {
		return nil, err
	}
	grids, mapping := RelabelSequential(resolved)
	tracks := make([]*Track, 0, len(sl.births))
	for _, label := range sl.births {
		track := sl.tracks[label]
		track.label = mapping[label]
		tracks = append(tracks, track)
	}
	return &LinkResult{Grids: grids, Tracks: tracks}, nil
}

// resolveSeries produces the uncompacted labeling, one grid per
// frame.
func (sl *StormLinker) resolveSeries(ctx context.Context, series *Series) ([]*IntGrid, error) {
	sl.tracks = make(map[int]*Track)
	sl.births = nil

	// Seed the label counter with the maximum label anywhere in the
	// raw input, so newly minted identities never collide with a
	// label already in use, raw or resolved.
	sl.maxLabel = 0
	for t := 0; t < series.Len(); t++ {
		if m := series.Frame(t).Labels.Max(); m > sl.maxLabel {
			sl.maxLabel = m
		}
	}

	resolved := make([]*IntGrid, series.Len())
	resolved[0] = series.Frame(0).Labels.Clone()
	if err := sl.registerFrame(0, resolved[0], series.Frame(0).Intensity); err != nil {
		return nil, err
	}
	for t := 1; t < series.Len(); t++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "linking aborted before frame %d", t)
		}
		resolved[t] = sl.resolveFrame(t, series, resolved[t-1])
		if err := sl.registerFrame(t, resolved[t], series.Frame(t).Intensity); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// resolveFrame decides, for every storm in raw frame t, the
// persistent label it continues, minting new labels in ascending
// raw-label order for storms with no accepted predecessor.
func (sl *StormLinker) resolveFrame(t int, series *Series, prevResolved *IntGrid) *IntGrid {
	raw := series.Frame(t).Labels
	currIntensity := series.Frame(t).Intensity
	prevIntensity := series.Frame(t - 1).Intensity
	currCells := labelCells(raw)
	currLabels := sortedLabels(currCells)
	prevCells := labelCells(prevResolved)
	prevLabels := sortedLabels(prevCells)

	// Candidate evaluation reads only already-resolved data, so it is
	// safe to fan out; matches are applied sequentially below to keep
	// minting order deterministic.
	var matches []int
	if sl.params.Matching == MatchingHungarian {
		matches = sl.assignFrame(t, currLabels, currCells, prevLabels, prevCells, currIntensity, prevIntensity)
	} else {
		matches = make([]int, len(currLabels))
		sl.forEachLabel(len(currLabels), func(i int) {
			matches[i] = sl.matchLabel(t, currLabels[i], currCells[currLabels[i]], prevLabels, prevCells, currIntensity, prevIntensity)
		})
	}

	out := raw.Clone()
	for i, label := range currLabels {
		target := matches[i]
		if target == 0 {
			sl.maxLabel++
			target = sl.maxLabel
			sl.trace("storm born", "frame", t, "label", label, "assigned", target)
		} else {
			sl.trace("storm linked", "frame", t, "label", label, "matched", target)
		}
		for _, cell := range currCells[label] {
			out.setFlat(cell, target)
		}
	}
	return out
}

// matchLabel scans the previous frame's storms in ascending label
// order and returns the accepted predecessor for one storm, or 0 when
// it has none. A later candidate displaces the current best only when
// its footprint is strictly larger and it also passes a gate.
func (sl *StormLinker) matchLabel(t, label int, cells []int, prevLabels []int, prevCells map[int][]int, currIntensity, prevIntensity *FloatGrid) int {
	currCentroid, ok := CentroidOf(cells, currIntensity)
	if !ok {
		sl.trace("storm has zero total intensity, cannot match", "frame", t, "label", label)
		return 0
	}
	bestSize := 0
	best := 0
	for _, candidate := range prevLabels {
		footprint := prevCells[candidate]
		score := SimilarityScore(cells, footprint, currIntensity, prevIntensity, sl.params.Phi)
		sl.trace("candidate scored", "frame", t, "label", label, "candidate", candidate,
			"similarity", score, "size", len(footprint))
		if score <= sl.params.Tau {
			continue
		}
		if len(footprint) <= bestSize {
			continue
		}
		prevCentroid, ok := CentroidOf(footprint, prevIntensity)
		if !ok {
			continue
		}
		displacement := Displacement(currCentroid, prevCentroid)
		if displacement.Magnitude() < sl.params.MaxDisplacement {
			sl.trace("candidate accepted by proximity", "frame", t, "label", label,
				"candidate", candidate, "distance", displacement.Magnitude())
			bestSize, best = len(footprint), candidate
			continue
		}
		if sl.directionGate(t, candidate, displacement) {
			sl.trace("candidate accepted by direction", "frame", t, "label", label, "candidate", candidate)
			bestSize, best = len(footprint), candidate
		}
	}
	return best
}

// directionGate is the fallback for candidates beyond the proximity
// gate: the link is kept when the storm keeps moving in roughly the
// same direction it was already moving. With no history at t=1 the
// gate is satisfied by definition; a candidate with no displacement
// history, or a zero-length vector on either side, fails it.
func (sl *StormLinker) directionGate(t, candidate int, displacement Vector) bool {
	if t == 1 {
		return true
	}
	track, ok := sl.tracks[candidate]
	if !ok {
		return false
	}
	prevDisplacement, ok := track.LastDisplacement()
	if !ok {
		return false
	}
	angle, ok := AngleBetween(displacement, prevDisplacement)
	if !ok {
		return false
	}
	if sl.params.AngleGate == AngleGateLegacy {
		// Historical comparison of an arccos value against -0.33: it
		// passes whenever the angle is defined at all.
		return angle > -0.33
	}
	return math.Cos(angle) >= -0.5
}

// registerFrame updates the track registry from one resolved frame.
// Centroids are taken over the full resolved footprint, so a storm
// that absorbed several raw labels is observed once, as a whole.
func (sl *StormLinker) registerFrame(t int, grid *IntGrid, intensity *FloatGrid) error {
	cellsByLabel := labelCells(grid)
	for _, label := range sortedLabels(cellsByLabel) {
		centroid, ok := CentroidOf(cellsByLabel[label], intensity)
		if track, exists := sl.tracks[label]; exists {
			if err := track.observe(t, centroid, ok); err != nil {
				return err
			}
		} else {
			sl.tracks[label] = newTrack(label, t, centroid, ok)
			sl.births = append(sl.births, label)
		}
	}
	return nil
}

// forEachLabel runs fn for every index, on a bounded worker pool when
// Workers allows it.
func (sl *StormLinker) forEachLabel(n int, fn func(i int)) {
	workers := sl.params.Workers
	if workers > n {
		workers = n
	}
	if workers < 2 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	indices := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()
}

func (sl *StormLinker) trace(msg string, args ...any) {
	if sl.params.Trace {
		sl.logger.Debug(msg, args...)
	}
}

func sortedLabels(cells map[int][]int) []int {
	labels := make([]int, 0, len(cells))
	for label := range cells {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}
