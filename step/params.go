package step

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AngleGateMode selects how the directional-consistency fallback
// interprets the angle between the candidate displacement and the
// track's previous displacement.
type AngleGateMode uint16

const (
	// AngleGateCosine accepts a candidate when the cosine of the
	// angle is at least -0.5, i.e. the direction changed by no more
	// than 120 degrees.
	AngleGateCosine AngleGateMode = iota
	// AngleGateLegacy accepts a candidate when the angle in radians
	// exceeds -0.33. Since arccos never returns a negative value the
	// gate passes whenever the angle is defined at all. Kept for
	// compatibility runs against historical output.
	AngleGateLegacy
)

// String returns the mode name.
func (m AngleGateMode) String() string {
	switch m {
	case AngleGateCosine:
		return "cosine"
	case AngleGateLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// MatchingAlgorithm selects how current-frame storms are matched to
// previous-frame storms.
type MatchingAlgorithm uint16

const (
	// MatchingGreedy scans candidates in ascending label order and
	// keeps the largest gate-passing candidate. This is the reference
	// behavior; its output is fully deterministic.
	MatchingGreedy MatchingAlgorithm = iota
	// MatchingHungarian solves a globally optimal one-to-one
	// assignment over the gated similarity matrix instead.
	MatchingHungarian
)

// String returns the algorithm name.
func (m MatchingAlgorithm) String() string {
	switch m {
	case MatchingGreedy:
		return "greedy"
	case MatchingHungarian:
		return "hungarian"
	default:
		return "unknown"
	}
}

// Params holds the tuning parameters for storm linking.
type Params struct {
	// Tau is the minimum similarity score a previous storm must
	// exceed to be considered a link candidate. Must be positive.
	Tau float64 `yaml:"tau"`
	// Phi is the similarity decay constant: larger values make the
	// score fall off faster with distance. Must be positive.
	Phi float64 `yaml:"phi"`
	// MaxDisplacement is the proximity gate in grid-cell units, the
	// number of cells equivalent to the fixed real-world distance
	// (120 km in the reference data).
	MaxDisplacement float64 `yaml:"maxDisplacement"`
	// AngleGate selects the directional fallback interpretation.
	AngleGate AngleGateMode `yaml:"angleGate"`
	// Matching selects the matching algorithm.
	Matching MatchingAlgorithm `yaml:"matching"`
	// Workers bounds how many goroutines evaluate candidates within
	// one time step. Values below 2 keep evaluation sequential. The
	// output grid is identical at any setting.
	Workers int `yaml:"workers"`
	// Trace enables per-candidate diagnostic logging. It has no
	// effect on the output.
	Trace bool `yaml:"trace"`
}

// DefaultParams returns the tuning used in the reference storm data
// set: hourly CONUS precipitation with ~6.5 km cells.
func DefaultParams() Params {
	return Params{
		Tau:             0.7,
		Phi:             0.003,
		MaxDisplacement: 18.6,
		AngleGate:       AngleGateCosine,
		Matching:        MatchingGreedy,
		Workers:         1,
	}
}

// Validate reports the first invalid parameter, if any.
func (p Params) Validate() error {
	if p.Tau <= 0 {
		return errors.Errorf("tau must be positive, got %f", p.Tau)
	}
	if p.Phi <= 0 {
		return errors.Errorf("phi must be positive, got %f", p.Phi)
	}
	if p.MaxDisplacement < 0 {
		return errors.Errorf("maxDisplacement must not be negative, got %f", p.MaxDisplacement)
	}
	if p.AngleGate > AngleGateLegacy {
		return errors.Errorf("unknown angle gate mode %d", p.AngleGate)
	}
	if p.Matching > MatchingHungarian {
		return errors.Errorf("unknown matching algorithm %d", p.Matching)
	}
	return nil
}

// ParamsFromYAML decodes parameters from YAML, applying defaults for
// unset fields. Callers own reading the bytes; this package does no
// file I/O.
func ParamsFromYAML(data []byte) (Params, error) {
	p := DefaultParams()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Params{}, errors.Wrap(err, "can't parse linking parameters")
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}
