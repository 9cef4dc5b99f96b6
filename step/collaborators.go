package step

import "context"

// Identifier is the upstream collaborator producing per-frame storm
// labels from raw intensity fields. Linking assumes its output
// contract: contiguous regions labeled with integers unique within a
// frame only, 0 for the background.
type Identifier interface {
	Identify(ctx context.Context, intensity []*FloatGrid) (*Series, error)
}

// Quantifier is the downstream collaborator computing per-storm
// statistics (duration, size, mean intensity, central location) from
// the final space-time consistent labeling.
type Quantifier interface {
	Quantify(ctx context.Context, result *LinkResult) error
}

// Renderer is the downstream collaborator rendering the final
// labeling.
type Renderer interface {
	Render(ctx context.Context, result *LinkResult) error
}
