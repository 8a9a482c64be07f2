package analysis

import "errors"

// Per-instrument failure taxonomy. None of these are fatal to a batch run:
// callers convert them to a skip outcome at the instrument boundary.
var (
	// ErrInsufficientData means the series is too short, or its indicator
	// columns are still undefined, for the requested evaluation.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrDegenerateStructure means the Fibonacci window has zero width and
	// carries no tradable structure.
	ErrDegenerateStructure = errors.New("degenerate price structure")

	// ErrUnfundablePosition means the risk budget sizes the position at
	// zero lots. Informational: a plan still exists, it just cannot be funded.
	ErrUnfundablePosition = errors.New("position not fundable under risk budget")
)
