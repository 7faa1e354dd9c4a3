package pipeline

import "errors"

var (
	// ErrInvariantViolation marks a model-integrity failure: an order
	// reaching the serial stage with no items, or the parallel stage
	// pricing an order to a negative combined value. It is fatal to the
	// enclosing run and never retried.
	ErrInvariantViolation = errors.New("pipeline: invariant violation")

	// ErrInvalidParameter marks bad input to the speedup formulas
	// (worker count below 1, parallel fraction outside (0,1),
	// non-positive durations). Rejected before any timing work begins.
	ErrInvalidParameter = errors.New("pipeline: invalid parameter")
)
