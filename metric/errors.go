package metric

import "errors"

// Sentinel errors shared across the pairwise packages. The root package
// re-exports them; match with errors.Is.
var (
	// ErrShape reports a malformed or mismatched input shape.
	ErrShape = errors.New("pairwise: shape mismatch")

	// ErrDomain reports input outside a metric's domain (negative values
	// for chi-squared, wrong dimensionality for haversine, ...).
	ErrDomain = errors.New("pairwise: domain error")
)
