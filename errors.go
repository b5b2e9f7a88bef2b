package pairwise

import (
	"errors"

	"github.com/marcelobeckmann/pairwise/metric"
)

// Error taxonomy. All errors are returned synchronously at the point of
// detection and match with errors.Is.
var (
	// ErrShape reports a feature-dimension mismatch or a malformed
	// precomputed matrix.
	ErrShape = metric.ErrShape

	// ErrDomain reports input outside a metric's domain.
	ErrDomain = metric.ErrDomain

	// ErrUnknownMetric reports an unrecognized metric identifier.
	ErrUnknownMetric = errors.New("pairwise: unknown metric")

	// ErrUnsupportedInput reports input a metric cannot accept, such as a
	// sparse collection given to a dense-only metric.
	ErrUnsupportedInput = errors.New("pairwise: unsupported input")

	// ErrReduction reports a reduction callback returning output whose
	// length does not match the block it was given.
	ErrReduction = errors.New("pairwise: reduction contract violation")
)
