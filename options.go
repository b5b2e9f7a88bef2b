package pairwise

import (
	"go.uber.org/zap"

	"github.com/marcelobeckmann/pairwise/internal/parallel"
	"github.com/marcelobeckmann/pairwise/metric"
)

// DefaultWorkingMemoryMiB bounds the size of a single in-flight result block
// unless overridden per call.
const DefaultWorkingMemoryMiB = 1024

// MetricPrecomputed selects the pass-through path where X already is the
// distance (or kernel) matrix.
const MetricPrecomputed = "precomputed"

// MetricGower selects the Gower heterogeneous distance for numeric input;
// heterogeneous rows go through gower.Distances directly.
const MetricGower = "gower"

// Options configures a pairwise computation. The zero value selects the
// sequential path with default working memory and no logging.
type Options struct {
	// Func supplies a user metric. When set it takes precedence over the
	// metric name; every pair is computed explicitly, with no symmetry or
	// diagonal shortcuts.
	Func func(x, y []float64) float64

	// Params holds keyword parameters for the resolved strategy
	// (gamma, degree, p, V, VI, ...).
	Params metric.Params

	// NumWorkers enables the parallel path when > 1. Negative means one
	// worker per CPU. Parallel and sequential runs produce numerically
	// identical matrices.
	NumWorkers int

	// WorkingMemoryMiB caps each streamed block's size for the chunked
	// engine. Zero selects DefaultWorkingMemoryMiB.
	WorkingMemoryMiB float64

	// FilterParams drops unrecognized Params keys instead of failing.
	// Used by Kernels.
	FilterParams bool

	// Axis selects the collection ArgminMin reduces over: 0 (default)
	// returns, for each row of X, its nearest row in Y; 1 swaps the roles.
	Axis int

	// Logger receives non-fatal anomaly warnings (dtype coercion,
	// sub-row working memory). Nil means no logging.
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) workers() int {
	if o.NumWorkers < 0 {
		return parallel.NumWorkers()
	}
	if o.NumWorkers == 0 {
		return 1
	}
	return o.NumWorkers
}

func (o Options) workingMemory() float64 {
	if o.WorkingMemoryMiB <= 0 {
		return DefaultWorkingMemoryMiB
	}
	return o.WorkingMemoryMiB
}
