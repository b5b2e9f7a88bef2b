// Package pairwise computes distance and kernel matrices between collections
// of feature vectors.
//
// It supports dense (*mat.Dense) and sparse (*sparse.CSR) input, mixed
// categorical/numeric data through the gower subpackage, memory-bounded
// streaming through DistancesChunked, and a parallel execution path that
// produces results identical to sequential execution.
//
// Basic usage:
//
//	D, err := pairwise.Distances(X, nil, "euclidean", pairwise.Options{})
package pairwise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/gower"
	"github.com/marcelobeckmann/pairwise/internal/parallel"
	"github.com/marcelobeckmann/pairwise/metric"
	"github.com/marcelobeckmann/pairwise/sparse"
)

// Distances returns the (n1, n2) distance matrix between the rows of X and
// Y under the named metric. A nil Y means compare X with itself. With
// metric "precomputed", X already is the matrix and is returned uncopied.
func Distances(X, Y mat.Matrix, metricName string, o Options) (*mat.Dense, error) {
	if o.Func == nil && metricName == MetricPrecomputed {
		return checkPrecomputed(X, Y, true)
	}
	if o.Func == nil && metricName == MetricGower {
		return gowerDistances(X, Y, o)
	}

	s, err := resolveDistance(metricName, o)
	if err != nil {
		return nil, err
	}
	dsX, dsY, err := checkPairwiseInput(X, Y, s, o.logger())
	if err != nil {
		return nil, err
	}
	params, err := prepareParams(s, dsX, dsY, o.Params)
	if err != nil {
		return nil, err
	}
	return computePairwise(s, dsX, dsY, params, o.workers())
}

// Kernels returns the (n1, n2) kernel matrix between the rows of X and Y
// under the named kernel. A nil Y means compare X with itself. With kernel
// "precomputed", X already is the matrix and is returned uncopied.
func Kernels(X, Y mat.Matrix, kernelName string, o Options) (*mat.Dense, error) {
	if o.Func == nil && kernelName == MetricPrecomputed {
		return checkPrecomputed(X, Y, false)
	}

	var s *metric.Strategy
	if o.Func != nil {
		s = metric.Custom(o.Func)
	} else {
		known, ok := metric.Kernel(kernelName)
		if !ok {
			return nil, fmt.Errorf("%w: %q; known kernels: %v", ErrUnknownMetric, kernelName, metric.KernelNames())
		}
		s = known
	}

	params, err := filterKernelParams(s, o.Params, o.FilterParams)
	if err != nil {
		return nil, err
	}
	dsX, dsY, err := checkPairwiseInput(X, Y, s, o.logger())
	if err != nil {
		return nil, err
	}
	return computePairwise(s, dsX, dsY, params, o.workers())
}

func resolveDistance(metricName string, o Options) (*metric.Strategy, error) {
	if o.Func != nil {
		return metric.Custom(o.Func), nil
	}
	s, ok := metric.Distance(metricName)
	if !ok {
		return nil, fmt.Errorf("%w: %q; known metrics: %v", ErrUnknownMetric, metricName, metric.DistanceNames())
	}
	return s, nil
}

// prepareParams resolves data-derived parameters once, over the full
// combined input, before any chunking or fan-out.
func prepareParams(s *metric.Strategy, dsX, dsY metric.Dataset, p metric.Params) (metric.Params, error) {
	if !s.NeedsDerivedParams {
		return p, nil
	}
	return metric.PrecomputeDistanceParams(s.Name, dsX, dsY, p)
}

func filterKernelParams(s *metric.Strategy, p metric.Params, filter bool) (metric.Params, error) {
	if len(p) == 0 {
		return p, nil
	}
	out := metric.Params{}
	for key, v := range p {
		if s.Accepts(key) {
			out[key] = v
			continue
		}
		if !filter {
			return nil, fmt.Errorf("%w: kernel %s does not accept parameter %q", ErrDomain, s.Name, key)
		}
	}
	return out, nil
}

// computePairwise runs the strategy sequentially or fans contiguous row
// blocks of X out across workers. Workers share only the read-only inputs
// and the already-precomputed parameters and write disjoint row ranges of
// one output matrix, so the assembled result is identical to the
// sequential one.
func computePairwise(s *metric.Strategy, dsX, dsY metric.Dataset, params metric.Params, workers int) (*mat.Dense, error) {
	n1, _ := dsX.Dims()
	n2, _ := dsY.Dims()
	if workers <= 1 || n1 < 2 {
		return s.Compute(dsX, dsY, params)
	}

	xIsY := dsX.Same(dsY)
	out := mat.NewDense(n1, n2, nil)
	err := parallel.ForEachRange(n1, workers, func(r parallel.Range) error {
		block, err := s.Compute(dsX.Slice(r.Lo, r.Hi), dsY, params)
		if err != nil {
			return err
		}
		if xIsY && s.ZeroDiagonal {
			metric.ZeroBlockDiagonal(block, r.Lo)
		}
		out.Slice(r.Lo, r.Hi, 0, n2).(*mat.Dense).Copy(block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// gowerDistances adapts numeric matrix input to the gower engine. The
// normalization ranges are always derived from the full data before any
// fan-out, so parallel blocks are scaled identically.
func gowerDistances(X, Y mat.Matrix, o Options) (*mat.Dense, error) {
	if X == nil {
		return nil, fmt.Errorf("%w: X must not be nil", ErrShape)
	}
	if _, ok := X.(*sparse.CSR); ok {
		return nil, fmt.Errorf("%w: gower requires dense input", ErrUnsupportedInput)
	}
	rowsX := matrixRows(X)
	var rowsY [][]any
	if Y != nil {
		if _, ok := Y.(*sparse.CSR); ok {
			return nil, fmt.Errorf("%w: gower requires dense input", ErrUnsupportedInput)
		}
		rowsY = matrixRows(Y)
	}

	workers := o.workers()
	if workers <= 1 || len(rowsX) < 2 {
		return gower.Distances(rowsX, rowsY, gower.Options{})
	}

	ranges, err := gower.NumericRanges(rowsX, rowsY, nil)
	if err != nil {
		return nil, err
	}
	yRows := rowsY
	if yRows == nil {
		yRows = rowsX
	}
	out := mat.NewDense(len(rowsX), len(yRows), nil)
	err = parallel.ForEachRange(len(rowsX), workers, func(r parallel.Range) error {
		block, err := gower.Distances(rowsX[r.Lo:r.Hi], yRows, gower.Options{Scale: ranges})
		if err != nil {
			return err
		}
		out.Slice(r.Lo, r.Hi, 0, len(yRows)).(*mat.Dense).Copy(block)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// matrixRows converts a numeric matrix to gower's row representation,
// keeping NaN as the missing-value sentinel.
func matrixRows(m mat.Matrix) [][]any {
	r, c := m.Dims()
	out := make([][]any, r)
	for i := 0; i < r; i++ {
		row := make([]any, c)
		for j := 0; j < c; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}
