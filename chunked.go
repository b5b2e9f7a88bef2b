package pairwise

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/gower"
	"github.com/marcelobeckmann/pairwise/metric"
)

// ReduceFunc narrows a result block to a summary before it is yielded. It
// receives the block and the index of the block's first row within the full
// matrix, and returns either one slice or a tuple ([]any) of slices, each
// with one element per block row.
type ReduceFunc func(chunk *mat.Dense, start int) (any, error)

// Chunks streams a pairwise distance matrix as contiguous row blocks, each
// sized to a working-memory budget. It is a single-pass iterator:
//
//	c := pairwise.DistancesChunked(X, Y, "euclidean", nil, opts)
//	for c.Next() {
//	    block := c.Chunk()
//	    ...
//	}
//	if err := c.Err(); err != nil { ... }
//
// Blocks partition the row range in ascending order; a consumed iterator
// stays exhausted.
type Chunks struct {
	blockFn   func(lo, hi int) (*mat.Dense, error)
	reduce    ReduceFunc
	n1        int
	blockRows int

	cursor  int
	start   int
	chunk   *mat.Dense
	reduced any
	err     error
	done    bool
}

// DistancesChunked computes the same matrix as Distances but yields it as
// memory-bounded row blocks, optionally reduced per block. Setup failures,
// including an unknown metric, surface through Err after the first Next
// call returns false.
func DistancesChunked(X, Y mat.Matrix, metricName string, reduce ReduceFunc, o Options) *Chunks {
	c := &Chunks{reduce: reduce}
	log := o.logger()

	if o.Func == nil && metricName == MetricPrecomputed {
		d, err := checkPrecomputed(X, Y, true)
		if err != nil {
			c.err = err
			return c
		}
		n1, _ := d.Dims()
		c.n1 = n1
		c.blockRows = n1 // yielded whole, once
		c.blockFn = func(lo, hi int) (*mat.Dense, error) { return d, nil }
		return c
	}

	if o.Func == nil && metricName == MetricGower {
		c.initGower(X, Y, o, log)
		return c
	}

	s, err := resolveDistance(metricName, o)
	if err != nil {
		c.err = err
		return c
	}
	dsX, dsY, err := checkPairwiseInput(X, Y, s, log)
	if err != nil {
		c.err = err
		return c
	}
	params, err := prepareParams(s, dsX, dsY, o.Params)
	if err != nil {
		c.err = err
		return c
	}

	n1, _ := dsX.Dims()
	n2, _ := dsY.Dims()
	xIsY := dsX.Same(dsY)
	c.n1 = n1
	c.blockRows = chunkRows(o.workingMemory(), n2, n1, log)
	c.blockFn = func(lo, hi int) (*mat.Dense, error) {
		block, err := s.Compute(dsX.Slice(lo, hi), dsY, params)
		if err != nil {
			return nil, err
		}
		if xIsY && s.ZeroDiagonal {
			metric.ZeroBlockDiagonal(block, lo)
		}
		return block, nil
	}
	return c
}

func (c *Chunks) initGower(X, Y mat.Matrix, o Options, log *zap.Logger) {
	rowsX := matrixRows(X)
	var rowsY [][]any
	if Y != nil {
		rowsY = matrixRows(Y)
	}
	// Normalization ranges come from the full data, never per block.
	ranges, err := gower.NumericRanges(rowsX, rowsY, nil)
	if err != nil {
		c.err = err
		return
	}
	yRows := rowsY
	if yRows == nil {
		yRows = rowsX
	}
	c.n1 = len(rowsX)
	c.blockRows = chunkRows(o.workingMemory(), len(yRows), len(rowsX), log)
	c.blockFn = func(lo, hi int) (*mat.Dense, error) {
		return gower.Distances(rowsX[lo:hi], yRows, gower.Options{Scale: ranges})
	}
}

// chunkRows converts a MiB budget into a row count for blocks of n2
// float64 columns. The floor is one row: a budget smaller than a single
// row yields one oversized row block and a warning instead of an error.
func chunkRows(workingMemoryMiB float64, n2, maxRows int, log *zap.Logger) int {
	rowBytes := float64(8 * n2)
	rows := int(workingMemoryMiB * (1 << 20) / rowBytes)
	if rows < 1 {
		log.Warn("working memory is smaller than one result row, using one row per block",
			zap.Float64("working_memory_mib", workingMemoryMiB),
			zap.Float64("row_bytes", rowBytes))
		rows = 1
	}
	if rows > maxRows {
		rows = maxRows
	}
	return rows
}

// Next advances to the next block. It returns false when the iterator is
// exhausted or failed; check Err afterwards.
func (c *Chunks) Next() bool {
	if c.err != nil || c.done {
		c.chunk = nil
		c.reduced = nil
		return false
	}
	lo := c.cursor
	hi := lo + c.blockRows
	if hi > c.n1 {
		hi = c.n1
	}
	block, err := c.blockFn(lo, hi)
	if err != nil {
		c.err = err
		return false
	}
	c.start = lo
	if c.reduce != nil {
		reduced, err := c.reduce(block, lo)
		if err != nil {
			c.err = err
			return false
		}
		if err := checkChunkResult(reduced, hi-lo); err != nil {
			c.err = err
			return false
		}
		c.reduced = reduced
		c.chunk = nil
	} else {
		c.chunk = block
		c.reduced = nil
	}
	c.cursor = hi
	if c.cursor >= c.n1 {
		c.done = true
	}
	return true
}

// Chunk returns the current block when no reduction is configured.
func (c *Chunks) Chunk() *mat.Dense { return c.chunk }

// Reduced returns the current reduction result when one is configured.
func (c *Chunks) Reduced() any { return c.reduced }

// Start returns the full-matrix row index of the current block's first row.
func (c *Chunks) Start() int { return c.start }

// Err returns the first error encountered, if any.
func (c *Chunks) Err() error { return c.err }

// checkChunkResult validates the reduction-callback contract: the result is
// one sequence, or a tuple of sequences, each as long as the block.
func checkChunkResult(v any, blockRows int) error {
	if v == nil {
		return fmt.Errorf("%w: reduction returned nil", ErrReduction)
	}
	if tuple, ok := v.([]any); ok {
		for i, elem := range tuple {
			if err := checkSeqLen(elem, blockRows, fmt.Sprintf("element %d", i)); err != nil {
				return err
			}
		}
		return nil
	}
	return checkSeqLen(v, blockRows, "result")
}

func checkSeqLen(v any, want int, what string) error {
	if m, ok := v.(interface{ Dims() (int, int) }); ok {
		r, _ := m.Dims()
		if r != want {
			return fmt.Errorf("%w: reduction %s has %d rows, expected %d", ErrReduction, what, r, want)
		}
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() != want {
			return fmt.Errorf("%w: reduction %s has length %d, expected %d", ErrReduction, what, rv.Len(), want)
		}
		return nil
	default:
		return fmt.Errorf("%w: reduction %s is %T, expected a slice or matrix", ErrReduction, what, v)
	}
}
