// Package gower implements the Gower dissimilarity for collections mixing
// categorical, boolean and numeric attributes, with missing values.
//
// Each attribute contributes to a pair's dissimilarity on a [0, 1] scale:
// numeric attributes contribute |x-y|/range, categorical attributes
// contribute 1 when the values differ and 0 when they are equal. The pair's
// distance is the sum of contributions divided by the number of attributes
// present in both rows. Missing values (nil or NaN) never match anything and
// are excluded from both the sum and the divisor.
package gower

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/metric"
)

// Options configures a Gower distance computation.
type Options struct {
	// CategoricalFeatures overrides column classification: either a []bool
	// mask over all columns or a []int of column indices. When nil, columns
	// holding strings or booleans are categorical and the rest numeric.
	CategoricalFeatures any

	// Scale supplies the normalization range of each numeric column, in
	// column order. Entries must be non-negative; a NaN entry means
	// "derive this column's range from the data". When Scale is nil the
	// ranges are max-min over the union of X and Y, ignoring missing
	// values.
	Scale []float64

	// NoScale skips normalization entirely. Valid only when every numeric
	// value already lies in [0, 1].
	NoScale bool
}

// Distances returns the (n1, n2) Gower dissimilarity matrix between X and Y.
// A nil Y means compare X with itself. Entries are NaN when a pair shares no
// present attribute.
func Distances(X, Y [][]any, o Options) (*mat.Dense, error) {
	cols, err := buildColumns(X, Y, o)
	if err != nil {
		return nil, err
	}
	return cols.distances(), nil
}

// NumericRanges returns the per-numeric-column normalization ranges that
// Distances would derive from X and Y jointly, in column order. It lets a
// caller splitting X into row blocks fix the ranges up front so every block
// is normalized against the full data.
func NumericRanges(X, Y [][]any, categoricalFeatures any) ([]float64, error) {
	cols, err := buildColumns(X, Y, Options{CategoricalFeatures: categoricalFeatures})
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, c := range cols.columns {
		if !c.categorical {
			out = append(out, c.rng)
		}
	}
	return out, nil
}

type column struct {
	categorical bool
	// Numeric columns: values with NaN for missing, and the normalization
	// range (0 means the column is constant and contributes nothing).
	xNum, yNum []float64
	rng        float64
	// Categorical columns: normalized values with nil for missing.
	xCat, yCat []any
}

type columns struct {
	columns []column
	n1, n2  int
	// selfCompare marks Y omitted; the result is then symmetric.
	selfCompare bool
}

func buildColumns(X, Y [][]any, o Options) (*columns, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, fmt.Errorf("%w: gower requires a non-empty collection", metric.ErrShape)
	}
	d := len(X[0])
	selfCompare := Y == nil
	if selfCompare {
		Y = X
	}
	for _, row := range X {
		if len(row) != d {
			return nil, fmt.Errorf("%w: gower rows must have uniform length %d", metric.ErrShape, d)
		}
	}
	for _, row := range Y {
		if len(row) != d {
			return nil, fmt.Errorf("%w: gower collections must share %d features, got %d", metric.ErrShape, d, len(row))
		}
	}

	cats, err := classify(X, Y, d, o.CategoricalFeatures)
	if err != nil {
		return nil, err
	}

	numCols := 0
	for _, c := range cats {
		if !c {
			numCols++
		}
	}
	if o.Scale != nil && len(o.Scale) != numCols {
		return nil, fmt.Errorf("%w: scale has %d entries, want one per numeric column (%d)",
			metric.ErrShape, len(o.Scale), numCols)
	}

	cs := &columns{n1: len(X), n2: len(Y), selfCompare: selfCompare}
	numIdx := 0
	for j := 0; j < d; j++ {
		if cats[j] {
			cs.columns = append(cs.columns, column{
				categorical: true,
				xCat:        categoricalColumn(X, j),
				yCat:        categoricalColumn(Y, j),
			})
			continue
		}
		xNum, err := numericColumn(X, j)
		if err != nil {
			return nil, err
		}
		yNum, err := numericColumn(Y, j)
		if err != nil {
			return nil, err
		}
		rng, err := columnRange(xNum, yNum, o, numIdx)
		if err != nil {
			return nil, err
		}
		cs.columns = append(cs.columns, column{xNum: xNum, yNum: yNum, rng: rng})
		numIdx++
	}
	return cs, nil
}

// classify resolves the per-column categorical flags.
func classify(X, Y [][]any, d int, override any) ([]bool, error) {
	switch o := override.(type) {
	case nil:
	case []bool:
		if len(o) != d {
			return nil, fmt.Errorf("%w: categorical mask has %d entries, want %d", metric.ErrShape, len(o), d)
		}
		out := make([]bool, d)
		copy(out, o)
		return out, nil
	case []int:
		out := make([]bool, d)
		for _, idx := range o {
			if idx < 0 || idx >= d {
				return nil, fmt.Errorf("%w: categorical index %d out of range [0, %d)", metric.ErrShape, idx, d)
			}
			out[idx] = true
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: categorical features must be a []bool mask or []int indices", metric.ErrShape)
	}

	out := make([]bool, d)
	for j := 0; j < d; j++ {
		out[j] = inferCategorical(X, j) || inferCategorical(Y, j)
	}
	return out, nil
}

func inferCategorical(rows [][]any, j int) bool {
	for _, row := range rows {
		switch row[j].(type) {
		case string, bool:
			return true
		}
	}
	return false
}

func categoricalColumn(rows [][]any, j int) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		v := row[j]
		if f, ok := asFloat(v); ok {
			if math.IsNaN(f) {
				continue // missing
			}
			out[i] = f
			continue
		}
		out[i] = v // string, bool, or nil
	}
	return out
}

func numericColumn(rows [][]any, j int) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := row[j]
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: column %d is numeric but holds %T", metric.ErrShape, j, v)
		}
		out[i] = f
	}
	return out, nil
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	case int:
		return float64(f), true
	case int32:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}

func columnRange(xNum, yNum []float64, o Options, numIdx int) (float64, error) {
	if o.Scale != nil {
		rng := o.Scale[numIdx]
		if !math.IsNaN(rng) {
			if rng < 0 {
				return 0, fmt.Errorf("%w: scale entries must be non-negative, got %v", metric.ErrDomain, rng)
			}
			return rng, nil
		}
		// NaN entry: fall through and derive from the data.
	} else if o.NoScale {
		for _, v := range append(append([]float64{}, xNum...), yNum...) {
			if !math.IsNaN(v) && (v < 0 || v > 1) {
				return 0, fmt.Errorf("%w: scale disabled but value %v is outside [0, 1]", metric.ErrDomain, v)
			}
		}
		return 1, nil
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, col := range [][]float64{xNum, yNum} {
		for _, v := range col {
			if math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if min > max {
		// Entirely missing column; every pair involving it is missing anyway.
		return 0, nil
	}
	return max - min, nil
}

func (cs *columns) distances() *mat.Dense {
	out := mat.NewDense(cs.n1, cs.n2, nil)
	for i := 0; i < cs.n1; i++ {
		row := out.RawRowView(i)
		for j := 0; j < cs.n2; j++ {
			row[j] = cs.pair(i, j)
		}
	}
	return out
}

func (cs *columns) pair(i, j int) float64 {
	var sum float64
	present := 0
	for _, c := range cs.columns {
		if c.categorical {
			xv, yv := c.xCat[i], c.yCat[j]
			if xv == nil || yv == nil {
				continue
			}
			present++
			if xv != yv {
				sum++
			}
			continue
		}
		xv, yv := c.xNum[i], c.yNum[j]
		if math.IsNaN(xv) || math.IsNaN(yv) {
			continue
		}
		present++
		if c.rng > 0 {
			sum += math.Abs(xv-yv) / c.rng
		}
	}
	if present == 0 {
		return math.NaN()
	}
	if sum == 0 {
		return 0 // exact zero, no -0 or 0/len artifacts
	}
	return sum / float64(present)
}
