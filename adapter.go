package pairwise

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/metric"
)

// DenseFromRows builds a dense collection from row slices. Rows must share
// one length.
func DenseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: collection must have at least one row and one feature", ErrShape)
	}
	d := len(rows[0])
	out := mat.NewDense(len(rows), d, nil)
	for i, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), d)
		}
		out.SetRow(i, row)
	}
	return out, nil
}

// DenseFromRows32 promotes float32 rows to the float64 working
// representation, reporting the widening as a non-fatal notice.
func DenseFromRows32(rows [][]float32, logger *zap.Logger) (*mat.Dense, error) {
	if logger != nil {
		logger.Warn("promoting float32 input to float64")
	}
	conv := make([][]float64, len(rows))
	for i, row := range rows {
		conv[i] = make([]float64, len(row))
		for j, v := range row {
			conv[i][j] = float64(v)
		}
	}
	return DenseFromRows(conv)
}

// checkPairwiseInput validates and normalizes the two collections for the
// given strategy. A nil Y yields the same dataset as X, so self-comparison
// stays detectable by identity downstream.
func checkPairwiseInput(X, Y mat.Matrix, s *metric.Strategy, log *zap.Logger) (metric.Dataset, metric.Dataset, error) {
	var none metric.Dataset
	if X == nil {
		return none, none, fmt.Errorf("%w: X must not be nil", ErrShape)
	}
	dsX := metric.FromMatrix(X)
	dsY := dsX
	if Y != nil && Y != mat.Matrix(X) {
		dsY = metric.FromMatrix(Y)
	}

	n1, d1 := dsX.Dims()
	n2, d2 := dsY.Dims()
	if n1 == 0 || n2 == 0 || d1 == 0 {
		return none, none, fmt.Errorf("%w: collections must have at least one row and one feature", ErrShape)
	}
	if d1 != d2 {
		return none, none, fmt.Errorf("%w: incompatible feature counts %d and %d", ErrShape, d1, d2)
	}

	if (dsX.IsSparse() || dsY.IsSparse()) && !s.SupportsSparse {
		return none, none, fmt.Errorf("%w: metric %s does not support sparse input", ErrUnsupportedInput, s.Name)
	}

	if !s.AllowNaN {
		if err := checkFinite(dsX); err != nil {
			return none, none, err
		}
		if !dsX.Same(dsY) {
			if err := checkFinite(dsY); err != nil {
				return none, none, err
			}
		}
	}

	if s.BooleanOnly {
		same := dsX.Same(dsY)
		dsX = coerceBoolean(dsX, s.Name, log)
		if same {
			dsY = dsX
		} else {
			dsY = coerceBoolean(dsY, s.Name, log)
		}
	}
	return dsX, dsY, nil
}

func checkFinite(d metric.Dataset) error {
	if d.IsSparse() {
		for _, v := range d.Sparse.Data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: input contains NaN or infinity", ErrDomain)
			}
		}
		return nil
	}
	raw := d.Dense.RawMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: input contains NaN or infinity", ErrDomain)
			}
		}
	}
	return nil
}

// coerceBoolean converts non-boolean data to {0, 1} for boolean-only
// metrics, warning rather than failing. Boolean input passes through.
func coerceBoolean(d metric.Dataset, name string, log *zap.Logger) metric.Dataset {
	raw := d.Dense.RawMatrix()
	boolean := true
	for i := 0; i < raw.Rows && boolean; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for _, v := range row {
			if v != 0 && v != 1 {
				boolean = false
				break
			}
		}
	}
	if boolean {
		return d
	}
	log.Warn("converting data to boolean for boolean-only metric", zap.String("metric", name))
	out := mat.NewDense(raw.Rows, raw.Cols, nil)
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j, v := range row {
			if v != 0 {
				out.Set(i, j, 1)
			}
		}
	}
	return metric.Dataset{Dense: out}
}

// checkPrecomputed validates a caller-supplied matrix for the precomputed
// path and hands the identical object back, uncopied.
func checkPrecomputed(X, Y mat.Matrix, requireNonNegative bool) (*mat.Dense, error) {
	d, ok := X.(*mat.Dense)
	if !ok {
		return nil, fmt.Errorf("%w: precomputed matrix must be dense", ErrUnsupportedInput)
	}
	r, c := d.Dims()
	if Y == nil {
		if r != c {
			return nil, fmt.Errorf("%w: precomputed matrix is %dx%d, want square when Y is omitted", ErrShape, r, c)
		}
	} else {
		ny, _ := Y.Dims()
		if c != ny {
			return nil, fmt.Errorf("%w: precomputed matrix has %d columns, want %d (rows of Y)", ErrShape, c, ny)
		}
	}
	if requireNonNegative {
		raw := d.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
			for _, v := range row {
				if v < 0 {
					return nil, fmt.Errorf("%w: precomputed distance matrix contains negative entries", ErrDomain)
				}
			}
		}
	}
	return d, nil
}
