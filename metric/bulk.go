package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/sparse"
)

// rowNormsSq returns the squared L2 norm of every row.
func rowNormsSq(d Dataset) []float64 {
	n, _ := d.Dims()
	out := make([]float64, n)
	if d.IsSparse() {
		for i := 0; i < n; i++ {
			out[i] = d.Sparse.RowSumSq(i)
		}
		return out
	}
	for i := 0; i < n; i++ {
		row := d.Dense.RawRowView(i)
		out[i] = floats.Dot(row, row)
	}
	return out
}

// gram computes the cross product X Y^T. Dense-dense pairs use a single
// matrix multiply; any sparse side falls back to row dot products.
func gram(X, Y Dataset) *mat.Dense {
	n1, _ := X.Dims()
	n2, _ := Y.Dims()
	out := mat.NewDense(n1, n2, nil)

	switch {
	case !X.IsSparse() && !Y.IsSparse():
		out.Mul(X.Dense, Y.Dense.T())
	case X.IsSparse() && Y.IsSparse():
		for i := 0; i < n1; i++ {
			for j := 0; j < n2; j++ {
				out.Set(i, j, sparse.Dot(X.Sparse, i, Y.Sparse, j))
			}
		}
	default:
		// One sparse side: iterate its stored entries against dense rows.
		sp, dn, transposed := X, Y, false
		if Y.IsSparse() {
			sp, dn = Y, X
			transposed = true
		}
		ns, _ := sp.Dims()
		nd, _ := dn.Dims()
		for i := 0; i < ns; i++ {
			ind, val := sp.Sparse.Row(i)
			for j := 0; j < nd; j++ {
				row := dn.Dense.RawRowView(j)
				var sum float64
				for k, col := range ind {
					sum += val[k] * row[col]
				}
				if transposed {
					out.Set(j, i, sum)
				} else {
					out.Set(i, j, sum)
				}
			}
		}
	}
	return out
}

// euclideanBulk computes (squared) Euclidean distances through the expansion
// ||x||^2 + ||y||^2 - 2*x.y, which reduces the cross term to one matrix
// multiply. Negative noise from cancellation is clamped to zero and the
// self-comparison diagonal is zeroed exactly.
func euclideanBulk(squared bool) func(X, Y Dataset, p Params) (*mat.Dense, error) {
	return func(X, Y Dataset, p Params) (*mat.Dense, error) {
		out := gram(X, Y)
		nx := rowNormsSq(X)
		var ny []float64
		if X.Same(Y) {
			ny = nx
		} else {
			ny = rowNormsSq(Y)
		}
		n1, n2 := out.Dims()
		for i := 0; i < n1; i++ {
			row := out.RawRowView(i)
			for j := 0; j < n2; j++ {
				d2 := nx[i] + ny[j] - 2*row[j]
				if d2 < 0 {
					d2 = 0
				}
				if !squared {
					d2 = math.Sqrt(d2)
				}
				row[j] = d2
			}
		}
		if X.Same(Y) {
			zeroDiagonal(out, 0)
		}
		return out, nil
	}
}

// zeroDiagonal zeroes entries (i, offset+i), the self-comparison diagonal of
// a row block starting at the given column offset.
func zeroDiagonal(m *mat.Dense, offset int) {
	r, c := m.Dims()
	for i := 0; i < r && offset+i < c; i++ {
		m.Set(i, offset+i, 0)
	}
}

// ZeroBlockDiagonal zeroes the self-comparison diagonal of a row block whose
// first row is row `start` of the full matrix.
func ZeroBlockDiagonal(block *mat.Dense, start int) {
	zeroDiagonal(block, start)
}

func manhattanBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	n1, d := X.Dims()
	n2, _ := Y.Dims()
	if X.IsSparse() || Y.IsSparse() {
		out := mat.NewDense(n1, n2, nil)
		xi := make([]float64, d)
		yj := make([]float64, d)
		for i := 0; i < n1; i++ {
			X.RowTo(xi, i)
			for j := 0; j < n2; j++ {
				Y.RowTo(yj, j)
				out.Set(i, j, Manhattan(xi, yj))
			}
		}
		return out, nil
	}
	out := mat.NewDense(n1, n2, nil)
	for i := 0; i < n1; i++ {
		xi := X.Dense.RawRowView(i)
		row := out.RawRowView(i)
		for j := 0; j < n2; j++ {
			row[j] = Manhattan(xi, Y.Dense.RawRowView(j))
		}
	}
	return out, nil
}

// cosineSimilarityBulk computes the cosine similarity kernel. Zero-norm rows
// have similarity zero against everything.
func cosineSimilarityBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	out := gram(X, Y)
	nx := rowNormsSq(X)
	var ny []float64
	if X.Same(Y) {
		ny = nx
	} else {
		ny = rowNormsSq(Y)
	}
	n1, n2 := out.Dims()
	for i := 0; i < n1; i++ {
		row := out.RawRowView(i)
		for j := 0; j < n2; j++ {
			if nx[i] == 0 || ny[j] == 0 {
				row[j] = 0
				continue
			}
			s := row[j] / (math.Sqrt(nx[i]) * math.Sqrt(ny[j]))
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			row[j] = s
		}
	}
	return out, nil
}

// cosineDistanceBulk computes 1 - cosine similarity, clipped to [0, 2], with
// an exact-zero self-comparison diagonal.
func cosineDistanceBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	out, err := cosineSimilarityBulk(X, Y, p)
	if err != nil {
		return nil, err
	}
	n1, n2 := out.Dims()
	for i := 0; i < n1; i++ {
		row := out.RawRowView(i)
		for j := 0; j < n2; j++ {
			row[j] = clipCosineDistance(1 - row[j])
		}
	}
	if X.Same(Y) {
		zeroDiagonal(out, 0)
	}
	return out, nil
}

func haversineBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	_, d1 := X.Dims()
	_, d2 := Y.Dims()
	if d1 != 2 || d2 != 2 {
		return nil, fmt.Errorf("%w: haversine requires exactly 2 features (lat, lon in radians), got %d", ErrDomain, d1)
	}
	return PairwiseDense(X, Y, Haversine), nil
}

// checkNonNegative validates the chi-squared domain over whole collections.
func checkNonNegative(name string, ds ...Dataset) error {
	for _, d := range ds {
		if d.IsSparse() {
			if d.Sparse.Min() < 0 {
				return fmt.Errorf("%w: %s requires non-negative input", ErrDomain, name)
			}
			continue
		}
		raw := d.Dense.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
			for _, v := range row {
				if v < 0 {
					return fmt.Errorf("%w: %s requires non-negative input", ErrDomain, name)
				}
			}
		}
	}
	return nil
}

func chi2Pairwise(name string, X, Y Dataset) (*mat.Dense, error) {
	if err := checkNonNegative(name, X, Y); err != nil {
		return nil, err
	}
	if X.IsSparse() && Y.IsSparse() {
		n1, _ := X.Dims()
		n2, _ := Y.Dims()
		out := mat.NewDense(n1, n2, nil)
		for i := 0; i < n1; i++ {
			for j := 0; j < n2; j++ {
				var sum float64
				sparse.Merge(X.Sparse, i, Y.Sparse, j, func(x, y float64) {
					if denom := x + y; denom > 0 {
						d := x - y
						sum += d * d / denom
					}
				})
				out.Set(i, j, sum)
			}
		}
		return out, nil
	}
	return PairwiseDense(X, Y, Chi2), nil
}

func chi2DistanceBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	return chi2Pairwise("chi2", X, Y)
}
