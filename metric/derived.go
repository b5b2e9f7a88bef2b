package metric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PrecomputeDistanceParams fills in parameters that are derived from the full
// combined input: the per-feature variance V for seuclidean and the inverse
// covariance VI for mahalanobis. Callers must invoke this once, over the
// whole of X and Y, before partitioning work across chunks or workers;
// deriving them per block would change the numeric result.
func PrecomputeDistanceParams(name string, X, Y Dataset, p Params) (Params, error) {
	out := p.Clone()
	if out == nil {
		out = Params{}
	}
	switch name {
	case "seuclidean":
		if _, ok := out["V"]; ok {
			return out, nil
		}
		stacked := stackRows(X, Y)
		n, d := stacked.Dims()
		v := make([]float64, d)
		col := make([]float64, n)
		for j := 0; j < d; j++ {
			mat.Col(col, j, stacked)
			v[j] = stat.Variance(col, nil)
			if v[j] == 0 {
				return nil, fmt.Errorf("%w: seuclidean variance is zero for feature %d", ErrDomain, j)
			}
		}
		out["V"] = v
	case "mahalanobis":
		if _, ok := out["VI"]; ok {
			return out, nil
		}
		stacked := stackRows(X, Y)
		_, d := stacked.Dims()
		cov := mat.NewSymDense(d, nil)
		stat.CovarianceMatrix(cov, stacked, nil)
		vi := mat.NewDense(d, d, nil)
		if err := vi.Inverse(cov); err != nil {
			return nil, fmt.Errorf("%w: mahalanobis covariance matrix is singular", ErrDomain)
		}
		out["VI"] = vi
	}
	return out, nil
}

// stackRows stacks X on top of Y. Self-comparison stacks X once.
func stackRows(X, Y Dataset) *mat.Dense {
	if X.Same(Y) {
		return X.Dense
	}
	n1, d := X.Dims()
	n2, _ := Y.Dims()
	out := mat.NewDense(n1+n2, d, nil)
	out.Slice(0, n1, 0, d).(*mat.Dense).Copy(X.Dense)
	out.Slice(n1, n1+n2, 0, d).(*mat.Dense).Copy(Y.Dense)
	return out
}
