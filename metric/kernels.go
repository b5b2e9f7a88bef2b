package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// defaultGamma is the 1/n_features default used by the gamma-parameterized
// kernels.
func defaultGamma(X Dataset) float64 {
	_, d := X.Dims()
	return 1 / float64(d)
}

func linearKernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	return gram(X, Y), nil
}

func polynomialKernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	gamma := p.Float("gamma", defaultGamma(X))
	coef0 := p.Float("coef0", 1)
	degree := p.Float("degree", 3)
	out := gram(X, Y)
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Pow(gamma*v+coef0, degree)
	}, out)
	return out, nil
}

func sigmoidKernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	gamma := p.Float("gamma", defaultGamma(X))
	coef0 := p.Float("coef0", 1)
	out := gram(X, Y)
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Tanh(gamma*v + coef0)
	}, out)
	return out, nil
}

// rbfKernelBulk computes exp(-gamma * ||x - y||^2).
func rbfKernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	gamma := p.Float("gamma", defaultGamma(X))
	out, err := euclideanBulk(true)(X, Y, nil)
	if err != nil {
		return nil, err
	}
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(-gamma * v)
	}, out)
	return out, nil
}

// laplacianKernelBulk computes exp(-gamma * ||x - y||_1).
func laplacianKernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	gamma := p.Float("gamma", defaultGamma(X))
	out, err := manhattanBulk(X, Y, nil)
	if err != nil {
		return nil, err
	}
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(-gamma * v)
	}, out)
	return out, nil
}

// additiveChi2KernelBulk computes -sum((x_i - y_i)^2 / (x_i + y_i)).
// Input must be non-negative; 0/0 terms contribute zero.
func additiveChi2KernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	out, err := chi2Pairwise("additive_chi2", X, Y)
	if err != nil {
		return nil, err
	}
	out.Scale(-1, out)
	return out, nil
}

// chi2KernelBulk computes exp(gamma * additive_chi2(x, y)).
func chi2KernelBulk(X, Y Dataset, p Params) (*mat.Dense, error) {
	gamma := p.Float("gamma", 1)
	out, err := additiveChi2KernelBulk(X, Y, nil)
	if err != nil {
		return nil, err
	}
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Exp(gamma * v)
	}, out)
	return out, nil
}
