package metric

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLinearKernel(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{1, 2, 3, 4})}
	out, err := linearKernelBulk(X, X, nil)
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	// <(1,2),(3,4)> = 11
	if v := out.At(0, 1); math.Abs(v-11) > 1e-12 {
		t.Errorf("expected 11, got %f", v)
	}
}

func TestRBFKernel(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{0, 0, 1, 1})}
	out, err := rbfKernelBulk(X, X, Params{"gamma": 0.5})
	if err != nil {
		t.Fatalf("rbf: %v", err)
	}
	// exp(-0.5 * 2) = exp(-1)
	if v := out.At(0, 1); math.Abs(v-math.Exp(-1)) > 1e-12 {
		t.Errorf("expected exp(-1), got %f", v)
	}
	if v := out.At(0, 0); v != 1 {
		t.Errorf("self similarity: expected 1, got %f", v)
	}
}

func TestPolynomialKernel(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(1, 2, []float64{1, 2})}
	Y := Dataset{Dense: mat.NewDense(1, 2, []float64{3, 4})}
	out, err := polynomialKernelBulk(X, Y, Params{"gamma": 1.0, "coef0": 1.0, "degree": 2.0})
	if err != nil {
		t.Fatalf("polynomial: %v", err)
	}
	// (11 + 1)^2 = 144
	if v := out.At(0, 0); math.Abs(v-144) > 1e-9 {
		t.Errorf("expected 144, got %f", v)
	}
}

func TestSigmoidKernel(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(1, 2, []float64{1, 0})}
	Y := Dataset{Dense: mat.NewDense(1, 2, []float64{1, 0})}
	out, err := sigmoidKernelBulk(X, Y, Params{"gamma": 1.0, "coef0": 0.0})
	if err != nil {
		t.Fatalf("sigmoid: %v", err)
	}
	if v := out.At(0, 0); math.Abs(v-math.Tanh(1)) > 1e-12 {
		t.Errorf("expected tanh(1), got %f", v)
	}
}

func TestLaplacianKernel(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{0, 0, 1, 2})}
	out, err := laplacianKernelBulk(X, X, Params{"gamma": 1.0})
	if err != nil {
		t.Fatalf("laplacian: %v", err)
	}
	if v := out.At(0, 1); math.Abs(v-math.Exp(-3)) > 1e-12 {
		t.Errorf("expected exp(-3), got %f", v)
	}
}

func TestChi2Kernels(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{1, 0, 0, 1})}
	add, err := additiveChi2KernelBulk(X, X, nil)
	if err != nil {
		t.Fatalf("additive_chi2: %v", err)
	}
	// -(1/1 + 1/1) = -2
	if v := add.At(0, 1); math.Abs(v+2) > 1e-12 {
		t.Errorf("expected -2, got %f", v)
	}

	k, err := chi2KernelBulk(X, X, Params{"gamma": 1.0})
	if err != nil {
		t.Fatalf("chi2: %v", err)
	}
	if v := k.At(0, 1); math.Abs(v-math.Exp(-2)) > 1e-12 {
		t.Errorf("expected exp(-2), got %f", v)
	}
}

func TestCosineSimilarityClamp(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	X := randomDataset(t, rng, 8, 4)
	out, err := cosineSimilarityBulk(X, X, nil)
	if err != nil {
		t.Fatalf("cosine similarity: %v", err)
	}
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := out.At(i, j); v < -1 || v > 1 {
				t.Errorf("similarity %g outside [-1, 1]", v)
			}
		}
	}
}

func TestDefaultGammaIsInverseFeatureCount(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 4, []float64{0, 0, 0, 0, 1, 1, 1, 1})}
	// With default gamma 1/4, exp(-4/4) = exp(-1).
	out, err := rbfKernelBulk(X, X, nil)
	if err != nil {
		t.Fatalf("rbf: %v", err)
	}
	if v := out.At(0, 1); math.Abs(v-math.Exp(-1)) > 1e-12 {
		t.Errorf("expected exp(-1), got %f", v)
	}
}
