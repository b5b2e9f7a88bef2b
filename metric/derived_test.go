package metric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestPrecomputeSeuclideanVariance(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(3, 2, []float64{0, 1, 2, 1, 4, 4})}
	Y := Dataset{Dense: mat.NewDense(1, 2, []float64{6, 4})}

	p, err := PrecomputeDistanceParams("seuclidean", X, Y, nil)
	if err != nil {
		t.Fatalf("precompute: %v", err)
	}
	v, ok := p["V"].([]float64)
	if !ok || len(v) != 2 {
		t.Fatalf("V = %#v, want a 2-entry slice", p["V"])
	}

	// Sample variance of column 0 over the stacked rows {0, 2, 4, 6}.
	want := 20.0 / 3.0
	if math.Abs(v[0]-want) > 1e-12 {
		t.Errorf("V[0] = %g, want %g", v[0], want)
	}
}

func TestPrecomputeKeepsSuppliedParams(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{0, 0, 1, 1})}
	supplied := []float64{2, 2}

	p, err := PrecomputeDistanceParams("seuclidean", X, X, Params{"V": supplied})
	if err != nil {
		t.Fatalf("precompute: %v", err)
	}
	v := p["V"].([]float64)
	if &v[0] != &supplied[0] {
		t.Error("supplied V was replaced")
	}
}

func TestPrecomputeMahalanobisIdentity(t *testing.T) {
	// Uncorrelated features with unit sample variance give VI close to the
	// identity, so mahalanobis reduces to euclidean.
	X := Dataset{Dense: mat.NewDense(4, 2, []float64{
		1, 0,
		-1, 0,
		0, 1,
		0, -1,
	})}

	p, err := PrecomputeDistanceParams("mahalanobis", X, X, nil)
	if err != nil {
		t.Fatalf("precompute: %v", err)
	}
	vi, ok := p["VI"].(*mat.Dense)
	if !ok {
		t.Fatalf("VI = %#v, want *mat.Dense", p["VI"])
	}

	// Sample covariance is (2/3) I, so VI = 1.5 I.
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1.5
			}
			if math.Abs(vi.At(i, j)-want) > 1e-12 {
				t.Errorf("VI[%d][%d] = %g, want %g", i, j, vi.At(i, j), want)
			}
		}
	}

	pair, err := mahalanobisPair(p)
	if err != nil {
		t.Fatalf("pair: %v", err)
	}
	x := []float64{1, 0}
	y := []float64{-1, 0}
	want := math.Sqrt(1.5 * 4)
	if d := pair(x, y); math.Abs(d-want) > 1e-12 {
		t.Errorf("mahalanobis = %g, want %g", d, want)
	}
}
