package metric

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/sparse"
)

func randomDataset(t *testing.T, rng *rand.Rand, n, d int) Dataset {
	t.Helper()
	data := make([]float64, n*d)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return Dataset{Dense: mat.NewDense(n, d, data)}
}

func maxAbsDiff(a, b *mat.Dense) float64 {
	r, c := a.Dims()
	var max float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if d := math.Abs(a.At(i, j) - b.At(i, j)); d > max {
				max = d
			}
		}
	}
	return max
}

func TestEuclideanBulkMatchesPairLoop(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	X := randomDataset(t, rng, 7, 4)
	Y := randomDataset(t, rng, 5, 4)

	bulk, err := euclideanBulk(false)(X, Y, nil)
	if err != nil {
		t.Fatalf("euclidean bulk: %v", err)
	}
	naive := PairwiseDense(X, Y, Euclidean)

	if d := maxAbsDiff(bulk, naive); d > 1e-9 {
		t.Errorf("bulk and pair loop disagree by %g", d)
	}
}

func TestEuclideanBulkSelfDiagonalIsExactlyZero(t *testing.T) {
	// Large magnitudes make the expansion formula cancel catastrophically;
	// the diagonal must still be exactly zero.
	rng := rand.New(rand.NewSource(1))
	data := make([]float64, 6*3)
	for i := range data {
		data[i] = 1e8 + rng.Float64()
	}
	X := Dataset{Dense: mat.NewDense(6, 3, data)}

	for _, squared := range []bool{false, true} {
		out, err := euclideanBulk(squared)(X, X, nil)
		if err != nil {
			t.Fatalf("euclidean bulk: %v", err)
		}
		for i := 0; i < 6; i++ {
			if v := out.At(i, i); v != 0 {
				t.Errorf("squared=%v: diagonal entry %d is %g, want exactly 0", squared, i, v)
			}
		}
		// Cancellation noise must never go negative.
		out.Apply(func(_, _ int, v float64) float64 {
			if v < 0 {
				t.Errorf("negative distance %g", v)
			}
			return v
		}, out)
	}
}

func TestEuclideanBulkSparseMatchesDense(t *testing.T) {
	dense := mat.NewDense(4, 5, []float64{
		0, 1, 0, 2, 0,
		3, 0, 0, 0, 1,
		0, 0, 0, 0, 0,
		1, 1, 1, 1, 1,
	})
	X := Dataset{Dense: dense}
	Xs := Dataset{Sparse: sparse.FromDense(dense)}

	want, err := euclideanBulk(false)(X, X, nil)
	if err != nil {
		t.Fatalf("dense: %v", err)
	}
	got, err := euclideanBulk(false)(Xs, Xs, nil)
	if err != nil {
		t.Fatalf("sparse: %v", err)
	}
	if d := maxAbsDiff(want, got); d > 1e-12 {
		t.Errorf("sparse and dense disagree by %g", d)
	}

	// Mixed sparse/dense pair.
	got, err = euclideanBulk(false)(Xs, X, nil)
	if err != nil {
		t.Fatalf("mixed: %v", err)
	}
	if d := maxAbsDiff(want, got); d > 1e-12 {
		t.Errorf("mixed and dense disagree by %g", d)
	}
}

func TestManhattanBulkSparseMatchesDense(t *testing.T) {
	dense := mat.NewDense(3, 4, []float64{
		0, 1, 0, 2,
		3, 0, 0, 0,
		-1, 1, 0, 5,
	})
	X := Dataset{Dense: dense}
	Xs := Dataset{Sparse: sparse.FromDense(dense)}

	want, _ := manhattanBulk(X, X, nil)
	got, _ := manhattanBulk(Xs, Xs, nil)
	if d := maxAbsDiff(want, got); d > 1e-12 {
		t.Errorf("sparse and dense disagree by %g", d)
	}
}

func TestCosineDistanceBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	X := randomDataset(t, rng, 10, 3)

	out, err := cosineDistanceBulk(X, X, nil)
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	r, c := out.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := out.At(i, j)
			if v < 0 || v > 2 {
				t.Errorf("cosine distance %g outside [0, 2]", v)
			}
		}
		if v := out.At(i, i); v != 0 {
			t.Errorf("self diagonal is %g, want exactly 0", v)
		}
	}
}

func TestCosineZeroVector(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{0, 0, 1, 0})}
	out, err := cosineDistanceBulk(X, X, nil)
	if err != nil {
		t.Fatalf("cosine: %v", err)
	}
	if v := out.At(0, 1); v != 1 {
		t.Errorf("zero vector distance: got %g, want 1", v)
	}
}

func TestHaversineBulkRequiresTwoFeatures(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 3, nil)}
	_, err := haversineBulk(X, X, nil)
	if !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}

func TestChi2RejectsNegativeInput(t *testing.T) {
	X := Dataset{Dense: mat.NewDense(2, 2, []float64{1, -1, 0, 2})}
	_, err := chi2DistanceBulk(X, X, nil)
	if !errors.Is(err, ErrDomain) {
		t.Errorf("expected ErrDomain, got %v", err)
	}
}

func TestChi2SparseMatchesDense(t *testing.T) {
	dense := mat.NewDense(3, 3, []float64{
		1, 0, 2,
		0, 0, 1,
		3, 1, 0,
	})
	X := Dataset{Dense: dense}
	Xs := Dataset{Sparse: sparse.FromDense(dense)}

	want, err := chi2DistanceBulk(X, X, nil)
	if err != nil {
		t.Fatalf("dense: %v", err)
	}
	got, err := chi2DistanceBulk(Xs, Xs, nil)
	if err != nil {
		t.Fatalf("sparse: %v", err)
	}
	if d := maxAbsDiff(want, got); d > 1e-12 {
		t.Errorf("sparse and dense disagree by %g", d)
	}
}

func TestStrategyLookup(t *testing.T) {
	for _, name := range []string{"euclidean", "l2", "manhattan", "cityblock", "cosine", "jaccard", "minkowski", "seuclidean"} {
		if _, ok := Distance(name); !ok {
			t.Errorf("missing distance %q", name)
		}
	}
	if _, ok := Distance("does-not-exist"); ok {
		t.Error("unexpected distance strategy")
	}
	for _, name := range []string{"linear", "rbf", "polynomial", "sigmoid", "laplacian", "chi2", "additive_chi2", "cosine"} {
		if _, ok := Kernel(name); !ok {
			t.Errorf("missing kernel %q", name)
		}
	}
}
