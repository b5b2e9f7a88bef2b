package pairwise

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// collectChunks drains the iterator and stitches the blocks back together.
func collectChunks(t *testing.T, c *Chunks) *mat.Dense {
	t.Helper()
	var out *mat.Dense
	for c.Next() {
		block := c.Chunk()
		require.NotNil(t, block)
		r, cols := block.Dims()
		or := 0
		if out != nil {
			or, _ = out.Dims()
		}
		require.Equal(t, or, c.Start(), "blocks must arrive in row order")
		grown := mat.NewDense(or+r, cols, nil)
		if or > 0 {
			grown.Slice(0, or, 0, cols).(*mat.Dense).Copy(out)
		}
		grown.Slice(or, or+r, 0, cols).(*mat.Dense).Copy(block)
		out = grown
	}
	require.NoError(t, c.Err())
	return out
}

func TestChunkedMatchesUnchunked(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	X := randomDense(rng, 23, 4)
	Y := randomDense(rng, 7, 4)

	for _, name := range []string{"euclidean", "manhattan", "seuclidean"} {
		want, err := Distances(X, Y, name, Options{})
		require.NoError(t, err, name)

		// Budgets from far below one row to far above the whole matrix.
		for _, budget := range []float64{1.0 / (1 << 16), 0.1, 10000} {
			c := DistancesChunked(X, Y, name, nil, Options{WorkingMemoryMiB: budget})
			got := collectChunks(t, c)
			assertDenseEqual(t, want, got, 0)
		}
	}
}

func TestChunkedSelfComparison(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	X := randomDense(rng, 12, 3)

	want, err := Distances(X, nil, "euclidean", Options{})
	require.NoError(t, err)
	c := DistancesChunked(X, nil, "euclidean", nil, Options{WorkingMemoryMiB: 1.0 / (1 << 12)})
	got := collectChunks(t, c)
	assertDenseEqual(t, want, got, 0)
	for i := 0; i < 12; i++ {
		assert.Zero(t, got.At(i, i))
	}
}

func TestChunkSizeRespectsBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(12))
	X := randomDense(rng, 40, 3)
	Y := randomDense(rng, 10, 3)

	budgetMiB := 0.001
	budgetBytes := budgetMiB * (1 << 20)
	rowBytes := 8.0 * 10

	c := DistancesChunked(X, Y, "euclidean", nil, Options{WorkingMemoryMiB: budgetMiB})
	blocks := 0
	for c.Next() {
		r, cols := c.Chunk().Dims()
		assert.Equal(t, 10, cols)
		blockBytes := float64(8 * r * cols)
		assert.LessOrEqual(t, blockBytes, math.Max(budgetBytes, rowBytes))
		blocks++
	}
	require.NoError(t, c.Err())
	assert.Greater(t, blocks, 1)
}

func TestSubRowBudgetFallsBackToOneRow(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	X := randomDense(rng, 5, 3)
	Y := randomDense(rng, 100, 3)

	// 100 columns need 800 bytes per row; the budget covers 16.
	c := DistancesChunked(X, Y, "euclidean", nil, Options{WorkingMemoryMiB: 16.0 / (1 << 20)})
	blocks := 0
	for c.Next() {
		r, _ := c.Chunk().Dims()
		assert.Equal(t, 1, r)
		blocks++
	}
	require.NoError(t, c.Err())
	assert.Equal(t, 5, blocks)
}

func TestChunkedReduction(t *testing.T) {
	rng := rand.New(rand.NewSource(14))
	X := randomDense(rng, 9, 3)
	Y := randomDense(rng, 4, 3)

	full, err := Distances(X, Y, "manhattan", Options{})
	require.NoError(t, err)

	rowSums := func(chunk *mat.Dense, start int) (any, error) {
		r, c := chunk.Dims()
		out := make([]float64, r)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out[i] += chunk.At(i, j)
			}
		}
		return out, nil
	}

	var got []float64
	c := DistancesChunked(X, Y, "manhattan", rowSums, Options{WorkingMemoryMiB: 1.0 / (1 << 14)})
	for c.Next() {
		assert.Nil(t, c.Chunk())
		got = append(got, c.Reduced().([]float64)...)
	}
	require.NoError(t, c.Err())
	require.Len(t, got, 9)
	for i := 0; i < 9; i++ {
		want := 0.0
		for j := 0; j < 4; j++ {
			want += full.At(i, j)
		}
		assert.InDelta(t, want, got[i], 1e-12)
	}
}

func TestReductionContractViolations(t *testing.T) {
	rng := rand.New(rand.NewSource(15))
	X := randomDense(rng, 8, 3)

	drain := func(c *Chunks) error {
		for c.Next() {
		}
		return c.Err()
	}

	wrongLen := func(chunk *mat.Dense, start int) (any, error) {
		r, _ := chunk.Dims()
		return make([]float64, r+1), nil
	}
	err := drain(DistancesChunked(X, nil, "euclidean", wrongLen, Options{}))
	assert.ErrorIs(t, err, ErrReduction)

	notSeq := func(chunk *mat.Dense, start int) (any, error) {
		return 42.0, nil
	}
	err = drain(DistancesChunked(X, nil, "euclidean", notSeq, Options{}))
	assert.ErrorIs(t, err, ErrReduction)

	nilResult := func(chunk *mat.Dense, start int) (any, error) {
		return nil, nil
	}
	err = drain(DistancesChunked(X, nil, "euclidean", nilResult, Options{}))
	assert.ErrorIs(t, err, ErrReduction)

	// Tuples are validated element by element.
	badTuple := func(chunk *mat.Dense, start int) (any, error) {
		r, _ := chunk.Dims()
		return []any{make([]int, r), make([]float64, r-1)}, nil
	}
	err = drain(DistancesChunked(X, nil, "euclidean", badTuple, Options{}))
	assert.ErrorIs(t, err, ErrReduction)

	goodTuple := func(chunk *mat.Dense, start int) (any, error) {
		r, _ := chunk.Dims()
		return []any{make([]int, r), make([]float64, r)}, nil
	}
	err = drain(DistancesChunked(X, nil, "euclidean", goodTuple, Options{}))
	assert.NoError(t, err)
}

func TestChunkedUnknownMetricSurfacesLazily(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	c := DistancesChunked(X, nil, "does-not-exist", nil, Options{})
	assert.False(t, c.Next())
	assert.ErrorIs(t, c.Err(), ErrUnknownMetric)
}

func TestChunkedIteratorIsSinglePass(t *testing.T) {
	rng := rand.New(rand.NewSource(16))
	X := randomDense(rng, 6, 2)

	c := DistancesChunked(X, nil, "euclidean", nil, Options{})
	seen := 0
	for c.Next() {
		seen++
	}
	require.NoError(t, c.Err())
	assert.Greater(t, seen, 0)

	assert.False(t, c.Next())
	assert.Nil(t, c.Chunk())
}

func TestChunkedPrecomputed(t *testing.T) {
	D := mat.NewDense(3, 3, []float64{0, 1, 2, 1, 0, 3, 2, 3, 0})

	c := DistancesChunked(D, nil, MetricPrecomputed, nil, Options{WorkingMemoryMiB: 1.0 / (1 << 20)})
	require.True(t, c.Next())
	assert.Same(t, D, c.Chunk())
	assert.False(t, c.Next())
	require.NoError(t, c.Err())
}

func TestChunkedGower(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	X := randomDense(rng, 15, 3)

	want, err := Distances(X, nil, MetricGower, Options{})
	require.NoError(t, err)
	c := DistancesChunked(X, nil, MetricGower, nil, Options{WorkingMemoryMiB: 1.0 / (1 << 14)})
	got := collectChunks(t, c)
	assertDenseEqual(t, want, got, 1e-15)
}
