package pairwise

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/internal/heap"
)

// ArgminMin returns, for each row of X, the index of its nearest row in Y
// under the named metric, along with that distance. It streams the distance
// matrix through the chunked engine, reducing each row block to its row-wise
// minimum, so the full matrix is never materialized; the result is identical
// to reducing the full matrix in one step.
func ArgminMin(X, Y mat.Matrix, metricName string, o Options) ([]int, []float64, error) {
	if o.Axis == 1 && Y != nil {
		X, Y = Y, X
	}
	// Euclidean ordering is preserved by the squared form; compute without
	// the sqrt and take it on the surviving minima only.
	postSqrt := false
	if o.Func == nil && (metricName == "euclidean" || metricName == "l2") {
		metricName = "sqeuclidean"
		postSqrt = true
	}

	var indices []int
	var values []float64
	reduce := func(chunk *mat.Dense, start int) (any, error) {
		r, c := chunk.Dims()
		idx := make([]int, r)
		val := make([]float64, r)
		for i := 0; i < r; i++ {
			row := chunk.RawRowView(i)
			best := 0
			bestVal := row[0]
			for j := 1; j < c; j++ {
				if row[j] < bestVal {
					best = j
					bestVal = row[j]
				}
			}
			idx[i] = best
			val[i] = bestVal
		}
		return []any{idx, val}, nil
	}

	chunks := DistancesChunked(X, Y, metricName, reduce, o)
	for chunks.Next() {
		parts := chunks.Reduced().([]any)
		indices = append(indices, parts[0].([]int)...)
		values = append(values, parts[1].([]float64)...)
	}
	if err := chunks.Err(); err != nil {
		return nil, nil, err
	}
	if postSqrt {
		for i, v := range values {
			values[i] = math.Sqrt(v)
		}
	}
	return indices, values, nil
}

// Argmin returns, for each row of X, the index of its nearest row in Y.
func Argmin(X, Y mat.Matrix, metricName string, o Options) ([]int, error) {
	indices, _, err := ArgminMin(X, Y, metricName, o)
	return indices, err
}

// TopK returns, for each row of X, the indices and distances of its k
// nearest rows in Y, ascending by distance, computed as a streaming
// reduction over the chunked engine.
func TopK(X, Y mat.Matrix, metricName string, k int, o Options) ([][]int, [][]float64, error) {
	var indices [][]int
	var values [][]float64
	reduce := func(chunk *mat.Dense, start int) (any, error) {
		r, c := chunk.Dims()
		idx := make([][]int, r)
		val := make([][]float64, r)
		kk := k
		if kk > c {
			kk = c
		}
		h := heap.New(kk)
		for i := 0; i < r; i++ {
			h.Reset()
			row := chunk.RawRowView(i)
			for j := 0; j < c; j++ {
				h.Push(j, row[j])
			}
			h.Sort()
			idx[i] = append([]int(nil), h.Indices...)
			val[i] = append([]float64(nil), h.Distances...)
		}
		return []any{idx, val}, nil
	}

	chunks := DistancesChunked(X, Y, metricName, reduce, o)
	for chunks.Next() {
		parts := chunks.Reduced().([]any)
		indices = append(indices, parts[0].([][]int)...)
		values = append(values, parts[1].([][]float64)...)
	}
	if err := chunks.Err(); err != nil {
		return nil, nil, err
	}
	return indices, values, nil
}
