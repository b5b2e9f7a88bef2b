// Package sparse provides a compressed sparse row matrix used as the sparse
// input representation for pairwise computations.
package sparse

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// CSR represents a sparse matrix in CSR format.
// Absent entries are zero. Column indices within a row are ascending.
type CSR struct {
	Indptr  []int32   // Row pointers, len NRows+1
	Indices []int32   // Column indices
	Data    []float64 // Values
	NRows   int
	NCols   int
}

// New creates a CSR matrix from raw CSR arrays.
func New(indptr, indices []int32, data []float64, nRows, nCols int) (*CSR, error) {
	if len(indptr) != nRows+1 {
		return nil, fmt.Errorf("sparse: indptr length %d, want %d", len(indptr), nRows+1)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("sparse: indices length %d != data length %d", len(indices), len(data))
	}
	return &CSR{Indptr: indptr, Indices: indices, Data: data, NRows: nRows, NCols: nCols}, nil
}

// FromDense converts a dense matrix to CSR, dropping exact zeros.
func FromDense(m mat.Matrix) *CSR {
	r, c := m.Dims()
	indptr := make([]int32, r+1)
	var indices []int32
	var data []float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); v != 0 {
				indices = append(indices, int32(j))
				data = append(data, v)
			}
		}
		indptr[i+1] = int32(len(data))
	}
	return &CSR{Indptr: indptr, Indices: indices, Data: data, NRows: r, NCols: c}
}

// Dims returns the matrix dimensions. Part of mat.Matrix.
func (c *CSR) Dims() (int, int) { return c.NRows, c.NCols }

// At returns the value at (i, j). Part of mat.Matrix.
func (c *CSR) At(i, j int) float64 {
	for k := c.Indptr[i]; k < c.Indptr[i+1]; k++ {
		if int(c.Indices[k]) == j {
			return c.Data[k]
		}
		if int(c.Indices[k]) > j {
			break
		}
	}
	return 0
}

// T returns the transpose. Part of mat.Matrix.
func (c *CSR) T() mat.Matrix { return mat.Transpose{Matrix: c} }

// NNZ returns the number of stored entries.
func (c *CSR) NNZ() int { return len(c.Data) }

// SliceRows returns rows [i, j) as a CSR sharing the backing arrays.
func (c *CSR) SliceRows(i, j int) *CSR {
	lo, hi := c.Indptr[i], c.Indptr[j]
	indptr := make([]int32, j-i+1)
	for k := range indptr {
		indptr[k] = c.Indptr[i+k] - lo
	}
	return &CSR{
		Indptr:  indptr,
		Indices: c.Indices[lo:hi],
		Data:    c.Data[lo:hi],
		NRows:   j - i,
		NCols:   c.NCols,
	}
}

// Row returns the column indices and values of row i, sharing backing arrays.
func (c *CSR) Row(i int) ([]int32, []float64) {
	lo, hi := c.Indptr[i], c.Indptr[i+1]
	return c.Indices[lo:hi], c.Data[lo:hi]
}

// RowTo writes row i densely into dst, which must have length NCols.
func (c *CSR) RowTo(dst []float64, i int) []float64 {
	for k := range dst {
		dst[k] = 0
	}
	ind, val := c.Row(i)
	for k, j := range ind {
		dst[j] = val[k]
	}
	return dst
}

// Dot returns the dot product of row i of a and row j of b.
func Dot(a *CSR, i int, b *CSR, j int) float64 {
	ai, av := a.Row(i)
	bi, bv := b.Row(j)
	var sum float64
	p, q := 0, 0
	for p < len(ai) && q < len(bi) {
		switch {
		case ai[p] == bi[q]:
			sum += av[p] * bv[q]
			p++
			q++
		case ai[p] < bi[q]:
			p++
		default:
			q++
		}
	}
	return sum
}

// RowSumSq returns the squared L2 norm of row i.
func (c *CSR) RowSumSq(i int) float64 {
	_, val := c.Row(i)
	var sum float64
	for _, v := range val {
		sum += v * v
	}
	return sum
}

// Merge calls fn for every column where row i of a or row j of b has a
// stored entry, with the values of both (zero where absent).
func Merge(a *CSR, i int, b *CSR, j int, fn func(x, y float64)) {
	ai, av := a.Row(i)
	bi, bv := b.Row(j)
	p, q := 0, 0
	for p < len(ai) && q < len(bi) {
		switch {
		case ai[p] == bi[q]:
			fn(av[p], bv[q])
			p++
			q++
		case ai[p] < bi[q]:
			fn(av[p], 0)
			p++
		default:
			fn(0, bv[q])
			q++
		}
	}
	for ; p < len(ai); p++ {
		fn(av[p], 0)
	}
	for ; q < len(bi); q++ {
		fn(0, bv[q])
	}
}

// Min returns the smallest stored or implicit value in the matrix.
// An empty or partially filled matrix includes the implicit zeros.
func (c *CSR) Min() float64 {
	var min float64 // implicit zeros unless every entry is stored
	full := c.NNZ() == c.NRows*c.NCols
	if full && len(c.Data) > 0 {
		min = c.Data[0]
	}
	for _, v := range c.Data {
		if v < min {
			min = v
		}
	}
	return min
}
