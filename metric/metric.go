// Package metric provides the elementary distance and kernel strategies used
// by the pairwise engines.
package metric

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/sparse"
)

// Params holds keyword parameters for a metric strategy (gamma, degree, p,
// V, VI, ...). Strategies read only the keys they declare in ParamNames.
type Params map[string]any

// Float returns the named parameter as a float64, or def when absent.
func (p Params) Float(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch f := v.(type) {
	case float64:
		return f
	case float32:
		return float64(f)
	case int:
		return float64(f)
	}
	return def
}

// Clone returns a shallow copy of the parameters.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Dataset is a uniform handle over a dense or sparse input collection.
// Exactly one of Dense and Sparse is set.
type Dataset struct {
	Dense  *mat.Dense
	Sparse *sparse.CSR
}

// FromMatrix wraps m as a Dataset. A *sparse.CSR stays sparse, a *mat.Dense
// is used as-is, and any other mat.Matrix is densified.
func FromMatrix(m mat.Matrix) Dataset {
	switch t := m.(type) {
	case *mat.Dense:
		return Dataset{Dense: t}
	case *sparse.CSR:
		return Dataset{Sparse: t}
	default:
		return Dataset{Dense: mat.DenseCopyOf(m)}
	}
}

// IsSparse reports whether the dataset is backed by a CSR matrix.
func (d Dataset) IsSparse() bool { return d.Sparse != nil }

// Dims returns the row and column counts.
func (d Dataset) Dims() (int, int) {
	if d.Sparse != nil {
		return d.Sparse.Dims()
	}
	return d.Dense.Dims()
}

// Matrix returns the underlying mat.Matrix.
func (d Dataset) Matrix() mat.Matrix {
	if d.Sparse != nil {
		return d.Sparse
	}
	return d.Dense
}

// Slice returns rows [i, j) sharing the underlying data.
func (d Dataset) Slice(i, j int) Dataset {
	if d.Sparse != nil {
		return Dataset{Sparse: d.Sparse.SliceRows(i, j)}
	}
	_, c := d.Dense.Dims()
	return Dataset{Dense: d.Dense.Slice(i, j, 0, c).(*mat.Dense)}
}

// RowTo writes row i densely into dst, which must have the column count as
// its length, and returns dst.
func (d Dataset) RowTo(dst []float64, i int) []float64 {
	if d.Sparse != nil {
		return d.Sparse.RowTo(dst, i)
	}
	return mat.Row(dst, i, d.Dense)
}

// Same reports whether two datasets reference the same underlying object.
// Used to detect self-comparison (Y omitted) without value equality checks.
func (d Dataset) Same(o Dataset) bool {
	if d.Sparse != nil {
		return d.Sparse == o.Sparse
	}
	return d.Dense != nil && d.Dense == o.Dense
}

// PairFunc is an elementary distance between two dense vectors.
type PairFunc func(x, y []float64) float64

// Strategy is one named pairwise computation: either a whole-collection Bulk
// implementation, a per-pair function, or both (Bulk preferred).
type Strategy struct {
	Name string

	// Bulk computes the full (n1, n2) matrix for two collections.
	Bulk func(X, Y Dataset, p Params) (*mat.Dense, error)

	// Pair builds the per-pair function for the given parameters.
	Pair func(p Params) (PairFunc, error)

	// SupportsSparse reports whether CSR input is accepted.
	SupportsSparse bool

	// BooleanOnly marks metrics defined on boolean vectors; non-boolean
	// input is coerced by the adapter with a warning.
	BooleanOnly bool

	// AllowNaN marks metrics that define their own missing-value handling.
	AllowNaN bool

	// NeedsDerivedParams marks metrics whose parameters default to values
	// derived from the full combined input (variance, covariance). Those are
	// precomputed once, before any chunking or fan-out.
	NeedsDerivedParams bool

	// ZeroDiagonal marks metrics whose self-comparison diagonal is zeroed
	// explicitly to absorb floating-point cancellation noise.
	ZeroDiagonal bool

	// ParamNames lists the recognized parameter keys.
	ParamNames []string
}

// Compute returns the (n1, n2) matrix for the two collections.
func (s *Strategy) Compute(X, Y Dataset, p Params) (*mat.Dense, error) {
	if s.Bulk != nil {
		return s.Bulk(X, Y, p)
	}
	pair, err := s.Pair(p)
	if err != nil {
		return nil, err
	}
	return PairwiseDense(X, Y, pair), nil
}

// Accepts reports whether the strategy recognizes the parameter key.
func (s *Strategy) Accepts(key string) bool {
	for _, name := range s.ParamNames {
		if name == key {
			return true
		}
	}
	return false
}

// PairwiseDense computes the full matrix by applying f to every row pair.
// Rows are materialized densely, so it also serves sparse fallback paths and
// user-supplied callables.
func PairwiseDense(X, Y Dataset, f PairFunc) *mat.Dense {
	n1, d := X.Dims()
	n2, _ := Y.Dims()
	out := mat.NewDense(n1, n2, nil)
	xi := make([]float64, d)
	yj := make([]float64, d)
	for i := 0; i < n1; i++ {
		X.RowTo(xi, i)
		for j := 0; j < n2; j++ {
			Y.RowTo(yj, j)
			out.Set(i, j, f(xi, yj))
		}
	}
	return out
}

func pairOnly(f PairFunc) func(Params) (PairFunc, error) {
	return func(Params) (PairFunc, error) { return f, nil }
}

// distances maps metric identifiers to strategies. Read-only after init.
var distances = map[string]*Strategy{}

// kernels maps kernel identifiers to strategies. Read-only after init.
var kernels = map[string]*Strategy{}

func registerDistance(s *Strategy, aliases ...string) {
	distances[s.Name] = s
	for _, a := range aliases {
		distances[a] = s
	}
}

func registerKernel(s *Strategy) {
	kernels[s.Name] = s
}

func init() {
	registerDistance(&Strategy{
		Name:           "euclidean",
		Bulk:           euclideanBulk(false),
		SupportsSparse: true,
		ZeroDiagonal:   true,
	}, "l2")
	registerDistance(&Strategy{
		Name:           "sqeuclidean",
		Bulk:           euclideanBulk(true),
		SupportsSparse: true,
		ZeroDiagonal:   true,
	})
	registerDistance(&Strategy{
		Name:           "manhattan",
		Bulk:           manhattanBulk,
		SupportsSparse: true,
	}, "l1", "cityblock", "taxicab")
	registerDistance(&Strategy{
		Name:           "cosine",
		Bulk:           cosineDistanceBulk,
		SupportsSparse: true,
		ZeroDiagonal:   true,
	})
	registerDistance(&Strategy{Name: "haversine", Bulk: haversineBulk})
	registerDistance(&Strategy{
		Name:           "chi2",
		Bulk:           chi2DistanceBulk,
		SupportsSparse: true,
	})
	registerDistance(&Strategy{Name: "chebyshev", Pair: pairOnly(Chebyshev)}, "linf", "linfinity")
	registerDistance(&Strategy{
		Name:       "minkowski",
		Pair:       minkowskiPair,
		ParamNames: []string{"p"},
	})
	registerDistance(&Strategy{Name: "canberra", Pair: pairOnly(Canberra)})
	registerDistance(&Strategy{Name: "braycurtis", Pair: pairOnly(BrayCurtis)})
	registerDistance(&Strategy{Name: "correlation", Pair: pairOnly(Correlation)})
	registerDistance(&Strategy{
		Name:               "seuclidean",
		Pair:               seuclideanPair,
		NeedsDerivedParams: true,
		ParamNames:         []string{"V"},
	})
	registerDistance(&Strategy{
		Name:               "mahalanobis",
		Pair:               mahalanobisPair,
		NeedsDerivedParams: true,
		ParamNames:         []string{"VI"},
	})
	registerDistance(&Strategy{
		Name:     "nan_euclidean",
		Pair:     pairOnly(NaNEuclidean),
		AllowNaN: true,
	})
	registerDistance(&Strategy{Name: "hamming", Pair: pairOnly(Hamming)})
	for name, f := range booleanPairs {
		registerDistance(&Strategy{Name: name, Pair: pairOnly(f), BooleanOnly: true})
	}

	registerKernel(&Strategy{
		Name:           "linear",
		Bulk:           linearKernelBulk,
		SupportsSparse: true,
	})
	registerKernel(&Strategy{
		Name:           "polynomial",
		Bulk:           polynomialKernelBulk,
		SupportsSparse: true,
		ParamNames:     []string{"gamma", "degree", "coef0"},
	})
	registerKernel(&Strategy{
		Name:           "sigmoid",
		Bulk:           sigmoidKernelBulk,
		SupportsSparse: true,
		ParamNames:     []string{"gamma", "coef0"},
	})
	registerKernel(&Strategy{
		Name:           "rbf",
		Bulk:           rbfKernelBulk,
		SupportsSparse: true,
		ParamNames:     []string{"gamma"},
	})
	registerKernel(&Strategy{
		Name:           "laplacian",
		Bulk:           laplacianKernelBulk,
		SupportsSparse: true,
		ParamNames:     []string{"gamma"},
	})
	registerKernel(&Strategy{
		Name:           "additive_chi2",
		Bulk:           additiveChi2KernelBulk,
		SupportsSparse: true,
	})
	registerKernel(&Strategy{
		Name:           "chi2",
		Bulk:           chi2KernelBulk,
		SupportsSparse: true,
		ParamNames:     []string{"gamma"},
	})
	registerKernel(&Strategy{
		Name:           "cosine",
		Bulk:           cosineSimilarityBulk,
		SupportsSparse: true,
	})
}

// Distance returns the strategy for a distance metric name.
func Distance(name string) (*Strategy, bool) {
	s, ok := distances[name]
	return s, ok
}

// Kernel returns the strategy for a kernel name.
func Kernel(name string) (*Strategy, bool) {
	s, ok := kernels[name]
	return s, ok
}

// DistanceNames returns the sorted distance metric identifiers.
func DistanceNames() []string {
	return sortedKeys(distances)
}

// KernelNames returns the sorted kernel identifiers.
func KernelNames() []string {
	return sortedKeys(kernels)
}

func sortedKeys(m map[string]*Strategy) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Custom wraps a user-supplied pair function as a strategy. The function is
// not assumed to be a true metric: no symmetry or diagonal shortcuts apply.
func Custom(f PairFunc) *Strategy {
	return &Strategy{Name: "custom", Pair: pairOnly(f), AllowNaN: true}
}

func paramError(metric, key string, want string) error {
	return fmt.Errorf("%w: metric %s: parameter %q must be %s", ErrDomain, metric, key, want)
}
