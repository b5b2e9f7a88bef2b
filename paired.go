package pairwise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise/metric"
)

// pairedFuncs covers metrics whose registry strategy only has a bulk
// implementation.
var pairedFuncs = map[string]metric.PairFunc{
	"euclidean":   metric.Euclidean,
	"l2":          metric.Euclidean,
	"sqeuclidean": metric.SquaredEuclidean,
	"manhattan":   metric.Manhattan,
	"l1":          metric.Manhattan,
	"cityblock":   metric.Manhattan,
	"taxicab":     metric.Manhattan,
	"cosine":      metric.Cosine,
	"haversine":   metric.Haversine,
	"chi2":        metric.Chi2,
}

// PairedDistances computes one distance per aligned row pair: out[i] is the
// distance between row i of X and row i of Y. Both collections must have
// the same shape. Every pair is computed explicitly, so o.Func need not be
// a true metric.
func PairedDistances(X, Y mat.Matrix, metricName string, o Options) ([]float64, error) {
	if X == nil || Y == nil {
		return nil, fmt.Errorf("%w: paired distances require both collections", ErrShape)
	}
	n1, _ := X.Dims()
	n2, _ := Y.Dims()
	if n1 != n2 {
		return nil, fmt.Errorf("%w: paired distances require equal row counts, got %d and %d", ErrShape, n1, n2)
	}

	f, s, err := resolvePairFunc(metricName, o)
	if err != nil {
		return nil, err
	}
	dsX, dsY, err := checkPairwiseInput(X, Y, s, o.logger())
	if err != nil {
		return nil, err
	}
	_, d := dsX.Dims()
	if s.Name == "haversine" && d != 2 {
		return nil, fmt.Errorf("%w: haversine requires exactly 2 features (lat, lon in radians), got %d", ErrDomain, d)
	}

	out := make([]float64, n1)
	xi := make([]float64, d)
	yi := make([]float64, d)
	for i := 0; i < n1; i++ {
		dsX.RowTo(xi, i)
		dsY.RowTo(yi, i)
		out[i] = f(xi, yi)
	}
	return out, nil
}

func resolvePairFunc(metricName string, o Options) (metric.PairFunc, *metric.Strategy, error) {
	if o.Func != nil {
		s := metric.Custom(o.Func)
		return o.Func, s, nil
	}
	s, ok := metric.Distance(metricName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q; known metrics: %v", ErrUnknownMetric, metricName, metric.DistanceNames())
	}
	if s.Pair != nil {
		f, err := s.Pair(o.Params)
		if err != nil {
			return nil, nil, err
		}
		return f, s, nil
	}
	if f, ok := pairedFuncs[metricName]; ok {
		return f, s, nil
	}
	return nil, nil, fmt.Errorf("%w: metric %s has no per-pair form", ErrUnsupportedInput, s.Name)
}
