package metric

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Euclidean computes the standard Euclidean (L2) distance.
// D(x, y) = sqrt(sum((x_i - y_i)^2))
func Euclidean(x, y []float64) float64 {
	return math.Sqrt(SquaredEuclidean(x, y))
}

// SquaredEuclidean computes the squared Euclidean distance (no sqrt).
// D(x, y) = sum((x_i - y_i)^2)
func SquaredEuclidean(x, y []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d
	}
	return sum
}

// Manhattan computes the Manhattan (L1/city-block) distance.
// D(x, y) = sum(|x_i - y_i|)
func Manhattan(x, y []float64) float64 {
	var sum float64
	for i := range x {
		sum += math.Abs(x[i] - y[i])
	}
	return sum
}

// Chebyshev computes the Chebyshev (L-infinity) distance.
// D(x, y) = max(|x_i - y_i|)
func Chebyshev(x, y []float64) float64 {
	var maxVal float64
	for i := range x {
		if d := math.Abs(x[i] - y[i]); d > maxVal {
			maxVal = d
		}
	}
	return maxVal
}

// Minkowski computes the Minkowski distance with the given p.
// D(x, y) = (sum(|x_i - y_i|^p))^(1/p)
func Minkowski(x, y []float64, p float64) float64 {
	var sum float64
	for i := range x {
		sum += math.Pow(math.Abs(x[i]-y[i]), p)
	}
	return math.Pow(sum, 1/p)
}

func minkowskiPair(p Params) (PairFunc, error) {
	pw := p.Float("p", 2)
	if pw <= 0 {
		return nil, paramError("minkowski", "p", "a positive number")
	}
	return func(x, y []float64) float64 { return Minkowski(x, y, pw) }, nil
}

// Cosine computes the cosine distance, clipped to [0, 2].
// D(x, y) = 1 - (x . y) / (||x|| * ||y||)
func Cosine(x, y []float64) float64 {
	var dot, normX, normY float64
	for i := range x {
		dot += x[i] * y[i]
		normX += x[i] * x[i]
		normY += y[i] * y[i]
	}
	if normX == 0 || normY == 0 {
		return 1
	}
	return clipCosineDistance(1 - dot/(math.Sqrt(normX)*math.Sqrt(normY)))
}

func clipCosineDistance(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 2 {
		return 2
	}
	return d
}

// Correlation computes the correlation distance, the cosine distance of the
// mean-centered vectors.
func Correlation(x, y []float64) float64 {
	n := float64(len(x))
	if n == 0 {
		return 0
	}
	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var dot, normX, normY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		dot += dx * dy
		normX += dx * dx
		normY += dy * dy
	}
	if normX == 0 || normY == 0 {
		return 1
	}
	return clipCosineDistance(1 - dot/(math.Sqrt(normX)*math.Sqrt(normY)))
}

// Canberra computes the Canberra distance.
// D(x, y) = sum(|x_i - y_i| / (|x_i| + |y_i|))
func Canberra(x, y []float64) float64 {
	var sum float64
	for i := range x {
		denom := math.Abs(x[i]) + math.Abs(y[i])
		if denom > 0 {
			sum += math.Abs(x[i]-y[i]) / denom
		}
	}
	return sum
}

// BrayCurtis computes the Bray-Curtis distance.
// D(x, y) = sum(|x_i - y_i|) / sum(|x_i + y_i|)
func BrayCurtis(x, y []float64) float64 {
	var num, denom float64
	for i := range x {
		num += math.Abs(x[i] - y[i])
		denom += math.Abs(x[i] + y[i])
	}
	if denom == 0 {
		return 0
	}
	return num / denom
}

// Haversine computes the great-circle distance between two (lat, lon) points
// given in radians.
func Haversine(x, y []float64) float64 {
	sinLat := math.Sin((x[0] - y[0]) / 2)
	sinLon := math.Sin((x[1] - y[1]) / 2)
	a := sinLat*sinLat + math.Cos(x[0])*math.Cos(y[0])*sinLon*sinLon
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return 2 * math.Asin(math.Sqrt(a))
}

// Chi2 computes the chi-squared distance for non-negative vectors.
// D(x, y) = sum((x_i - y_i)^2 / (x_i + y_i)), with 0/0 terms contributing 0.
func Chi2(x, y []float64) float64 {
	var sum float64
	for i := range x {
		denom := x[i] + y[i]
		if denom > 0 {
			d := x[i] - y[i]
			sum += d * d / denom
		}
	}
	return sum
}

// Hamming computes the proportion of disagreeing components.
func Hamming(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var count int
	for i := range x {
		if x[i] != y[i] {
			count++
		}
	}
	return float64(count) / float64(len(x))
}

// NaNEuclidean computes the Euclidean distance ignoring coordinates where
// either value is NaN. The sum over present coordinates is rescaled by
// d/present so magnitudes stay comparable across pairs. A pair with no
// present coordinate is NaN.
func NaNEuclidean(x, y []float64) float64 {
	var sum float64
	present := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		d := x[i] - y[i]
		sum += d * d
		present++
	}
	if present == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum * float64(len(x)) / float64(present))
}

// SEuclidean computes the variance-standardized Euclidean distance.
// D(x, y) = sqrt(sum((x_i - y_i)^2 / V_i))
func SEuclidean(x, y, v []float64) float64 {
	var sum float64
	for i := range x {
		d := x[i] - y[i]
		sum += d * d / v[i]
	}
	return math.Sqrt(sum)
}

func seuclideanPair(p Params) (PairFunc, error) {
	v, ok := p["V"].([]float64)
	if !ok || len(v) == 0 {
		return nil, paramError("seuclidean", "V", "a per-feature variance slice")
	}
	return func(x, y []float64) float64 { return SEuclidean(x, y, v) }, nil
}

// Mahalanobis computes the Mahalanobis distance for the inverse covariance
// matrix vi.
// D(x, y) = sqrt((x - y)^T VI (x - y))
func Mahalanobis(x, y []float64, vi *mat.Dense) float64 {
	d := len(x)
	diff := make([]float64, d)
	for i := range x {
		diff[i] = x[i] - y[i]
	}
	var sum float64
	for i := 0; i < d; i++ {
		var row float64
		for j := 0; j < d; j++ {
			row += vi.At(i, j) * diff[j]
		}
		sum += row * diff[i]
	}
	return math.Sqrt(sum)
}

func mahalanobisPair(p Params) (PairFunc, error) {
	vi, ok := p["VI"].(*mat.Dense)
	if !ok {
		return nil, paramError("mahalanobis", "VI", "an inverse covariance *mat.Dense")
	}
	return func(x, y []float64) float64 { return Mahalanobis(x, y, vi) }, nil
}
