package metric

// Boolean dissimilarity metrics. These treat non-zero values as true and
// zero as false; the adapter coerces non-boolean input with a warning before
// any of them run.

// countBinary counts true-true, true-false, false-true, false-false pairs.
func countBinary(x, y []float64) (ntt, ntf, nft, nff int) {
	for i := range x {
		xTrue := x[i] != 0
		yTrue := y[i] != 0
		switch {
		case xTrue && yTrue:
			ntt++
		case xTrue && !yTrue:
			ntf++
		case !xTrue && yTrue:
			nft++
		default:
			nff++
		}
	}
	return
}

// Jaccard computes the Jaccard distance.
// D(x, y) = (ntf + nft) / (ntt + ntf + nft)
func Jaccard(x, y []float64) float64 {
	ntt, ntf, nft, _ := countBinary(x, y)
	denom := ntt + ntf + nft
	if denom == 0 {
		return 0
	}
	return float64(ntf+nft) / float64(denom)
}

// Dice computes the Sørensen-Dice distance.
// D(x, y) = (ntf + nft) / (2*ntt + ntf + nft)
func Dice(x, y []float64) float64 {
	ntt, ntf, nft, _ := countBinary(x, y)
	denom := 2*ntt + ntf + nft
	if denom == 0 {
		return 0
	}
	return float64(ntf+nft) / float64(denom)
}

// Matching computes the matching distance (Hamming over booleans).
func Matching(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, ntf, nft, _ := countBinary(x, y)
	return float64(ntf+nft) / float64(len(x))
}

// Kulsinski computes the Kulsinski distance.
// D(x, y) = (ntf + nft - ntt + n) / (ntf + nft + n)
func Kulsinski(x, y []float64) float64 {
	ntt, ntf, nft, nff := countBinary(x, y)
	n := ntt + ntf + nft + nff
	denom := ntf + nft + n
	if denom == 0 {
		return 0
	}
	return float64(ntf+nft-ntt+n) / float64(denom)
}

// RogersTanimoto computes the Rogers-Tanimoto distance.
// D(x, y) = 2*(ntf + nft) / (n + ntf + nft)
func RogersTanimoto(x, y []float64) float64 {
	ntt, ntf, nft, nff := countBinary(x, y)
	n := ntt + ntf + nft + nff
	denom := n + ntf + nft
	if denom == 0 {
		return 0
	}
	return float64(2*(ntf+nft)) / float64(denom)
}

// RussellRao computes the Russell-Rao distance.
// D(x, y) = (n - ntt) / n
func RussellRao(x, y []float64) float64 {
	ntt, ntf, nft, nff := countBinary(x, y)
	n := ntt + ntf + nft + nff
	if n == 0 {
		return 0
	}
	return float64(n-ntt) / float64(n)
}

// SokalMichener computes the Sokal-Michener distance (same form as
// Rogers-Tanimoto).
func SokalMichener(x, y []float64) float64 {
	return RogersTanimoto(x, y)
}

// SokalSneath computes the Sokal-Sneath distance.
// D(x, y) = 2*(ntf + nft) / (ntt + 2*(ntf + nft))
func SokalSneath(x, y []float64) float64 {
	ntt, ntf, nft, _ := countBinary(x, y)
	denom := ntt + 2*(ntf+nft)
	if denom == 0 {
		return 0
	}
	return float64(2*(ntf+nft)) / float64(denom)
}

// Yule computes the Yule distance.
// D(x, y) = 2*ntf*nft / (ntt*nff + ntf*nft)
func Yule(x, y []float64) float64 {
	ntt, ntf, nft, nff := countBinary(x, y)
	denom := ntt*nff + ntf*nft
	if denom == 0 {
		return 0
	}
	return float64(2*ntf*nft) / float64(denom)
}

var booleanPairs = map[string]PairFunc{
	"jaccard":        Jaccard,
	"dice":           Dice,
	"matching":       Matching,
	"kulsinski":      Kulsinski,
	"rogerstanimoto": RogersTanimoto,
	"russellrao":     RussellRao,
	"sokalmichener":  SokalMichener,
	"sokalsneath":    SokalSneath,
	"yule":           Yule,
}
