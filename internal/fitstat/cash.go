// Package fitstat implements the Poisson fit-statistic kernels and the
// bounded root finder the TS-map engine is built on: the Cash statistic, its
// analytic first and second derivatives with respect to a single flux
// normalization, the analytic search bounds for that normalization, and a
// Brent-style derivative root finder.
package fitstat

import "math"

// truncation guards the logarithm for bins whose predicted counts reach
// zero; predictions below this value are clamped before taking the log.
const truncation = 1e-25

// CashSum returns the Cash statistic summed over bins:
// 2 * sum(npred - counts*ln(npred)). This is twice the negative Poisson
// log-likelihood up to a counts-only constant.
func CashSum(counts, npred []float64) float64 {
	sum := 0.0
	for i, pred := range npred {
		if pred < truncation {
			pred = truncation
		}
		sum += pred - counts[i]*math.Log(pred)
	}
	return 2 * sum
}

// CashDerivative returns the derivative of the Cash sum with respect to the
// normalization x, where npred = background + x*model:
// 2 * sum_over(model>0) model * (1 - counts/npred). Bins with zero counts
// contribute their model amplitude alone.
func CashDerivative(x float64, counts, background, model []float64) float64 {
	sum := 0.0
	for i, m := range model {
		if m <= 0 {
			continue
		}
		if counts[i] > 0 {
			sum += m * (1 - counts[i]/(background[i]+x*m))
		} else {
			sum += m
		}
	}
	return 2 * sum
}

// CashCurvature returns the second derivative of the Cash sum with respect
// to the normalization: sum(model^2 * counts / npred^2). Bins whose
// prediction reaches zero are skipped to avoid division blow-ups, matching
// the convention of the derivative.
func CashCurvature(x float64, counts, background, model []float64) float64 {
	sum := 0.0
	for i, m := range model {
		pred := background[i] + x*m
		if pred <= 0 {
			continue
		}
		sum += m * m * counts[i] / (pred * pred)
	}
	return sum
}

// NormBounds derives the search bracket for the root of CashDerivative and
// the floor normalization keeping every predicted count non-negative.
//
// Over bins with model > 0, with sn = background/model:
//
//	normMin      = cMin/sModel - snMin
//	normMax      = sCounts/sModel - snMin
//	normMinTotal = -min(snMin, snMinZero)
//
// where snMin and cMin track the minimum sn and its counts over bins with
// counts > 0, snMinZero the minimum sn over zero-count bins, and sModel,
// sCounts the sums of model and counts. A normalization below normMinTotal
// would force a negative prediction in some bin.
func NormBounds(counts, background, model []float64) (normMin, normMax, normMinTotal float64) {
	var (
		sModel, sCounts float64
		snMin           = 1e14
		cMin            = 1.0
		snMinZero       = 1e14
	)
	for i, m := range model {
		if m <= 0 {
			continue
		}
		sModel += m
		sCounts += counts[i]
		sn := background[i] / m
		if counts[i] > 0 {
			if sn < snMin {
				snMin = sn
				cMin = counts[i]
			}
		} else if sn < snMinZero {
			snMinZero = sn
		}
	}
	if sModel == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	normMin = cMin/sModel - snMin
	normMax = sCounts/sModel - snMin
	normMinTotal = -math.Min(snMin, snMinZero)
	return normMin, normMax, normMinTotal
}
