package tsmap

import (
	"math"

	"github.com/skywatch-data/significance.report/internal/fitstat"
)

// FluxEstimator fits the single flux normalization of a CutoutDataset by
// root-finding on the derivative of the Cash statistic, following the
// approach of Stewart (2009, Appendix A). Confidence bounds and upper limits
// come from a secondary root search on the likelihood profile.
//
// A FluxEstimator holds configuration only and may be shared by any number
// of concurrent fits.
type FluxEstimator struct {
	RTol     float64
	MaxIter  int
	NSigma   float64
	NSigmaUL float64

	Selection Selection

	// Threshold enables the TS pre-screen: when the TS at the seed flux
	// stays below this value the full fit is skipped and an all-NaN result
	// returned. Disabled when HasThreshold is false.
	Threshold    float64
	HasThreshold bool

	// FluxRef converts between the dimensionless norm and physical flux.
	FluxRef float64
}

// NewFluxEstimator returns an estimator with the standard defaults: one
// sigma symmetric errors, two sigma upper limits, 20 iterations.
func NewFluxEstimator(rtol float64, selection Selection) *FluxEstimator {
	return &FluxEstimator{
		RTol:      rtol,
		MaxIter:   20,
		NSigma:    1,
		NSigmaUL:  2,
		Selection: selection,
		FluxRef:   1e-12,
	}
}

// EstimateBestFit finds the best-fit normalization.
//
// A cutout with zero total counts is degenerate: nothing constrains the norm
// from above, so the non-negativity floor is assigned analytically and no
// root-finding is spent. Otherwise the derivative root is bracketed by the
// analytic bounds and polished by Brent's method; the result is clamped to
// the floor. Non-convergence marks the pixel with a NaN norm and the full
// iteration budget, and the scan continues.
func (e *FluxEstimator) EstimateBestFit(d *CutoutDataset) FitResult {
	normMin, normMax, normMinTotal := d.Bounds()

	var norm float64
	var niter int
	if !(d.CountsSum() > 0) {
		norm, niter = normMinTotal, 0
	} else {
		root, n, err := fitstat.Brent(d.StatDerivative, normMin, normMax, e.RTol, e.MaxIter)
		if err != nil {
			// Bracket failure or exhausted budget is a recoverable per-pixel
			// condition, recorded as NaN.
			norm, niter = math.NaN(), e.MaxIter
		} else {
			norm, niter = math.Max(root, normMinTotal), n
		}
	}

	stat := d.Stat(norm)
	statNull := d.Stat(0)

	return FitResult{
		Norm:      norm,
		NormErr:   math.Sqrt(1/d.StatCurvature(norm)) * e.NSigma,
		TS:        (statNull - stat) * sign(norm),
		Stat:      stat,
		NIter:     niter,
		NormErrn:  math.NaN(),
		NormErrp:  math.NaN(),
		NormUL:    math.NaN(),
		Selection: e.Selection,
	}
}

// confidence finds the normalization offset at which the statistic rises by
// nSigma^2 above the best fit, searching upward from the best-fit norm when
// positive, downward otherwise. Returns the signed offset, or NaN when no
// crossing is found within 100 symmetric errors.
func (e *FluxEstimator) confidence(d *CutoutDataset, best FitResult, nSigma float64, positive bool) float64 {
	target := best.Stat + nSigma*nSigma
	diff := func(x float64) float64 { return target - d.Stat(x) }

	var lo, hi float64
	if positive {
		lo, hi = best.Norm, best.Norm+1e2*best.NormErr
	} else {
		lo, hi = best.Norm-1e2*best.NormErr, best.Norm
	}

	root, _, err := fitstat.Brent(diff, lo, hi, e.RTol, e.MaxIter)
	if err != nil {
		return math.NaN()
	}
	return root - best.Norm
}

// EstimateUL computes the one-sided upper limit offset at NSigmaUL and
// stores the absolute limit on the result.
func (e *FluxEstimator) EstimateUL(d *CutoutDataset, r *FitResult) {
	offset := e.confidence(d, *r, e.NSigmaUL, true)
	r.NormUL = r.Norm + offset
}

// EstimateErrnErrp computes asymmetric errors from the likelihood profile in
// both directions at NSigma.
func (e *FluxEstimator) EstimateErrnErrp(d *CutoutDataset, r *FitResult) {
	r.NormErrn = e.confidence(d, *r, e.NSigma, false)
	r.NormErrp = e.confidence(d, *r, e.NSigma, true)
}

// Run performs the full per-pixel estimate: optional TS pre-screen, best
// fit, then the selected profile searches.
func (e *FluxEstimator) Run(d *CutoutDataset) FitResult {
	if e.HasThreshold {
		// Cheap screen: TS at the externally supplied seed. Faint candidates
		// are dropped without spending the optimizer on them.
		norm := d.NormGuess
		ts := (d.Stat(0) - d.Stat(norm)) * sign(norm)
		if ts < e.Threshold {
			return nanResult(e.Selection)
		}
	}

	result := e.EstimateBestFit(d)

	if e.Selection.Has(SelectUL) {
		e.EstimateUL(d, &result)
	}
	if e.Selection.Has(SelectErrnErrp) {
		e.EstimateErrnErrp(d, &result)
	}
	return result
}

// sign returns -1, 0 or +1 with the sign of x. NaN propagates.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x * 0 // preserves NaN, maps +-0 to 0
	}
}
