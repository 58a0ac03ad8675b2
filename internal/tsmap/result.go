package tsmap

import "math"

// Selection is the set of optional outputs an estimator computes beyond the
// best fit, symmetric error and TS.
type Selection uint8

const (
	// SelectErrnErrp requests asymmetric errors from the likelihood profile.
	SelectErrnErrp Selection = 1 << iota
	// SelectUL requests a one-sided upper limit.
	SelectUL
)

// Has reports whether the selection includes the given option.
func (s Selection) Has(opt Selection) bool { return s&opt != 0 }

// FitResult holds the per-pixel scalar outputs of one flux fit. Optional
// fields are only meaningful when the matching Selection bit is set; all
// fields may be NaN to mark a failed fit. A FitResult is produced once per
// pixel and never mutated afterwards.
type FitResult struct {
	Norm    float64
	NormErr float64
	TS      float64
	Stat    float64 // best-fit Cash sum, kept for the confidence search
	NIter   int

	NormErrn float64 // valid when Selection.Has(SelectErrnErrp)
	NormErrp float64 // valid when Selection.Has(SelectErrnErrp)
	NormUL   float64 // valid when Selection.Has(SelectUL)

	Selection Selection
}

// nanResult is the all-NaN result recorded for pixels that are screened out
// or fail before the fit starts.
func nanResult(sel Selection) FitResult {
	nan := math.NaN()
	return FitResult{
		Norm:      nan,
		NormErr:   nan,
		TS:        nan,
		Stat:      nan,
		NIter:     0,
		NormErrn:  nan,
		NormErrp:  nan,
		NormUL:    nan,
		Selection: sel,
	}
}
