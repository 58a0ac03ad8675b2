package fitstat

import (
	"errors"
	"math"
)

// ErrNoBracket is returned when f(a) and f(b) do not straddle zero, or
// either endpoint evaluates to NaN.
var ErrNoBracket = errors.New("fitstat: interval does not bracket a root")

// ErrMaxIterations is returned when the iteration budget is exhausted before
// the tolerance is met.
var ErrMaxIterations = errors.New("fitstat: maximum iterations reached")

// xtol is the absolute convergence floor, matching the usual bracketed
// solver default so rtol dominates away from zero.
const xtol = 2e-12

// Brent finds a root of f in [a, b] using Brent's method: bisection steps
// guarded by inverse quadratic interpolation and the secant rule. It returns
// the root, the number of iterations spent, and a nil error on convergence.
// On ErrMaxIterations the best estimate so far is returned alongside the
// error so callers can decide whether to keep it.
func Brent(f func(float64) float64, a, b, rtol float64, maxIter int) (float64, int, error) {
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return math.NaN(), 0, ErrNoBracket
	}
	if fa == 0 {
		return a, 0, nil
	}
	if fb == 0 {
		return b, 0, nil
	}
	if fa*fb > 0 {
		return math.NaN(), 0, ErrNoBracket
	}

	c, fc := a, fa
	d := b - a
	e := d

	for iter := 1; iter <= maxIter; iter++ {
		if fb*fc > 0 {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol1 := 0.5*xtol + 0.5*rtol*math.Abs(b)
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol1 || fb == 0 {
			return b, iter, nil
		}

		if math.Abs(e) >= tol1 && math.Abs(fa) > math.Abs(fb) {
			// Attempt inverse quadratic interpolation (secant when a == c).
			s := fb / fa
			var p, q float64
			if a == c {
				p = 2 * xm * s
				q = 1 - s
			} else {
				q = fa / fc
				r := fb / fc
				p = s * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (s - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol1*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				// Interpolation accepted.
				e = d
				d = p / q
			} else {
				// Fall back to bisection.
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol1 {
			b += d
		} else if xm > 0 {
			b += tol1
		} else {
			b -= tol1
		}
		fb = f(b)
		if math.IsNaN(fb) {
			return math.NaN(), iter, ErrNoBracket
		}
	}
	return b, maxIter, ErrMaxIterations
}
