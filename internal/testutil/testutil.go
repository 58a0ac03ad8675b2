// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common numeric test helpers to reduce code
// duplication across test files and improve test maintainability.
package testutil

import (
	"math"
	"testing"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Close reports whether got and want agree within the given relative
// tolerance, with an absolute floor for values near zero. NaN never matches.
func Close(got, want, rtol float64) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return false
	}
	diff := math.Abs(got - want)
	scale := math.Max(math.Abs(got), math.Abs(want))
	return diff <= rtol*scale || diff <= 1e-12
}

// AssertClose checks a single value against an expectation with relative
// tolerance.
func AssertClose(t *testing.T, got, want, rtol float64) {
	t.Helper()
	if !Close(got, want, rtol) {
		t.Errorf("value = %g, want %g (rtol %g)", got, want, rtol)
	}
}

// AssertAllClose checks elementwise agreement of two slices with relative
// tolerance. NaN entries must match positionally.
func AssertAllClose(t *testing.T, got, want []float64, rtol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if math.IsNaN(got[i]) && math.IsNaN(want[i]) {
			continue
		}
		if !Close(got[i], want[i], rtol) {
			t.Errorf("element %d = %g, want %g (rtol %g)", i, got[i], want[i], rtol)
		}
	}
}

// AssertNaN fails unless the value is NaN.
func AssertNaN(t *testing.T, got float64) {
	t.Helper()
	if !math.IsNaN(got) {
		t.Errorf("value = %g, want NaN", got)
	}
}
