package testutil

import (
	"errors"
	"math"
	"testing"
)

func TestClose(t *testing.T) {
	tests := []struct {
		name       string
		got, want  float64
		rtol       float64
		wantResult bool
	}{
		{"exact", 1.0, 1.0, 1e-9, true},
		{"within rtol", 100.0, 100.0001, 1e-5, true},
		{"outside rtol", 100.0, 101.0, 1e-5, false},
		{"near zero absolute floor", 1e-14, 0.0, 1e-9, true},
		{"nan never matches", math.NaN(), math.NaN(), 1e-9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Close(tt.got, tt.want, tt.rtol); got != tt.wantResult {
				t.Errorf("Close(%g, %g, %g) = %v, want %v", tt.got, tt.want, tt.rtol, got, tt.wantResult)
			}
		})
	}
}

func TestAssertAllCloseAcceptsMatchingSlices(t *testing.T) {
	got := []float64{1.0, 0.0, math.NaN(), -2.5000000001}
	want := []float64{1.0000000001, 1e-14, math.NaN(), -2.5}
	AssertAllClose(t, got, want, 1e-9)
}

func TestAssertErrorHelpers(t *testing.T) {
	AssertNoError(t, nil)
	AssertError(t, errors.New("boom"))
}
