package tsmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// excessCutout builds a cutout with a clear positive excess over background.
func excessCutout() *CutoutDataset {
	counts := []float64{12, 8, 6, 9, 30, 10, 7, 8, 11}
	background := make([]float64, 9)
	model := make([]float64, 9)
	for i := range background {
		background[i] = 8
		model[i] = 0.05
	}
	model[4] = 0.6
	return NewCutoutDataset(counts, background, model, 10)
}

func assertSameFit(t *testing.T, a, b FitResult) {
	t.Helper()
	sameFloat := func(name string, x, y float64) {
		t.Helper()
		if math.IsNaN(x) && math.IsNaN(y) {
			return
		}
		assert.Equal(t, x, y, name)
	}
	sameFloat("Norm", a.Norm, b.Norm)
	sameFloat("NormErr", a.NormErr, b.NormErr)
	sameFloat("TS", a.TS, b.TS)
	sameFloat("Stat", a.Stat, b.Stat)
	sameFloat("NormErrn", a.NormErrn, b.NormErrn)
	sameFloat("NormErrp", a.NormErrp, b.NormErrp)
	sameFloat("NormUL", a.NormUL, b.NormUL)
	assert.Equal(t, a.NIter, b.NIter)
}

func TestEstimateBestFitZeroCounts(t *testing.T) {
	counts := make([]float64, 9)
	background := make([]float64, 9)
	model := make([]float64, 9)
	for i := range background {
		background[i] = 2
		model[i] = 0.1
	}

	d := NewCutoutDataset(counts, background, model, 0)
	e := NewFluxEstimator(0.01, 0)
	r := e.EstimateBestFit(d)

	_, _, floor := d.Bounds()
	assert.Equal(t, floor, r.Norm, "degenerate cutout takes the floor analytically")
	assert.Equal(t, 0, r.NIter)
	assert.False(t, math.IsNaN(r.TS))
}

func TestEstimateBestFitNoExcess(t *testing.T) {
	// Counts exactly matching the background prediction root-find to ~zero.
	counts := []float64{2, 2, 2, 2}
	background := []float64{2, 2, 2, 2}
	model := []float64{0.5, 0.5, 0.5, 0.5}

	d := NewCutoutDataset(counts, background, model, 0)
	e := NewFluxEstimator(0.01, 0)
	r := e.EstimateBestFit(d)

	assert.InDelta(t, 0.0, r.Norm, 1e-6)
	assert.InDelta(t, 0.0, r.TS, 1e-8)
}

func TestEstimateBestFitRecoversExcess(t *testing.T) {
	d := excessCutout()
	e := NewFluxEstimator(1e-6, 0)
	e.MaxIter = 100
	r := e.EstimateBestFit(d)

	require.False(t, math.IsNaN(r.Norm))
	assert.Positive(t, r.Norm)
	assert.Positive(t, r.TS, "an excess gives positive TS")
	assert.Positive(t, r.NormErr)
	assert.InDelta(t, 0.0, d.StatDerivative(r.Norm), 1e-3, "norm is a derivative root")
}

func TestEstimateBestFitIdempotent(t *testing.T) {
	d := excessCutout()
	e := NewFluxEstimator(0.01, SelectErrnErrp|SelectUL)
	assertSameFit(t, e.Run(d), e.Run(d))
}

func TestDeficitGivesNegativeTS(t *testing.T) {
	counts := []float64{1, 1, 1, 1}
	background := []float64{4, 4, 4, 4}
	model := []float64{0.4, 0.4, 0.4, 0.4}

	d := NewCutoutDataset(counts, background, model, 0)
	e := NewFluxEstimator(1e-6, 0)
	e.MaxIter = 100
	r := e.EstimateBestFit(d)

	require.False(t, math.IsNaN(r.Norm))
	assert.Negative(t, r.Norm, "counts below background fit a negative norm")
	assert.Negative(t, r.TS, "sign convention flags the deficit")
}

func TestConfidenceOrdering(t *testing.T) {
	d := excessCutout()
	e := NewFluxEstimator(1e-6, SelectErrnErrp|SelectUL)
	e.MaxIter = 100
	r := e.Run(d)

	require.False(t, math.IsNaN(r.NormUL))
	require.False(t, math.IsNaN(r.NormErrn))
	require.False(t, math.IsNaN(r.NormErrp))

	assert.GreaterOrEqual(t, r.NormUL, r.Norm, "upper limit at or above the best fit")
	assert.LessOrEqual(t, r.NormErrn, 0.0)
	assert.GreaterOrEqual(t, r.NormErrp, 0.0)
	// The two-sigma limit reaches further out than the one-sigma error.
	assert.Greater(t, r.NormUL-r.Norm, r.NormErrp)
}

func TestRunThresholdScreensFaintPixels(t *testing.T) {
	// No excess and a tall threshold: the fit is skipped outright.
	counts := []float64{2, 2, 2, 2}
	background := []float64{2, 2, 2, 2}
	model := []float64{0.5, 0.5, 0.5, 0.5}
	d := NewCutoutDataset(counts, background, model, 0.1)

	e := NewFluxEstimator(0.01, SelectUL)
	e.Threshold = 25
	e.HasThreshold = true

	r := e.Run(d)
	assert.True(t, math.IsNaN(r.Norm))
	assert.True(t, math.IsNaN(r.TS))
	assert.True(t, math.IsNaN(r.NormUL))
	assert.Equal(t, 0, r.NIter)
}

func TestRunWithoutThresholdFitsEverything(t *testing.T) {
	d := excessCutout()
	e := NewFluxEstimator(0.01, 0)
	r := e.Run(d)
	assert.False(t, math.IsNaN(r.Norm))
}

func TestSign(t *testing.T) {
	assert.Equal(t, 1.0, sign(3.2))
	assert.Equal(t, -1.0, sign(-0.5))
	assert.Equal(t, 0.0, sign(0))
	assert.True(t, math.IsNaN(sign(math.NaN())))
}
