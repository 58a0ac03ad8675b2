package tsmap

import (
	"github.com/skywatch-data/significance.report/internal/fitstat"
	"github.com/skywatch-data/significance.report/internal/skymap"
)

// CutoutDataset is the per-pixel view the flux fit runs on: equal-shaped
// counts, background and model slices cut from the full maps, plus the seed
// for the normalization. Bounds and the counts total are computed once at
// construction; the dataset is immutable afterwards, so cutouts can be fit
// concurrently without locks.
type CutoutDataset struct {
	Counts     []float64
	Background []float64
	Model      []float64 // kernel amplitude times local exposure, per unit norm
	NormGuess  float64

	countsSum    float64
	normMin      float64
	normMax      float64
	normMinTotal float64
}

// NewCutoutDataset builds a dataset from owned slices. The slices must be
// equal length and must not be mutated afterwards.
func NewCutoutDataset(counts, background, model []float64, normGuess float64) *CutoutDataset {
	d := &CutoutDataset{
		Counts:     counts,
		Background: background,
		Model:      model,
		NormGuess:  normGuess,
	}
	for _, c := range counts {
		d.countsSum += c
	}
	d.normMin, d.normMax, d.normMinTotal = fitstat.NormBounds(counts, background, model)
	return d
}

// ExtractCutout cuts a kernel-shaped window centred at (row, col) out of the
// full-size maps. The model slice is the kernel scaled by the local exposure,
// so the free parameter multiplying it is the dimensionless norm. The window
// must lie inside the map bounds; the scan driver guarantees this through
// the evaluation mask.
func ExtractCutout(counts, background, exposure, kernel *skymap.Map, fluxSeed *skymap.Map, fluxRef float64, row, col int) *CutoutDataset {
	ky, kx := kernel.Geom.NY, kernel.Geom.NX

	countsCut := counts.ExtractCutout(row, col, ky, kx)
	backgroundCut := background.ExtractCutout(row, col, ky, kx)
	model := exposure.ExtractCutout(row, col, ky, kx)
	for i := range model {
		model[i] *= kernel.Data[i] * fluxRef
	}

	normGuess := fluxSeed.At(0, row, col) / fluxRef
	return NewCutoutDataset(countsCut, backgroundCut, model, normGuess)
}

// NPred returns the predicted counts for the given normalization.
func (d *CutoutDataset) NPred(norm float64) []float64 {
	out := make([]float64, len(d.Background))
	for i := range out {
		out[i] = d.Background[i] + norm*d.Model[i]
	}
	return out
}

// Stat returns the Cash sum at the given normalization.
func (d *CutoutDataset) Stat(norm float64) float64 {
	return fitstat.CashSum(d.Counts, d.NPred(norm))
}

// StatDerivative returns the derivative of the Cash sum at the given
// normalization.
func (d *CutoutDataset) StatDerivative(norm float64) float64 {
	return fitstat.CashDerivative(norm, d.Counts, d.Background, d.Model)
}

// StatCurvature returns the second derivative of the Cash sum at the given
// normalization.
func (d *CutoutDataset) StatCurvature(norm float64) float64 {
	return fitstat.CashCurvature(norm, d.Counts, d.Background, d.Model)
}

// Bounds returns the root-search bracket and the non-negativity floor for
// the normalization.
func (d *CutoutDataset) Bounds() (normMin, normMax, normMinTotal float64) {
	return d.normMin, d.normMax, d.normMinTotal
}

// CountsSum returns the total counts in the cutout.
func (d *CutoutDataset) CountsSum() float64 { return d.countsSum }
