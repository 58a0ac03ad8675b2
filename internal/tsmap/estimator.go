package tsmap

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/skywatch-data/significance.report/internal/monitoring"
	"github.com/skywatch-data/significance.report/internal/skymap"
	"github.com/skywatch-data/significance.report/internal/units"
)

// TSMapEstimator orchestrates a TS-map run: it prepares the kernel,
// exposure, flux seed and evaluation mask from the input dataset, dispatches
// the per-pixel scan, and reassembles the scalar results into named output
// maps at the input resolution.
type TSMapEstimator struct {
	opts Options
	flux *FluxEstimator
}

// NewTSMapEstimator validates the options and builds an estimator.
func NewTSMapEstimator(opts Options) (*TSMapEstimator, error) {
	if opts.FluxUnit == "" {
		opts.FluxUnit = units.FluxCM2S
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	sel, err := ParseSelection(opts.Selection)
	if err != nil {
		return nil, err
	}

	flux := NewFluxEstimator(opts.RTol, sel)
	flux.NSigma = opts.NSigma
	flux.NSigmaUL = opts.NSigmaUL
	if opts.Threshold != nil {
		flux.Threshold = *opts.Threshold
		flux.HasThreshold = true
	}

	return &TSMapEstimator{opts: opts, flux: flux}, nil
}

// RoundUpToOdd returns the smallest odd integer >= ceil(f).
func RoundUpToOdd(f float64) int {
	return int(math.Ceil(f))/2*2 + 1
}

// EstimateKernel builds the normalized source template for the dataset:
// the forward model evaluated at the map centre on an odd-sized geometry,
// normalized to unit sum. The kernel footprint plus one bin must stay
// strictly inside the map footprint.
func (e *TSMapEstimator) EstimateKernel(d *InputDataset) (*skymap.Map, error) {
	geom := d.Counts.Geom
	wy, wx := geom.Width()
	if e.opts.KernelWidthDeg+geom.BinSz >= math.Min(wy, wx) {
		return nil, fmt.Errorf("%w: kernel shape larger than map shape, reduce the kernel width", ErrConfig)
	}

	npix := RoundUpToOdd(e.opts.KernelWidthDeg / geom.BinSz)
	kernel, err := d.Forward.KernelNPred(geom.WithSpatialShape(npix, npix))
	if err != nil {
		return nil, fmt.Errorf("evaluating kernel template: %w", err)
	}

	total := kernel.Total()
	if !(total > 0) {
		return nil, fmt.Errorf("%w: kernel template sums to %g", ErrConfig, total)
	}
	kernel.Scale(1 / total)
	return kernel, nil
}

// EstimateExposure computes the flux-to-counts conversion map: predicted
// counts for a unit-flux, spatially constant reference model (PSF disabled)
// divided by the reference integrated flux. It also fixes the flux scale
// used to convert fitted norms back to physical units.
func (e *TSMapEstimator) EstimateExposure(d *InputDataset) (*skymap.Map, error) {
	npred, fluxRef, err := d.Forward.FlatNPred(d)
	if err != nil {
		return nil, fmt.Errorf("evaluating flat reference model: %w", err)
	}
	if !(fluxRef > 0) {
		return nil, fmt.Errorf("%w: reference flux must be positive, got %g", ErrConfig, fluxRef)
	}
	// The forward model reports its reference flux in cm-2 s-1; from here on
	// everything carries the configured unit, so fitted norms scale straight
	// into it.
	fluxRef = units.ConvertFlux(fluxRef, units.FluxCM2S, e.opts.FluxUnit)
	e.flux.FluxRef = fluxRef

	exposure := npred.Copy()
	exposure.Scale(1 / fluxRef)
	exposure.Unit = units.Invert(e.opts.FluxUnit)
	return exposure, nil
}

// EstimateFluxDefault produces the flux seed map: the background-subtracted
// residual per exposure, matched-filtered with the kernel normalized to unit
// sum of squares, collapsed over the energy axis.
func (e *TSMapEstimator) EstimateFluxDefault(d *InputDataset, kernel, exposure *skymap.Map) (*skymap.Map, error) {
	sumSq := 0.0
	for _, k := range kernel.Data {
		sumSq += k * k
	}
	matched := kernel.Copy()
	matched.Scale(1 / sumSq)

	residual, err := skymap.Arith(d.Counts, d.Background, e.opts.FluxUnit, func(c, b float64) float64 { return c - b })
	if err != nil {
		return nil, err
	}
	for i, exp := range exposure.Data {
		if exp > 0 {
			residual.Data[i] /= exp
		} else {
			// Bins without exposure carry no flux information.
			residual.Data[i] = 0
		}
	}

	flux, err := residual.Convolve(matched)
	if err != nil {
		return nil, err
	}
	return flux.SumOverEnergy(), nil
}

// EstimateMaskDefault computes where TS is evaluated: everywhere except a
// half-kernel border, pixels outside the safe mask, and pixels whose
// predicted background is exactly zero (those have no valid null model).
func (e *TSMapEstimator) EstimateMaskDefault(d *InputDataset, kernel *skymap.Map) *skymap.Mask {
	geom := d.Counts.Geom
	mask := skymap.NewMask(geom)

	hy, hx := kernel.Geom.NY/2, kernel.Geom.NX/2
	for y := hy; y < geom.NY-hy; y++ {
		for x := hx; x < geom.NX-hx; x++ {
			mask.Set(y, x, true)
		}
	}

	if d.MaskSafe != nil {
		mask.And(skymap.ReduceAnyOverEnergy(d.MaskSafe))
	}

	background := d.Background.SumOverEnergy()
	for i, b := range background.Data {
		if b == 0 {
			mask.Data[i] = false
		}
	}
	return mask
}

// EstimateSqrtTS derives the signed significance map:
// sign(ts) * sqrt(|ts|), preserving the excess/deficit convention of ts.
func EstimateSqrtTS(ts *skymap.Map) *skymap.Map {
	out := ts.Copy()
	for i, v := range out.Data {
		if v < 0 {
			out.Data[i] = -math.Sqrt(-v)
		} else {
			out.Data[i] = math.Sqrt(v)
		}
	}
	return out
}

// Run executes the full TS-map estimation over the dataset.
func (e *TSMapEstimator) Run(d *InputDataset) (*Result, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	start := time.Now()

	work := d
	var pad skymap.PadWidth
	downsampled := false
	if f := e.opts.DownsamplingFactor; f > 1 {
		pad = skymap.SymmetricPadTo2N(d.Counts.Geom.NY, d.Counts.Geom.NX, padLevel)
		var err error
		work, err = d.pad(pad).downsample(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		downsampled = true
	}

	exposure, err := e.EstimateExposure(work)
	if err != nil {
		return nil, err
	}
	kernel, err := e.EstimateKernel(work)
	if err != nil {
		return nil, err
	}
	mask := e.EstimateMaskDefault(work, kernel)
	fluxSeed, err := e.EstimateFluxDefault(work, kernel, exposure)
	if err != nil {
		return nil, err
	}

	positions := mask.Positions()
	monitoring.Logf("tsmap run %s: scanning %d of %d pixels (kernel %dx%d, %d workers)",
		runID, len(positions), work.Counts.Geom.SpatialSize(),
		kernel.Geom.NY, kernel.Geom.NX, e.opts.NJobs)

	driver := &PixelScanDriver{
		Counts:     work.Counts,
		Background: work.Background,
		Exposure:   exposure,
		Kernel:     kernel,
		FluxSeed:   fluxSeed,
		Estimator:  e.flux,
		NJobs:      e.opts.NJobs,
	}
	pixels := driver.Scan(positions)

	result, err := e.assemble(runID, work.Counts.Geom.ToImage(), pixels)
	if err != nil {
		return nil, err
	}

	if downsampled {
		if err := result.restore(e.opts.DownsamplingFactor, pad); err != nil {
			return nil, err
		}
	}

	result.Positions = len(positions)
	result.Elapsed = time.Since(start)
	monitoring.Logf("tsmap run %s: finished in %s", runID, result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// assemble scatters per-pixel fit results into named output maps, scaling
// dimensionless norm fields to physical flux units.
func (e *TSMapEstimator) assemble(runID string, geom *skymap.Geometry, pixels []PixelResult) (*Result, error) {
	sel := e.flux.Selection
	fluxRef := e.flux.FluxRef
	nan := math.NaN()

	fluxUnit := e.opts.FluxUnit

	result := &Result{
		RunID:   runID,
		TS:      skymap.NewMapFilled(geom, "", nan),
		Flux:    skymap.NewMapFilled(geom, fluxUnit, nan),
		FluxErr: skymap.NewMapFilled(geom, fluxUnit, nan),
		NIter:   skymap.NewMapFilled(geom, "", nan),
	}
	if sel.Has(SelectErrnErrp) {
		result.FluxErrn = skymap.NewMapFilled(geom, fluxUnit, nan)
		result.FluxErrp = skymap.NewMapFilled(geom, fluxUnit, nan)
	}
	if sel.Has(SelectUL) {
		result.FluxUL = skymap.NewMapFilled(geom, fluxUnit, nan)
	}

	for _, p := range pixels {
		result.TS.Set(0, p.Row, p.Col, p.Fit.TS)
		result.Flux.Set(0, p.Row, p.Col, p.Fit.Norm*fluxRef)
		result.FluxErr.Set(0, p.Row, p.Col, p.Fit.NormErr*fluxRef)
		result.NIter.Set(0, p.Row, p.Col, float64(p.Fit.NIter))
		if sel.Has(SelectErrnErrp) {
			result.FluxErrn.Set(0, p.Row, p.Col, p.Fit.NormErrn*fluxRef)
			result.FluxErrp.Set(0, p.Row, p.Col, p.Fit.NormErrp*fluxRef)
		}
		if sel.Has(SelectUL) {
			result.FluxUL.Set(0, p.Row, p.Col, p.Fit.NormUL*fluxRef)
		}
	}

	result.SqrtTS = EstimateSqrtTS(result.TS)
	return result, nil
}
