// Package synth builds synthetic observation datasets: a Gaussian source
// template standing in for the instrument-response model evaluation, and
// Poisson-fluctuated count maps around it. The CLI and the end-to-end tests
// run the estimator against these datasets.
package synth

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/skywatch-data/significance.report/internal/skymap"
	"github.com/skywatch-data/significance.report/internal/tsmap"
	"github.com/skywatch-data/significance.report/internal/units"
)

// GaussianSource implements tsmap.ForwardModel with an isotropic Gaussian
// spatial profile and a flat spectrum. SigmaPix is the profile width in
// pixels; FluxRef the integrated reference flux the flat evaluation reports.
type GaussianSource struct {
	SigmaPix float64
	FluxRef  float64
}

// KernelNPred evaluates the Gaussian template at the centre of the given
// geometry, identical across energy planes. The template is left
// unnormalized; the estimator normalizes it to unit sum.
func (g *GaussianSource) KernelNPred(geom *skymap.Geometry) (*skymap.Map, error) {
	if g.SigmaPix <= 0 {
		return nil, fmt.Errorf("synth: gaussian sigma must be positive, got %g", g.SigmaPix)
	}
	m := skymap.NewMap(geom, "")
	cy, cx := geom.Center()
	twoSigSq := 2 * g.SigmaPix * g.SigmaPix
	for e := 0; e < geom.NEnergy; e++ {
		for y := 0; y < geom.NY; y++ {
			for x := 0; x < geom.NX; x++ {
				dy, dx := float64(y-cy), float64(x-cx)
				m.Set(e, y, x, math.Exp(-(dy*dy+dx*dx)/twoSigSq))
			}
		}
	}
	return m, nil
}

// FlatNPred predicts counts for a spatially constant unit-reference-flux
// model with PSF smearing off: the dataset exposure scaled by the reference
// flux.
func (g *GaussianSource) FlatNPred(d *tsmap.InputDataset) (*skymap.Map, float64, error) {
	if g.FluxRef <= 0 {
		return nil, 0, fmt.Errorf("synth: reference flux must be positive, got %g", g.FluxRef)
	}
	npred := d.Exposure.Copy()
	npred.Scale(g.FluxRef)
	npred.Unit = units.Counts
	return npred, g.FluxRef, nil
}

// PointSourceSim describes a synthetic observation: a single point-like
// source of the given flux at the map centre over a flat background.
type PointSourceSim struct {
	NEnergy int
	NY, NX  int
	BinSz   float64 // pixel size in degrees

	SigmaPix   float64 // source width in pixels
	Flux       float64 // injected source flux, cm-2 s-1
	Background float64 // flat background, counts per bin
	Exposure   float64 // flat exposure, cm2 s

	Seed uint64
}

// DefaultSim returns the simulation used by the CLI demo: a 21x21 map with a
// bright central source.
func DefaultSim() PointSourceSim {
	return PointSourceSim{
		NEnergy:    1,
		NY:         21,
		NX:         21,
		BinSz:      0.02,
		SigmaPix:   1.0,
		Flux:       1e-9,
		Background: 2.0,
		Exposure:   1e12,
		Seed:       1,
	}
}

// Model returns the forward model matching the simulated source shape.
func (s PointSourceSim) Model() *GaussianSource {
	return &GaussianSource{SigmaPix: s.SigmaPix, FluxRef: 1e-12}
}

// Build simulates the dataset: expected counts are background plus the
// Gaussian source times exposure and flux, and observed counts are Poisson
// draws around them. The background map carries the noise-free expectation,
// as the upstream model layer would predict it.
func (s PointSourceSim) Build() (*tsmap.InputDataset, error) {
	geom, err := skymap.NewGeometry(s.NEnergy, s.NY, s.NX, s.BinSz)
	if err != nil {
		return nil, err
	}

	model := s.Model()
	template, err := model.KernelNPred(geom)
	if err != nil {
		return nil, err
	}
	total := template.Total()
	template.Scale(1 / total)

	background := skymap.NewMapFilled(geom, units.Counts, s.Background)
	exposure := skymap.NewMapFilled(geom, units.ExposureCM2S, s.Exposure)

	src := rand.NewSource(s.Seed)
	counts := skymap.NewMap(geom, units.Counts)
	for i := range counts.Data {
		lambda := background.Data[i] + s.Flux*s.Exposure*template.Data[i]
		counts.Data[i] = distuv.Poisson{Lambda: lambda, Src: src}.Rand()
	}

	return &tsmap.InputDataset{
		Counts:     counts,
		Background: background,
		Exposure:   exposure,
		Forward:    model,
	}, nil
}
