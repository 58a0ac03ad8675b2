package tsmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch-data/significance.report/internal/skymap"
)

func testGeom(t *testing.T, ne, ny, nx int) *skymap.Geometry {
	t.Helper()
	g, err := skymap.NewGeometry(ne, ny, nx, 0.02)
	require.NoError(t, err)
	return g
}

func TestExtractCutoutBuildsModelFromKernelAndExposure(t *testing.T) {
	g := testGeom(t, 1, 5, 5)
	counts := skymap.NewMapFilled(g, "", 2)
	background := skymap.NewMapFilled(g, "", 1)
	exposure := skymap.NewMapFilled(g, "", 10)

	kg := g.WithSpatialShape(3, 3)
	kernel := skymap.NewMapFilled(kg, "", 0.1)
	seed := skymap.NewMap(g.ToImage(), "")
	seed.Set(0, 2, 2, 4e-12)

	const fluxRef = 1e-12
	d := ExtractCutout(counts, background, exposure, kernel, seed, fluxRef, 2, 2)

	require.Len(t, d.Counts, 9)
	assert.Equal(t, 18.0, d.CountsSum())
	for i := range d.Model {
		assert.InDelta(t, 0.1*10*fluxRef, d.Model[i], 1e-25)
	}
	assert.InDelta(t, 4.0, d.NormGuess, 1e-12, "seed flux divided by the reference")
}

func TestCutoutBoundsComputedOnce(t *testing.T) {
	counts := []float64{3, 0, 1}
	background := []float64{1, 1, 1}
	model := []float64{0.5, 0.2, 0.3}

	d := NewCutoutDataset(counts, background, model, 0)
	a1, b1, c1 := d.Bounds()
	a2, b2, c2 := d.Bounds()
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, c1, c2)
	assert.Less(t, a1, b1)
	assert.Negative(t, c1)
}

func TestCutoutStatPair(t *testing.T) {
	counts := []float64{3, 2}
	background := []float64{1, 1}
	model := []float64{0.5, 0.5}
	d := NewCutoutDataset(counts, background, model, 0)

	// Derivative must vanish where the statistic is minimal.
	const h = 1e-6
	for _, x := range []float64{0.5, 1.5, 3.0} {
		numeric := (d.Stat(x+h) - d.Stat(x-h)) / (2 * h)
		assert.InDelta(t, numeric, d.StatDerivative(x), 1e-4)
	}
}
