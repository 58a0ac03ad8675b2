package tsmap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch-data/significance.report/internal/skymap"
)

// buildScanFixture assembles small full-size maps with an off-centre excess.
func buildScanFixture(t *testing.T) *PixelScanDriver {
	t.Helper()
	g := testGeom(t, 1, 9, 9)

	counts := skymap.NewMapFilled(g, "", 3)
	counts.Set(0, 3, 5, 25)
	background := skymap.NewMapFilled(g, "", 3)
	exposure := skymap.NewMapFilled(g, "", 1e12)

	// Centre-weighted kernel: only the cutout aligned with the hot pixel
	// puts the dominant weight on the excess.
	kernel := skymap.NewMap(g.WithSpatialShape(3, 3), "")
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			kernel.Set(0, y, x, 1.0/16)
		}
	}
	kernel.Set(0, 1, 1, 0.5)

	seed := skymap.NewMapFilled(g.ToImage(), "", 1e-12)

	return &PixelScanDriver{
		Counts:     counts,
		Background: background,
		Exposure:   exposure,
		Kernel:     kernel,
		FluxSeed:   seed,
		Estimator:  NewFluxEstimator(0.01, SelectUL),
	}
}

func interiorPositions(ny, nx, half int) [][2]int {
	var out [][2]int
	for y := half; y < ny-half; y++ {
		for x := half; x < nx-half; x++ {
			out = append(out, [2]int{y, x})
		}
	}
	return out
}

func TestScanSequentialCoversAllPositions(t *testing.T) {
	s := buildScanFixture(t)
	positions := interiorPositions(9, 9, 1)

	results := s.Scan(positions)
	require.Len(t, results, len(positions))
	for i, r := range results {
		assert.Equal(t, positions[i][0], r.Row)
		assert.Equal(t, positions[i][1], r.Col)
	}
}

func TestScanParallelMatchesSequential(t *testing.T) {
	positions := interiorPositions(9, 9, 1)

	seq := buildScanFixture(t)
	seqResults := seq.Scan(positions)

	for _, workers := range []int{2, 4, 8} {
		par := buildScanFixture(t)
		par.NJobs = workers
		parResults := par.Scan(positions)

		require.Len(t, parResults, len(seqResults), "workers=%d", workers)
		for i := range seqResults {
			assert.Equal(t, seqResults[i].Row, parResults[i].Row)
			assert.Equal(t, seqResults[i].Col, parResults[i].Col)
			assertSameFit(t, seqResults[i].Fit, parResults[i].Fit)
		}
	}
}

func TestScanEmptyPositions(t *testing.T) {
	s := buildScanFixture(t)
	assert.Empty(t, s.Scan(nil))

	s.NJobs = 4
	assert.Empty(t, s.Scan([][2]int{}))
}

func TestScanFindsTheExcess(t *testing.T) {
	s := buildScanFixture(t)
	positions := interiorPositions(9, 9, 1)
	results := s.Scan(positions)

	bestTS := math.Inf(-1)
	var bestRow, bestCol int
	for _, r := range results {
		if !math.IsNaN(r.Fit.TS) && r.Fit.TS > bestTS {
			bestTS = r.Fit.TS
			bestRow, bestCol = r.Row, r.Col
		}
	}
	assert.Equal(t, 3, bestRow)
	assert.Equal(t, 5, bestCol)
	assert.Positive(t, bestTS)

	// The aligned position must beat every other one outright, including
	// the neighbours whose cutouts also contain the hot pixel.
	for _, r := range results {
		if r.Row == bestRow && r.Col == bestCol {
			continue
		}
		if !math.IsNaN(r.Fit.TS) {
			assert.Less(t, r.Fit.TS, bestTS, "position (%d, %d)", r.Row, r.Col)
		}
	}
}
