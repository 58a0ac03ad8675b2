// Package monitor turns finished TS-map runs into plots, HTML reports and
// summary statistics for quick inspection.
package monitor

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/skywatch-data/significance.report/internal/skymap"
	"github.com/skywatch-data/significance.report/internal/tsmap"
)

// mapGrid adapts one spatial plane of a sky map to the plotter grid
// interface. NaN pixels (masked border, failed fits) are drawn as the
// plane minimum so the heat map stays continuous.
type mapGrid struct {
	data   []float64
	ny, nx int
	binSz  float64
	min    float64
}

func newMapGrid(m *skymap.Map) *mapGrid {
	plane := m.Plane(0)
	min := math.Inf(1)
	for _, v := range plane {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v < min {
			min = v
		}
	}
	if math.IsInf(min, 1) {
		min = 0
	}
	return &mapGrid{data: plane, ny: m.Geom.NY, nx: m.Geom.NX, binSz: m.Geom.BinSz, min: min}
}

func (g *mapGrid) Dims() (c, r int) { return g.nx, g.ny }

func (g *mapGrid) X(c int) float64 { return float64(c) * g.binSz }

func (g *mapGrid) Y(r int) float64 { return float64(r) * g.binSz }

func (g *mapGrid) Z(c, r int) float64 {
	v := g.data[r*g.nx+c]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return g.min
	}
	return v
}

// SaveHeatMap renders one spatial map as a PNG heat map.
func SaveHeatMap(m *skymap.Map, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (deg)"
	p.Y.Label.Text = "y (deg)"

	hm := plotter.NewHeatMap(newMapGrid(m), palette.Heat(64, 1))
	p.Add(hm)

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save heat map %s: %w", path, err)
	}
	return nil
}

// SaveResultPlots writes one PNG per output map of a run into outputDir.
// Returns the number of plots written.
func SaveResultPlots(res *tsmap.Result, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output dir: %w", err)
	}

	maps := res.Maps()
	names := make([]string, 0, len(maps))
	for name := range maps {
		names = append(names, name)
	}
	sort.Strings(names)

	count := 0
	for _, name := range names {
		file := filepath.Join(outputDir, name+".png")
		if err := SaveHeatMap(maps[name], name, file); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
