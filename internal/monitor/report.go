package monitor

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/skywatch-data/significance.report/internal/skymap"
	"github.com/skywatch-data/significance.report/internal/tsmap"
)

// viridisColors is the palette used for all visual maps in the run report.
var viridisColors = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// heatMapChart builds one ECharts heat map for a spatial map.
// NaN and infinite pixels are skipped so the visual map range reflects
// only fitted pixels.
func heatMapChart(m *skymap.Map, title, subtitle string) *charts.HeatMap {
	ny, nx := m.Geom.NY, m.Geom.NX
	plane := m.Plane(0)

	data := make([]opts.HeatMapData, 0, len(plane))
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			v := plane[y*nx+x]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}
	if minVal > maxVal {
		minVal, maxVal = 0, 1
	}

	xLabels := make([]string, nx)
	for x := 0; x < nx; x++ {
		xLabels[x] = strconv.Itoa(x)
	}
	yLabels := make([]string, ny)
	for y := 0; y < ny; y++ {
		yLabels[y] = strconv.Itoa(y)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "760px", Height: "760px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "x (pix)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "y (pix)"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minVal),
			Max:        float32(maxVal),
			InRange:    &opts.VisualMapInRange{Color: viridisColors},
		}),
	)
	hm.SetXAxis(xLabels).AddSeries(title, data)
	return hm
}

// WriteRunReport writes a standalone HTML page with heat maps of the run's
// significance, TS and flux maps plus a summary bar chart.
func WriteRunReport(res *tsmap.Result, sum *RunSummary, path string) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("TS map run %s", res.RunID)

	subtitle := fmt.Sprintf("run=%s pixels=%d elapsed=%s", res.RunID, res.Positions, res.Elapsed)
	page.AddCharts(
		heatMapChart(res.SqrtTS, "sqrt_ts", subtitle),
		heatMapChart(res.TS, "ts", subtitle),
		heatMapChart(res.Flux, "flux", subtitle),
	)
	if sum != nil {
		page.AddCharts(summaryBar(sum))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// summaryBar charts the headline statistics of a run.
func summaryBar(sum *RunSummary) *charts.Bar {
	x := []string{"peak sqrt_ts", "mean sqrt_ts", "p95 sqrt_ts", "valid fraction"}
	y := []opts.BarData{
		{Value: sum.PeakSqrtTS},
		{Value: sum.MeanSqrtTS},
		{Value: sum.P95SqrtTS},
		{Value: sum.ValidFraction},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Run summary"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("summary", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
