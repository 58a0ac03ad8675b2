package monitor

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/skywatch-data/significance.report/internal/tsmap"
)

// RunSummary holds the headline statistics of one TS-map run.
type RunSummary struct {
	RunID   string
	NPixels int
	NValid  int
	// ValidFraction is the share of evaluated pixels with a finite TS.
	ValidFraction float64

	PeakTS     float64
	PeakSqrtTS float64
	PeakRow    int
	PeakCol    int
	PeakFlux   float64

	MeanSqrtTS float64
	P95SqrtTS  float64

	Elapsed time.Duration
}

// Summarize computes a RunSummary from a finished run. Pixels with NaN TS
// (masked border, failed fits) are excluded from the statistics.
func Summarize(res *tsmap.Result) *RunSummary {
	sum := &RunSummary{
		RunID:   res.RunID,
		NPixels: res.Positions,
		Elapsed: res.Elapsed,
	}

	sqrtTS := res.SqrtTS.Plane(0)
	valid := make([]float64, 0, len(sqrtTS))
	for _, v := range sqrtTS {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			valid = append(valid, v)
		}
	}
	sum.NValid = len(valid)
	if res.Positions > 0 {
		sum.ValidFraction = float64(len(valid)) / float64(res.Positions)
	}
	if len(valid) == 0 {
		sum.PeakTS = math.NaN()
		sum.PeakSqrtTS = math.NaN()
		sum.PeakFlux = math.NaN()
		sum.MeanSqrtTS = math.NaN()
		sum.P95SqrtTS = math.NaN()
		return sum
	}

	peak, row, col := res.TS.MaxSpatial()
	sum.PeakTS = peak
	sum.PeakRow = row
	sum.PeakCol = col
	sum.PeakSqrtTS = res.SqrtTS.At(0, row, col)
	sum.PeakFlux = res.Flux.At(0, row, col)

	sort.Float64s(valid)
	sum.MeanSqrtTS = stat.Mean(valid, nil)
	sum.P95SqrtTS = stat.Quantile(0.95, stat.Empirical, valid, nil)
	return sum
}
