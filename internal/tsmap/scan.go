package tsmap

import (
	"sync"

	"github.com/skywatch-data/significance.report/internal/skymap"
)

// PixelResult pairs one pixel's fit outputs with its originating position so
// results can be scattered back regardless of completion order.
type PixelResult struct {
	Row, Col int
	Fit      FitResult
}

// PixelScanDriver walks every unmasked pixel of the full-size maps, cuts a
// dataset around it and runs the flux estimator. The full maps are shared
// read-only between tasks; each task owns its cutout and result, so no
// locking is needed.
type PixelScanDriver struct {
	Counts     *skymap.Map
	Background *skymap.Map
	Exposure   *skymap.Map
	Kernel     *skymap.Map
	FluxSeed   *skymap.Map

	Estimator *FluxEstimator

	// NJobs is the worker count; zero or one runs the scan sequentially on
	// the calling goroutine.
	NJobs int
}

// Scan fits every position and returns one result per position, in input
// order. A failed fit yields NaN fields for that pixel and never aborts the
// scan; there are no retries.
func (s *PixelScanDriver) Scan(positions [][2]int) []PixelResult {
	if s.NJobs <= 1 {
		return s.scanSequential(positions)
	}
	return s.scanParallel(positions)
}

func (s *PixelScanDriver) fitOne(row, col int) PixelResult {
	d := ExtractCutout(s.Counts, s.Background, s.Exposure, s.Kernel, s.FluxSeed, s.Estimator.FluxRef, row, col)
	return PixelResult{Row: row, Col: col, Fit: s.Estimator.Run(d)}
}

func (s *PixelScanDriver) scanSequential(positions [][2]int) []PixelResult {
	out := make([]PixelResult, len(positions))
	for i, p := range positions {
		out[i] = s.fitOne(p[0], p[1])
	}
	return out
}

// scanParallel distributes positions across a fixed pool of workers. Every
// result slot is written exactly once, indexed by the task that produced it,
// so completion order does not matter. The pool is joined before returning
// on every path.
func (s *PixelScanDriver) scanParallel(positions [][2]int) []PixelResult {
	out := make([]PixelResult, len(positions))
	tasks := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.NJobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				p := positions[i]
				out[i] = s.fitOne(p[0], p[1])
			}
		}()
	}

	for i := range positions {
		tasks <- i
	}
	close(tasks)
	wg.Wait()

	return out
}
