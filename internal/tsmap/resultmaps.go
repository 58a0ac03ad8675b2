package tsmap

import (
	"time"

	"github.com/skywatch-data/significance.report/internal/skymap"
)

// Result holds the named output maps of one TS-map run. Optional maps are
// nil when their output was not selected. All maps share the spatial
// geometry of the input counts map once Run returns.
type Result struct {
	RunID string

	TS      *skymap.Map
	SqrtTS  *skymap.Map
	Flux    *skymap.Map
	FluxErr *skymap.Map
	NIter   *skymap.Map

	FluxErrn *skymap.Map
	FluxErrp *skymap.Map
	FluxUL   *skymap.Map

	// Positions is the number of pixels that were evaluated.
	Positions int
	Elapsed   time.Duration
}

// Maps returns the non-nil output maps keyed by their conventional names.
func (r *Result) Maps() map[string]*skymap.Map {
	out := map[string]*skymap.Map{
		"ts":       r.TS,
		"sqrt_ts":  r.SqrtTS,
		"flux":     r.Flux,
		"flux_err": r.FluxErr,
		"niter":    r.NIter,
	}
	if r.FluxErrn != nil {
		out["flux_errn"] = r.FluxErrn
		out["flux_errp"] = r.FluxErrp
	}
	if r.FluxUL != nil {
		out["flux_ul"] = r.FluxUL
	}
	return out
}

// restore undoes the speed-up resampling: every map is upsampled back to the
// padded resolution (nearest-neighbour for the integer-valued iteration map,
// linear for the rest) and the padding cropped off. The significance map is
// re-derived from the restored TS map so the two stay consistent.
func (r *Result) restore(factor int, pad skymap.PadWidth) error {
	up := func(m *skymap.Map, order skymap.UpsampleOrder) (*skymap.Map, error) {
		grown, err := m.Upsample(factor, order)
		if err != nil {
			return nil, err
		}
		return grown.Crop(pad)
	}

	var err error
	if r.TS, err = up(r.TS, skymap.UpsampleLinear); err != nil {
		return err
	}
	if r.Flux, err = up(r.Flux, skymap.UpsampleLinear); err != nil {
		return err
	}
	if r.FluxErr, err = up(r.FluxErr, skymap.UpsampleLinear); err != nil {
		return err
	}
	if r.NIter, err = up(r.NIter, skymap.UpsampleNearest); err != nil {
		return err
	}
	if r.FluxErrn != nil {
		if r.FluxErrn, err = up(r.FluxErrn, skymap.UpsampleLinear); err != nil {
			return err
		}
		if r.FluxErrp, err = up(r.FluxErrp, skymap.UpsampleLinear); err != nil {
			return err
		}
	}
	if r.FluxUL != nil {
		if r.FluxUL, err = up(r.FluxUL, skymap.UpsampleLinear); err != nil {
			return err
		}
	}
	r.SqrtTS = EstimateSqrtTS(r.TS)
	return nil
}
