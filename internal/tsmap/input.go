package tsmap

import (
	"fmt"

	"github.com/skywatch-data/significance.report/internal/skymap"
)

// ForwardModel is the estimator's view of the excluded model-evaluation
// layer: the capability to produce predicted-counts arrays from the
// configured source template and instrument response.
type ForwardModel interface {
	// KernelNPred evaluates the source template centred on the given
	// (odd-sized) geometry, instrument response applied. The caller
	// normalizes the returned map.
	KernelNPred(geom *skymap.Geometry) (*skymap.Map, error)

	// FlatNPred evaluates predicted counts on the dataset's geometry for a
	// spatially constant model carrying the reference spectrum, with PSF
	// smearing disabled, and returns the integrated reference flux so the
	// caller can divide npred back into an exposure map.
	FlatNPred(d *InputDataset) (npred *skymap.Map, fluxRef float64, err error)
}

// InputDataset bundles the pre-computed arrays the estimator consumes from
// upstream: observed counts, predicted background counts, exposure, an
// optional safe-range mask (non-zero bins permitted; nil means everywhere),
// and the forward-model capability.
type InputDataset struct {
	Counts     *skymap.Map
	Background *skymap.Map
	Exposure   *skymap.Map
	MaskSafe   *skymap.Map
	Forward    ForwardModel
}

func (d *InputDataset) validate() error {
	if d.Counts == nil || d.Background == nil || d.Exposure == nil {
		return fmt.Errorf("%w: dataset requires counts, background and exposure maps", ErrConfig)
	}
	if d.Forward == nil {
		return fmt.Errorf("%w: dataset requires a forward model", ErrConfig)
	}
	for name, m := range map[string]*skymap.Map{"background": d.Background, "exposure": d.Exposure} {
		if !m.Geom.SameShape(d.Counts.Geom) {
			return fmt.Errorf("%w: %s shape differs from counts", ErrConfig, name)
		}
	}
	if d.MaskSafe != nil && (d.MaskSafe.Geom.NY != d.Counts.Geom.NY || d.MaskSafe.Geom.NX != d.Counts.Geom.NX) {
		return fmt.Errorf("%w: safe mask spatial shape differs from counts", ErrConfig)
	}
	return nil
}

// pad grows all maps symmetrically; counts-like maps gain zero-filled bins
// and the safe mask gains excluded ones.
func (d *InputDataset) pad(w skymap.PadWidth) *InputDataset {
	out := &InputDataset{
		Counts:     d.Counts.Pad(w, 0),
		Background: d.Background.Pad(w, 0),
		Exposure:   d.Exposure.Pad(w, 0),
		Forward:    d.Forward,
	}
	if d.MaskSafe != nil {
		out.MaskSafe = d.MaskSafe.Pad(w, 0)
	}
	return out
}

// downsample reduces resolution by an integer factor: counts and background
// are summed (extensive), exposure averaged (intensive), and the safe mask
// kept only where every fine bin was safe.
func (d *InputDataset) downsample(factor int) (*InputDataset, error) {
	counts, err := d.Counts.Downsample(factor, true)
	if err != nil {
		return nil, err
	}
	background, err := d.Background.Downsample(factor, true)
	if err != nil {
		return nil, err
	}
	exposure, err := d.Exposure.Downsample(factor, false)
	if err != nil {
		return nil, err
	}
	out := &InputDataset{Counts: counts, Background: background, Exposure: exposure, Forward: d.Forward}

	if d.MaskSafe != nil {
		fine := skymap.ReduceAnyOverEnergy(d.MaskSafe)
		coarse := fine.Downsample(factor)
		safe := skymap.NewMap(counts.Geom.ToImage(), "")
		for i, ok := range coarse.Data {
			if ok {
				safe.Data[i] = 1
			}
		}
		out.MaskSafe = safe
	}
	return out, nil
}
