package tsmap

import (
	"errors"
	"fmt"

	"github.com/skywatch-data/significance.report/internal/units"
)

// ErrConfig marks configuration errors. They are fatal: Run returns them
// before any scan work starts and produces no partial output.
var ErrConfig = errors.New("tsmap: invalid configuration")

// Options is the configuration surface of the TS-map estimator.
type Options struct {
	// KernelWidthDeg is the angular width the source kernel is truncated at.
	KernelWidthDeg float64

	// DownsamplingFactor trades resolution for speed. Zero or one disables
	// downsampling; otherwise the factor must be a power of two no larger
	// than the padding granularity so padded maps divide evenly.
	DownsamplingFactor int

	// NSigma scales the symmetric error; NSigmaUL the upper limit.
	NSigma   float64
	NSigmaUL float64

	// Threshold, when set, skips the full fit for pixels whose TS at the
	// seed flux stays below it.
	Threshold *float64

	// RTol is the relative tolerance of the root finder.
	RTol float64

	// Selection names the optional outputs: "errn-errp", "ul", or the
	// single entry "all" for both.
	Selection []string

	// FluxUnit tags the output flux maps; the reference flux from the
	// forward model is always cm-2 s-1 and gets converted on assembly.
	// Empty means cm-2 s-1.
	FluxUnit string

	// NJobs is the number of parallel workers; zero runs sequentially.
	NJobs int
}

// DefaultOptions returns the standard estimator configuration.
func DefaultOptions() Options {
	return Options{
		KernelWidthDeg: 0.2,
		NSigma:         1,
		NSigmaUL:       2,
		RTol:           0.01,
		Selection:      []string{"all"},
		FluxUnit:       units.FluxCM2S,
	}
}

// padLevel pads map shapes to multiples of 2^padLevel before downsampling.
const padLevel = 3

// ParseSelection converts the selection strings to the internal bit set.
func ParseSelection(names []string) (Selection, error) {
	var sel Selection
	for _, name := range names {
		switch name {
		case "all":
			sel |= SelectErrnErrp | SelectUL
		case "errn-errp":
			sel |= SelectErrnErrp
		case "ul":
			sel |= SelectUL
		default:
			return 0, fmt.Errorf("%w: unknown selection %q (want \"errn-errp\", \"ul\" or \"all\")", ErrConfig, name)
		}
	}
	return sel, nil
}

// validate checks the option fields that can be rejected without a dataset.
func (o *Options) validate() error {
	if o.KernelWidthDeg <= 0 {
		return fmt.Errorf("%w: kernel width must be positive, got %g", ErrConfig, o.KernelWidthDeg)
	}
	if o.RTol <= 0 {
		return fmt.Errorf("%w: rtol must be positive, got %g", ErrConfig, o.RTol)
	}
	if f := o.DownsamplingFactor; f > 1 {
		if f&(f-1) != 0 || f > 1<<padLevel {
			return fmt.Errorf("%w: downsampling factor must be a power of two <= %d, got %d",
				ErrConfig, 1<<padLevel, f)
		}
	}
	if o.FluxUnit != "" && !units.IsValidFluxUnit(o.FluxUnit) {
		return fmt.Errorf("%w: unknown flux unit %q", ErrConfig, o.FluxUnit)
	}
	if _, err := ParseSelection(o.Selection); err != nil {
		return err
	}
	return nil
}
