// Package units provides shared unit tags and conversion for flux and
// exposure quantities.
package units

// Unit constants. Maps carry these as plain tags; the estimator only ever
// divides or multiplies consistently-tagged maps, so the tags are labels
// rather than a full dimensional-analysis system.
const (
	Counts       = ""          // dimensionless counts
	FluxCM2S     = "cm-2 s-1"  // photon flux per area per time
	FluxM2S      = "m-2 s-1"   //
	ExposureCM2S = "cm2 s"     // effective area times livetime
	ExposureM2S  = "m2 s"      //
)

// ValidFluxUnits contains all flux unit tags the config surface accepts.
var ValidFluxUnits = []string{FluxCM2S, FluxM2S}

// IsValidFluxUnit checks whether the given tag is a recognised flux unit.
func IsValidFluxUnit(unit string) bool {
	for _, u := range ValidFluxUnits {
		if unit == u {
			return true
		}
	}
	return false
}

// Invert returns the unit tag of the reciprocal quantity for the exposure
// tags used by the estimator. Unknown tags invert to the empty tag.
func Invert(unit string) string {
	switch unit {
	case ExposureCM2S:
		return FluxCM2S
	case ExposureM2S:
		return FluxM2S
	case FluxCM2S:
		return ExposureCM2S
	case FluxM2S:
		return ExposureM2S
	default:
		return Counts
	}
}

// ConvertFlux converts a flux value between the supported flux units.
// Values already in the target unit pass through unchanged.
func ConvertFlux(value float64, from, to string) float64 {
	if from == to {
		return value
	}
	// 1 m2 == 1e4 cm2, so 1 m-2 s-1 == 1e-4 cm-2 s-1.
	switch {
	case from == FluxM2S && to == FluxCM2S:
		return value * 1e-4
	case from == FluxCM2S && to == FluxM2S:
		return value * 1e4
	default:
		return value
	}
}
