package skymap

import "fmt"

// PadWidth holds per-side spatial padding widths in pixels.
type PadWidth struct {
	Top, Bottom, Left, Right int
}

// IsZero reports whether no padding is applied.
func (w PadWidth) IsZero() bool {
	return w.Top == 0 && w.Bottom == 0 && w.Left == 0 && w.Right == 0
}

// shape2N rounds n up to the next multiple of 2^level. Downsampled scans
// want shapes that divide evenly, so maps are padded to a 2^N-friendly
// shape before downsampling.
func shape2N(n, level int) int {
	step := 1 << level
	if rem := n % step; rem != 0 {
		n += step - rem
	}
	return n
}

// SymmetricPadTo2N computes the padding that grows (ny, nx) to the next
// 2^level-friendly shape, splitting each axis as evenly as possible.
func SymmetricPadTo2N(ny, nx, level int) PadWidth {
	dy := shape2N(ny, level) - ny
	dx := shape2N(nx, level) - nx
	return PadWidth{
		Top:    dy / 2,
		Bottom: dy - dy/2,
		Left:   dx / 2,
		Right:  dx - dx/2,
	}
}

// Pad grows the spatial axes by the given widths, filling new bins with fill.
func (m *Map) Pad(w PadWidth, fill float64) *Map {
	geom := m.Geom.WithSpatialShape(m.Geom.NY+w.Top+w.Bottom, m.Geom.NX+w.Left+w.Right)
	out := NewMapFilled(geom, m.Unit, fill)
	for e := 0; e < m.Geom.NEnergy; e++ {
		for y := 0; y < m.Geom.NY; y++ {
			for x := 0; x < m.Geom.NX; x++ {
				out.Set(e, y+w.Top, x+w.Left, m.At(e, y, x))
			}
		}
	}
	return out
}

// Crop removes the given widths from the spatial axes, the inverse of Pad.
func (m *Map) Crop(w PadWidth) (*Map, error) {
	ny := m.Geom.NY - w.Top - w.Bottom
	nx := m.Geom.NX - w.Left - w.Right
	if ny < 1 || nx < 1 {
		return nil, fmt.Errorf("crop width %+v larger than map shape (%d, %d)", w, m.Geom.NY, m.Geom.NX)
	}
	out := NewMap(m.Geom.WithSpatialShape(ny, nx), m.Unit)
	for e := 0; e < m.Geom.NEnergy; e++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				out.Set(e, y, x, m.At(e, y+w.Top, x+w.Left))
			}
		}
	}
	return out, nil
}

// Downsample reduces the spatial axes by an integer factor. With preserve
// true the coarse bin holds the sum of its fine bins (extensive quantities:
// counts, predicted counts); otherwise the mean (intensive quantities:
// exposure). The spatial shape must divide evenly by the factor.
func (m *Map) Downsample(factor int, preserve bool) (*Map, error) {
	if factor < 1 {
		return nil, fmt.Errorf("downsampling factor must be >= 1, got %d", factor)
	}
	if m.Geom.NY%factor != 0 || m.Geom.NX%factor != 0 {
		return nil, fmt.Errorf("map shape (%d, %d) not divisible by downsampling factor %d",
			m.Geom.NY, m.Geom.NX, factor)
	}
	geom := &Geometry{
		NEnergy: m.Geom.NEnergy,
		NY:      m.Geom.NY / factor,
		NX:      m.Geom.NX / factor,
		BinSz:   m.Geom.BinSz * float64(factor),
	}
	out := NewMap(geom, m.Unit)
	norm := 1.0
	if !preserve {
		norm = 1.0 / float64(factor*factor)
	}
	for e := 0; e < geom.NEnergy; e++ {
		for y := 0; y < geom.NY; y++ {
			for x := 0; x < geom.NX; x++ {
				sum := 0.0
				for dy := 0; dy < factor; dy++ {
					for dx := 0; dx < factor; dx++ {
						sum += m.At(e, y*factor+dy, x*factor+dx)
					}
				}
				out.Set(e, y, x, sum*norm)
			}
		}
	}
	return out, nil
}

// UpsampleOrder selects the interpolation used by Upsample.
type UpsampleOrder int

const (
	// UpsampleNearest repeats each coarse bin. Exact for integer-valued
	// quantities like iteration counts.
	UpsampleNearest UpsampleOrder = iota
	// UpsampleLinear interpolates bilinearly between coarse bin centres.
	UpsampleLinear
)

// Upsample grows the spatial axes by an integer factor without rescaling
// values (bin values are treated as intensive).
func (m *Map) Upsample(factor int, order UpsampleOrder) (*Map, error) {
	if factor < 1 {
		return nil, fmt.Errorf("upsampling factor must be >= 1, got %d", factor)
	}
	geom := &Geometry{
		NEnergy: m.Geom.NEnergy,
		NY:      m.Geom.NY * factor,
		NX:      m.Geom.NX * factor,
		BinSz:   m.Geom.BinSz / float64(factor),
	}
	out := NewMap(geom, m.Unit)
	for e := 0; e < geom.NEnergy; e++ {
		for y := 0; y < geom.NY; y++ {
			for x := 0; x < geom.NX; x++ {
				var v float64
				switch order {
				case UpsampleLinear:
					v = m.sampleBilinear(e, y, x, factor)
				default:
					v = m.At(e, y/factor, x/factor)
				}
				out.Set(e, y, x, v)
			}
		}
	}
	return out, nil
}

// sampleBilinear evaluates the coarse plane at the centre of fine pixel
// (y, x), interpolating between the four surrounding coarse bin centres and
// clamping at the map edge.
func (m *Map) sampleBilinear(e, y, x, factor int) float64 {
	f := float64(factor)
	// Fine pixel centre in coarse pixel coordinates.
	cy := (float64(y)+0.5)/f - 0.5
	cx := (float64(x)+0.5)/f - 0.5

	y0 := clampInt(int(floorF(cy)), 0, m.Geom.NY-1)
	x0 := clampInt(int(floorF(cx)), 0, m.Geom.NX-1)
	y1 := clampInt(y0+1, 0, m.Geom.NY-1)
	x1 := clampInt(x0+1, 0, m.Geom.NX-1)

	wy := clampF(cy-float64(y0), 0, 1)
	wx := clampF(cx-float64(x0), 0, 1)

	v00 := m.At(e, y0, x0)
	v01 := m.At(e, y0, x1)
	v10 := m.At(e, y1, x0)
	v11 := m.At(e, y1, x1)

	top := v00*(1-wx) + v01*wx
	bot := v10*(1-wx) + v11*wx
	return top*(1-wy) + bot*wy
}

func floorF(v float64) float64 {
	f := float64(int(v))
	if v < 0 && v != f {
		f--
	}
	return f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
