package skymap

// Mask is a boolean single-plane map: true where evaluation is permitted.
type Mask struct {
	Geom *Geometry
	Data []bool
}

// NewMask allocates an all-false mask over the image geometry.
func NewMask(geom *Geometry) *Mask {
	img := geom.ToImage()
	return &Mask{Geom: img, Data: make([]bool, img.SpatialSize())}
}

// NewMaskFilled allocates a mask with every pixel set to fill.
func NewMaskFilled(geom *Geometry, fill bool) *Mask {
	m := NewMask(geom)
	if fill {
		for i := range m.Data {
			m.Data[i] = true
		}
	}
	return m
}

// At returns the mask value at (row, col).
func (m *Mask) At(y, x int) bool { return m.Data[y*m.Geom.NX+x] }

// Set writes the mask value at (row, col).
func (m *Mask) Set(y, x int, v bool) { m.Data[y*m.Geom.NX+x] = v }

// CountTrue returns the number of pixels set.
func (m *Mask) CountTrue() int {
	n := 0
	for _, v := range m.Data {
		if v {
			n++
		}
	}
	return n
}

// Positions enumerates all set pixels as (row, col) pairs in row-major order.
func (m *Mask) Positions() [][2]int {
	out := make([][2]int, 0, m.CountTrue())
	for y := 0; y < m.Geom.NY; y++ {
		for x := 0; x < m.Geom.NX; x++ {
			if m.At(y, x) {
				out = append(out, [2]int{y, x})
			}
		}
	}
	return out
}

// And intersects the mask with another of the same shape, in place.
func (m *Mask) And(o *Mask) {
	for i := range m.Data {
		m.Data[i] = m.Data[i] && o.Data[i]
	}
}

// ReduceAnyOverEnergy builds a mask that is true where any energy plane of
// the map is non-zero. Used to collapse 3-D safe masks to the image plane.
func ReduceAnyOverEnergy(m *Map) *Mask {
	out := NewMask(m.Geom)
	for e := 0; e < m.Geom.NEnergy; e++ {
		plane := m.Plane(e)
		for i, v := range plane {
			if v != 0 {
				out.Data[i] = true
			}
		}
	}
	return out
}

// Pad grows the mask by the given widths, filling new pixels with false.
func (m *Mask) Pad(w PadWidth) *Mask {
	geom := m.Geom.WithSpatialShape(m.Geom.NY+w.Top+w.Bottom, m.Geom.NX+w.Left+w.Right)
	out := NewMask(geom)
	for y := 0; y < m.Geom.NY; y++ {
		for x := 0; x < m.Geom.NX; x++ {
			out.Set(y+w.Top, x+w.Left, m.At(y, x))
		}
	}
	return out
}

// Downsample reduces the mask by an integer factor. A coarse pixel is set
// only when every contributing fine pixel is set, so evaluation never leaks
// into excluded territory.
func (m *Mask) Downsample(factor int) *Mask {
	ny, nx := m.Geom.NY/factor, m.Geom.NX/factor
	geom := &Geometry{NEnergy: 1, NY: ny, NX: nx, BinSz: m.Geom.BinSz * float64(factor)}
	out := NewMask(geom)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			all := true
			for dy := 0; dy < factor && all; dy++ {
				for dx := 0; dx < factor; dx++ {
					if !m.At(y*factor+dy, x*factor+dx) {
						all = false
						break
					}
				}
			}
			out.Set(y, x, all)
		}
	}
	return out
}
