package skymap

import "fmt"

// Convolve convolves each energy plane of the map with the matching plane of
// the kernel, returning a same-shaped map. The kernel must have the same
// number of energy planes and odd spatial dimensions. Bins outside the map
// contribute zero.
func (m *Map) Convolve(kernel *Map) (*Map, error) {
	if kernel.Geom.NEnergy != m.Geom.NEnergy {
		return nil, fmt.Errorf("kernel has %d energy planes, map has %d",
			kernel.Geom.NEnergy, m.Geom.NEnergy)
	}
	ky, kx := kernel.Geom.NY, kernel.Geom.NX
	if ky%2 == 0 || kx%2 == 0 {
		return nil, fmt.Errorf("kernel spatial shape (%d, %d) must be odd", ky, kx)
	}
	hy, hx := ky/2, kx/2

	out := NewMap(m.Geom, m.Unit)
	for e := 0; e < m.Geom.NEnergy; e++ {
		for y := 0; y < m.Geom.NY; y++ {
			for x := 0; x < m.Geom.NX; x++ {
				sum := 0.0
				for j := 0; j < ky; j++ {
					my := y + j - hy
					if my < 0 || my >= m.Geom.NY {
						continue
					}
					for i := 0; i < kx; i++ {
						mx := x + i - hx
						if mx < 0 || mx >= m.Geom.NX {
							continue
						}
						// Correlation-style flip so a symmetric kernel
						// behaves identically either way.
						sum += m.At(e, my, mx) * kernel.At(e, ky-1-j, kx-1-i)
					}
				}
				out.Set(e, y, x, sum)
			}
		}
	}
	return out, nil
}

// ExtractCutout copies the window of the kernel-shaped region centred at
// (row, col) into a flat slice in [energy][y][x] order. The window must lie
// fully inside the map; callers restrict positions to the valid mask.
func (m *Map) ExtractCutout(row, col, ky, kx int) []float64 {
	hy, hx := ky/2, kx/2
	out := make([]float64, m.Geom.NEnergy*ky*kx)
	i := 0
	for e := 0; e < m.Geom.NEnergy; e++ {
		for y := row - hy; y <= row+hy; y++ {
			for x := col - hx; x <= col+hx; x++ {
				out[i] = m.At(e, y, x)
				i++
			}
		}
	}
	return out
}
