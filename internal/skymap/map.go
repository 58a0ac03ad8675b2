package skymap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Map is a unit-tagged array over a Geometry. Data is stored flat in
// [energy][y][x] order. The shape is fixed at creation; producers mutate
// Data in place.
type Map struct {
	Geom *Geometry
	Unit string
	Data []float64
}

// NewMap allocates a zero-filled map.
func NewMap(geom *Geometry, unit string) *Map {
	return &Map{Geom: geom, Unit: unit, Data: make([]float64, geom.Size())}
}

// NewMapFilled allocates a map with every bin set to fill.
func NewMapFilled(geom *Geometry, unit string, fill float64) *Map {
	m := NewMap(geom, unit)
	for i := range m.Data {
		m.Data[i] = fill
	}
	return m
}

// Copy returns a deep copy sharing the geometry.
func (m *Map) Copy() *Map {
	out := &Map{Geom: m.Geom, Unit: m.Unit, Data: make([]float64, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}

func (m *Map) index(e, y, x int) int {
	return (e*m.Geom.NY+y)*m.Geom.NX + x
}

// At returns the value at (energy, row, col).
func (m *Map) At(e, y, x int) float64 { return m.Data[m.index(e, y, x)] }

// Set writes the value at (energy, row, col).
func (m *Map) Set(e, y, x int, v float64) { m.Data[m.index(e, y, x)] = v }

// Plane returns the subslice holding one energy plane.
func (m *Map) Plane(e int) []float64 {
	n := m.Geom.SpatialSize()
	return m.Data[e*n : (e+1)*n]
}

// Total returns the sum over all bins.
func (m *Map) Total() float64 { return floats.Sum(m.Data) }

// Scale multiplies every bin by f in place and returns the map.
func (m *Map) Scale(f float64) *Map {
	floats.Scale(f, m.Data)
	return m
}

// SumOverEnergy collapses the energy axis by summation, returning a
// single-plane map.
func (m *Map) SumOverEnergy() *Map {
	out := NewMap(m.Geom.ToImage(), m.Unit)
	for e := 0; e < m.Geom.NEnergy; e++ {
		floats.Add(out.Data, m.Plane(e))
	}
	return out
}

// Arith applies op elementwise over same-shaped maps, returning a new map
// with the given unit.
func Arith(a, b *Map, unit string, op func(x, y float64) float64) (*Map, error) {
	if !a.Geom.SameShape(b.Geom) {
		return nil, fmt.Errorf("shape mismatch: (%d,%d,%d) vs (%d,%d,%d)",
			a.Geom.NEnergy, a.Geom.NY, a.Geom.NX, b.Geom.NEnergy, b.Geom.NY, b.Geom.NX)
	}
	out := NewMap(a.Geom, unit)
	for i := range out.Data {
		out.Data[i] = op(a.Data[i], b.Data[i])
	}
	return out, nil
}

// MaxSpatial returns the maximum finite value of a single-plane map and its
// pixel position. Returns NaN and (-1, -1) when no finite value exists.
func (m *Map) MaxSpatial() (v float64, row, col int) {
	v, row, col = math.NaN(), -1, -1
	for y := 0; y < m.Geom.NY; y++ {
		for x := 0; x < m.Geom.NX; x++ {
			val := m.At(0, y, x)
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			if math.IsNaN(v) || val > v {
				v, row, col = val, y, x
			}
		}
	}
	return v, row, col
}
