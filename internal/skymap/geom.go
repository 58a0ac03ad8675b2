// Package skymap implements the lightweight map container the TS-map engine
// works on: a unit-tagged array with one energy axis and two spatial axes over
// a square-pixel image geometry, plus the padding, resampling and convolution
// operations the estimator needs.
//
// Sky projection and world-coordinate handling live in upstream tooling; a
// Geometry here is purely pixel-based with a bin size in degrees.
package skymap

import "fmt"

// Geometry describes the shape of a map: NEnergy planes of NY x NX pixels,
// each pixel BinSz degrees across. Geometries are immutable once created and
// shared read-only between maps derived from one another.
type Geometry struct {
	NEnergy int
	NY, NX  int
	BinSz   float64
}

// NewGeometry validates and creates a geometry.
func NewGeometry(nEnergy, ny, nx int, binSz float64) (*Geometry, error) {
	if nEnergy < 1 || ny < 1 || nx < 1 {
		return nil, fmt.Errorf("geometry shape must be positive, got (%d, %d, %d)", nEnergy, ny, nx)
	}
	if binSz <= 0 {
		return nil, fmt.Errorf("geometry bin size must be positive, got %g", binSz)
	}
	return &Geometry{NEnergy: nEnergy, NY: ny, NX: nx, BinSz: binSz}, nil
}

// Size returns the total number of bins.
func (g *Geometry) Size() int { return g.NEnergy * g.NY * g.NX }

// SpatialSize returns the number of pixels in one plane.
func (g *Geometry) SpatialSize() int { return g.NY * g.NX }

// Width returns the spatial extent (y, x) in degrees.
func (g *Geometry) Width() (wy, wx float64) {
	return float64(g.NY) * g.BinSz, float64(g.NX) * g.BinSz
}

// ToImage returns the geometry collapsed to a single plane.
func (g *Geometry) ToImage() *Geometry {
	return &Geometry{NEnergy: 1, NY: g.NY, NX: g.NX, BinSz: g.BinSz}
}

// WithSpatialShape returns a geometry with the same energy axis and bin size
// but a different spatial shape. Used to build kernel geometries.
func (g *Geometry) WithSpatialShape(ny, nx int) *Geometry {
	return &Geometry{NEnergy: g.NEnergy, NY: ny, NX: nx, BinSz: g.BinSz}
}

// SameShape reports whether two geometries have identical shape.
func (g *Geometry) SameShape(o *Geometry) bool {
	return g.NEnergy == o.NEnergy && g.NY == o.NY && g.NX == o.NX
}

// Center returns the central pixel (row, col). Only meaningful for odd
// spatial shapes, where the centre is exact.
func (g *Geometry) Center() (row, col int) {
	return g.NY / 2, g.NX / 2
}
