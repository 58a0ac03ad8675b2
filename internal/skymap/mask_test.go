package skymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPositionsRowMajor(t *testing.T) {
	g := mustGeom(t, 1, 3, 3, 0.1)
	m := NewMask(g)
	m.Set(0, 2, true)
	m.Set(2, 0, true)

	got := m.Positions()
	assert.Equal(t, [][2]int{{0, 2}, {2, 0}}, got)
	assert.Equal(t, 2, m.CountTrue())
}

func TestMaskAnd(t *testing.T) {
	g := mustGeom(t, 1, 2, 2, 0.1)
	a := NewMaskFilled(g, true)
	b := NewMask(g)
	b.Set(1, 1, true)

	a.And(b)
	assert.Equal(t, 1, a.CountTrue())
	assert.True(t, a.At(1, 1))
}

func TestReduceAnyOverEnergy(t *testing.T) {
	g := mustGeom(t, 2, 2, 2, 0.1)
	m := NewMap(g, "")
	m.Set(1, 0, 1, 1.0) // set only in the second plane

	mask := ReduceAnyOverEnergy(m)
	assert.True(t, mask.At(0, 1))
	assert.False(t, mask.At(0, 0))
}

func TestMaskPadDownsample(t *testing.T) {
	g := mustGeom(t, 1, 2, 2, 0.1)
	m := NewMaskFilled(g, true)

	padded := m.Pad(PadWidth{Top: 1, Bottom: 1, Left: 1, Right: 1})
	assert.Equal(t, 4, padded.Geom.NY)
	assert.False(t, padded.At(0, 0), "padding is excluded")
	assert.True(t, padded.At(1, 1))

	// A coarse pixel mixing padding with interior is excluded.
	down := padded.Downsample(2)
	assert.Equal(t, 0, down.CountTrue())

	// A fully-set fine block survives.
	full := NewMaskFilled(mustGeom(t, 1, 4, 4, 0.1), true).Downsample(2)
	assert.Equal(t, 4, full.CountTrue())
}
