package skymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skywatch-data/significance.report/internal/testutil"
)

func TestConvolveDeltaKernelIsIdentity(t *testing.T) {
	g := mustGeom(t, 1, 5, 5, 0.1)
	m := NewMap(g, "")
	for i := range m.Data {
		m.Data[i] = float64(i % 7)
	}

	k := NewMap(g.WithSpatialShape(3, 3), "")
	k.Set(0, 1, 1, 1.0)

	out, err := m.Convolve(k)
	require.NoError(t, err)
	assert.Equal(t, m.Data, out.Data)
}

func TestConvolveBoxKernelSums(t *testing.T) {
	g := mustGeom(t, 1, 3, 3, 0.1)
	m := NewMap(g, "")
	m.Set(0, 1, 1, 1.0)

	k := NewMapFilled(g.WithSpatialShape(3, 3), "", 1.0)

	out, err := m.Convolve(k)
	testutil.AssertNoError(t, err)
	// A single central count smeared by an all-ones 3x3 kernel lights every
	// pixel of the 3x3 map.
	want := make([]float64, len(out.Data))
	for i := range want {
		want[i] = 1.0
	}
	testutil.AssertAllClose(t, out.Data, want, 1e-12)
}

func TestConvolveRejectsEvenKernel(t *testing.T) {
	g := mustGeom(t, 1, 5, 5, 0.1)
	m := NewMap(g, "")
	k := NewMap(g.WithSpatialShape(2, 3), "")
	_, err := m.Convolve(k)
	testutil.AssertError(t, err)
}

func TestConvolvePlaneMismatch(t *testing.T) {
	m := NewMap(mustGeom(t, 2, 5, 5, 0.1), "")
	k := NewMap(mustGeom(t, 1, 3, 3, 0.1), "")
	_, err := m.Convolve(k)
	testutil.AssertError(t, err)
}

func TestExtractCutout(t *testing.T) {
	g := mustGeom(t, 2, 5, 5, 0.1)
	m := NewMap(g, "")
	for i := range m.Data {
		m.Data[i] = float64(i)
	}

	cut := m.ExtractCutout(2, 2, 3, 3)
	require.Len(t, cut, 2*3*3)
	assert.Equal(t, m.At(0, 1, 1), cut[0])
	assert.Equal(t, m.At(0, 2, 2), cut[4])
	assert.Equal(t, m.At(1, 3, 3), cut[17])
}
