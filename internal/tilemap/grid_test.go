package tilemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrid_WrapX(t *testing.T) {
	g := New[float32](4, 4)
	g.Set(0, 0, 1)
	assert.Equal(t, float32(1), g.Get(4, 0))
	assert.Equal(t, float32(1), g.Get(-4, 0))
}

func TestGrid_ClampY(t *testing.T) {
	g := New[float32](4, 4)
	g.Set(0, 0, 5)
	g.Set(0, 3, 9)
	assert.Equal(t, float32(5), g.Get(0, -1))
	assert.Equal(t, float32(9), g.Get(0, 10))
}

func TestGrid_GetMut(t *testing.T) {
	g := New[float32](2, 2)
	p := g.GetMut(1, 1)
	*p = 42
	assert.Equal(t, float32(42), g.Get(1, 1))
}

func TestGrid_Clone(t *testing.T) {
	g := New[float32](2, 2)
	g.Set(0, 0, 7)
	clone := g.Clone()
	clone.Set(0, 0, 9)
	assert.Equal(t, float32(7), g.Get(0, 0))
	assert.Equal(t, float32(9), clone.Get(0, 0))
}

func TestHeightAt_Bilinear(t *testing.T) {
	g := New[float32](4, 4)
	g.Set(0, 0, 0)
	g.Set(1, 0, 10)
	g.Set(0, 1, 0)
	g.Set(1, 1, 10)

	h := HeightAt(g, 0.5, 0)
	assert.InDelta(t, 5.0, h, 1e-6)
}

func TestHeightAt_WrapsX(t *testing.T) {
	g := New[float32](4, 4)
	g.Fill(3)
	h := HeightAt(g, 4.5, 0)
	assert.InDelta(t, 3.0, h, 1e-6)
}

func TestGradientAt_Flat(t *testing.T) {
	g := New[float32](8, 8)
	g.Fill(5)
	gx, gy := GradientAt(g, 3, 3)
	assert.InDelta(t, 0.0, gx, 1e-6)
	assert.InDelta(t, 0.0, gy, 1e-6)
}

func TestGrid3D_Bounds(t *testing.T) {
	g := NewGrid3D(4, 4)
	g.Set(0, 0, MinZ, ZTileOre)
	g.Set(0, 0, MaxZ, ZTileRuin)
	assert.Equal(t, ZTileOre, g.Get(0, 0, MinZ))
	assert.Equal(t, ZTileRuin, g.Get(0, 0, MaxZ))
	assert.Equal(t, ZTileAir, g.Get(0, 0, 0))
}

func TestGrid3D_ClampsZ(t *testing.T) {
	g := NewGrid3D(2, 2)
	g.Set(0, 0, MinZ-5, ZTileWater)
	assert.Equal(t, ZTileWater, g.Get(0, 0, MinZ))
}
