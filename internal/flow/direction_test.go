package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geomorph/internal/tilemap"
)

func TestDirection_FlowsDownhill(t *testing.T) {
	h := tilemap.New[float32](4, 4)
	// Simple ramp descending in +x.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			h.Set(x, y, float32(4-x))
		}
	}

	dir := Direction(h)
	for y := 0; y < 4; y++ {
		for x := 0; x < 3; x++ {
			// x wraps, so x=0 (height 4) drops furthest west across the seam
			// to x=3 (height 1); every other cell steps east.
			wantX := x + 1
			if x == 0 {
				wantX = 3
			}
			nx, ny, ok := Downstream(dir, x, y)
			require.True(t, ok)
			assert.Equal(t, wantX, nx)
			assert.Equal(t, y, ny)
		}
	}
}

func TestDirection_PitIsNoFlow(t *testing.T) {
	h := tilemap.NewFilled[float32](3, 3, 10)
	h.Set(1, 1, 0)

	dir := Direction(h)
	assert.Equal(t, NoFlow, dir.Get(1, 1))
}

func TestDirection_XWraps(t *testing.T) {
	h := tilemap.NewFilled[float32](4, 4, 5)
	h.Set(0, 1, 0)
	h.Set(3, 1, 5)

	dir := Direction(h)
	// (3,1)'s lowest neighbour is the pit at (0,1), across the x seam.
	nx, ny, ok := Downstream(dir, 3, 1)
	require.True(t, ok)
	assert.Equal(t, 0, nx)
	assert.Equal(t, 1, ny)
}

func TestAccumulate_MonotonicDownstream(t *testing.T) {
	h := tilemap.New[float32](5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			h.Set(x, y, float32(5-x))
		}
	}
	dir := Direction(h)
	acc := Accumulate(h, dir)

	for y := 0; y < 5; y++ {
		for x := 0; x < 4; x++ {
			nx, ny, ok := Downstream(dir, x, y)
			require.True(t, ok)
			assert.GreaterOrEqual(t, acc.Get(nx, ny), acc.Get(x, y)+1)
		}
	}
}

func TestAccumulate_StartsAtOne(t *testing.T) {
	h := tilemap.NewFilled[float32](3, 3, 1)
	dir := Direction(h)
	acc := Accumulate(h, dir)
	total := float32(0)
	acc.Each(func(x, y int, v float32) { total += v })
	assert.Equal(t, float32(9), total)
}

func TestPitCount_FlatInteriorCellsArePits(t *testing.T) {
	// No neighbour is lower, so every interior-row cell (rows 1-2) counts.
	h := tilemap.NewFilled[float32](4, 4, 1)
	assert.Equal(t, 8, PitCount(h))
}

func TestPitCount_SingleDepression(t *testing.T) {
	// The depression plus the six plateau cells at x=0 and x=4 in rows 1-3,
	// which do not touch it.
	h := tilemap.NewFilled[float32](5, 5, 10)
	h.Set(2, 2, 0)
	assert.Equal(t, 7, PitCount(h))
}

func TestPitCount_IgnoresOcean(t *testing.T) {
	// The ocean cell is not counted; only the six plateau cells at x=0 and
	// x=4 in rows 1-3, which do not touch it, are.
	h := tilemap.NewFilled[float32](5, 5, 10)
	h.Set(2, 2, -1)
	assert.Equal(t, 6, PitCount(h))
}

func TestFillDepressions_RemovesPit(t *testing.T) {
	h := tilemap.NewFilled[float32](5, 5, 10)
	h.Set(2, 2, 0)

	filled := FillDepressions(h)
	dir := Direction(filled)
	// The formerly-pit cell must now have a downstream neighbour.
	_, _, ok := Downstream(dir, 2, 2)
	assert.True(t, ok)
}

func TestFillDepressions_NeverLowersTerrain(t *testing.T) {
	h := tilemap.New[float32](6, 6)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			h.Set(x, y, float32((x*7+y*3)%5))
		}
	}
	filled := FillDepressions(h)
	h.Each(func(x, y int, v float32) {
		assert.GreaterOrEqual(t, filled.Get(x, y), v)
	})
}

func TestFillDepressions_OceanUnchanged(t *testing.T) {
	h := tilemap.NewFilled[float32](4, 4, -5)
	filled := FillDepressions(h)
	h.Each(func(x, y int, v float32) {
		assert.Equal(t, v, filled.Get(x, y))
	})
}

func TestFillDepressions_Idempotent(t *testing.T) {
	h := tilemap.NewFilled[float32](5, 5, 10)
	h.Set(2, 2, 0)
	h.Set(1, 1, 2)

	once := FillDepressions(h)
	twice := FillDepressions(once)
	once.Each(func(x, y int, v float32) {
		assert.InDelta(t, float64(v), float64(twice.Get(x, y)), 1e-3)
	})
}
