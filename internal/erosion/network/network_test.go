package network

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

func TestCarveNetwork_EnforcesMonotonicDescent(t *testing.T) {
	h := tilemap.New[float32](10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			h.Set(x, y, float32(50-y*4))
		}
	}

	CarveNetwork(h, 15.0)

	dir := flow.Direction(h)
	for y := 1; y < 9; y++ {
		for x := 0; x < 10; x++ {
			hv := h.Get(x, y)
			if hv < 0 || dir.Get(x, y) == flow.NoFlow {
				continue
			}
			nx, ny, ok := flow.Downstream(dir, x, y)
			if !ok {
				continue
			}
			nh := h.Get(nx, ny)
			if nh >= 0 {
				assert.LessOrEqual(t, nh, hv)
			}
		}
	}
}

func TestBreachDepressions_RemovesPits(t *testing.T) {
	h := tilemap.NewFilled[float32](6, 6, 10)
	h.Set(3, 3, 0)

	BreachDepressions(h)

	assert.Equal(t, 0, flow.PitCount(h))
}

func TestBreachDepressions_OceanUntouched(t *testing.T) {
	h := tilemap.NewFilled[float32](4, 4, -3)
	BreachDepressions(h)
	h.Each(func(x, y int, v float32) {
		assert.Equal(t, float32(-3), v)
	})
}
