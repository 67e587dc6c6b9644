package meander

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/flow"
	"geomorph/internal/noise"
	"geomorph/internal/tilemap"
)

func TestErode_SkipsSteepTerrain(t *testing.T) {
	h := tilemap.New[float32](8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			h.Set(x, y, float32(8-y)*100)
		}
	}
	before := h.Clone()

	dir := flow.Direction(h)
	acc := flow.Accumulate(h, dir)
	gen := noise.New(1)

	Erode(h, dir, acc, 1.0, 10.0, gen)

	h.Each(func(x, y int, v float32) {
		assert.Equal(t, before.Get(x, y), v)
	})
}

func TestErode_FlatReachChanges(t *testing.T) {
	h := tilemap.NewFilled[float32](10, 10, 5)
	for x := 0; x < 10; x++ {
		h.Set(x, 9, 4)
	}

	dir := flow.Direction(h)
	acc := flow.Accumulate(h, dir)
	gen := noise.New(1)

	Erode(h, dir, acc, 1.0, 10.0, gen)

	changed := false
	h.Each(func(x, y int, v float32) {
		if v != 5 && v != 4 {
			changed = true
		}
	})
	assert.True(t, changed)
}

func TestPasses_DoesNotPanic(t *testing.T) {
	h := tilemap.NewFilled[float32](12, 12, 5)
	gen := noise.New(7)
	assert.NotPanics(t, func() {
		Passes(h, 1.0, 5.0, gen, 3)
	})
}
