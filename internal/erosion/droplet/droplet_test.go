package droplet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/tilemap"
)

func testParams() Params {
	return Params{
		Iterations:      500,
		Inertia:         0.3,
		CapacityFactor:  10,
		ErosionRate:     0.3,
		DepositRate:     0.2,
		Evaporation:     0.02,
		MinVolume:       0.01,
		MaxSteps:        64,
		ErosionRadius:   2,
		InitialWater:    1.0,
		InitialVelocity: 1.0,
		Gravity:         8.0,
	}
}

func mountainHeightmap(size int) *tilemap.Grid[float32] {
	h := tilemap.New[float32](size, size)
	cx, cy := float64(size)/2, float64(size)/2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := dx*dx + dy*dy
			h.Set(x, y, float32(200.0-dist*0.5))
		}
	}
	return h
}

func TestSimulate_Deterministic(t *testing.T) {
	h1 := mountainHeightmap(24)
	h2 := mountainHeightmap(24)
	hardness := tilemap.NewFilled[float32](24, 24, 0.3)

	s1 := Simulate(context.Background(), h1, hardness, testParams(), 42, CPUBackend{})
	s2 := Simulate(context.Background(), h2, hardness, testParams(), 42, CPUBackend{})

	assert.Equal(t, s1.TotalEroded, s2.TotalEroded)
	h1.Each(func(x, y int, v float32) {
		assert.Equal(t, v, h2.Get(x, y))
	})
}

func TestNewBrush_WeightsSumToOne(t *testing.T) {
	b := NewBrush(3)
	var total float32
	for _, w := range b.Weight {
		total += w
	}
	assert.InDelta(t, 1.0, total, 1e-3)
}

func TestSimulate_NeverProducesInfiniteHeight(t *testing.T) {
	h := mountainHeightmap(16)
	hardness := tilemap.NewFilled[float32](16, 16, 0.1)

	Simulate(context.Background(), h, hardness, testParams(), 7, CPUBackend{})

	h.Each(func(x, y int, v float32) {
		assert.False(t, v > 1e8 || v < -1e8)
	})
}

func TestSimulate_RespectsErosionDepositionBounds(t *testing.T) {
	h := mountainHeightmap(16)
	hardness := tilemap.NewFilled[float32](16, 16, 0.05)

	Simulate(context.Background(), h, hardness, testParams(), 7, CPUBackend{})

	h.Each(func(x, y int, v float32) {
		assert.GreaterOrEqual(t, v, float32(-5000))
		assert.LessOrEqual(t, v, float32(2000))
	})
}

func TestSimulate_SoftRockErodesMoreThanHardRock(t *testing.T) {
	soft := mountainHeightmap(24)
	hard := mountainHeightmap(24)
	softHardness := tilemap.NewFilled[float32](24, 24, 0.05)
	hardHardness := tilemap.NewFilled[float32](24, 24, 0.95)

	softStats := Simulate(context.Background(), soft, softHardness, testParams(), 99, CPUBackend{})
	hardStats := Simulate(context.Background(), hard, hardHardness, testParams(), 99, CPUBackend{})

	assert.Greater(t, softStats.TotalEroded, hardStats.TotalEroded)
}
