package glacial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/tilemap"
)

func defaultParams() Params {
	return Params{
		Timesteps:             50,
		Dt:                    100.0,
		IceDeformCoefficient:  1e-7,
		IceSlidingCoefficient: 5e-4,
		ErosionCoefficient:    1e-4,
		MassBalanceGradient:   0.005,
		GlaciationTemperature: -3.0,
		GlenExponent:          3.0,
		ErosionExponent:       1.0,
	}
}

func TestSimulate_ErodesUnderColdBowl(t *testing.T) {
	h := tilemap.New[float32](32, 32)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			dx, dy := float64(x)-16, float64(y)-16
			dist := dx*dx + dy*dy
			h.Set(x, y, float32(3000.0+dist*10))
		}
	}
	temperature := tilemap.NewFilled[float32](32, 32, -20.0)
	hardness := tilemap.NewFilled[float32](32, 32, 0.5)

	stats := Simulate(h, temperature, hardness, defaultParams())
	assert.Greater(t, stats.TotalEroded, 0.0)
}

func TestIceThickness_NoIceInWarm(t *testing.T) {
	h := tilemap.NewFilled[float32](16, 16, 100.0)
	temperature := tilemap.NewFilled[float32](16, 16, 20.0)

	ice := IceThickness(h, temperature, defaultParams())
	ice.Each(func(x, y int, v float32) {
		assert.Less(t, v, float32(0.1))
	})
}

func TestEstimateELA_UsesOverrideWhenSet(t *testing.T) {
	h := tilemap.NewFilled[float32](4, 4, 100.0)
	temperature := tilemap.NewFilled[float32](4, 4, 0.0)
	override := float32(1234.5)
	p := defaultParams()
	p.SnowlineElevation = &override

	assert.Equal(t, override, estimateELA(p, temperature, h))
}
