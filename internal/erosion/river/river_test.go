package river

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/tilemap"
)

func slopedHeightmap(width, height int) *tilemap.Grid[float32] {
	h := tilemap.New[float32](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h.Set(x, y, float32(height-y)*10-float32(x))
		}
	}
	return h
}

func TestErode_ProducesNonNegativeStats(t *testing.T) {
	h := slopedHeightmap(20, 20)
	hardness := tilemap.NewFilled[float32](20, 20, 0.3)

	params := DefaultParams()
	params.SourceMinAccumulation = 5
	params.SourceMinElevation = 1
	params.Passes = 1

	stats := Erode(h, hardness, params)
	assert.GreaterOrEqual(t, stats.TotalEroded, 0.0)
	assert.GreaterOrEqual(t, stats.TotalDeposited, 0.0)
}

func TestErode_RespectsMaxErosionPerCell(t *testing.T) {
	h := slopedHeightmap(16, 16)
	hardness := tilemap.NewFilled[float32](16, 16, 0.0)

	params := DefaultParams()
	params.SourceMinAccumulation = 3
	params.SourceMinElevation = 1
	params.Passes = 1
	params.MaxErosion = 2.0

	stats := Erode(h, hardness, params)
	assert.LessOrEqual(t, stats.MaxErosion, params.MaxErosion)
}

func TestCalculateRiverWidth_ClampsRange(t *testing.T) {
	assert.Equal(t, 1, calculateRiverWidth(0.0001, 2, 100))
	assert.LessOrEqual(t, calculateRiverWidth(1e9, 2, 100), 8)
}

func TestGetPerpendicular_CoversAllDirections(t *testing.T) {
	for d := uint8(0); d < 8; d++ {
		px, py := getPerpendicular(d)
		assert.False(t, px == 0 && py == 0)
	}
}
