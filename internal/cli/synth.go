package cli

import (
	"geomorph/internal/noise"
	"geomorph/internal/tilemap"
)

// synthesizeHeightmap builds a plausible-looking planar heightmap when no
// --input is given: a handful of octaves of Perlin noise summed the way the
// teacher's GenerateHeightmapWithTidalStress layers its n1/n2 variation
// terms, plus a radial falloff so the map's edges sit near sea level and a
// drainage network has somewhere to empty into.
func synthesizeHeightmap(width, height int, seed int64) *tilemap.Grid[float32] {
	continental := noise.New(seed)
	detail := noise.New(seed + 1)

	h := tilemap.New[float32](width, height)
	cx, cy := float64(width)/2, float64(height)/2
	maxDist := cx
	if cy < maxDist {
		maxDist = cy
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			n1 := continental.Noise2D(float64(x)*0.01, float64(y)*0.01)
			n2 := detail.Noise2D(float64(x)*0.05, float64(y)*0.05)
			elevation := n1*900 + n2*150 + 200

			dx, dy := float64(x)-cx, float64(y)-cy
			dist := dx*dx + dy*dy
			dist = dist / (maxDist * maxDist)
			falloff := 1.0 - dist
			if falloff < -1 {
				falloff = -1
			}

			h.Set(x, y, float32(elevation*falloff))
		}
	}
	return h
}
