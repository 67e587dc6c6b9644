// Package noise wraps go-perlin for the handful of coherent-noise needs of
// the erosion engine: hi-res "crumple" roughness/warp (C6) and meander bank
// selection (C8). Grounded on the teacher's geography/noise.go.
package noise

import (
	"github.com/aquilax/go-perlin"
)

// Generator produces deterministic 2D/3D Perlin noise from a seed.
type Generator struct {
	p *perlin.Perlin
}

// New creates a generator seeded deterministically from seed. alpha/beta/n
// match the teacher's defaults (2, 2, 3 octaves).
func New(seed int64) *Generator {
	return &Generator{p: perlin.NewPerlin(2, 2, 3, seed)}
}

// Noise2D returns a value in roughly [-1, 1].
func (g *Generator) Noise2D(x, y float64) float64 {
	return g.p.Noise2D(x, y)
}

// Noise3D returns a value in roughly [-1, 1].
func (g *Generator) Noise3D(x, y, z float64) float64 {
	return g.p.Noise3D(x, y, z)
}
