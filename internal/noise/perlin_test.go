package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	assert.Equal(t, a.Noise2D(1.5, 2.5), b.Noise2D(1.5, 2.5))
}

func TestGenerator_DifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	assert.NotEqual(t, a.Noise2D(1.5, 2.5), b.Noise2D(1.5, 2.5))
}

func TestGenerator_Noise3D(t *testing.T) {
	g := New(7)
	v := g.Noise3D(0.1, 0.2, 0.3)
	assert.GreaterOrEqual(t, v, -1.5)
	assert.LessOrEqual(t, v, 1.5)
}
