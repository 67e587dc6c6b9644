package geomorph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

func slopedBasin(size int) *tilemap.Grid[float32] {
	h := tilemap.New[float32](size, size)
	center := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float32(x) - center
			dy := float32(y) - center
			dist := float32(dy) // drains toward y=0 edge
			h.Set(x, y, 100+dist*2+dx*0.01)
		}
	}
	return h
}

func TestAnalyze_ProducesBoundedRealismScore(t *testing.T) {
	h := slopedBasin(32)
	results := Analyze(h, 4.0)
	score := results.RealismScore()
	assert.GreaterOrEqual(t, score, float32(0))
	assert.LessOrEqual(t, score, float32(100))
}

func TestAnalyze_FlatTerrainHasNoRelief(t *testing.T) {
	h := tilemap.NewFilled[float32](16, 16, 50.0)
	results := Analyze(h, 4.0)
	assert.Equal(t, float32(0), results.RelativeRelief)
}

func TestTraceSegments_FollowsFlowDirection(t *testing.T) {
	h := slopedBasin(16)
	dir := flow.Direction(h)
	acc := flow.Accumulate(h, dir)
	network := streamNetwork(h, dir, acc, 2.0)

	segments := traceSegments(dir, network, 16, 16)
	for _, s := range segments {
		for i := 0; i < len(s.cells)-1; i++ {
			nx, ny, ok := flow.Downstream(dir, s.cells[i].x, s.cells[i].y)
			if ok {
				assert.Equal(t, cell{nx, ny}, s.cells[i+1])
			}
		}
	}
}

func TestMeanSinuosity_StraightLineIsOne(t *testing.T) {
	s := segment{cells: []cell{{0, 0}, {0, 1}, {0, 2}, {0, 3}}}
	sinuosity := meanSinuosity([]segment{s})
	assert.InDelta(t, 1.0, sinuosity, 0.01)
}

func TestLogLogSlope_RecoversKnownExponent(t *testing.T) {
	xs := []float64{1, 10, 100, 1000}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2.0 * math.Pow(x, 0.6)
	}
	slope := logLogSlope(xs, ys)
	assert.InDelta(t, 0.6, slope, 0.05)
}
