package erosion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geomorph/internal/tilemap"
)

func slopedHeightmap(size int) *tilemap.Grid[float32] {
	h := tilemap.New[float32](size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h.Set(x, y, float32(size-y)*5-float32(x)*0.1)
		}
	}
	return h
}

func quickTestParams() Params {
	p := FastParams()
	p.HydraulicIterations = 200
	p.DropletMaxSteps = 50
	p.GlacialTimesteps = 5
	p.RiverSourceMinAccumulation = 3
	p.RiverSourceMinElevation = 1
	p.UseGPU = false
	return p
}

func TestRun_RejectsInvalidDimensions(t *testing.T) {
	pipeline := NewPipeline()
	empty := &tilemap.Grid[float32]{}
	_, _, err := pipeline.Run(context.Background(), empty, AuxMaps{}, quickTestParams(), 1)
	require.Error(t, err)
}

func TestRun_ProducesAnalysisResultsWhenEnabled(t *testing.T) {
	pipeline := NewPipeline()
	h := slopedHeightmap(24)
	params := quickTestParams()
	params.EnableAnalysis = true

	stats, results, err := pipeline.Run(context.Background(), h, AuxMaps{}, params, 42)
	require.NoError(t, err)
	require.NotNil(t, results)
	assert.GreaterOrEqual(t, stats.TotalEroded, 0.0)
}

func TestRun_SkipsAnalysisWhenDisabled(t *testing.T) {
	pipeline := NewPipeline()
	h := slopedHeightmap(16)
	params := quickTestParams()
	params.EnableAnalysis = false
	params.EnableRivers = false
	params.EnableHydraulic = false
	params.EnableGlacial = false

	_, results, err := pipeline.Run(context.Background(), h, AuxMaps{}, params, 7)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestRun_HonorsCancelledContext(t *testing.T) {
	pipeline := NewPipeline()
	h := slopedHeightmap(8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := pipeline.Run(ctx, h, AuxMaps{}, quickTestParams(), 1)
	require.Error(t, err)
}
