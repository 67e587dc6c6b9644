package heightmapio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geomorph/internal/tilemap"
)

func TestSaveLoad_RoundTripsWithinQuantization(t *testing.T) {
	h := tilemap.New[float32](6, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			h.Set(x, y, float32(x*100-y*50))
		}
	}

	path := filepath.Join(t.TempDir(), "heightmap.png")
	require.NoError(t, Save(path, h))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, h.Width, loaded.Width)
	require.Equal(t, h.Height, loaded.Height)

	h.Each(func(x, y int, v float32) {
		assert.InDelta(t, v, loaded.Get(x, y), elevationSpan/65535.0*2)
	})
}

func TestSave_ClampsOutOfRangeElevations(t *testing.T) {
	h := tilemap.New[float32](2, 2)
	h.Set(0, 0, MinElevation-1000)
	h.Set(1, 0, MaxElevation+1000)
	h.Set(0, 1, 0)
	h.Set(1, 1, 0)

	path := filepath.Join(t.TempDir(), "extreme.png")
	require.NoError(t, Save(path, h))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, MinElevation, loaded.Get(0, 0), 1.0)
	assert.InDelta(t, MaxElevation, loaded.Get(1, 0), 1.0)
}
