// Package meander applies noise-driven lateral bank erosion to flat river
// reaches (C8, spec §4.7): the outer bank of a bend erodes, the inner bank
// accretes a point bar. Ported from original_source's
// erosion::rivers::apply_meander_erosion.
package meander

import (
	"math"

	"geomorph/internal/flow"
	"geomorph/internal/noise"
	"geomorph/internal/tilemap"
)

const minRiverHeight = 0.1

// Erode runs one meander pass over h: for every land river cell (flow
// accumulation ≥ threshold) on a sufficiently flat reach, noise picks a
// bank side to erode and the opposite side to deposit onto.
func Erode(h *tilemap.Grid[float32], dir *tilemap.Grid[uint8], acc *tilemap.Grid[float32], threshold, strength float32, gen *noise.Generator) {
	width, height := h.Width, h.Height

	for y := 1; y < height-1; y++ {
		for x := 0; x < width; x++ {
			a := acc.Get(x, y)
			hv := h.Get(x, y)
			if a < threshold || hv < 0 {
				continue
			}

			d := dir.Get(x, y)
			if d == flow.NoFlow {
				continue
			}

			nx, ny, _ := flow.Downstream(dir, x, y)
			slope := math.Max(float64(hv-h.Get(nx, ny)), 0.0)

			flatness := math.Max(1.0-math.Min(slope/50.0, 1.0), 0.0)
			if flatness < 0.3 {
				continue
			}

			n := gen.Noise2D(float64(x)*0.07, float64(y)*0.07)

			perpDX, perpDY := getPerpendicular(d)

			side := 1
			if n <= 0 {
				side = -1
			}
			amount := float64(strength) * flatness * math.Abs(n)

			ex := wrapX(x+perpDX*side, width)
			ey := clampY(y+perpDY*side, height)
			eh := h.Get(ex, ey)
			if eh > minRiverHeight {
				h.Set(ex, ey, float32(math.Max(float64(eh)-amount, minRiverHeight)))
			}

			dxp := wrapX(x-perpDX*side, width)
			dyp := clampY(y-perpDY*side, height)
			dh := h.Get(dxp, dyp)
			if dh > 0 {
				h.Set(dxp, dyp, dh+float32(amount*0.5))
			}
		}
	}
}

// Passes runs Erode for n passes, recomputing flow direction/accumulation
// between passes since lateral erosion reshapes the channel, per spec §4.7.
func Passes(h *tilemap.Grid[float32], threshold, strength float32, gen *noise.Generator, n int) {
	for i := 0; i < n; i++ {
		dir := flow.Direction(h)
		acc := flow.Accumulate(h, dir)
		Erode(h, dir, acc, threshold, strength, gen)
	}
}

func getPerpendicular(flowDir uint8) (int, int) {
	switch flowDir {
	case 0:
		return 1, 0
	case 1:
		return 1, 1
	case 2:
		return 0, 1
	case 3:
		return -1, 1
	case 4:
		return -1, 0
	case 5:
		return -1, -1
	case 6:
		return 0, -1
	case 7:
		return 1, -1
	default:
		return 1, 0
	}
}

func wrapX(x, width int) int { return ((x % width) + width) % width }
func clampY(y, height int) int {
	if y < 0 {
		return 0
	}
	if y >= height {
		return height - 1
	}
	return y
}
