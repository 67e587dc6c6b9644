package flow

import "geomorph/internal/tilemap"

// DefaultEpsilon is the minimum downstream gradient enforced by
// FillDepressions, spec §4.1 "Depression fill".
const DefaultEpsilon = 1e-4

// infinity is a sentinel larger than any plausible terrain elevation.
const infinity = 1e9

// FillDepressions computes the Planchon-Darboux filled surface w ≥ h: ocean
// cells (h < 0) and the cells of the top and bottom rows (the N/S edge
// outlets) are seeded at their own height, every other cell starts at
// +∞, then alternating forward/reverse raster scans relax
// w(c) ← max(h(c), min over 8-neighbours of w(n) + ε) until no cell changes,
// per spec §4.1.
func FillDepressions(h *tilemap.Grid[float32]) *tilemap.Grid[float32] {
	return FillDepressionsEps(h, DefaultEpsilon)
}

// FillDepressionsEps is FillDepressions with an explicit epsilon.
func FillDepressionsEps(h *tilemap.Grid[float32], epsilon float64) *tilemap.Grid[float32] {
	width, height := h.Width, h.Height
	w := tilemap.New[float32](width, height)

	h.Each(func(x, y int, v float32) {
		if v < 0 || y == 0 || y == height-1 {
			w.Set(x, y, v)
		} else {
			w.Set(x, y, infinity)
		}
	})

	for {
		changed := false
		if relaxPass(h, w, epsilon, false) {
			changed = true
		}
		if relaxPass(h, w, epsilon, true) {
			changed = true
		}
		if !changed {
			break
		}
	}

	return w
}

// relaxPass performs a single raster scan (forward if !reverse, reverse
// otherwise) of the Planchon-Darboux relaxation, reporting whether any cell
// changed.
func relaxPass(h, w *tilemap.Grid[float32], epsilon float64, reverse bool) bool {
	width, height := h.Width, h.Height
	changed := false

	scanY := func(fn func(y int)) {
		if reverse {
			for y := height - 1; y >= 0; y-- {
				fn(y)
			}
		} else {
			for y := 0; y < height; y++ {
				fn(y)
			}
		}
	}
	scanX := func(fn func(x int)) {
		if reverse {
			for x := width - 1; x >= 0; x-- {
				fn(x)
			}
		} else {
			for x := 0; x < width; x++ {
				fn(x)
			}
		}
	}

	scanY(func(y int) {
		scanX(func(x int) {
			terrain := float64(h.Get(x, y))
			current := float64(w.Get(x, y))
			if current <= terrain {
				return
			}

			best := infinity
			for d := 0; d < 8; d++ {
				ny := y + DY[d]
				if ny < 0 || ny >= height {
					continue
				}
				nx := x + DX[d]
				cand := float64(w.Get(nx, ny)) + epsilon
				if cand < best {
					best = cand
				}
			}

			newVal := terrain
			if best > terrain {
				newVal = best
			}
			if float32(newVal) < float32(current) {
				w.Set(x, y, float32(newVal))
				changed = true
			}
		})
	})

	return changed
}
