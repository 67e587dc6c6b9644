// Package network carves a connected dendritic drainage network onto a
// heightmap and breaches remaining depressions so the whole land surface
// drains, spec §4.6 (C7). Ported from original_source's
// erosion::carve_river_network and erosion::breach_depressions.
package network

import (
	"math"
	"sort"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

const maxFloat32 = math.MaxFloat32

// CarveNetwork enforces strict monotonic elevation decrease along D8 flow
// paths: cells are processed from highest accumulation to lowest, each
// carved to a channel depth proportional to its normalized flow
// accumulation, then corrected over 20 passes until every downstream step
// is strictly decreasing (or no further change occurs).
func CarveNetwork(h *tilemap.Grid[float32], sourceThreshold float32) {
	width, height := h.Width, h.Height

	dir := flow.Direction(h)
	acc := flow.Accumulate(h, dir)

	maxAcc := float32(1.0)
	h.Each(func(x, y int, v float32) {
		if v < 0 {
			return
		}
		if a := acc.Get(x, y); a > maxAcc {
			maxAcc = a
		}
	})

	type landCell struct {
		x, y int
		elev float32
		acc  float32
	}
	var cells []landCell
	h.Each(func(x, y int, v float32) {
		if v >= 0 {
			cells = append(cells, landCell{x, y, v, acc.Get(x, y)})
		}
	})
	sort.Slice(cells, func(i, j int) bool { return cells[i].acc > cells[j].acc })

	carved := tilemap.NewFilled[float32](width, height, maxFloat32)
	h.Each(func(x, y int, v float32) {
		if v < 0 {
			carved.Set(x, y, 0)
		}
	})

	threshold := sourceThreshold * 0.5

	for _, c := range cells {
		d := dir.Get(c.x, c.y)
		if d == flow.NoFlow {
			carved.Set(c.x, c.y, c.elev)
			continue
		}
		nx, ny, _ := flow.Downstream(dir, c.x, c.y)
		downstreamElev := carved.Get(nx, ny)
		if downstreamElev >= maxFloat32 {
			carved.Set(c.x, c.y, c.elev)
			continue
		}

		theta := 0.5
		step := 2.0 / math.Max(math.Pow(float64(c.acc), theta), 0.1)
		minElev := downstreamElev + float32(step)

		channelDepth := float32(0)
		if c.acc >= threshold {
			channelDepth = float32(math.Pow(float64(c.acc/maxAcc), 0.3))*50.0 + 10.0
		}

		targetElev := maxf(minElev, c.elev-channelDepth)
		finalElev := minf(maxf(targetElev, minElev), c.elev)
		carved.Set(c.x, c.y, finalElev)
	}

	h.Each(func(x, y int, v float32) {
		ce := carved.Get(x, y)
		if ce < maxFloat32 && ce >= 0 && ce < v {
			h.Set(x, y, ce)
		}
	})

	for pass := 0; pass < 20; pass++ {
		d := flow.Direction(h)
		anyChanged := false

		for y := 1; y < height-1; y++ {
			for x := 0; x < width; x++ {
				hv := h.Get(x, y)
				if hv < 0 {
					continue
				}
				if d.Get(x, y) == flow.NoFlow {
					continue
				}
				nx, ny, _ := flow.Downstream(d, x, y)
				nh := h.Get(nx, ny)
				if nh >= 0 && nh >= hv {
					newNH := hv - 0.5
					if newNH > 0 {
						h.Set(nx, ny, newNH)
						anyChanged = true
					}
				}
			}
		}

		if !anyChanged {
			break
		}
	}
}

// BreachDepressions iteratively carves a one-cell-deep channel out of every
// land pit by lowering its lowest neighbour just below the pit floor, up to
// 1000 passes, matching the reference breach_depressions.
func BreachDepressions(h *tilemap.Grid[float32]) {
	width, height := h.Width, h.Height
	changed := true
	iterations := 0
	const maxIterations = 1000

	for changed && iterations < maxIterations {
		changed = false
		iterations++

		for y := 1; y < height-1; y++ {
			for x := 0; x < width; x++ {
				hv := h.Get(x, y)
				if hv < 0 {
					continue
				}

				isPit := true
				minNeighborH := float32(maxFloat32)
				minDir := 0

				for d := 0; d < 8; d++ {
					ny := y + flow.DY[d]
					nx := ((x+flow.DX[d])%width + width) % width
					nh := h.Get(nx, ny)
					if nh < hv {
						isPit = false
						break
					}
					if nh < minNeighborH {
						minNeighborH = nh
						minDir = d
					}
				}

				if isPit && minNeighborH < maxFloat32 {
					nx := ((x+flow.DX[minDir])%width + width) % width
					ny := y + flow.DY[minDir]
					if ny < 0 {
						ny = 0
					} else if ny >= height {
						ny = height - 1
					}
					breachHeight := hv - 0.01
					if breachHeight < h.Get(nx, ny) {
						h.Set(nx, ny, breachHeight)
						changed = true
					}
				}
			}
		}
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
