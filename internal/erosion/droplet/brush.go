package droplet

// Brush is a precomputed circular erosion/deposition kernel: offsets paired
// with a normalized weight that sums to 1 across the brush. Ported from
// original_source's erosion::utils::create_erosion_brush.
type Brush struct {
	DX, DY []int
	Weight []float32
}

// NewBrush builds a circular brush of the given radius with a cone-shaped
// (1 - dist²/r²) falloff, weights normalized to sum to 1.
func NewBrush(radius int) Brush {
	var dx, dy []int
	var weight []float32
	r := radius
	rSq := float32(r * r)
	total := float32(0)

	for j := -r; j <= r; j++ {
		for i := -r; i <= r; i++ {
			distSq := float32(i*i + j*j)
			if distSq <= rSq {
				w := float32(1.0)
				if rSq > 0 {
					w = 1.0 - distSq/rSq
				}
				if w < 0 {
					w = 0
				}
				dx = append(dx, i)
				dy = append(dy, j)
				weight = append(weight, w)
				total += w
			}
		}
	}

	if total > 0 {
		for i := range weight {
			weight[i] /= total
		}
	}

	return Brush{DX: dx, DY: dy, Weight: weight}
}
