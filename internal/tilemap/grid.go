// Package tilemap provides the semantic grid container (C1) that the rest
// of the geomorphology engine is built on: a width×height array with
// horizontal wrap and vertical clamp, grounded on the teacher's
// geography.Heightmap and on original_source's Tilemap<T>.
package tilemap

import "math"

// Number constrains the element types the erosion core actually stores:
// elevations, flow accumulation, direction/voxel bytes, and boolean masks.
type Number interface {
	~float32 | ~float64 | ~uint8 | ~int32 | ~bool
}

// Grid is a 2D tilemap with horizontal wrap on x and clamp on y, matching
// spec §3: "a (width × height) array of T with horizontal wrap on x and
// clamp on y".
type Grid[T Number] struct {
	Width  int
	Height int
	data   []T
}

// New creates a width×height grid with all cells zero-valued.
func New[T Number](width, height int) *Grid[T] {
	return &Grid[T]{Width: width, Height: height, data: make([]T, width*height)}
}

// NewFilled creates a width×height grid with every cell set to value.
func NewFilled[T Number](width, height int, value T) *Grid[T] {
	g := New[T](width, height)
	for i := range g.data {
		g.data[i] = value
	}
	return g
}

// index wraps x horizontally and clamps y, matching the "((x mod w)+w) mod
// w" / "y.clamp(0, h-1)" rule from spec §3.
func (g *Grid[T]) index(x, y int) int {
	x = ((x % g.Width) + g.Width) % g.Width
	if y < 0 {
		y = 0
	} else if y >= g.Height {
		y = g.Height - 1
	}
	return y*g.Width + x
}

// Get returns the value at (x, y), wrapping x and clamping y.
func (g *Grid[T]) Get(x, y int) T {
	return g.data[g.index(x, y)]
}

// Set writes the value at (x, y), wrapping x and clamping y.
func (g *Grid[T]) Set(x, y int, value T) {
	g.data[g.index(x, y)] = value
}

// GetMut returns a pointer into the backing array at (x, y), so callers can
// mutate in place without a Get/Set round trip (hot loops in the erosion
// stages use this).
func (g *Grid[T]) GetMut(x, y int) *T {
	return &g.data[g.index(x, y)]
}

// Clone returns a deep copy — used by stages that need a read-only snapshot
// of a grid they go on to modify (glacial, hi-res upscaling).
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{Width: g.Width, Height: g.Height, data: make([]T, len(g.data))}
	copy(out.data, g.data)
	return out
}

// Fill sets every cell to value.
func (g *Grid[T]) Fill(value T) {
	for i := range g.data {
		g.data[i] = value
	}
}

// Each calls fn for every cell in row-major order.
func (g *Grid[T]) Each(fn func(x, y int, v T)) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			fn(x, y, g.data[y*g.Width+x])
		}
	}
}

// Raw exposes the backing slice (row-major, y*Width+x) for callers that need
// bulk access.
func (g *Grid[T]) Raw() []T {
	return g.data
}

// HeightAt bilinearly samples a float grid at a fractional position,
// matching spec §3's height_at contract exactly: x wraps, y clamps to
// [0, h-1.001] before flooring so the +1 neighbour never reads out of range.
func HeightAt(g *Grid[float32], x, y float64) float64 {
	width := float64(g.Width)
	height := float64(g.Height)

	x = mod(x, width)
	if y < 0 {
		y = 0
	} else if y > height-1.001 {
		y = height - 1.001
	}

	x0 := int(x)
	y0 := int(y)
	x1 := (x0 + 1) % g.Width
	y1 := y0 + 1
	if y1 > g.Height-1 {
		y1 = g.Height - 1
	}

	fx := x - float64(x0)
	fy := y - float64(y0)

	h00 := float64(g.Get(x0, y0))
	h10 := float64(g.Get(x1, y0))
	h01 := float64(g.Get(x0, y1))
	h11 := float64(g.Get(x1, y1))

	h0 := h00*(1-fx) + h10*fx
	h1 := h01*(1-fx) + h11*fx
	return h0*(1-fy) + h1*fy
}

// GradientAt returns the central-difference gradient of a float grid at a
// fractional position, used by hi-res upscaling and the slope statistics of
// the geomorphometry evaluator.
func GradientAt(g *Grid[float32], x, y float64) (float64, float64) {
	const eps = 0.5
	hL := HeightAt(g, x-eps, y)
	hR := HeightAt(g, x+eps, y)
	hD := HeightAt(g, x, y-eps)
	hU := HeightAt(g, x, y+eps)
	return (hR - hL) / (2 * eps), (hU - hD) / (2 * eps)
}

func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}
