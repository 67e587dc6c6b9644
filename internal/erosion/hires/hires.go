// Package hires implements the "crumple" hi-res erosion orchestrator (C6,
// spec §4.5): the heightmap is upscaled with domain-warped roughness noise
// so rivers carved at the higher resolution can meander more convincingly,
// blurred to melt sharp upscale ridges, eroded at the higher resolution
// using scaled params, then downscaled back with a variance-gated kernel
// that preserves carved channels a plain average would smear away.
// Grounded on original_source's erosion::mod scale_params_for_resolution and
// its simulate_erosion_hires driver; upscale_for_erosion/gaussian_blur/
// downscale themselves aren't present in the captured original source (their
// defining file wasn't part of the retrieval pack), so this package builds
// them in the teacher's idiom from the spec's description, using
// disintegration/gift for the blur step exactly as the reference intends.
package hires

import (
	"image"
	"image/color"

	"github.com/disintegration/gift"

	"geomorph/internal/noise"
	"geomorph/internal/tilemap"
)

// Upscale grows h by factor in both dimensions, bilinearly sampling the base
// elevation and adding roughness noise (domain-warped by warp strength) so
// flat plains gain the fine-grained relief needed for post-upscale rivers to
// meander instead of tracing a blocky staircase.
func Upscale(h *tilemap.Grid[float32], factor int, roughness, warp float32, seed int64) *tilemap.Grid[float32] {
	if factor <= 1 {
		return h.Clone()
	}

	srcWidth, srcHeight := h.Width, h.Height
	dstWidth, dstHeight := srcWidth*factor, srcHeight*factor
	out := tilemap.New[float32](dstWidth, dstHeight)

	roughnessNoise := noise.New(seed)
	warpNoise := noise.New(seed + 1)
	const roughnessFrequency = 0.08
	const warpFrequency = 0.02

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := float64(x) / float64(factor)
			srcY := float64(y) / float64(factor)

			if warp > 0 {
				wx := warpNoise.Noise2D(srcX*warpFrequency, srcY*warpFrequency)
				wy := warpNoise.Noise2D(srcX*warpFrequency+100, srcY*warpFrequency+100)
				srcX += wx * float64(warp)
				srcY += wy * float64(warp)
			}

			base := tilemap.HeightAt(h, srcX, srcY)

			n := roughnessNoise.Noise2D(float64(x)*roughnessFrequency, float64(y)*roughnessFrequency)
			// Roughness bites harder on flat ground than on steep slopes —
			// a slope already has structure for a river to follow.
			gx, gy := tilemap.GradientAt(h, srcX, srcY)
			slope := gx*gx + gy*gy
			flatness := 1.0 / (1.0 + slope*4.0)

			out.Set(x, y, float32(base)+float32(n)*roughness*float32(flatness))
		}
	}

	return out
}

// GaussianBlur smooths out with a 2*radius+1-ish kernel via gift's
// GaussianBlur filter, operating on a min-max normalized 16-bit grayscale
// representation of the heightmap and mapping back to the original range.
func GaussianBlur(h *tilemap.Grid[float32], radius int) *tilemap.Grid[float32] {
	if radius <= 0 {
		return h.Clone()
	}

	width, height := h.Width, h.Height
	minV, maxV := float32(0), float32(0)
	first := true
	h.Each(func(x, y int, v float32) {
		if first {
			minV, maxV = v, v
			first = false
			return
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	})
	spread := maxV - minV
	if spread < 1e-6 {
		spread = 1
	}

	src := image.NewGray16(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			normalized := (h.Get(x, y) - minV) / spread
			src.SetGray16(x, y, color.Gray16{Y: clampToGray16(normalized)})
		}
	}

	filter := gift.New(gift.GaussianBlur(float32(radius)))
	dst := image.NewGray16(filter.Bounds(src.Bounds()))
	filter.Draw(dst, src)

	out := tilemap.New[float32](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := dst.Gray16At(x, y).Y
			normalized := float32(c) / 65535.0
			out.Set(x, y, minV+normalized*spread)
		}
	}
	return out
}

func clampToGray16(normalized float32) uint16 {
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}
	return uint16(normalized * 65535.0)
}

// varianceThreshold gates Downscale's choice between averaging and
// minimum-picking per block (spec §4.5 step 7): a block whose intra-block
// height variance exceeds this is assumed to straddle a carved channel, so
// averaging it would erase the channel instead of preserving it.
const varianceThreshold = 15.0

// Downscale shrinks h back down by factor, per base cell picking either the
// block average (smooth terrain) or the block minimum (if intra-block
// variance exceeds varianceThreshold) so a narrow carved channel that a
// plain box-average would smear back out survives the resolution drop.
func Downscale(h *tilemap.Grid[float32], factor int) *tilemap.Grid[float32] {
	if factor <= 1 {
		return h.Clone()
	}

	dstWidth, dstHeight := h.Width/factor, h.Height/factor
	out := tilemap.New[float32](dstWidth, dstHeight)

	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			var sum float32
			min := h.Get(x*factor, y*factor)
			count := 0
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					v := h.Get(x*factor+dx, y*factor+dy)
					sum += v
					if v < min {
						min = v
					}
					count++
				}
			}
			mean := sum / float32(count)

			var variance float32
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					d := h.Get(x*factor+dx, y*factor+dy) - mean
					variance += d * d
				}
			}
			variance /= float32(count)

			if variance > varianceThreshold {
				out.Set(x, y, min)
			} else {
				out.Set(x, y, mean)
			}
		}
	}
	return out
}
