// Package heightmapio loads and saves heightmaps as 16-bit grayscale PNGs,
// the same image.Gray16 representation internal/erosion/hires already
// normalizes into for its Gaussian blur step. Elevations in the fixed range
// [MinElevation, MaxElevation] are mapped linearly onto the code points
// 0..65535, so a round trip through a PNG is lossy only at the resolution a
// uint16 channel allows.
package heightmapio

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"geomorph/internal/tilemap"
)

// MinElevation..MaxElevation is the elevation span a 16-bit grayscale PNG can
// represent: code point 0 is MinElevation, 65535 is MaxElevation.
const (
	MinElevation = -500.0
	MaxElevation = 4500.0
	elevationSpan = MaxElevation - MinElevation
)

// Load reads a grayscale (or any color.Gray16-convertible) PNG and decodes
// it into a heightmap using the fixed MinElevation..MaxElevation mapping.
func Load(path string) (*tilemap.Grid[float32], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap %s: %w", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %s: %w", path, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	grid := tilemap.New[float32](width, height)

	gray16, isGray16 := img.(*image.Gray16)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var code uint16
			if isGray16 {
				code = gray16.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y
			} else {
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				code = uint16(r)
			}
			normalized := float32(code) / 65535.0
			grid.Set(x, y, MinElevation+normalized*elevationSpan)
		}
	}
	return grid, nil
}

// Save encodes h as a 16-bit grayscale PNG, clamping to MinElevation..MaxElevation before
// quantizing so out-of-range peaks/trenches don't wrap around.
func Save(path string, h *tilemap.Grid[float32]) error {
	img := image.NewGray16(image.Rect(0, 0, h.Width, h.Height))
	h.Each(func(x, y int, v float32) {
		normalized := (v - MinElevation) / elevationSpan
		if normalized < 0 {
			normalized = 0
		} else if normalized > 1 {
			normalized = 1
		}
		img.SetGray16(x, y, color.Gray16{Y: uint16(normalized * 65535.0)})
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heightmap %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode heightmap %s: %w", path, err)
	}
	return nil
}
