// Package fixture loads still images from disk into the RGBA byte buffers
// pipeline.Pipeline.ProcessFrame expects, standing in for a real video
// decoder (out of scope for this module).
package fixture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Load decodes the image file at path and resamples it to exactly
// width x height via nearest-neighbor scaling, returning a tightly packed
// RGBA buffer (stride == width*4) ready for Pipeline.ProcessFrame.
func Load(path string, width, height int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("fixture: decode %s: %w", path, err)
	}
	return Resample(img, width, height), nil
}

// Resample nearest-neighbor scales src to exactly width x height and
// flattens it into an RGBA byte buffer. width/height <= 0 are clamped to 1.
func Resample(src image.Image, width, height int) []byte {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		sy := b.Min.Y + y*sh/height
		for x := 0; x < width; x++ {
			sx := b.Min.X + x*sw/width
			r, g, bl, a := src.At(sx, sy).RGBA()
			c := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}
			o := (y*width + x) * 4
			out[o], out[o+1], out[o+2], out[o+3] = c.R, c.G, c.B, c.A
		}
	}
	return out
}
