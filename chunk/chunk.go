// Package chunk partitions a frame into fixed-size tiles and computes each
// tile's aggregate appearance signature.
package chunk

import (
	"errors"
	"fmt"
	"math"

	"github.com/TheGonzalezDesigns/waldo-vision/pixel"
)

// ErrInvalidGeometry is returned by NewGrid when the image dimensions are
// not exact multiples of the chunk dimensions, or any dimension is zero.
var ErrInvalidGeometry = errors.New("chunk: invalid geometry")

// ErrInvalidBuffer is returned by Partition when the supplied RGBA buffer
// does not match the declared image geometry.
var ErrInvalidBuffer = errors.New("chunk: invalid buffer")

// Aggregate is one chunk's per-frame appearance signature: arithmetic mean
// luminance and saturation, plus a circular mean hue.
type Aggregate struct {
	CX, CY     int     // grid coordinates
	MeanLum    float64 // mean lightness, [0,1]
	MeanSat    float64 // mean saturation, [0,1]
	MeanHue    float64 // circular mean hue in degrees, [0,360); 0 if undefined
	HueDefined bool    // false when every pixel in the chunk was at/under the saturation floor
}

// Grid partitions frames of a fixed image size into a fixed-size chunk
// tiling and reuses its scratch buffers across calls, per the pipeline's
// memory policy of not allocating per frame.
type Grid struct {
	imageWidth, imageHeight int
	chunkWidth, chunkHeight int
	gridWidth, gridHeight   int

	aggregates []Aggregate // row-major, len == gridWidth*gridHeight, reused every Partition call
}

// NewGrid validates geometry and constructs a reusable Grid.
func NewGrid(imageWidth, imageHeight, chunkWidth, chunkHeight int) (*Grid, error) {
	if imageWidth <= 0 || imageHeight <= 0 || chunkWidth <= 0 || chunkHeight <= 0 {
		return nil, fmt.Errorf("%w: zero or negative dimension", ErrInvalidGeometry)
	}
	if imageWidth%chunkWidth != 0 || imageHeight%chunkHeight != 0 {
		return nil, fmt.Errorf("%w: image %dx%d not divisible by chunk %dx%d",
			ErrInvalidGeometry, imageWidth, imageHeight, chunkWidth, chunkHeight)
	}
	gw := imageWidth / chunkWidth
	gh := imageHeight / chunkHeight
	g := &Grid{
		imageWidth:  imageWidth,
		imageHeight: imageHeight,
		chunkWidth:  chunkWidth,
		chunkHeight: chunkHeight,
		gridWidth:   gw,
		gridHeight:  gh,
		aggregates:  make([]Aggregate, gw*gh),
	}
	for cy := 0; cy < gh; cy++ {
		for cx := 0; cx < gw; cx++ {
			g.aggregates[cy*gw+cx] = Aggregate{CX: cx, CY: cy}
		}
	}
	return g, nil
}

// GridWidth returns the number of chunk columns.
func (g *Grid) GridWidth() int { return g.gridWidth }

// GridHeight returns the number of chunk rows.
func (g *Grid) GridHeight() int { return g.gridHeight }

// Partition converts RGBA frame bytes into per-chunk aggregates, row-major.
// The returned slice is owned by Grid and is overwritten by the next call;
// callers needing to retain values across frames must copy them.
func (g *Grid) Partition(frameBytes []byte) ([]Aggregate, error) {
	want := g.imageWidth * g.imageHeight * 4
	if len(frameBytes) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBuffer, len(frameBytes), want)
	}

	stride := g.imageWidth * 4
	for cy := 0; cy < g.gridHeight; cy++ {
		for cx := 0; cx < g.gridWidth; cx++ {
			agg := &g.aggregates[cy*g.gridWidth+cx]
			agg.CX, agg.CY = cx, cy

			var sumLum, sumSat, sumCos, sumSin float64
			n := 0
			x0 := cx * g.chunkWidth
			y0 := cy * g.chunkHeight
			for y := y0; y < y0+g.chunkHeight; y++ {
				rowOff := y * stride
				for x := x0; x < x0+g.chunkWidth; x++ {
					i := rowOff + x*4
					hsl := pixel.FromRGBA(frameBytes[i], frameBytes[i+1], frameBytes[i+2], frameBytes[i+3])
					sumLum += hsl.Lightness
					sumSat += hsl.Saturation
					if hsl.HasHue() {
						rad := hsl.Hue * math.Pi / 180
						sumCos += math.Cos(rad)
						sumSin += math.Sin(rad)
					}
					n++
				}
			}

			agg.MeanLum = sumLum / float64(n)
			agg.MeanSat = sumSat / float64(n)
			if sumCos != 0 || sumSin != 0 {
				hue := math.Atan2(sumSin, sumCos) * 180 / math.Pi
				if hue < 0 {
					hue += 360
				}
				agg.MeanHue = hue
				agg.HueDefined = true
			} else {
				agg.MeanHue = 0
				agg.HueDefined = false
			}
		}
	}
	return g.aggregates, nil
}
