// Package pixel implements RGBA→HSL conversion, the primitive on top of
// which the grid and temporal layers build their statistical model.
package pixel

import "math"

// HueUndefinedEpsilon is the saturation floor below which hue carries no
// meaningful signal (greys and near-greys). Pixels at or below this
// saturation contribute to luminance/saturation aggregates but not to a
// chunk's circular hue mean.
const HueUndefinedEpsilon = 1e-4

// HSL is a pixel's derived appearance in hue/saturation/lightness space.
// Hue is in degrees [0,360); saturation and lightness are in [0,1].
type HSL struct {
	Hue        float64
	Saturation float64
	Lightness  float64
}

// HasHue reports whether Saturation is high enough for Hue to be defined.
func (c HSL) HasHue() bool {
	return c.Saturation > HueUndefinedEpsilon
}

// FromRGBA converts an 8-bit RGBA pixel to HSL. Alpha is not part of the
// appearance model and is ignored.
func FromRGBA(r, g, b, _ uint8) HSL {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min

	lightness := (max + min) / 2

	if delta < 1e-9 {
		return HSL{Hue: 0, Saturation: 0, Lightness: lightness}
	}

	var saturation float64
	if lightness <= 0.5 {
		saturation = delta / (max + min)
	} else {
		saturation = delta / (2 - max - min)
	}

	var hue float64
	switch max {
	case rf:
		hue = math.Mod((gf-bf)/delta, 6)
	case gf:
		hue = (bf-rf)/delta + 2
	default:
		hue = (rf-gf)/delta + 4
	}
	hue *= 60
	if hue < 0 {
		hue += 360
	}
	return HSL{Hue: hue, Saturation: saturation, Lightness: lightness}
}

// CircularDistance returns the smallest angular distance in degrees
// between two hue angles, always in [0,180].
func CircularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
