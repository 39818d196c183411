// Package assets provides the demo frames cmd/waldoplay's built-in demo
// mode runs against when no fixture_paths are configured (or none load).
// There's no sample
// image shipped in this repository to embed, so frames are synthesized
// procedurally at the requested size instead of decoded from a binary
// asset.
package assets

// BaselineFrame returns a flat mid-grey RGBA frame of width x height,
// representing an unchanging scene a pipeline would calibrate against and
// then report as Stable indefinitely.
func BaselineFrame(width, height int) []byte {
	buf := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		o := i * 4
		buf[o], buf[o+1], buf[o+2], buf[o+3] = 128, 128, 128, 255
	}
	return buf
}

// IntruderFrame returns BaselineFrame with a bright, saturated rectangle
// painted at [x0,x1)x[y0,y1), simulating an object entering an otherwise
// static scene.
func IntruderFrame(width, height, x0, y0, x1, y1 int) []byte {
	buf := BaselineFrame(width, height)
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > width {
		x1 = width
	}
	if y1 > height {
		y1 = height
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			o := (y*width + x) * 4
			buf[o], buf[o+1], buf[o+2], buf[o+3] = 220, 40, 40, 255
		}
	}
	return buf
}
