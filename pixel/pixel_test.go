package pixel

import "testing"

func TestFromRGBA_Grey(t *testing.T) {
	c := FromRGBA(128, 128, 128, 255)
	if c.Saturation != 0 {
		t.Fatalf("expected zero saturation for grey, got %v", c.Saturation)
	}
	if c.HasHue() {
		t.Fatalf("grey pixel should not carry a defined hue")
	}
}

func TestFromRGBA_PureRed(t *testing.T) {
	c := FromRGBA(255, 0, 0, 255)
	if c.Hue != 0 {
		t.Fatalf("expected hue 0 for pure red, got %v", c.Hue)
	}
	if c.Saturation < 0.99 {
		t.Fatalf("expected saturation ~1 for pure red, got %v", c.Saturation)
	}
	if c.Lightness < 0.49 || c.Lightness > 0.51 {
		t.Fatalf("expected lightness ~0.5, got %v", c.Lightness)
	}
}

func TestFromRGBA_PureGreen(t *testing.T) {
	c := FromRGBA(0, 255, 0, 255)
	if c.Hue < 119 || c.Hue > 121 {
		t.Fatalf("expected hue ~120 for pure green, got %v", c.Hue)
	}
}

func TestCircularDistance_WrapAround(t *testing.T) {
	if d := CircularDistance(350, 10); d != 20 {
		t.Fatalf("expected wrap-around distance 20, got %v", d)
	}
	if d := CircularDistance(10, 350); d != 20 {
		t.Fatalf("expected symmetric distance 20, got %v", d)
	}
	if d := CircularDistance(0, 180); d != 180 {
		t.Fatalf("expected max distance 180, got %v", d)
	}
}
