package chunk

import "testing"

func solidFrame(w, h int, r, g, b, a uint8) []byte {
	buf := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		buf[i*4] = r
		buf[i*4+1] = g
		buf[i*4+2] = b
		buf[i*4+3] = a
	}
	return buf
}

func TestNewGrid_RejectsBadGeometry(t *testing.T) {
	if _, err := NewGrid(20, 20, 3, 10); err == nil {
		t.Fatalf("expected error for non-dividing chunk width")
	}
	if _, err := NewGrid(0, 20, 10, 10); err == nil {
		t.Fatalf("expected error for zero image width")
	}
	if _, err := NewGrid(20, 20, 0, 10); err == nil {
		t.Fatalf("expected error for zero chunk width")
	}
}

func TestNewGrid_Dimensions(t *testing.T) {
	g, err := NewGrid(20, 20, 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.GridWidth() != 2 || g.GridHeight() != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", g.GridWidth(), g.GridHeight())
	}
}

func TestPartition_RejectsWrongBufferLength(t *testing.T) {
	g, _ := NewGrid(20, 20, 10, 10)
	_, err := g.Partition(make([]byte, 1598))
	if err == nil {
		t.Fatalf("expected ErrInvalidBuffer")
	}
}

func TestPartition_SolidGreyHasNoHue(t *testing.T) {
	g, _ := NewGrid(20, 20, 10, 10)
	frame := solidFrame(20, 20, 128, 128, 128, 255)
	aggs, err := g.Partition(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(aggs) != 4 {
		t.Fatalf("expected 4 chunk aggregates, got %d", len(aggs))
	}
	for _, a := range aggs {
		if a.HueDefined {
			t.Fatalf("grey chunk should not define hue: %+v", a)
		}
		if a.MeanSat != 0 {
			t.Fatalf("expected zero saturation, got %v", a.MeanSat)
		}
	}
}

func TestPartition_SolidRedHasHueZero(t *testing.T) {
	g, _ := NewGrid(20, 20, 10, 10)
	frame := solidFrame(20, 20, 255, 0, 0, 255)
	aggs, err := g.Partition(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range aggs {
		if !a.HueDefined {
			t.Fatalf("red chunk should define hue")
		}
		if a.MeanHue != 0 {
			t.Fatalf("expected hue 0 for pure red, got %v", a.MeanHue)
		}
	}
}

func TestPartition_ReusesScratchSlice(t *testing.T) {
	g, _ := NewGrid(20, 20, 10, 10)
	frame := solidFrame(20, 20, 128, 128, 128, 255)
	first, _ := g.Partition(frame)
	second, _ := g.Partition(frame)
	if &first[0] != &second[0] {
		t.Fatalf("expected Partition to reuse its backing aggregate slice")
	}
}
