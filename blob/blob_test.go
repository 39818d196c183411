package blob

import "testing"

func flatAppearance(n int) []Appearance {
	return make([]Appearance, n)
}

func TestDetect_SinglePeakGrowsOneBlob(t *testing.T) {
	// 5x5 grid, single anomalous peak at (2,2) surrounded by a weaker halo.
	const w, h = 5, 5
	heatmap := make([]float64, w*h)
	heatmap[2*w+2] = 5.0
	heatmap[2*w+1] = 2.0
	heatmap[2*w+3] = 2.0
	heatmap[1*w+2] = 2.0
	heatmap[3*w+2] = 2.0

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	blobs := d.Detect(heatmap, flatAppearance(w*h))

	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	if blobs[0].ChunkCount != 5 {
		t.Fatalf("expected 5 member chunks, got %d", blobs[0].ChunkCount)
	}
	if blobs[0].Box.MinX != 1 || blobs[0].Box.MaxX != 3 || blobs[0].Box.MinY != 1 || blobs[0].Box.MaxY != 3 {
		t.Fatalf("unexpected bounding box: %+v", blobs[0].Box)
	}
}

func TestDetect_TwoSeparatedPeaksGrowTwoBlobs(t *testing.T) {
	const w, h = 6, 3
	heatmap := make([]float64, w*h)
	heatmap[0*w+0] = 5.0
	heatmap[0*w+5] = 5.0

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	blobs := d.Detect(heatmap, flatAppearance(w*h))

	if len(blobs) != 2 {
		t.Fatalf("expected 2 blobs, got %d", len(blobs))
	}
}

func TestDetect_BelowThresholdProducesNoBlobs(t *testing.T) {
	const w, h = 4, 4
	heatmap := make([]float64, w*h)
	heatmap[5] = 0.5

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	blobs := d.Detect(heatmap, flatAppearance(w*h))

	if len(blobs) != 0 {
		t.Fatalf("expected 0 blobs below threshold, got %d", len(blobs))
	}
}

func TestDetect_TiedPeaksAreDeterministic(t *testing.T) {
	const w, h = 5, 1
	heatmap := []float64{5.0, 0, 5.0, 0, 5.0}

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	first := d.Detect(heatmap, flatAppearance(w*h))

	d2 := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	second := d2.Detect(heatmap, flatAppearance(w*h))

	if len(first) != len(second) {
		t.Fatalf("expected deterministic blob count, got %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Box != second[i].Box {
			t.Fatalf("expected identical blob ordering/boxes across runs at index %d: %+v vs %+v", i, first[i].Box, second[i].Box)
		}
	}
}

func TestDetect_IDsResetEachFrameAreMonotonicWithinFrame(t *testing.T) {
	const w, h = 6, 1
	heatmap := []float64{5.0, 0, 0, 5.0, 0, 0}
	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})

	first := d.Detect(heatmap, flatAppearance(w*h))
	second := d.Detect(heatmap, flatAppearance(w*h))

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 blobs each frame, got %d then %d", len(first), len(second))
	}
	if first[0].ID != 1 || first[1].ID != 2 {
		t.Fatalf("expected IDs 1,2 on first frame, got %d,%d", first[0].ID, first[1].ID)
	}
}

func TestFilter_DropsBelowAbsoluteMinSize(t *testing.T) {
	const w, h = 10, 1
	heatmap := make([]float64, w*h)
	heatmap[0] = 5.0 // isolated single-chunk blob

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 2, BlobSizeStdDevFilter: 0})
	blobs := d.Detect(heatmap, flatAppearance(w*h))

	if len(blobs) != 0 {
		t.Fatalf("expected single-chunk blob to be dropped by AbsoluteMinBlobSize, got %d", len(blobs))
	}
}

func TestFilter_DropsStatisticalOutlierBySize(t *testing.T) {
	const w, h = 20, 1
	heatmap := make([]float64, w*h)
	// Three large blobs of size 4, one tiny blob of size 1, all well
	// separated. Each large run carries a strict peak so it seeds a blob.
	for _, start := range []int{0, 6, 12} {
		heatmap[start] = 5.0
		heatmap[start+1] = 6.0
		heatmap[start+2] = 5.0
		heatmap[start+3] = 5.0
	}
	heatmap[18] = 5.0 // isolated, size 1

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0.5})
	blobs := d.Detect(heatmap, flatAppearance(w*h))

	for _, b := range blobs {
		if b.ChunkCount == 1 {
			t.Fatalf("expected statistical outlier (size 1 among size-4 blobs) to be filtered out, got blob %+v", b)
		}
	}
}

func TestBuildBlob_AggregatesAppearance(t *testing.T) {
	const w, h = 3, 1
	heatmap := []float64{5.0, 6.0, 5.0} // strict peak in the middle seeds one blob
	appearance := []Appearance{
		{Hue: 0, HueDefined: true, Saturation: 1.0, Luminance: 0.5},
		{Hue: 0, HueDefined: true, Saturation: 1.0, Luminance: 0.5},
		{Hue: 0, HueDefined: true, Saturation: 1.0, Luminance: 0.5},
	}

	d := NewDetector(w, h, Config{RegionGrowThreshold: 1.0, AbsoluteMinBlobSize: 1, BlobSizeStdDevFilter: 0})
	blobs := d.Detect(heatmap, appearance)

	if len(blobs) != 1 {
		t.Fatalf("expected 1 blob, got %d", len(blobs))
	}
	b := blobs[0]
	if !b.HueDefined || b.MeanHue != 0 {
		t.Fatalf("expected mean hue 0, got defined=%v hue=%v", b.HueDefined, b.MeanHue)
	}
	if b.MeanSat != 1.0 || b.MeanLum != 0.5 {
		t.Fatalf("expected mean sat/lum 1.0/0.5, got %v/%v", b.MeanSat, b.MeanLum)
	}
}
