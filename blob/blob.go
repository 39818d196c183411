// Package blob clusters anomalous chunks into coherent blobs via
// peak-finding plus region growing.
package blob

import (
	"math"
	"sort"
)

// Box is an inclusive bounding box in grid coordinates.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

// Width returns the box's extent in chunks along X.
func (b Box) Width() int { return b.MaxX - b.MinX + 1 }

// Height returns the box's extent in chunks along Y.
func (b Box) Height() int { return b.MaxY - b.MinY + 1 }

// CentroidX returns the box's horizontal center in grid-coordinate units.
func (b Box) CentroidX() float64 { return float64(b.MinX+b.MaxX) / 2 }

// CentroidY returns the box's vertical center in grid-coordinate units.
func (b Box) CentroidY() float64 { return float64(b.MinY+b.MaxY) / 2 }

// Appearance is a chunk's hue/saturation/luminance, the subset of
// chunk.Aggregate the detector needs to build a blob signature. Declared
// here (rather than importing chunk) to keep blob a leaf package.
type Appearance struct {
	Hue        float64
	HueDefined bool
	Saturation float64
	Luminance  float64
}

// SmartBlob is one frame's connected anomalous region plus its aggregate
// signature.
type SmartBlob struct {
	ID uint64

	Box    Box
	Chunks []int // flat grid indices (cy*gridWidth+cx) of member chunks

	MeanScore   float64
	MeanHue     float64
	HueDefined  bool
	MeanSat     float64
	MeanLum     float64
	ChunkCount  int
	AspectRatio float64 // Box.Width()/Box.Height()
}

// Config controls the peak-finding, region-growing, and filtering
// thresholds of the detector.
type Config struct {
	RegionGrowThreshold  float64 // score a chunk must exceed to seed or join a blob
	AbsoluteMinBlobSize  int     // hard floor in chunks
	BlobSizeStdDevFilter float64 // drop blobs below mean-k*stddev
}

// Detector finds SmartBlobs in a per-frame anomaly heatmap. It reuses its
// scratch buffers (claim map, BFS queue, seed list) across frames to avoid
// a per-frame allocation.
type Detector struct {
	gridWidth, gridHeight int
	cfg                   Config

	claimed []uint64 // blob ID claiming each chunk, 0 == unclaimed; reset every Detect call
	queue   []int    // BFS scratch queue, reused every Detect call
	seeds   []seed   // scratch seed list, reused every Detect call
	nextID  uint64

	out []SmartBlob // scratch result slice, reused (truncated, not reallocated) every Detect call
}

type seed struct {
	idx   int
	score float64
}

// NewDetector constructs a Detector sized for a gridWidth*gridHeight grid.
func NewDetector(gridWidth, gridHeight int, cfg Config) *Detector {
	return &Detector{
		gridWidth:  gridWidth,
		gridHeight: gridHeight,
		cfg:        cfg,
		claimed:    make([]uint64, gridWidth*gridHeight),
		queue:      make([]int, 0, gridWidth*gridHeight),
		seeds:      make([]seed, 0, gridWidth*gridHeight),
	}
}

// Detect runs peak-finding + region growing over heatmap (row-major,
// length gridWidth*gridHeight, 0 where non-anomalous) and returns the
// filtered SmartBlobs for this frame. appearance supplies each chunk's
// hue/saturation/luminance for blob signature aggregation and must be the
// same length as heatmap.
func (d *Detector) Detect(heatmap []float64, appearance []Appearance) []SmartBlob {
	n := d.gridWidth * d.gridHeight
	for i := 0; i < n; i++ {
		d.claimed[i] = 0
	}
	d.seeds = d.seeds[:0]
	d.out = d.out[:0]
	d.nextID = 0 // blob IDs are per-frame: 1, 2, ... in claim order

	// 1. Identify peak seeds: strict local maxima among 8-neighbors that
	// exceed the region-grow threshold.
	for cy := 0; cy < d.gridHeight; cy++ {
		for cx := 0; cx < d.gridWidth; cx++ {
			idx := cy*d.gridWidth + cx
			score := heatmap[idx]
			if score <= d.cfg.RegionGrowThreshold {
				continue
			}
			if d.isStrictLocalMax(heatmap, cx, cy, score) {
				d.seeds = append(d.seeds, seed{idx: idx, score: score})
			}
		}
	}

	// 2. Sort seeds by score descending; sort.SliceStable preserves the
	// row-major discovery order of the scan above for equal scores,
	// giving deterministic tie-breaks.
	sort.SliceStable(d.seeds, func(i, j int) bool { return d.seeds[i].score > d.seeds[j].score })

	// 3. Flood-fill from each unclaimed seed, first claim wins.
	for _, s := range d.seeds {
		if d.claimed[s.idx] != 0 {
			continue
		}
		d.nextID++
		id := d.nextID
		members := d.growRegion(heatmap, s.idx, id)
		if len(members) == 0 {
			continue
		}
		d.out = append(d.out, d.buildBlob(id, members, heatmap, appearance))
	}

	return d.filter(d.out)
}

func (d *Detector) isStrictLocalMax(heatmap []float64, cx, cy int, score float64) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := cx+dx, cy+dy
			if nx < 0 || ny < 0 || nx >= d.gridWidth || ny >= d.gridHeight {
				continue
			}
			if heatmap[ny*d.gridWidth+nx] >= score {
				return false
			}
		}
	}
	return true
}

// growRegion performs a 4-connected BFS flood-fill from idx, claiming every
// chunk whose score exceeds RegionGrowThreshold and is not already claimed.
// Neighbors are explored in fixed N,E,S,W order for determinism.
func (d *Detector) growRegion(heatmap []float64, idx int, id uint64) []int {
	if d.claimed[idx] != 0 {
		return nil
	}
	d.claimed[idx] = id
	d.queue = d.queue[:0]
	d.queue = append(d.queue, idx)
	members := []int{idx}

	for head := 0; head < len(d.queue); head++ {
		cur := d.queue[head]
		cx, cy := cur%d.gridWidth, cur/d.gridWidth
		neighbors := [4][2]int{{cx, cy - 1}, {cx + 1, cy}, {cx, cy + 1}, {cx - 1, cy}} // N, E, S, W
		for _, nb := range neighbors {
			nx, ny := nb[0], nb[1]
			if nx < 0 || ny < 0 || nx >= d.gridWidth || ny >= d.gridHeight {
				continue
			}
			nidx := ny*d.gridWidth + nx
			if d.claimed[nidx] != 0 {
				continue
			}
			if heatmap[nidx] <= d.cfg.RegionGrowThreshold {
				continue
			}
			d.claimed[nidx] = id
			d.queue = append(d.queue, nidx)
			members = append(members, nidx)
		}
	}
	return members
}

func (d *Detector) buildBlob(id uint64, members []int, heatmap []float64, appearance []Appearance) SmartBlob {
	b := SmartBlob{ID: id, Chunks: append([]int(nil), members...)}
	minX, minY := d.gridWidth, d.gridHeight
	maxX, maxY := -1, -1
	var sumScore, sumSat, sumLum, sumCos, sumSin float64
	hueCount := 0
	for _, idx := range members {
		cx, cy := idx%d.gridWidth, idx/d.gridWidth
		if cx < minX {
			minX = cx
		}
		if cx > maxX {
			maxX = cx
		}
		if cy < minY {
			minY = cy
		}
		if cy > maxY {
			maxY = cy
		}
		sumScore += heatmap[idx]
		if appearance != nil {
			a := appearance[idx]
			sumSat += a.Saturation
			sumLum += a.Luminance
			if a.HueDefined {
				rad := a.Hue * math.Pi / 180
				sumCos += math.Cos(rad)
				sumSin += math.Sin(rad)
				hueCount++
			}
		}
	}
	b.Box = Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
	b.ChunkCount = len(members)
	b.MeanScore = sumScore / float64(len(members))
	b.MeanSat = sumSat / float64(len(members))
	b.MeanLum = sumLum / float64(len(members))
	if hueCount > 0 {
		hue := math.Atan2(sumSin, sumCos) * 180 / math.Pi
		if hue < 0 {
			hue += 360
		}
		b.MeanHue = hue
		b.HueDefined = true
	}
	if h := b.Box.Height(); h > 0 {
		b.AspectRatio = float64(b.Box.Width()) / float64(h)
	}
	return b
}

// mergeFragments is a documented no-op extension point for a future pass
// that would merge blobs believed to be fragments of a single object; see
// DESIGN.md Open Question decisions.
func (d *Detector) mergeFragments(blobs []SmartBlob) []SmartBlob {
	return blobs
}

// filter drops blobs smaller than AbsoluteMinBlobSize and, among the
// remainder, blobs smaller than mean-k*stddev of the remaining sizes.
func (d *Detector) filter(blobs []SmartBlob) []SmartBlob {
	blobs = d.mergeFragments(blobs)
	kept := blobs[:0]
	for _, b := range blobs {
		if b.ChunkCount >= d.cfg.AbsoluteMinBlobSize {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return kept
	}

	var sum float64
	for _, b := range kept {
		sum += float64(b.ChunkCount)
	}
	mean := sum / float64(len(kept))
	var sumSq float64
	for _, b := range kept {
		delta := float64(b.ChunkCount) - mean
		sumSq += delta * delta
	}
	stddev := math.Sqrt(sumSq / float64(len(kept)))
	floor := mean - d.cfg.BlobSizeStdDevFilter*stddev

	final := kept[:0]
	for _, b := range kept {
		if float64(b.ChunkCount) >= floor {
			final = append(final, b)
		}
	}
	return final
}
