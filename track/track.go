// Package track gives SmartBlobs a persistent identity across frames:
// greedy nearest-neighbor association, a per-track lifecycle state
// machine, and moment recording.
package track

import (
	"log/slog"
	"math"
	"sort"

	"github.com/TheGonzalezDesigns/waldo-vision/blob"
	"github.com/TheGonzalezDesigns/waldo-vision/pixel"
)

const varianceFloor = 1e-6

// State is a TrackedBlob's position in its lifecycle.
type State int

const (
	New State = iota
	Tracked
	Anomalous
	Lost
)

func (s State) String() string {
	switch s {
	case New:
		return "new"
	case Tracked:
		return "tracked"
	case Anomalous:
		return "anomalous"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Signature is the subset of a SmartBlob a track remembers for behavioral
// Z-scoring and for a Moment's blob_history.
type Signature struct {
	Size       int
	MeanScore  float64
	MeanHue    float64
	HueDefined bool
}

func signatureOf(b blob.SmartBlob) Signature {
	return Signature{Size: b.ChunkCount, MeanScore: b.MeanScore, MeanHue: b.MeanHue, HueDefined: b.HueDefined}
}

// Centroid is a blob bounding-box center in grid coordinates, recorded once
// per frame a track is alive.
type Centroid struct {
	X, Y float64
}

// Moment is the sealed recorded journey of one destroyed TrackedBlob.
type Moment struct {
	ID                       uint64
	StartFrame               uint64
	EndFrame                 uint64
	Path                     []Centroid
	BlobHistory              []Signature
	MaxAnomalyScore          float64
	WasBehaviorallyAnomalous bool
}

// Duration returns the number of frames this moment's track was alive.
func (m Moment) Duration() int { return int(m.EndFrame-m.StartFrame) + 1 }

// TrackedBlob is a persistent identity carrying a state and history across
// frames.
type TrackedBlob struct {
	ID                    uint64
	State                 State
	AgeFrames             int
	FramesSinceLastSeen   int
	Blob                  blob.SmartBlob
	BehaviorallyAnomalous bool

	window    []Signature // bounded ring buffer for behavioral Z-scoring
	windowCap int

	prevState           State // state to restore from Lost on re-match
	newUnmatchedFrames  int
	lostFrames          int
	anomalyStableFrames int
	reachedTracked      bool

	moment Moment
}

// Signature returns this track's current signature.
func (t *TrackedBlob) Signature() Signature { return signatureOf(t.Blob) }

// MaxAnomalyScore returns the highest per-frame anomaly score observed
// over this track's lifetime so far.
func (t *TrackedBlob) MaxAnomalyScore() float64 { return t.moment.MaxAnomalyScore }

func newTrackedBlob(id uint64, b blob.SmartBlob, frame uint64, windowCap int) *TrackedBlob {
	return &TrackedBlob{
		ID:        id,
		State:     New,
		Blob:      b,
		windowCap: windowCap,
		moment:    Moment{ID: id, StartFrame: frame},
	}
}

func (t *TrackedBlob) centroid() Centroid {
	return Centroid{X: t.Blob.Box.CentroidX(), Y: t.Blob.Box.CentroidY()}
}

func (t *TrackedBlob) recordFrame(score float64) {
	t.moment.Path = append(t.moment.Path, t.centroid())
	t.moment.BlobHistory = append(t.moment.BlobHistory, signatureOf(t.Blob))
	if score > t.moment.MaxAnomalyScore {
		t.moment.MaxAnomalyScore = score
	}
}

func (t *TrackedBlob) pushWindow(sig Signature) {
	t.window = append(t.window, sig)
	if len(t.window) > t.windowCap {
		t.window = t.window[len(t.window)-t.windowCap:]
	}
}

// Config controls association gating, lifecycle grace periods, and
// behavioral anomaly sensitivity.
type Config struct {
	MaxAssociationDistance     float64
	NewAgeThreshold            int
	NewGraceFrames             int
	LostGraceFrames            int
	AnomalyCooldownFrames      int
	BehavioralAnomalyThreshold float64
	BehavioralHistoryWindow    int
}

type pair struct {
	trackIdx, blobIdx int
	cost              float64
}

// Tracker owns the full set of live TrackedBlobs and hands out IDs that
// are never reused.
type Tracker struct {
	cfg    Config
	logger *slog.Logger
	tracks []*TrackedBlob
	nextID uint64
	frame  uint64

	pairs []pair
}

// NewTracker constructs an empty Tracker. A nil logger is tolerated.
func NewTracker(cfg Config, logger *slog.Logger) *Tracker {
	return &Tracker{cfg: cfg, logger: logger}
}

// transition moves t to next, logging the change at Debug. A no-op if
// next equals the current state.
func (tr *Tracker) transition(t *TrackedBlob, next State) {
	if t.State == next {
		return
	}
	prev := t.State
	t.State = next
	if tr.logger != nil {
		tr.logger.Debug("track state transition", "id", t.ID, "from", prev.String(), "to", next.String())
	}
}

// Tracks returns the tracker's current live tracks, in no particular order.
func (tr *Tracker) Tracks() []*TrackedBlob { return tr.tracks }

// Update associates this frame's blobs against the live track set, advances
// every track's state machine, and returns the tracks that newly became
// Tracked this frame and the moments sealed (destroyed) this frame.
func (tr *Tracker) Update(blobs []blob.SmartBlob) (newlySignificant []*TrackedBlob, completed []Moment) {
	tr.frame++

	tr.pairs = tr.pairs[:0]
	for i, t := range tr.tracks {
		cx, cy := t.Blob.Box.CentroidX(), t.Blob.Box.CentroidY()
		for j, b := range blobs {
			dx := cx - b.Box.CentroidX()
			dy := cy - b.Box.CentroidY()
			dist := math.Hypot(dx, dy)
			if dist > tr.cfg.MaxAssociationDistance {
				continue
			}
			tr.pairs = append(tr.pairs, pair{trackIdx: i, blobIdx: j, cost: dist})
		}
	}
	sort.SliceStable(tr.pairs, func(i, j int) bool { return tr.pairs[i].cost < tr.pairs[j].cost })

	// Greedy nearest-neighbor: walk pairs cost-ascending, accept iff both
	// sides are still unmatched.
	trackToBlob := make(map[int]int, len(tr.tracks))
	matchedBlob := make([]bool, len(blobs))
	for _, p := range tr.pairs {
		if _, taken := trackToBlob[p.trackIdx]; taken || matchedBlob[p.blobIdx] {
			continue
		}
		trackToBlob[p.trackIdx] = p.blobIdx
		matchedBlob[p.blobIdx] = true
	}

	var survivors []*TrackedBlob
	for i, t := range tr.tracks {
		t.AgeFrames++
		if bIdx, ok := trackToBlob[i]; ok {
			t.FramesSinceLastSeen = 0
			t.newUnmatchedFrames = 0
			t.Blob = blobs[bIdx]

			if t.State == Lost {
				tr.transition(t, t.prevState)
				t.lostFrames = 0
			}

			if t.State == New && t.AgeFrames >= tr.cfg.NewAgeThreshold {
				tr.transition(t, Tracked)
				if !t.reachedTracked {
					t.reachedTracked = true
					newlySignificant = append(newlySignificant, t)
				}
			}

			sig := signatureOf(t.Blob)
			anomalous := false
			if len(t.window) >= tr.cfg.NewAgeThreshold {
				anomalous = behaviorallyAnomalous(t.window, sig, tr.cfg.BehavioralAnomalyThreshold)
			}
			t.BehaviorallyAnomalous = anomalous

			switch t.State {
			case Tracked:
				if anomalous {
					tr.transition(t, Anomalous)
					t.anomalyStableFrames = 0
					t.moment.WasBehaviorallyAnomalous = true
				}
			case Anomalous:
				if anomalous {
					t.anomalyStableFrames = 0
				} else {
					t.anomalyStableFrames++
					if t.anomalyStableFrames >= tr.cfg.AnomalyCooldownFrames {
						tr.transition(t, Tracked)
					}
				}
			}

			t.pushWindow(sig)
			t.recordFrame(sig.MeanScore)
			survivors = append(survivors, t)
			continue
		}

		// Unmatched this frame.
		t.FramesSinceLastSeen++
		switch t.State {
		case New:
			t.newUnmatchedFrames++
			if t.newUnmatchedFrames > tr.cfg.NewGraceFrames {
				if tr.logger != nil {
					tr.logger.Debug("track destroyed without moment", "id", t.ID)
				}
				continue // destroyed, no moment (never reached Tracked)
			}
		case Tracked, Anomalous:
			t.prevState = t.State
			tr.transition(t, Lost)
			t.lostFrames = 0
		case Lost:
			t.lostFrames++
			if t.lostFrames > tr.cfg.LostGraceFrames {
				if t.reachedTracked && t.AgeFrames >= tr.cfg.NewAgeThreshold {
					t.moment.EndFrame = tr.frame - 1
					completed = append(completed, t.moment)
					if tr.logger != nil {
						tr.logger.Info("moment sealed", "id", t.ID, "start", t.moment.StartFrame, "end", t.moment.EndFrame)
					}
				}
				continue // destroyed
			}
		}
		t.recordFrame(0)
		survivors = append(survivors, t)
	}

	for j, b := range blobs {
		if matchedBlob[j] {
			continue
		}
		tr.nextID++
		nt := newTrackedBlob(tr.nextID, b, tr.frame, tr.cfg.BehavioralHistoryWindow)
		nt.AgeFrames = 1
		nt.recordFrame(signatureOf(b).MeanScore)
		nt.pushWindow(signatureOf(b))
		survivors = append(survivors, nt)
	}

	tr.tracks = survivors
	return newlySignificant, completed
}

// behaviorallyAnomalous reports whether current deviates from window's
// mean/variance by at least threshold in any of size, mean score, or hue.
func behaviorallyAnomalous(window []Signature, current Signature, threshold float64) bool {
	sizes := make([]float64, len(window))
	scores := make([]float64, len(window))
	var sumCos, sumSin float64
	hueN := 0
	for i, s := range window {
		sizes[i] = float64(s.Size)
		scores[i] = s.MeanScore
		if s.HueDefined {
			rad := s.MeanHue * math.Pi / 180
			sumCos += math.Cos(rad)
			sumSin += math.Sin(rad)
			hueN++
		}
	}

	zSize := zscoreAgainst(float64(current.Size), sizes)
	zScore := zscoreAgainst(current.MeanScore, scores)

	var zHue float64
	if current.HueDefined && hueN > 0 {
		meanHue := math.Atan2(sumSin/float64(hueN), sumCos/float64(hueN)) * 180 / math.Pi
		if meanHue < 0 {
			meanHue += 360
		}
		var sumSq float64
		for _, s := range window {
			if !s.HueDefined {
				continue
			}
			d := pixel.CircularDistance(s.MeanHue, meanHue)
			sumSq += d * d
		}
		std := math.Sqrt(sumSq / float64(hueN))
		dist := pixel.CircularDistance(current.MeanHue, meanHue)
		zHue = dist / math.Max(std, varianceFloor)
	}

	return zSize >= threshold || zScore >= threshold || zHue >= threshold
}

func zscoreAgainst(x float64, population []float64) float64 {
	if len(population) == 0 {
		return 0
	}
	var sum float64
	for _, v := range population {
		sum += v
	}
	mean := sum / float64(len(population))
	var sumSq float64
	for _, v := range population {
		d := v - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(len(population)))
	return math.Abs(x-mean) / math.Max(std, varianceFloor)
}
