package temporal

import "github.com/TheGonzalezDesigns/waldo-vision/chunk"

// Bank owns one Model per grid position and never shares one across
// positions. It is constructed once per pipeline and reuses its
// status/heatmap scratch buffers every frame.
type Bank struct {
	gridWidth, gridHeight int

	decayAlpha                 float64
	hueDecayAlpha              float64
	calibrationFrames          int
	behavioralAnomalyThreshold float64

	models   []*Model
	statuses []Status
	heatmap  []float64
}

// NewBank constructs a Bank sized for a gridWidth*gridHeight grid. Models
// are created lazily on first observation at each position, but the
// backing slice is pre-allocated here.
func NewBank(gridWidth, gridHeight int, decayAlpha, hueDecayAlpha float64, calibrationFrames int, behavioralAnomalyThreshold float64) *Bank {
	n := gridWidth * gridHeight
	return &Bank{
		gridWidth:                  gridWidth,
		gridHeight:                 gridHeight,
		decayAlpha:                 decayAlpha,
		hueDecayAlpha:              hueDecayAlpha,
		calibrationFrames:          calibrationFrames,
		behavioralAnomalyThreshold: behavioralAnomalyThreshold,
		models:                     make([]*Model, n),
		statuses:                  make([]Status, n),
		heatmap:                   make([]float64, n),
	}
}

// Observe scores every chunk aggregate against its per-position model and
// returns the status map and anomaly heatmap for this frame, row-major,
// both owned by the Bank and overwritten on the next call.
func (bk *Bank) Observe(aggs []chunk.Aggregate) ([]Status, []float64) {
	for i, agg := range aggs {
		m := bk.models[i]
		if m == nil {
			m = NewModel(bk.decayAlpha, bk.hueDecayAlpha, bk.calibrationFrames)
			bk.models[i] = m
		}
		status := m.Observe(agg, bk.behavioralAnomalyThreshold)
		bk.statuses[i] = status
		if status.Kind == Anomalous {
			bk.heatmap[i] = status.Score
		} else {
			bk.heatmap[i] = 0
		}
	}
	return bk.statuses, bk.heatmap
}

// AllCalibrated reports whether every chunk model has left Calibrating.
func (bk *Bank) AllCalibrated() bool {
	for _, m := range bk.models {
		if m == nil || m.Observations() < bk.calibrationFrames {
			return false
		}
	}
	return true
}

// GridWidth returns the number of chunk columns this Bank was sized for.
func (bk *Bank) GridWidth() int { return bk.gridWidth }

// GridHeight returns the number of chunk rows this Bank was sized for.
func (bk *Bank) GridHeight() int { return bk.gridHeight }
