// Package temporal maintains a per-chunk running statistical model of
// "normal" appearance and scores each chunk's current appearance against
// it.
package temporal

import (
	"math"

	"github.com/TheGonzalezDesigns/waldo-vision/chunk"
	"github.com/TheGonzalezDesigns/waldo-vision/pixel"
)

// varianceFloor is the minimum standard deviation used as a divisor in
// z-score computations, preventing division by (near) zero on chunks that
// have not yet observed any variation.
const varianceFloor = 1e-6

// Status is the tagged-variant report for one chunk's observation this
// frame: Calibrating, Stable, or Anomalous(Score).
type Status struct {
	Kind  StatusKind
	Score float64 // meaningful only when Kind == Anomalous
}

// StatusKind enumerates the three chunk statuses.
type StatusKind int

const (
	Calibrating StatusKind = iota
	Stable
	Anomalous
)

func (k StatusKind) String() string {
	switch k {
	case Calibrating:
		return "calibrating"
	case Stable:
		return "stable"
	case Anomalous:
		return "anomalous"
	default:
		return "unknown"
	}
}

// Model is the running per-chunk statistics for luminance, saturation, and
// circular hue, updated by a decay-weighted (EWMA) rule.
type Model struct {
	decayAlpha     float64 // EWMA decay for luminance/saturation
	hueDecayAlpha  float64 // EWMA decay for hue's unit-vector components
	calibrationN   int

	observations int

	meanLum, varLum float64
	meanSat, varSat float64
	sumCos, sumSin  float64 // EWMA-smoothed unit vector for circular hue mean
	varHue          float64
}

// NewModel constructs a zero-value Model ready to calibrate on first use.
func NewModel(decayAlpha, hueDecayAlpha float64, calibrationFrames int) *Model {
	return &Model{
		decayAlpha:    decayAlpha,
		hueDecayAlpha: hueDecayAlpha,
		calibrationN:  calibrationFrames,
		sumCos:        1, // unit vector pointing at hue 0 until a hue observation arrives
	}
}

// circularMeanDeg returns the model's current mean hue in degrees.
func (m *Model) circularMeanDeg() float64 {
	hue := math.Atan2(m.sumSin, m.sumCos) * 180 / math.Pi
	if hue < 0 {
		hue += 360
	}
	return hue
}

// Observe scores the aggregate against the running model and returns the
// chunk's status for this frame. Statistics update unconditionally during
// calibration, update on Stable observations, and freeze (do not update)
// on Anomalous observations.
func (m *Model) Observe(agg chunk.Aggregate, behavioralAnomalyThreshold float64) Status {
	if m.observations < m.calibrationN {
		m.update(agg)
		m.observations++
		return Status{Kind: Calibrating}
	}

	zLum := zscore(agg.MeanLum, m.meanLum, m.varLum)
	zSat := zscore(agg.MeanSat, m.meanSat, m.varSat)

	var zHue float64
	if agg.HueDefined {
		meanHue := m.circularMeanDeg()
		dist := pixel.CircularDistance(agg.MeanHue, meanHue)
		zHue = dist / math.Max(math.Sqrt(math.Max(m.varHue, 0)), varianceFloor)
	}

	score := math.Max(zLum, math.Max(zSat, zHue))

	if score >= behavioralAnomalyThreshold {
		// Do not update statistics this frame: frozen stats prevent drift
		// toward an intruding object.
		return Status{Kind: Anomalous, Score: score}
	}

	m.update(agg)
	return Status{Kind: Stable}
}

// update applies the EWMA rule to mean/variance for all three channels.
func (m *Model) update(agg chunk.Aggregate) {
	if m.observations == 0 {
		m.meanLum, m.varLum = agg.MeanLum, 0
		m.meanSat, m.varSat = agg.MeanSat, 0
		if agg.HueDefined {
			rad := agg.MeanHue * math.Pi / 180
			m.sumCos, m.sumSin = math.Cos(rad), math.Sin(rad)
		}
		m.varHue = 0
		return
	}

	m.meanLum, m.varLum = ewmaUpdate(agg.MeanLum, m.meanLum, m.varLum, m.decayAlpha)
	m.meanSat, m.varSat = ewmaUpdate(agg.MeanSat, m.meanSat, m.varSat, m.decayAlpha)

	if agg.HueDefined {
		prevMean := m.circularMeanDeg()
		rad := agg.MeanHue * math.Pi / 180
		m.sumCos = (1-m.hueDecayAlpha)*m.sumCos + m.hueDecayAlpha*math.Cos(rad)
		m.sumSin = (1-m.hueDecayAlpha)*m.sumSin + m.hueDecayAlpha*math.Sin(rad)
		dist := pixel.CircularDistance(agg.MeanHue, prevMean)
		m.varHue = (1-m.hueDecayAlpha)*m.varHue + m.hueDecayAlpha*dist*dist
	}
}

// ewmaUpdate applies x <- (1-a)x + a*obs to the mean and the matching
// decay-weighted variance update, careful to use the *previous* mean for
// the variance term, not the updated one.
func ewmaUpdate(obs, mean, variance, alpha float64) (newMean, newVariance float64) {
	prevMean := mean
	newMean = (1-alpha)*mean + alpha*obs
	newVariance = (1-alpha)*variance + alpha*(obs-prevMean)*(obs-prevMean)
	return newMean, newVariance
}

func zscore(obs, mean, variance float64) float64 {
	std := math.Sqrt(math.Max(variance, 0))
	return math.Abs(obs-mean) / math.Max(std, varianceFloor)
}

// Observations returns how many calibration observations the model has
// taken; it stops counting at calibrationFrames (used by callers that want
// to know if a chunk model has left Calibrating).
func (m *Model) Observations() int { return m.observations }
