// Package pipeline assembles the Grid Manager, Temporal Model, Blob
// Detector, Tracker, and Scene-Stability FSM into a single-threaded,
// frame-synchronous facade.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/TheGonzalezDesigns/waldo-vision/blob"
	"github.com/TheGonzalezDesigns/waldo-vision/chunk"
	"github.com/TheGonzalezDesigns/waldo-vision/scene"
	"github.com/TheGonzalezDesigns/waldo-vision/temporal"
	"github.com/TheGonzalezDesigns/waldo-vision/track"
)

// Pipeline owns all pipeline state exclusively: chunk models, the track
// table, the scene FSM, and ID counters. It is not safe for concurrent
// use — ProcessFrame is frame-sequential and non-reentrant.
type Pipeline struct {
	cfg    PipelineConfig
	logger *slog.Logger
	sink   MetricsSink

	grid     *chunk.Grid
	bank     *temporal.Bank
	detector *blob.Detector
	tracker  *track.Tracker
	sceneFSM *scene.FSM

	appearance []blob.Appearance // scratch, reused every ProcessFrame call

	frame                 uint64
	significantEventCount uint64
}

// MetricsSink receives a read-only observation of each processed frame. It
// is never called concurrently and is handed the same snapshot FrameAnalysis
// that ProcessFrame returns to its caller. internal/telemetry provides a
// Prometheus-backed implementation; a nil sink (the default) means no
// metrics collection happens at all.
type MetricsSink interface {
	ObserveFrame(analysis FrameAnalysis)
}

// Option configures optional Pipeline behavior at construction time.
type Option func(*Pipeline)

// WithMetricsSink wires an optional metrics sink into the pipeline. A nil
// sink (the zero value, or simply not passing this option) disables metrics
// collection entirely — ProcessFrame never pays for it.
func WithMetricsSink(sink MetricsSink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// FrameAnalysis is the per-frame result, returned by value: every slice
// here is a snapshot, not a live view into pipeline state.
type FrameAnalysis struct {
	Report               Report
	StatusMap            []temporal.Status
	TrackedBlobs         []track.TrackedBlob
	SceneState           scene.State
	SignificantEventCount uint64
}

// Stats is a non-mutating snapshot of pipeline health, callable between
// frames without materializing a full FrameAnalysis.
type Stats struct {
	Frame      uint64
	LiveTracks int
	SceneState scene.State
}

// NewPipeline validates cfg and constructs a Pipeline. A nil logger is
// tolerated throughout. Construction-time failures are ErrInvalidConfig
// (bad thresholds) or ErrInvalidGeometry (image/chunk dimension mismatch).
func NewPipeline(cfg PipelineConfig, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	grid, err := chunk.NewGrid(cfg.ImageWidth, cfg.ImageHeight, cfg.ChunkWidth, cfg.ChunkHeight)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	gw, gh := grid.GridWidth(), grid.GridHeight()

	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		grid:   grid,
		bank: temporal.NewBank(gw, gh, cfg.ChunkDecayAlpha, cfg.ChunkHueDecayAlpha,
			cfg.CalibrationFrames, cfg.BehavioralAnomalyThreshold),
		detector: blob.NewDetector(gw, gh, blob.Config{
			RegionGrowThreshold:  cfg.RegionGrowThreshold,
			AbsoluteMinBlobSize:  cfg.AbsoluteMinBlobSize,
			BlobSizeStdDevFilter: cfg.BlobSizeStdDevFilter,
		}),
		tracker: track.NewTracker(track.Config{
			MaxAssociationDistance:     cfg.MaxAssociationDistance,
			NewAgeThreshold:            cfg.NewAgeThreshold,
			NewGraceFrames:             cfg.NewGraceFrames,
			LostGraceFrames:            cfg.LostGraceFrames,
			AnomalyCooldownFrames:      cfg.AnomalyCooldownFrames,
			BehavioralAnomalyThreshold: cfg.BehavioralAnomalyThreshold,
			BehavioralHistoryWindow:    cfg.BehavioralHistoryWindow,
		}, logger),
		sceneFSM: scene.NewFSM(scene.Config{
			DisturbanceEntryThreshold:     cfg.DisturbanceEntryThreshold,
			DisturbanceExitThreshold:      cfg.DisturbanceExitThreshold,
			DisturbanceConfirmationFrames: cfg.DisturbanceConfirmationFrames,
		}, logger),
		appearance: make([]blob.Appearance, gw*gh),
	}

	for _, opt := range opts {
		opt(p)
	}

	if logger != nil {
		logger.Info("pipeline constructed", "config", cfg)
	}
	return p, nil
}

// ProcessFrame runs one frame through the pipeline: partition, temporal
// scoring, blob detection, tracking, scene-stability advance, and report
// assembly. A failed call (buffer mismatch) leaves all pipeline state
// unchanged.
func (p *Pipeline) ProcessFrame(rgba []byte) (FrameAnalysis, error) {
	aggs, err := p.grid.Partition(rgba)
	if err != nil {
		return FrameAnalysis{}, fmt.Errorf("%w: %v", ErrInvalidBuffer, err)
	}
	p.frame++

	statuses, heatmap := p.bank.Observe(aggs)

	for i, agg := range aggs {
		p.appearance[i] = blob.Appearance{
			Hue:        agg.MeanHue,
			HueDefined: agg.HueDefined,
			Saturation: agg.MeanSat,
			Luminance:  agg.MeanLum,
		}
	}
	blobs := p.detector.Detect(heatmap, p.appearance)

	newlySignificant, completedMoments := p.tracker.Update(blobs)

	anomalousCount := 0
	for _, s := range statuses {
		if s.Kind == temporal.Anomalous {
			anomalousCount++
		}
	}
	fraction := float64(anomalousCount) / float64(len(statuses))
	p.sceneFSM.Advance(p.bank.AllCalibrated(), fraction)

	report := p.buildReport(newlySignificant, completedMoments)
	if report.Kind == SignificantMention {
		p.significantEventCount++
	}

	trackedSnapshot := make([]track.TrackedBlob, len(p.tracker.Tracks()))
	for i, t := range p.tracker.Tracks() {
		trackedSnapshot[i] = *t
	}

	result := FrameAnalysis{
		Report:                report,
		StatusMap:             append([]temporal.Status(nil), statuses...),
		TrackedBlobs:          trackedSnapshot,
		SceneState:            p.sceneFSM.State(),
		SignificantEventCount: p.significantEventCount,
	}
	if p.sink != nil {
		p.sink.ObserveFrame(result)
	}
	return result, nil
}

func (p *Pipeline) buildReport(newlySignificant []*track.TrackedBlob, completedMoments []track.Moment) Report {
	isGlobalDisturbance := p.sceneFSM.IsGlobalDisturbance()

	// A Disturbed scene suppresses new-moment significance in the report
	// but does not halt tracking: tracks still advance to Tracked and
	// accumulate paths, they just don't surface as new_significant_moments
	// this frame.
	reportableNew := newlySignificant
	if isGlobalDisturbance {
		reportableNew = nil
	}

	if len(reportableNew) == 0 && len(completedMoments) == 0 && !isGlobalDisturbance {
		return Report{Kind: NoSignificantMention}
	}

	newSnapshot := make([]track.TrackedBlob, len(reportableNew))
	maxScore := 0.0
	for i, t := range reportableNew {
		newSnapshot[i] = *t
		if s := t.MaxAnomalyScore(); s > maxScore {
			maxScore = s
		}
	}
	for _, m := range completedMoments {
		if m.MaxAnomalyScore > maxScore {
			maxScore = m.MaxAnomalyScore
		}
	}

	return Report{
		Kind: SignificantMention,
		Mention: MentionData{
			NewSignificantMoments:       newSnapshot,
			CompletedSignificantMoments: append([]track.Moment(nil), completedMoments...),
			IsGlobalDisturbance:         isGlobalDisturbance,
			Severity:                    severityFor(maxScore, p.cfg.BehavioralAnomalyThreshold),
		},
	}
}

// Stats returns a non-mutating snapshot of pipeline health.
func (p *Pipeline) Stats() Stats {
	return Stats{Frame: p.frame, LiveTracks: len(p.tracker.Tracks()), SceneState: p.sceneFSM.State()}
}
