// Package telemetry is an optional Prometheus-backed implementation of
// pipeline.MetricsSink, exporting per-frame counters and averages for a
// running pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TheGonzalezDesigns/waldo-vision/pipeline"
	"github.com/TheGonzalezDesigns/waldo-vision/temporal"
)

// Sink registers a handful of collectors against a prometheus.Registerer and
// implements pipeline.MetricsSink. A Sink with a nil registerer still
// satisfies the interface and updates its collectors, but nothing exposes
// them, so callers can construct one
// unconditionally and only pass a real registry when they want metrics.
type Sink struct {
	framesTotal       prometheus.Counter
	significantTotal  prometheus.Counter
	disturbanceTotal  prometheus.Counter
	anomalousFraction prometheus.Histogram
	liveTracks        prometheus.Gauge
}

// New registers Sink's collectors against reg and returns the Sink. Passing
// a nil reg is safe: the collectors are still created but never exposed to a
// scrape endpoint, matching the "entirely optional, off by default" wiring
// described for Pipeline's metrics hook.
func New(reg prometheus.Registerer) *Sink {
	s := &Sink{
		framesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waldovision",
			Name:      "frames_processed_total",
			Help:      "Frames that completed process_frame.",
		}),
		significantTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waldovision",
			Name:      "significant_mentions_total",
			Help:      "Frames whose report was SignificantMention.",
		}),
		disturbanceTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "waldovision",
			Name:      "global_disturbance_frames_total",
			Help:      "Frames reported with is_global_disturbance set.",
		}),
		anomalousFraction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "waldovision",
			Name:      "anomalous_chunk_fraction",
			Help:      "Fraction of chunks scored Anomalous, per frame.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		liveTracks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "waldovision",
			Name:      "live_tracks",
			Help:      "Number of tracks alive at the end of the last frame.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.framesTotal, s.significantTotal, s.disturbanceTotal, s.anomalousFraction, s.liveTracks)
	}
	return s
}

// ObserveFrame implements pipeline.MetricsSink.
func (s *Sink) ObserveFrame(analysis pipeline.FrameAnalysis) {
	s.framesTotal.Inc()
	s.liveTracks.Set(float64(len(analysis.TrackedBlobs)))

	anomalous := 0
	for _, st := range analysis.StatusMap {
		if st.Kind == temporal.Anomalous {
			anomalous++
		}
	}
	if len(analysis.StatusMap) > 0 {
		s.anomalousFraction.Observe(float64(anomalous) / float64(len(analysis.StatusMap)))
	}

	if analysis.Report.Kind == pipeline.SignificantMention {
		s.significantTotal.Inc()
		if analysis.Report.Mention.IsGlobalDisturbance {
			s.disturbanceTotal.Inc()
		}
	}
}
