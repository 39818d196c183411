// Command waldoplay is a headless demo harness for the waldo-vision
// pipeline: it feeds a sequence of frames (from disk fixtures, or a
// synthesized built-in demo) through Pipeline.ProcessFrame at a fixed tick
// and logs each significant report.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheGonzalezDesigns/waldo-vision/assets"
	"github.com/TheGonzalezDesigns/waldo-vision/config"
	"github.com/TheGonzalezDesigns/waldo-vision/internal/fixture"
	"github.com/TheGonzalezDesigns/waldo-vision/internal/momentstore"
	"github.com/TheGonzalezDesigns/waldo-vision/internal/telemetry"
	"github.com/TheGonzalezDesigns/waldo-vision/pipeline"
)

const tick = 100 * time.Millisecond

func main() {
	cfg, err := config.Load("waldoplay.toml")
	logger := newLogger(parseLevel(cfg.LogLevel))
	if err != nil {
		logger.Warn("failed to load waldoplay.toml; using defaults", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	runID := uuid.New().String()
	logger = logger.With("run_id", runID)
	logger.Info("waldoplay starting", "config", cfg.Pipeline)

	var opts []pipeline.Option
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		sink := telemetry.New(reg)
		opts = append(opts, pipeline.WithMetricsSink(sink))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics enabled", "addr", cfg.MetricsAddr)
	}

	p, err := pipeline.NewPipeline(cfg.Pipeline, logger, opts...)
	if err != nil {
		logger.Error("failed to construct pipeline", "error", err)
		os.Exit(1)
	}

	store, err := momentstore.New(cfg.MomentStoreSize)
	if err != nil {
		logger.Error("failed to construct moment store", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := frameSource(cfg, logger)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var frameNum uint64
	for {
		select {
		case <-ctx.Done():
			logger.Info("waldoplay stopping", "frames_processed", frameNum, "moments_stored", store.Len())
			return
		case <-ticker.C:
			frameNum++
			frame := source(frameNum)
			analysis, err := p.ProcessFrame(frame)
			if err != nil {
				logger.Warn("frame rejected", "frame", frameNum, "error", err)
				continue
			}
			logFrame(logger, frameNum, analysis, store)
		}
	}
}

// frameSource returns a function producing the frame for a given 1-based
// frame number: it cycles disk fixtures if any were configured, otherwise
// the built-in synthetic demo (a static baseline with a recurring intruder).
func frameSource(cfg config.HarnessConfig, logger *slog.Logger) func(uint64) []byte {
	w, h := cfg.Pipeline.ImageWidth, cfg.Pipeline.ImageHeight

	if len(cfg.FixturePaths) > 0 {
		frames := make([][]byte, 0, len(cfg.FixturePaths))
		for _, path := range cfg.FixturePaths {
			buf, err := fixture.Load(path, w, h)
			if err != nil {
				logger.Warn("skipping unreadable fixture", "path", path, "error", err)
				continue
			}
			frames = append(frames, buf)
		}
		if len(frames) > 0 {
			return func(n uint64) []byte { return frames[(n-1)%uint64(len(frames))] }
		}
		logger.Warn("no fixture frames loaded, falling back to the synthetic demo")
	}

	baseline := assets.BaselineFrame(w, h)
	intruderEvery := uint64(200) // roughly every 20s at the default tick
	intruderFor := uint64(30)
	return func(n uint64) []byte {
		if n%intruderEvery < intruderFor {
			return assets.IntruderFrame(w, h, w/3, h/3, 2*w/3, 2*h/3)
		}
		return baseline
	}
}

func logFrame(logger *slog.Logger, frameNum uint64, analysis pipeline.FrameAnalysis, store *momentstore.Store) {
	for _, m := range analysis.Report.Mention.CompletedSignificantMoments {
		store.Add(m)
	}

	if analysis.Report.Kind == pipeline.NoSignificantMention {
		logger.Debug("frame processed", "frame", frameNum, "scene", analysis.SceneState.String())
		return
	}

	logger.Info("significant mention",
		"frame", frameNum,
		"scene", analysis.SceneState.String(),
		"severity", analysis.Report.Mention.Severity.String(),
		"global_disturbance", analysis.Report.Mention.IsGlobalDisturbance,
		"new_moments", len(analysis.Report.Mention.NewSignificantMoments),
		"completed_moments", len(analysis.Report.Mention.CompletedSignificantMoments),
		"moments_stored", store.Len(),
	)
}
