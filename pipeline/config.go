package pipeline

import (
	"fmt"
	"log/slog"
)

// PipelineConfig is the external configuration surface. Decay constants
// are exposed as fields with documented hardcoded defaults rather than
// derived from other fields.
type PipelineConfig struct {
	ImageWidth  int `json:"image_width"`
	ImageHeight int `json:"image_height"`
	ChunkWidth  int `json:"chunk_width"`
	ChunkHeight int `json:"chunk_height"`

	CalibrationFrames int `json:"calibration_frames"`

	// ChunkDecayAlpha/ChunkHueDecayAlpha are the temporal model's EWMA
	// decay constants (see DESIGN.md: ~50-frame memory for
	// luminance/saturation, hue decays independently).
	ChunkDecayAlpha    float64 `json:"chunk_decay_alpha"`
	ChunkHueDecayAlpha float64 `json:"chunk_hue_decay_alpha"`

	BehavioralAnomalyThreshold float64 `json:"behavioral_anomaly_threshold"`

	RegionGrowThreshold  float64 `json:"region_grow_threshold"`
	AbsoluteMinBlobSize  int     `json:"absolute_min_blob_size"`
	BlobSizeStdDevFilter float64 `json:"blob_size_std_dev_filter"`

	MaxAssociationDistance  float64 `json:"max_association_distance"`
	NewAgeThreshold         int     `json:"new_age_threshold"`
	NewGraceFrames          int     `json:"new_grace_frames"`
	LostGraceFrames         int     `json:"lost_grace_frames"`
	AnomalyCooldownFrames   int     `json:"anomaly_cooldown_frames"`
	BehavioralHistoryWindow int     `json:"behavioral_history_window"`

	DisturbanceEntryThreshold     float64 `json:"disturbance_entry_threshold"`
	DisturbanceExitThreshold      float64 `json:"disturbance_exit_threshold"`
	DisturbanceConfirmationFrames int     `json:"disturbance_confirmation_frames"`
}

// DefaultConfig returns a PipelineConfig populated with the documented
// defaults. ImageWidth/ImageHeight/ChunkWidth/ChunkHeight have no sane
// default and are left zero; callers must set them.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		CalibrationFrames:              100,
		ChunkDecayAlpha:                0.02, // ~50-frame memory, see DESIGN.md
		ChunkHueDecayAlpha:             1.0 / 30,
		BehavioralAnomalyThreshold:     3.0,
		RegionGrowThreshold:            1.0, // legacy default, carried from the first tuned release
		AbsoluteMinBlobSize:            2,
		BlobSizeStdDevFilter:           1.0,
		MaxAssociationDistance:         6.0,
		NewAgeThreshold:                5,
		NewGraceFrames:                 2,
		LostGraceFrames:                10,
		AnomalyCooldownFrames:          3,
		BehavioralHistoryWindow:        30,
		DisturbanceEntryThreshold:      0.5,
		DisturbanceExitThreshold:       0.2,
		DisturbanceConfirmationFrames:  5,
	}
}

// Validate checks all threshold/count fields are in range and returns
// ErrInvalidConfig-wrapped errors describing the first violation found.
// Geometry (image/chunk dimensions) is validated separately by NewGrid at
// construction.
func (c PipelineConfig) Validate() error {
	switch {
	case c.CalibrationFrames < 0:
		return fmt.Errorf("%w: calibration_frames must be >= 0, got %d", ErrInvalidConfig, c.CalibrationFrames)
	case c.ChunkDecayAlpha <= 0 || c.ChunkDecayAlpha > 1:
		return fmt.Errorf("%w: chunk_decay_alpha must be in (0,1], got %v", ErrInvalidConfig, c.ChunkDecayAlpha)
	case c.ChunkHueDecayAlpha <= 0 || c.ChunkHueDecayAlpha > 1:
		return fmt.Errorf("%w: chunk_hue_decay_alpha must be in (0,1], got %v", ErrInvalidConfig, c.ChunkHueDecayAlpha)
	case c.BehavioralAnomalyThreshold < 0:
		return fmt.Errorf("%w: behavioral_anomaly_threshold must be >= 0, got %v", ErrInvalidConfig, c.BehavioralAnomalyThreshold)
	case c.RegionGrowThreshold < 0:
		return fmt.Errorf("%w: region_grow_threshold must be >= 0, got %v", ErrInvalidConfig, c.RegionGrowThreshold)
	case c.AbsoluteMinBlobSize < 0:
		return fmt.Errorf("%w: absolute_min_blob_size must be >= 0, got %d", ErrInvalidConfig, c.AbsoluteMinBlobSize)
	case c.BlobSizeStdDevFilter < 0:
		return fmt.Errorf("%w: blob_size_std_dev_filter must be >= 0, got %v", ErrInvalidConfig, c.BlobSizeStdDevFilter)
	case c.MaxAssociationDistance <= 0:
		return fmt.Errorf("%w: max_association_distance must be > 0, got %v", ErrInvalidConfig, c.MaxAssociationDistance)
	case c.NewAgeThreshold < 0:
		return fmt.Errorf("%w: new_age_threshold must be >= 0, got %d", ErrInvalidConfig, c.NewAgeThreshold)
	case c.NewGraceFrames < 0:
		return fmt.Errorf("%w: new_grace_frames must be >= 0, got %d", ErrInvalidConfig, c.NewGraceFrames)
	case c.LostGraceFrames < 0:
		return fmt.Errorf("%w: lost_grace_frames must be >= 0, got %d", ErrInvalidConfig, c.LostGraceFrames)
	case c.AnomalyCooldownFrames < 0:
		return fmt.Errorf("%w: anomaly_cooldown_frames must be >= 0, got %d", ErrInvalidConfig, c.AnomalyCooldownFrames)
	case c.BehavioralHistoryWindow < 1:
		return fmt.Errorf("%w: behavioral_history_window must be >= 1, got %d", ErrInvalidConfig, c.BehavioralHistoryWindow)
	case c.DisturbanceEntryThreshold < 0 || c.DisturbanceEntryThreshold > 1:
		return fmt.Errorf("%w: disturbance_entry_threshold must be in [0,1], got %v", ErrInvalidConfig, c.DisturbanceEntryThreshold)
	case c.DisturbanceExitThreshold < 0 || c.DisturbanceExitThreshold > 1:
		return fmt.Errorf("%w: disturbance_exit_threshold must be in [0,1], got %v", ErrInvalidConfig, c.DisturbanceExitThreshold)
	case c.DisturbanceEntryThreshold <= c.DisturbanceExitThreshold:
		return fmt.Errorf("%w: disturbance_entry_threshold (%v) must be > disturbance_exit_threshold (%v)", ErrInvalidConfig, c.DisturbanceEntryThreshold, c.DisturbanceExitThreshold)
	case c.DisturbanceConfirmationFrames < 0:
		return fmt.Errorf("%w: disturbance_confirmation_frames must be >= 0, got %d", ErrInvalidConfig, c.DisturbanceConfirmationFrames)
	}
	return nil
}

// LogValue implements slog.LogValuer so a PipelineConfig logs as one
// structured line at startup instead of one attribute per field.
func (c PipelineConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("image_width", c.ImageWidth),
		slog.Int("image_height", c.ImageHeight),
		slog.Int("chunk_width", c.ChunkWidth),
		slog.Int("chunk_height", c.ChunkHeight),
		slog.Int("calibration_frames", c.CalibrationFrames),
		slog.Float64("behavioral_anomaly_threshold", c.BehavioralAnomalyThreshold),
		slog.Float64("disturbance_entry_threshold", c.DisturbanceEntryThreshold),
		slog.Float64("disturbance_exit_threshold", c.DisturbanceExitThreshold),
	)
}
