// Package scene tracks whole-frame disturbance via a hysteresis state
// machine over the fraction of anomalous chunks.
package scene

import "log/slog"

// State is one of the four scene-stability states.
type State int

const (
	Calibrating State = iota
	Stable
	Volatile
	Disturbed
)

func (s State) String() string {
	switch s {
	case Calibrating:
		return "calibrating"
	case Stable:
		return "stable"
	case Volatile:
		return "volatile"
	case Disturbed:
		return "disturbed"
	default:
		return "unknown"
	}
}

// Config controls the disturbance thresholds and hysteresis window.
type Config struct {
	DisturbanceEntryThreshold     float64
	DisturbanceExitThreshold      float64
	DisturbanceConfirmationFrames int
}

// FSM is the scene-stability state machine. It is advanced once per frame
// with the fraction of chunks scored Anomalous this frame.
type FSM struct {
	cfg    Config
	logger *slog.Logger
	state  State

	aboveEntryStreak int
	belowExitStreak  int
	aboveMidStreak   int
}

// NewFSM constructs an FSM starting in Calibrating. A nil logger is
// tolerated.
func NewFSM(cfg Config, logger *slog.Logger) *FSM {
	return &FSM{cfg: cfg, logger: logger, state: Calibrating}
}

// State returns the FSM's current state.
func (f *FSM) State() State { return f.state }

// IsGlobalDisturbance reports whether the current state is Disturbed.
func (f *FSM) IsGlobalDisturbance() bool { return f.state == Disturbed }

// Advance updates the FSM for this frame. allCalibrated is whether every
// chunk model has left Calibrating; anomalousFraction is u, the fraction
// of chunks scored Anomalous this frame.
func (f *FSM) Advance(allCalibrated bool, anomalousFraction float64) {
	aboveEntry := anomalousFraction >= f.cfg.DisturbanceEntryThreshold
	belowExit := anomalousFraction < f.cfg.DisturbanceExitThreshold
	midBand := (f.cfg.DisturbanceEntryThreshold + f.cfg.DisturbanceExitThreshold) / 2
	aboveMid := anomalousFraction >= midBand && !aboveEntry

	if aboveEntry {
		f.aboveEntryStreak++
	} else {
		f.aboveEntryStreak = 0
	}
	if belowExit {
		f.belowExitStreak++
	} else {
		f.belowExitStreak = 0
	}
	if aboveMid {
		f.aboveMidStreak++
	} else {
		f.aboveMidStreak = 0
	}

	confirmed := f.cfg.DisturbanceConfirmationFrames

	switch f.state {
	case Calibrating:
		if allCalibrated {
			f.transition(Stable)
		}
	case Stable:
		if f.aboveEntryStreak >= confirmed {
			f.transition(Disturbed)
		} else if f.aboveMidStreak >= confirmed {
			f.transition(Volatile)
		}
	case Volatile:
		if f.aboveEntryStreak >= confirmed {
			f.transition(Disturbed)
		} else if f.belowExitStreak >= confirmed {
			f.transition(Stable)
		}
	case Disturbed:
		if f.belowExitStreak >= confirmed {
			f.transition(Stable)
		}
	}
}

func (f *FSM) transition(next State) {
	if f.state == next {
		return
	}
	prev := f.state
	f.state = next
	f.aboveEntryStreak, f.belowExitStreak, f.aboveMidStreak = 0, 0, 0
	if f.logger != nil {
		f.logger.Info("scene state transition", "from", prev.String(), "to", next.String())
	}
}
