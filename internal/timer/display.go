package timer

import (
	"fmt"

	"kidtimer/internal/model"
)

// State is a point-in-time copy of the engine.
type State struct {
	Preset    model.TimerPreset
	Total     int
	Remaining int
	Phase     Phase
	LoopCount int
	SoundID   string
}

func (s State) Running() bool {
	return s.Phase == PhaseRunning
}

func (s State) Completing() bool {
	return s.Phase == PhaseCompleting
}

// Elapsed is how much of the total has been counted down.
func (s State) Elapsed() int {
	elapsed := s.Total - s.Remaining
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s State) Clock() string {
	return FormatClock(s.Remaining)
}

// Progress is the remaining fraction of the total, clamped to [0,1].
func (s State) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	fraction := float64(s.Remaining) / float64(s.Total)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

// FormatClock renders seconds as M:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
