package timer

import "time"

// Phase is the coarse engine state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseRunning    Phase = "running"
	PhaseCompleting Phase = "completing"
)

// EventType names an engine transition.
type EventType string

const (
	EventSelected      EventType = "selected"
	EventStarted       EventType = "started"
	EventTick          EventType = "tick"
	EventPaused        EventType = "paused"
	EventCompleted     EventType = "completed"
	EventSoundPlayed   EventType = "sound_played"
	EventSoundStopped  EventType = "sound_stopped"
	EventSoundFinished EventType = "sound_finished"
	EventReset         EventType = "reset"
	EventSoundChanged  EventType = "sound_changed"
)

// Event carries the engine state right after a transition.
type Event struct {
	Type  EventType
	State State
	At    time.Time
}
