// Package timer implements the countdown engine and its completion sound
// sequence. The engine is safe for concurrent use; scheduled callbacks are
// serialized with user commands by a single mutex.
package timer

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"kidtimer/internal/model"
)

var (
	ErrNothingToRun    = errors.New("timer has no time remaining")
	ErrInvalidDuration = errors.New("timer duration must be positive")
	ErrClosed          = errors.New("timer engine closed")
)

const (
	DefaultTickInterval  = time.Second
	DefaultSoundInterval = 2 * time.Second
	DefaultMaxPlays      = 5
)

// Cue plays a completion sound by id. Play runs with the engine lock held and
// must not call back into the Engine.
type Cue interface {
	Play(soundID string) error
}

// Options contains runtime settings for the Engine. Zero values get defaults.
type Options struct {
	TickInterval  time.Duration
	SoundInterval time.Duration
	MaxPlays      int
	Scheduler     Scheduler
	Logger        *zap.Logger
	Now           func() time.Time

	// Listener sees every transition in order. It runs with the engine
	// locked and must neither block nor call back into the engine.
	Listener func(Event)
}

// Engine owns the countdown for one timer display.
type Engine struct {
	mu      sync.Mutex
	options Options
	cue     Cue
	logger  *zap.Logger

	preset    model.TimerPreset
	total     int
	remaining int
	phase     Phase
	loopCount int
	soundID   string

	tickTask  Task
	tickGen   uint64
	soundTask Task
	soundGen  uint64

	subscribers []chan Event
	closed      bool
}

// New creates an idle engine showing preset. A preset without a positive
// duration falls back to the catalog default.
func New(preset model.TimerPreset, cue Cue, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = DefaultTickInterval
	}
	if options.SoundInterval <= 0 {
		options.SoundInterval = DefaultSoundInterval
	}
	if options.MaxPlays <= 0 {
		options.MaxPlays = DefaultMaxPlays
	}
	if options.Scheduler == nil {
		options.Scheduler = SystemScheduler()
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if preset.DurationSeconds <= 0 {
		preset = model.DefaultPreset()
	}

	return &Engine{
		options:   options,
		cue:       cue,
		logger:    options.Logger,
		preset:    preset,
		total:     preset.DurationSeconds,
		remaining: preset.DurationSeconds,
		phase:     PhaseIdle,
		soundID:   model.DefaultSoundID,
	}
}

// Subscribe registers a display channel. Events are dropped when the
// channel is full; use Snapshot to resynchronize.
func (e *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subscribers = append(e.subscribers, ch)
	return ch
}

func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Select stops whatever is happening and shows preset from its full duration.
func (e *Engine) Select(preset model.TimerPreset) error {
	if preset.DurationSeconds <= 0 {
		return ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickLocked()
	e.stopSoundLocked()
	e.preset = preset
	e.total = preset.DurationSeconds
	e.remaining = e.total
	e.phase = PhaseIdle
	e.loopCount = 0
	e.emitLocked(EventSelected)
	return nil
}

// Start counts down from the current remaining time. Starting a running
// timer is a no-op.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

// Pause stops the countdown and keeps the remaining time.
func (e *Engine) Pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauseLocked()
}

// Toggle is the primary control: it silences a completion sequence, pauses
// a running countdown or starts an idle one.
func (e *Engine) Toggle() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.phase {
	case PhaseCompleting:
		e.stopCompletionLocked()
		return nil
	case PhaseRunning:
		e.pauseLocked()
		return nil
	default:
		return e.startLocked()
	}
}

// Reset returns to the full duration of the selected preset.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickLocked()
	e.stopSoundLocked()
	e.phase = PhaseIdle
	e.loopCount = 0
	e.remaining = e.total
	e.emitLocked(EventReset)
}

// SetSound changes the cue used by the completion sequence, including any
// plays still pending in the current one.
func (e *Engine) SetSound(soundID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.soundID = soundID
	e.emitLocked(EventSoundChanged)
}

// Close cancels pending work and closes subscriber channels.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopTickLocked()
	e.stopSoundLocked()
	if e.phase != PhaseIdle {
		e.phase = PhaseIdle
		e.loopCount = 0
	}
	e.closed = true
	for _, ch := range e.subscribers {
		close(ch)
	}
	e.subscribers = nil
}

func (e *Engine) startLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.phase == PhaseRunning {
		return nil
	}
	if e.remaining <= 0 {
		return ErrNothingToRun
	}
	e.phase = PhaseRunning
	e.scheduleTickLocked()
	e.emitLocked(EventStarted)
	return nil
}

func (e *Engine) pauseLocked() bool {
	if e.phase != PhaseRunning {
		return false
	}
	e.stopTickLocked()
	e.phase = PhaseIdle
	e.emitLocked(EventPaused)
	return true
}

func (e *Engine) scheduleTickLocked() {
	e.stopTickLocked()
	gen := e.tickGen
	e.tickTask = e.options.Scheduler.AfterFunc(e.options.TickInterval, func() {
		e.tick(gen)
	})
}

func (e *Engine) stopTickLocked() {
	e.tickGen++
	if e.tickTask != nil {
		e.tickTask.Stop()
		e.tickTask = nil
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	if gen != e.tickGen || e.phase != PhaseRunning {
		e.mu.Unlock()
		return
	}
	e.tickTask = nil

	if e.remaining > 1 {
		e.remaining--
		e.scheduleTickLocked()
		e.emitLocked(EventTick)
		e.mu.Unlock()
		return
	}

	e.remaining = 0
	e.stopTickLocked()
	e.enterCompletionLocked()
	e.mu.Unlock()
}

func (e *Engine) snapshotLocked() State {
	return State{
		Preset:    e.preset,
		Total:     e.total,
		Remaining: e.remaining,
		Phase:     e.phase,
		LoopCount: e.loopCount,
		SoundID:   e.soundID,
	}
}

func (e *Engine) emitLocked(eventType EventType) {
	event := Event{
		Type:  eventType,
		State: e.snapshotLocked(),
		At:    e.options.Now(),
	}
	if e.options.Listener != nil {
		e.options.Listener(event)
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
