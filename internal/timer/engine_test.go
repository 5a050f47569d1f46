package timer_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kidtimer/internal/model"
	"kidtimer/internal/timer"
	"kidtimer/internal/timer/timertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	engine    *timer.Engine
	scheduler *timertest.Scheduler
	cue       *timertest.Cue

	mu     sync.Mutex
	events []timer.Event
}

func newHarness(t *testing.T, seconds int) *harness {
	t.Helper()
	h := &harness{
		scheduler: timertest.NewScheduler(),
		cue:       &timertest.Cue{},
	}
	preset := model.TimerPreset{ID: "test", Label: "Test", DurationSeconds: seconds}
	h.engine = timer.New(preset, h.cue, timer.Options{
		Scheduler: h.scheduler,
		Listener: func(event timer.Event) {
			h.mu.Lock()
			h.events = append(h.events, event)
			h.mu.Unlock()
		},
	})
	t.Cleanup(h.engine.Close)
	return h
}

func (h *harness) eventTypes() []timer.EventType {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]timer.EventType, 0, len(h.events))
	for _, event := range h.events {
		types = append(types, event.Type)
	}
	return types
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.scheduler.Advance(time.Second)
	}
}

func TestSelectEveryPreset(t *testing.T) {
	h := newHarness(t, 30)

	for _, preset := range model.Presets() {
		require.NoError(t, h.engine.Select(preset))
		state := h.engine.Snapshot()
		assert.Equal(t, preset.ID, state.Preset.ID)
		assert.Equal(t, preset.DurationSeconds, state.Total)
		assert.Equal(t, preset.DurationSeconds, state.Remaining)
		assert.Equal(t, timer.PhaseIdle, state.Phase)
	}
}

func TestSelectRejectsNonPositiveDuration(t *testing.T) {
	h := newHarness(t, 30)

	err := h.engine.Select(model.TimerPreset{ID: "broken"})
	assert.ErrorIs(t, err, timer.ErrInvalidDuration)
	assert.Equal(t, 30, h.engine.Snapshot().Total)
}

func TestCountdownReachesCompletion(t *testing.T) {
	h := newHarness(t, 5)
	require.NoError(t, h.engine.Start())

	h.ticks(4)
	state := h.engine.Snapshot()
	assert.Equal(t, 1, state.Remaining)
	assert.True(t, state.Running())

	h.ticks(1)
	state = h.engine.Snapshot()
	assert.Equal(t, 0, state.Remaining)
	assert.Equal(t, 5, state.Total)
	assert.Equal(t, timer.PhaseCompleting, state.Phase)
	assert.Equal(t, 0, state.LoopCount)
	assert.Equal(t, []string{model.DefaultSoundID}, h.cue.Plays())
}

func TestCompletionPlaysFiveTimes(t *testing.T) {
	h := newHarness(t, 1)
	h.engine.SetSound(model.SoundHappyBell)
	require.NoError(t, h.engine.Start())
	h.ticks(1)

	for loop := 1; loop < timer.DefaultMaxPlays; loop++ {
		h.scheduler.Advance(2 * time.Second)
		state := h.engine.Snapshot()
		assert.Equal(t, timer.PhaseCompleting, state.Phase)
		assert.Equal(t, loop, state.LoopCount)
		assert.Len(t, h.cue.Plays(), loop+1)
	}

	h.scheduler.Advance(2 * time.Second)
	state := h.engine.Snapshot()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 0, state.Remaining)
	assert.Equal(t, 0, state.LoopCount)
	assert.Equal(t, 0, h.scheduler.Pending())

	h.scheduler.Advance(time.Minute)
	plays := h.cue.Plays()
	assert.Len(t, plays, 5)
	for _, sound := range plays {
		assert.Equal(t, model.SoundHappyBell, sound)
	}
}

func TestStopDuringCompletion(t *testing.T) {
	for loop := 0; loop < timer.DefaultMaxPlays; loop++ {
		h := newHarness(t, 1)
		require.NoError(t, h.engine.Start())
		h.ticks(1)
		for i := 0; i < loop; i++ {
			h.scheduler.Advance(2 * time.Second)
		}
		require.Equal(t, loop, h.engine.Snapshot().LoopCount)

		require.NoError(t, h.engine.Toggle())
		state := h.engine.Snapshot()
		assert.Equal(t, timer.PhaseIdle, state.Phase, "loop %d", loop)
		assert.Equal(t, 0, state.Remaining)
		assert.Equal(t, 1, state.Total)

		played := len(h.cue.Plays())
		h.scheduler.Advance(time.Minute)
		assert.Len(t, h.cue.Plays(), played, "no plays after stop at loop %d", loop)
		assert.Equal(t, 0, h.scheduler.Pending())
	}
}

// stopWatchCue counts plays that happen after a concurrent StopSound returned.
type stopWatchCue struct {
	stopped chan struct{}

	mu        sync.Mutex
	plays     int
	afterStop int
}

func (c *stopWatchCue) Play(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays++
	select {
	case <-c.stopped:
		c.afterStop++
	default:
	}
	return nil
}

func TestConcurrentStopSilencesPendingPlay(t *testing.T) {
	scheduler := timertest.NewScheduler()
	cue := &stopWatchCue{stopped: make(chan struct{})}
	preset := model.TimerPreset{ID: "test", Label: "Test", DurationSeconds: 1}

	var (
		engine *timer.Engine
		once   sync.Once
		wg     sync.WaitGroup
	)
	engine = timer.New(preset, cue, timer.Options{
		Scheduler: scheduler,
		Listener: func(event timer.Event) {
			if event.Type != timer.EventSoundPlayed || event.State.LoopCount != 1 {
				return
			}
			once.Do(func() {
				wg.Add(1)
				go func() {
					defer wg.Done()
					engine.StopSound()
					close(cue.stopped)
				}()
			})
		},
	})
	t.Cleanup(engine.Close)

	require.NoError(t, engine.Start())
	scheduler.Advance(time.Second)
	scheduler.Advance(2 * time.Second)
	wg.Wait()

	assert.Equal(t, timer.PhaseIdle, engine.Snapshot().Phase)
	scheduler.Advance(time.Minute)

	cue.mu.Lock()
	defer cue.mu.Unlock()
	assert.Equal(t, 2, cue.plays)
	assert.Zero(t, cue.afterStop)
}

func TestStartAfterCompletionNeedsReset(t *testing.T) {
	h := newHarness(t, 1)
	require.NoError(t, h.engine.Start())
	h.ticks(1)
	assert.True(t, h.engine.StopSound())

	assert.ErrorIs(t, h.engine.Start(), timer.ErrNothingToRun)

	h.engine.Reset()
	assert.Equal(t, 1, h.engine.Snapshot().Remaining)
	assert.NoError(t, h.engine.Start())
}

func TestResetFromEveryState(t *testing.T) {
	h := newHarness(t, 3)
	h.engine.Reset()
	assert.Equal(t, timer.State{Preset: h.engine.Snapshot().Preset, Total: 3, Remaining: 3, Phase: timer.PhaseIdle, SoundID: model.DefaultSoundID}, h.engine.Snapshot())

	require.NoError(t, h.engine.Start())
	h.ticks(1)
	h.engine.Reset()
	state := h.engine.Snapshot()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 3, state.Remaining)

	require.NoError(t, h.engine.Start())
	h.ticks(3)
	require.True(t, h.engine.Snapshot().Completing())
	h.engine.Reset()
	state = h.engine.Snapshot()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 3, state.Remaining)
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestPauseKeepsRemaining(t *testing.T) {
	h := newHarness(t, 10)
	require.NoError(t, h.engine.Start())
	h.ticks(3)

	assert.True(t, h.engine.Pause())
	h.ticks(5)
	state := h.engine.Snapshot()
	assert.Equal(t, 7, state.Remaining)
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.False(t, h.engine.Pause())

	require.NoError(t, h.engine.Toggle())
	h.ticks(2)
	assert.Equal(t, 5, h.engine.Snapshot().Remaining)
}

func TestStartTwiceKeepsSingleTicker(t *testing.T) {
	h := newHarness(t, 10)
	require.NoError(t, h.engine.Start())
	require.NoError(t, h.engine.Start())
	assert.Equal(t, 1, h.scheduler.Pending())

	h.ticks(1)
	assert.Equal(t, 9, h.engine.Snapshot().Remaining)
}

func TestSelectWhileRunningStopsOldCountdown(t *testing.T) {
	h := newHarness(t, 10)
	require.NoError(t, h.engine.Start())
	h.ticks(2)

	bath, ok := model.FindPreset(model.PresetBathTime)
	require.True(t, ok)
	require.NoError(t, h.engine.Select(bath))

	h.ticks(5)
	state := h.engine.Snapshot()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 600, state.Total)
	assert.Equal(t, 600, state.Remaining)
	assert.Equal(t, 0, h.scheduler.Pending())
}

func TestSelectDuringCompletionClearsSequence(t *testing.T) {
	h := newHarness(t, 1)
	require.NoError(t, h.engine.Start())
	h.ticks(1)

	require.NoError(t, h.engine.Select(model.CustomPreset(7*60)))
	h.scheduler.Advance(time.Minute)

	state := h.engine.Snapshot()
	assert.Equal(t, 420, state.Total)
	assert.Equal(t, 420, state.Remaining)
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Len(t, h.cue.Plays(), 1)
}

func TestSoundFailureDoesNotStopSequence(t *testing.T) {
	h := newHarness(t, 1)
	h.cue.Err = errors.New("audio device unavailable")
	require.NoError(t, h.engine.Start())
	h.ticks(1)

	h.scheduler.Advance(10 * time.Second)
	assert.Len(t, h.cue.Plays(), 5)
	assert.Equal(t, timer.PhaseIdle, h.engine.Snapshot().Phase)
}

func TestEventSequence(t *testing.T) {
	h := newHarness(t, 2)
	require.NoError(t, h.engine.Start())
	h.ticks(2)
	h.scheduler.Advance(2 * time.Second)
	require.NoError(t, h.engine.Toggle())

	assert.Equal(t, []timer.EventType{
		timer.EventStarted,
		timer.EventTick,
		timer.EventCompleted,
		timer.EventSoundPlayed,
		timer.EventSoundPlayed,
		timer.EventSoundStopped,
	}, h.eventTypes())
}

func TestSubscribeAndClose(t *testing.T) {
	h := newHarness(t, 3)
	events := h.engine.Subscribe(8)

	require.NoError(t, h.engine.Start())
	event := <-events
	assert.Equal(t, timer.EventStarted, event.Type)
	assert.Equal(t, timer.PhaseRunning, event.State.Phase)

	h.engine.Close()
	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, timer.PhaseIdle, h.engine.Snapshot().Phase)
	assert.Equal(t, 0, h.scheduler.Pending())
	assert.ErrorIs(t, h.engine.Start(), timer.ErrClosed)

	_, open = <-h.engine.Subscribe(1)
	assert.False(t, open)
}

func TestSystemSchedulerTicks(t *testing.T) {
	cue := &timertest.Cue{}
	engine := timer.New(model.TimerPreset{ID: "fast", DurationSeconds: 2}, cue, timer.Options{
		TickInterval:  5 * time.Millisecond,
		SoundInterval: 5 * time.Millisecond,
	})
	defer engine.Close()
	events := engine.Subscribe(32)

	require.NoError(t, engine.Start())
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-events:
			if event.Type == timer.EventSoundFinished {
				assert.Len(t, cue.Plays(), timer.DefaultMaxPlays)
				return
			}
		case <-deadline:
			t.Fatal("completion sequence did not finish")
		}
	}
}
