package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kidtimer/internal/audio"
	"kidtimer/internal/controller"
	"kidtimer/internal/model"
	"kidtimer/internal/preferences"
	"kidtimer/internal/timer"
	"kidtimer/internal/timer/timertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memBackend struct {
	mu     sync.Mutex
	values map[string]string
	writes []string
	setErr error
}

func newMemBackend(values map[string]string) *memBackend {
	if values == nil {
		values = map[string]string{}
	}
	return &memBackend{values: values}
}

func (b *memBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *memBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.setErr != nil {
		return b.setErr
	}
	b.values[key] = value
	b.writes = append(b.writes, key)
	return nil
}

func (b *memBackend) writtenKeys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.writes...)
}

type countingPlayer struct {
	mu      sync.Mutex
	unlocks int
	plays   []audio.Tone
}

func (p *countingPlayer) Unlock() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlocks++
	return nil
}

func (p *countingPlayer) Play(tone audio.Tone) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays = append(p.plays, tone)
	return nil
}

type fixture struct {
	ctrl      *controller.Controller
	engine    *timer.Engine
	scheduler *timertest.Scheduler
	backend   *memBackend
	player    *countingPlayer
	sound     *audio.Service
}

func newFixture(t *testing.T, saved map[string]string) *fixture {
	t.Helper()
	f := &fixture{
		scheduler: timertest.NewScheduler(),
		backend:   newMemBackend(saved),
		player:    &countingPlayer{},
	}
	f.sound = audio.NewService(f.player, nil)
	f.engine = timer.New(model.DefaultPreset(), f.sound, timer.Options{Scheduler: f.scheduler})
	t.Cleanup(f.engine.Close)
	f.ctrl = controller.New(f.engine, preferences.NewStore(f.backend, nil), f.sound, nil)
	return f
}

func TestRestoreWithoutSavedPresetKeepsInitial(t *testing.T) {
	f := newFixture(t, nil)
	prefs := f.ctrl.Restore(context.Background())

	assert.Equal(t, model.DefaultPreferences(), prefs)
	state := f.ctrl.State()
	assert.Equal(t, model.PresetTeethBrushing, state.Preset.ID)
	assert.Equal(t, 120, state.Remaining)
	assert.Equal(t, model.SoundGentleChime, state.SoundID)
	assert.Equal(t, 5, f.ctrl.CustomMinutes())
}

func TestRestoreSavedCustomPreset(t *testing.T) {
	f := newFixture(t, map[string]string{
		preferences.KeyLastPreset:     model.PresetCustom,
		preferences.KeyCustomDuration: "420",
		preferences.KeySelectedSound:  model.SoundSoftGong,
	})
	f.ctrl.Restore(context.Background())

	state := f.ctrl.State()
	assert.Equal(t, model.PresetCustom, state.Preset.ID)
	assert.Equal(t, 420, state.Total)
	assert.Equal(t, 420, state.Remaining)
	assert.Equal(t, model.SoundSoftGong, state.SoundID)
	assert.Equal(t, 7, f.ctrl.CustomMinutes())
}

func TestRestoreMalformedCustomDurationFallsBack(t *testing.T) {
	f := newFixture(t, map[string]string{
		preferences.KeyLastPreset:     model.PresetCustom,
		preferences.KeyCustomDuration: "seven",
	})
	prefs := f.ctrl.Restore(context.Background())

	assert.Equal(t, 300, prefs.CustomDurationSeconds)
	assert.Equal(t, 300, f.ctrl.State().Total)
}

func TestSelectCustomSevenMinutes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.SelectCustom(ctx, 7))
	state := f.ctrl.State()
	assert.Equal(t, 420, state.Total)
	assert.Equal(t, 420, state.Remaining)
	assert.Equal(t, timer.PhaseIdle, state.Phase)

	assert.Equal(t, []string{preferences.KeyLastPreset, preferences.KeyCustomDuration}, f.backend.writtenKeys())
	assert.Equal(t, "420", f.backend.values[preferences.KeyCustomDuration])
}

func TestSelectCustomRejectsOutOfRange(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	for _, minutes := range []int{0, -1, 61} {
		assert.ErrorIs(t, f.ctrl.SelectCustom(ctx, minutes), model.ErrInvalidCustomMinutes)
	}
	assert.Equal(t, 120, f.ctrl.State().Total)
	assert.Empty(t, f.backend.writtenKeys())
}

func TestSelectPresetWritesOneField(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.SelectPreset(ctx, model.PresetReadingTime))
	assert.Equal(t, 900, f.ctrl.State().Remaining)
	assert.Equal(t, []string{preferences.KeyLastPreset}, f.backend.writtenKeys())

	assert.ErrorIs(t, f.ctrl.SelectPreset(ctx, model.PresetCustom), controller.ErrCustomNeedsMinutes)
	assert.ErrorIs(t, f.ctrl.SelectPreset(ctx, "nap-time"), model.ErrUnknownPreset)
	assert.Len(t, f.backend.writtenKeys(), 1)
}

func TestSelectSound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.ctrl.SelectSound(ctx, model.SoundHappyBell))
	assert.Equal(t, model.SoundHappyBell, f.ctrl.State().SoundID)
	assert.Equal(t, []string{preferences.KeySelectedSound}, f.backend.writtenKeys())

	assert.ErrorIs(t, f.ctrl.SelectSound(ctx, "foghorn"), model.ErrUnknownSound)
	assert.Equal(t, model.SoundHappyBell, f.ctrl.State().SoundID)
}

func TestSaveFailuresAreNotSurfaced(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.setErr = errors.New("disk full")

	assert.NoError(t, f.ctrl.SelectPreset(context.Background(), model.PresetBathTime))
	assert.Equal(t, 600, f.ctrl.State().Total)
}

func TestPrimaryCyclesAndUnlocksOnce(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ctrl.SelectCustom(context.Background(), 1))

	require.NoError(t, f.ctrl.Primary())
	assert.True(t, f.ctrl.State().Running())
	for i := 0; i < 10; i++ {
		f.scheduler.Advance(time.Second)
	}

	require.NoError(t, f.ctrl.Primary())
	state := f.ctrl.State()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 50, state.Remaining)

	require.NoError(t, f.ctrl.Primary())
	for i := 0; i < 50; i++ {
		f.scheduler.Advance(time.Second)
	}
	require.True(t, f.ctrl.State().Completing())

	require.NoError(t, f.ctrl.Primary())
	state = f.ctrl.State()
	assert.Equal(t, timer.PhaseIdle, state.Phase)
	assert.Equal(t, 0, state.Remaining)

	assert.ErrorIs(t, f.ctrl.Primary(), timer.ErrNothingToRun)
	f.ctrl.Reset()
	assert.Equal(t, 60, f.ctrl.State().Remaining)

	assert.True(t, f.sound.Unlocked())
	assert.Equal(t, 1, f.player.unlocks)
	assert.Len(t, f.player.plays, 1)
}

func TestCompletionWithoutGestureStaysSilent(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.ctrl.SelectCustom(context.Background(), 1))

	require.NoError(t, f.engine.Start())
	for i := 0; i < 60; i++ {
		f.scheduler.Advance(time.Second)
	}

	require.True(t, f.ctrl.State().Completing())
	assert.False(t, f.sound.Unlocked())
	assert.Zero(t, f.player.unlocks)
	assert.Empty(t, f.player.plays)
}
