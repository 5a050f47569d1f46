package reporter_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"kidtimer/internal/model"
	"kidtimer/internal/reporter"
	"kidtimer/internal/timer"
	"kidtimer/internal/timer/timertest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type call struct {
	Op        string
	SessionID string
	PresetID  string
	Total     int
	TimeSpent int
	Completed bool
}

type recordingReporter struct {
	mu       sync.Mutex
	calls    []call
	next     int
	beginErr error
}

func (r *recordingReporter) Begin(_ context.Context, presetID, _ string, totalSeconds int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.beginErr != nil {
		return "", r.beginErr
	}
	r.next++
	id := fmt.Sprintf("session-%d", r.next)
	r.calls = append(r.calls, call{Op: "begin", SessionID: id, PresetID: presetID, Total: totalSeconds})
	return id, nil
}

func (r *recordingReporter) Update(_ context.Context, sessionID string, timeSpent int, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{Op: "update", SessionID: sessionID, TimeSpent: timeSpent, Completed: completed})
	return nil
}

func (r *recordingReporter) recorded() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func newEngine(t *testing.T, async *reporter.Async, seconds int) (*timer.Engine, *timertest.Scheduler) {
	t.Helper()
	scheduler := timertest.NewScheduler()
	preset := model.TimerPreset{ID: model.PresetTeethBrushing, Label: "Teeth Brushing", DurationSeconds: seconds}
	engine := timer.New(preset, &timertest.Cue{}, timer.Options{
		Scheduler: scheduler,
		Listener:  async.Observe,
	})
	t.Cleanup(engine.Close)
	return engine, scheduler
}

func closeAsync(t *testing.T, async *reporter.Async) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, async.Close(ctx))
}

func TestCompletedRunIsReported(t *testing.T) {
	rec := &recordingReporter{}
	async := reporter.NewAsync(rec, reporter.Options{})
	engine, scheduler := newEngine(t, async, 3)

	require.NoError(t, engine.Start())
	for i := 0; i < 3; i++ {
		scheduler.Advance(time.Second)
	}
	closeAsync(t, async)

	assert.Equal(t, []call{
		{Op: "begin", SessionID: "session-1", PresetID: model.PresetTeethBrushing, Total: 3},
		{Op: "update", SessionID: "session-1", TimeSpent: 3, Completed: true},
	}, rec.recorded())
}

func TestPauseAndResetEndRuns(t *testing.T) {
	rec := &recordingReporter{}
	async := reporter.NewAsync(rec, reporter.Options{})
	engine, scheduler := newEngine(t, async, 10)

	require.NoError(t, engine.Start())
	scheduler.Advance(2 * time.Second)
	require.True(t, engine.Pause())

	require.NoError(t, engine.Start())
	scheduler.Advance(3 * time.Second)
	engine.Reset()

	require.NoError(t, engine.Start())
	scheduler.Advance(time.Second)
	require.NoError(t, engine.Select(model.CustomPreset(120)))

	// Nothing is open now, so these must not report.
	engine.Reset()
	assert.False(t, engine.Pause())
	closeAsync(t, async)

	calls := rec.recorded()
	require.Len(t, calls, 6)
	assert.Equal(t, call{Op: "update", SessionID: "session-1", TimeSpent: 2}, calls[1])
	assert.Equal(t, call{Op: "update", SessionID: "session-2", TimeSpent: 3}, calls[3])
	assert.Equal(t, call{Op: "update", SessionID: "session-3", TimeSpent: 1}, calls[5])
}

func TestResumedRunCountsOnlyItsOwnTime(t *testing.T) {
	rec := &recordingReporter{}
	async := reporter.NewAsync(rec, reporter.Options{})
	engine, scheduler := newEngine(t, async, 10)

	require.NoError(t, engine.Start())
	scheduler.Advance(3 * time.Second)
	require.True(t, engine.Pause())

	require.NoError(t, engine.Start())
	for i := 0; i < 7; i++ {
		scheduler.Advance(time.Second)
	}
	require.True(t, engine.Snapshot().Completing())
	closeAsync(t, async)

	calls := rec.recorded()
	require.Len(t, calls, 4)
	assert.Equal(t, call{Op: "update", SessionID: "session-1", TimeSpent: 3}, calls[1])
	assert.Equal(t, call{Op: "update", SessionID: "session-2", TimeSpent: 7, Completed: true}, calls[3])

	total := 0
	for _, c := range calls {
		total += c.TimeSpent
	}
	assert.Equal(t, 10, total)
}

func TestFailedBeginSkipsUpdate(t *testing.T) {
	rec := &recordingReporter{beginErr: errors.New("offline")}
	async := reporter.NewAsync(rec, reporter.Options{})
	engine, scheduler := newEngine(t, async, 10)

	require.NoError(t, engine.Start())
	scheduler.Advance(time.Second)
	engine.Pause()
	closeAsync(t, async)

	assert.Empty(t, rec.recorded())
	assert.Equal(t, 9, engine.Snapshot().Remaining)
}

type blockingReporter struct {
	recordingReporter
	release chan struct{}
}

func (r *blockingReporter) Begin(ctx context.Context, presetID, presetLabel string, totalSeconds int) (string, error) {
	<-r.release
	return r.recordingReporter.Begin(ctx, presetID, presetLabel, totalSeconds)
}

func TestSlowReporterNeverBlocksEngine(t *testing.T) {
	rec := &blockingReporter{release: make(chan struct{})}
	async := reporter.NewAsync(rec, reporter.Options{QueueSize: 2})
	engine, scheduler := newEngine(t, async, 100)

	for i := 0; i < 10; i++ {
		require.NoError(t, engine.Start())
		scheduler.Advance(time.Second)
		engine.Pause()
	}
	assert.Equal(t, 90, engine.Snapshot().Remaining)

	close(rec.release)
	closeAsync(t, async)
	assert.NotEmpty(t, rec.recorded())
}

func TestCloseIgnoresLaterEvents(t *testing.T) {
	rec := &recordingReporter{}
	async := reporter.NewAsync(rec, reporter.Options{})
	closeAsync(t, async)
	closeAsync(t, async)

	engine, _ := newEngine(t, async, 5)
	require.NoError(t, engine.Start())
	assert.Empty(t, rec.recorded())
}
