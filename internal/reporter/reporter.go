// Package reporter records timer runs to session history without ever
// blocking the countdown engine.
package reporter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"kidtimer/internal/timer"
)

// Reporter persists timer runs. Begin returns an opaque session handle.
type Reporter interface {
	Begin(ctx context.Context, presetID, presetLabel string, totalSeconds int) (string, error)
	Update(ctx context.Context, sessionID string, timeSpent int, completed bool) error
}

type Options struct {
	QueueSize   int
	CallTimeout time.Duration
	Logger      *zap.Logger
}

type jobKind int

const (
	jobBegin jobKind = iota
	jobEnd
)

type job struct {
	kind        jobKind
	presetID    string
	presetLabel string
	total       int
	timeSpent   int
	completed   bool
}

// Async turns engine events into Begin/Update calls made by one worker
// goroutine, so calls reach the Reporter in event order.
type Async struct {
	reporter Reporter
	logger   *zap.Logger
	timeout  time.Duration
	jobs     chan job
	done     chan struct{}

	mu     sync.Mutex
	open   bool
	last   timer.State
	closed bool
	// remaining seconds when the open run started; a resumed run only
	// counts the time it ran itself.
	startRemaining int
}

func NewAsync(r Reporter, options Options) *Async {
	if options.QueueSize <= 0 {
		options.QueueSize = 32
	}
	if options.CallTimeout <= 0 {
		options.CallTimeout = 10 * time.Second
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}

	a := &Async{
		reporter: r,
		logger:   options.Logger,
		timeout:  options.CallTimeout,
		jobs:     make(chan job, options.QueueSize),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

// Observe is meant to be installed as the engine listener. It never blocks.
func (a *Async) Observe(event timer.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	switch event.Type {
	case timer.EventStarted:
		if a.open {
			a.endLocked(a.last, false)
		}
		a.open = true
		a.last = event.State
		a.startRemaining = event.State.Remaining
		a.enqueueLocked(job{
			kind:        jobBegin,
			presetID:    event.State.Preset.ID,
			presetLabel: event.State.Preset.Label,
			total:       event.State.Total,
		})
	case timer.EventTick:
		a.last = event.State
	case timer.EventPaused:
		a.endLocked(event.State, false)
	case timer.EventReset, timer.EventSelected:
		// The event already carries the post-reset state; the last tick
		// holds how far the run got.
		a.endLocked(a.last, false)
	case timer.EventCompleted:
		a.endLocked(event.State, true)
	}
}

// Close stops accepting events and waits for queued reports to finish.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.jobs)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) endLocked(state timer.State, completed bool) {
	if !a.open {
		return
	}
	a.open = false
	remaining := state.Remaining
	if completed {
		remaining = 0
	}
	timeSpent := max(a.startRemaining-remaining, 0)
	a.enqueueLocked(job{kind: jobEnd, timeSpent: timeSpent, completed: completed})
}

func (a *Async) enqueueLocked(j job) {
	select {
	case a.jobs <- j:
	default:
		a.logger.Warn("session report dropped, queue full")
	}
}

func (a *Async) run() {
	defer close(a.done)

	var sessionID string
	for j := range a.jobs {
		switch j.kind {
		case jobBegin:
			if sessionID != "" {
				a.logger.Debug("previous session left open", zap.String("session_id", sessionID))
			}
			sessionID = a.begin(j)
		case jobEnd:
			if sessionID == "" {
				a.logger.Debug("skipping session update without a session")
				continue
			}
			a.update(sessionID, j)
			sessionID = ""
		}
	}
}

func (a *Async) begin(j job) string {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	sessionID, err := a.reporter.Begin(ctx, j.presetID, j.presetLabel, j.total)
	if err != nil {
		a.logger.Warn("begin timer session failed",
			zap.String("preset", j.presetID),
			zap.Error(err))
		return ""
	}
	a.logger.Debug("timer session started", zap.String("session_id", sessionID))
	return sessionID
}

func (a *Async) update(sessionID string, j job) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.reporter.Update(ctx, sessionID, j.timeSpent, j.completed); err != nil {
		a.logger.Warn("update timer session failed",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return
	}
	a.logger.Debug("timer session recorded",
		zap.String("session_id", sessionID),
		zap.Int("time_spent", j.timeSpent),
		zap.Bool("completed", j.completed))
}
