// Package timertest provides a manual scheduler and a recording cue for
// driving the timer engine deterministically in tests.
package timertest

import (
	"sort"
	"sync"
	"time"

	"kidtimer/internal/timer"
)

// Scheduler fires callbacks only when Advance moves its clock past them.
// Callbacks run on the goroutine calling Advance.
type Scheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*task
}

type task struct {
	scheduler *Scheduler
	due       time.Duration
	seq       int
	fn        func()
	stopped   bool
	fired     bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) AfterFunc(d time.Duration, f func()) timer.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &task{scheduler: s, due: s.now + d, seq: s.seq, fn: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *task) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing due callbacks in order.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		next := s.popDue(target)
		if next == nil {
			break
		}
		next.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Pending counts callbacks that are scheduled and not stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

func (s *Scheduler) popDue(target time.Duration) *task {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.tasks = live
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due == s.tasks[j].due {
			return s.tasks[i].seq < s.tasks[j].seq
		}
		return s.tasks[i].due < s.tasks[j].due
	})

	if len(s.tasks) == 0 || s.tasks[0].due > target {
		return nil
	}
	next := s.tasks[0]
	next.fired = true
	s.now = next.due
	return next
}

// Cue records plays and optionally fails them.
type Cue struct {
	mu    sync.Mutex
	plays []string
	Err   error
}

func (c *Cue) Play(soundID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plays = append(c.plays, soundID)
	return c.Err
}

func (c *Cue) Plays() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.plays...)
}
