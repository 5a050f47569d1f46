package timer

import "time"

// Task is a pending callback that can be cancelled.
type Task interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations may call f on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type systemScheduler struct{}

// SystemScheduler schedules callbacks on the runtime timer.
func SystemScheduler() Scheduler {
	return systemScheduler{}
}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}
