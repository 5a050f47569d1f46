package timer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kidtimer/internal/timer"
)

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		65:   "1:05",
		5:    "0:05",
		0:    "0:00",
		600:  "10:00",
		3599: "59:59",
		-3:   "0:00",
	}
	for seconds, want := range cases {
		assert.Equal(t, want, timer.FormatClock(seconds), "seconds=%d", seconds)
	}
}

func TestStateProgress(t *testing.T) {
	assert.InDelta(t, 1.0, timer.State{Total: 120, Remaining: 120}.Progress(), 1e-9)
	assert.InDelta(t, 0.25, timer.State{Total: 120, Remaining: 30}.Progress(), 1e-9)
	assert.InDelta(t, 0.0, timer.State{Total: 120, Remaining: 0}.Progress(), 1e-9)
	assert.InDelta(t, 0.0, timer.State{}.Progress(), 1e-9)
}

func TestStateElapsed(t *testing.T) {
	assert.Equal(t, 90, timer.State{Total: 120, Remaining: 30}.Elapsed())
	assert.Equal(t, 0, timer.State{Total: 10, Remaining: 20}.Elapsed())
}
