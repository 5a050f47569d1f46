package timer

import "go.uber.org/zap"

// enterCompletionLocked switches to the completion phase and plays the
// first sound.
func (e *Engine) enterCompletionLocked() {
	e.phase = PhaseCompleting
	e.loopCount = 0
	e.emitLocked(EventCompleted)
	e.announcePlayLocked()
}

// announcePlayLocked plays the current sound while e.mu is held, so a stop
// that commits first always silences the sequence.
func (e *Engine) announcePlayLocked() {
	e.emitLocked(EventSoundPlayed)
	e.scheduleSoundLocked()
	e.playLocked(e.soundID)
}

func (e *Engine) scheduleSoundLocked() {
	e.stopSoundLocked()
	gen := e.soundGen
	e.soundTask = e.options.Scheduler.AfterFunc(e.options.SoundInterval, func() {
		e.advanceSound(gen)
	})
}

func (e *Engine) stopSoundLocked() {
	e.soundGen++
	if e.soundTask != nil {
		e.soundTask.Stop()
		e.soundTask = nil
	}
}

func (e *Engine) advanceSound(gen uint64) {
	e.mu.Lock()
	if gen != e.soundGen || e.phase != PhaseCompleting {
		e.mu.Unlock()
		return
	}
	e.soundTask = nil
	e.loopCount++

	if e.loopCount >= e.options.MaxPlays {
		e.stopSoundLocked()
		e.phase = PhaseIdle
		e.loopCount = 0
		e.emitLocked(EventSoundFinished)
		e.mu.Unlock()
		return
	}

	e.announcePlayLocked()
	e.mu.Unlock()
}

// StopSound silences an active completion sequence. The remaining time
// stays at zero until the timer is reset or a preset is selected.
func (e *Engine) StopSound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopCompletionLocked()
}

func (e *Engine) stopCompletionLocked() bool {
	if e.phase != PhaseCompleting {
		return false
	}
	e.stopSoundLocked()
	e.phase = PhaseIdle
	e.loopCount = 0
	e.remaining = 0
	e.emitLocked(EventSoundStopped)
	return true
}

func (e *Engine) playLocked(soundID string) {
	if e.cue == nil {
		return
	}
	if err := e.cue.Play(soundID); err != nil {
		e.logger.Warn("completion sound failed",
			zap.String("sound", soundID),
			zap.Error(err))
	}
}
