// Package audio is the sound capability used by the completion sequence.
// One Service is created per process and injected where sounds are played.
package audio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"kidtimer/internal/model"
)

// Player is a platform sound output. Unlock must succeed before the first
// Play on platforms that gate audio behind a user gesture.
type Player interface {
	Unlock() error
	Play(tone Tone) error
}

// ErrLocked is returned by Play before any gesture has unlocked audio.
var ErrLocked = errors.New("audio is locked until a user gesture")

type Service struct {
	mu       sync.Mutex
	player   Player
	logger   *zap.Logger
	unlocked bool
}

func NewService(player Player, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{player: player, logger: logger}
}

// EnsureUnlocked unlocks the player once. A failed unlock is retried on the
// next call.
func (s *Service) EnsureUnlocked() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureUnlockedLocked()
}

func (s *Service) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

// Play renders the tone for soundID. Unknown ids play the fallback tone.
// Play never unlocks the player itself; EnsureUnlocked must run first from a
// user gesture.
func (s *Service) Play(soundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.unlocked {
		return ErrLocked
	}
	if err := s.player.Play(ToneFor(soundID)); err != nil {
		return fmt.Errorf("play %s: %w", soundID, err)
	}
	return nil
}

func (s *Service) ensureUnlockedLocked() error {
	if s.unlocked {
		return nil
	}
	if err := s.player.Unlock(); err != nil {
		return fmt.Errorf("unlock audio: %w", err)
	}
	s.unlocked = true
	s.logger.Debug("audio unlocked")
	return nil
}

// Tone describes a short synthesized cue.
type Tone struct {
	SoundID   string
	Waveform  string
	Hertz     []float64
	Gain      float64
	DecaySecs float64
}

var tones = map[string]Tone{
	model.SoundGentleChime: {
		SoundID:   model.SoundGentleChime,
		Waveform:  "sine",
		Hertz:     []float64{800, 400},
		Gain:      0.3,
		DecaySecs: 0.5,
	},
	model.SoundHappyBell: {
		SoundID:   model.SoundHappyBell,
		Waveform:  "triangle",
		Hertz:     []float64{600, 500, 600},
		Gain:      0.4,
		DecaySecs: 0.6,
	},
	model.SoundSoftGong: {
		SoundID:   model.SoundSoftGong,
		Waveform:  "sine",
		Hertz:     []float64{200, 150},
		Gain:      0.5,
		DecaySecs: 1,
	},
}

var fallbackTone = Tone{
	Waveform:  "sine",
	Hertz:     []float64{440},
	Gain:      0.3,
	DecaySecs: 0.5,
}

func ToneFor(soundID string) Tone {
	if tone, ok := tones[soundID]; ok {
		return tone
	}
	tone := fallbackTone
	tone.SoundID = soundID
	return tone
}
