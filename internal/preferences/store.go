// Package preferences persists the timer's last preset, custom duration and
// sound under fixed keys in a pluggable key/value backend.
package preferences

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kidtimer/internal/model"
)

const (
	KeyLastPreset     = "lastTimerPreset"
	KeyCustomDuration = "customTimerDuration"
	KeySelectedSound  = "selectedSound"
)

// Backend is a string key/value store. Get reports ok=false for absent keys.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Store struct {
	backend Backend
	logger  *zap.Logger
}

func NewStore(backend Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}
}

// Load never fails. Values that are absent, unreadable or invalid fall back
// to the defaults.
func (s *Store) Load(ctx context.Context) model.UserPreferences {
	prefs := model.DefaultPreferences()

	if raw, ok := s.read(ctx, KeyLastPreset); ok {
		if _, found := model.FindPreset(raw); found {
			prefs.LastPresetID = raw
		} else {
			s.logger.Debug("ignoring unknown saved preset", zap.String("value", raw))
		}
	}

	if raw, ok := s.read(ctx, KeyCustomDuration); ok {
		seconds, err := ParseCustomDuration(raw)
		if err == nil {
			prefs.CustomDurationSeconds = seconds
		} else {
			s.logger.Debug("ignoring saved custom duration", zap.String("value", raw), zap.Error(err))
		}
	}

	if raw, ok := s.read(ctx, KeySelectedSound); ok {
		if model.IsValidSound(raw) {
			prefs.SelectedSoundID = raw
		} else {
			s.logger.Debug("ignoring unknown saved sound", zap.String("value", raw))
		}
	}

	return prefs
}

func (s *Store) SavePreset(ctx context.Context, presetID string) error {
	if _, ok := model.FindPreset(presetID); !ok {
		return model.ErrUnknownPreset
	}
	return s.write(ctx, KeyLastPreset, presetID)
}

func (s *Store) SaveCustomDuration(ctx context.Context, seconds int) error {
	if !model.IsValidCustomSeconds(seconds) {
		return model.ErrInvalidCustomMinutes
	}
	return s.write(ctx, KeyCustomDuration, strconv.Itoa(seconds))
}

func (s *Store) SaveSound(ctx context.Context, soundID string) error {
	if !model.IsValidSound(soundID) {
		return model.ErrUnknownSound
	}
	return s.write(ctx, KeySelectedSound, soundID)
}

// ParseCustomDuration reads a stored custom duration in seconds.
func ParseCustomDuration(raw string) (int, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse custom duration: %w", err)
	}
	if !model.IsValidCustomSeconds(seconds) {
		return 0, model.ErrInvalidCustomMinutes
	}
	return seconds, nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("read preference", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func (s *Store) write(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("save preference %s: %w", key, err)
	}
	return nil
}
