// Package controller maps user gestures onto the timer engine. It unlocks
// audio on every gesture and remembers selections in the preference store.
package controller

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kidtimer/internal/model"
	"kidtimer/internal/timer"
)

// ErrCustomNeedsMinutes is returned when the custom preset is picked without
// a duration; the caller should ask for minutes and call SelectCustom.
var ErrCustomNeedsMinutes = errors.New("custom timer needs a duration in minutes")

type Preferences interface {
	Load(ctx context.Context) model.UserPreferences
	SavePreset(ctx context.Context, presetID string) error
	SaveCustomDuration(ctx context.Context, seconds int) error
	SaveSound(ctx context.Context, soundID string) error
}

type Unlocker interface {
	EnsureUnlocked() error
}

type Controller struct {
	engine *timer.Engine
	prefs  Preferences
	audio  Unlocker
	logger *zap.Logger

	customSeconds int
}

func New(engine *timer.Engine, prefs Preferences, audio Unlocker, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		engine:        engine,
		prefs:         prefs,
		audio:         audio,
		logger:        logger,
		customSeconds: model.DefaultCustomDurationSeconds,
	}
}

// Restore applies saved preferences to the engine. Without a saved preset
// the engine keeps the preset it was built with.
func (c *Controller) Restore(ctx context.Context) model.UserPreferences {
	prefs := c.prefs.Load(ctx)
	c.customSeconds = prefs.CustomDurationSeconds
	c.engine.SetSound(prefs.SelectedSoundID)

	if prefs.LastPresetID != "" {
		if err := c.engine.Select(prefs.InitialPreset()); err != nil {
			c.logger.Warn("restore preset", zap.String("preset", prefs.LastPresetID), zap.Error(err))
		}
	}
	return prefs
}

// CustomMinutes is the value the minute picker should start from.
func (c *Controller) CustomMinutes() int {
	return c.customSeconds / 60
}

func (c *Controller) SelectPreset(ctx context.Context, presetID string) error {
	c.gesture()

	preset, ok := model.FindPreset(presetID)
	if !ok {
		return model.ErrUnknownPreset
	}
	if preset.IsCustom() {
		return ErrCustomNeedsMinutes
	}
	if err := c.engine.Select(preset); err != nil {
		return err
	}
	c.save("preset", c.prefs.SavePreset(ctx, preset.ID))
	return nil
}

func (c *Controller) SelectCustom(ctx context.Context, minutes int) error {
	c.gesture()

	if !model.IsValidCustomMinutes(minutes) {
		return model.ErrInvalidCustomMinutes
	}
	seconds := minutes * 60
	if err := c.engine.Select(model.CustomPreset(seconds)); err != nil {
		return err
	}
	c.customSeconds = seconds
	c.save("preset", c.prefs.SavePreset(ctx, model.PresetCustom))
	c.save("custom duration", c.prefs.SaveCustomDuration(ctx, seconds))
	return nil
}

func (c *Controller) SelectSound(ctx context.Context, soundID string) error {
	c.gesture()

	if !model.IsValidSound(soundID) {
		return model.ErrUnknownSound
	}
	c.engine.SetSound(soundID)
	c.save("sound", c.prefs.SaveSound(ctx, soundID))
	return nil
}

// Primary is the single big button: stop the sound, pause, or start.
func (c *Controller) Primary() error {
	c.gesture()
	return c.engine.Toggle()
}

func (c *Controller) Reset() {
	c.gesture()
	c.engine.Reset()
}

func (c *Controller) State() timer.State {
	return c.engine.Snapshot()
}

func (c *Controller) gesture() {
	if c.audio == nil {
		return
	}
	if err := c.audio.EnsureUnlocked(); err != nil {
		c.logger.Warn("audio unlock failed", zap.Error(err))
	}
}

func (c *Controller) save(field string, err error) {
	if err != nil {
		c.logger.Warn("save preference", zap.String("field", field), zap.Error(err))
	}
}
