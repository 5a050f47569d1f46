package model

// UserPreferences is what the timer remembers between runs. An empty
// LastPresetID means nothing was saved and the built-in preset applies.
type UserPreferences struct {
	LastPresetID          string `json:"lastPresetId,omitempty"`
	CustomDurationSeconds int    `json:"customDurationSeconds"`
	SelectedSoundID       string `json:"selectedSoundId"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		CustomDurationSeconds: DefaultCustomDurationSeconds,
		SelectedSoundID:       DefaultSoundID,
	}
}

// InitialPreset resolves the preset a restored timer should show.
func (p UserPreferences) InitialPreset() TimerPreset {
	if p.LastPresetID == "" {
		return DefaultPreset()
	}
	preset, ok := FindPreset(p.LastPresetID)
	if !ok {
		return DefaultPreset()
	}
	if preset.IsCustom() && p.CustomDurationSeconds > 0 {
		return preset.WithDuration(p.CustomDurationSeconds)
	}
	return preset
}
