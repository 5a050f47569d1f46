package model

const (
	PresetTeethBrushing = "teeth-brushing"
	PresetTransition    = "transition"
	PresetCleanUp       = "clean-up"
	PresetBathTime      = "bath-time"
	PresetReadingTime   = "reading-time"
	PresetCustom        = "custom"
)

const (
	DefaultCustomDurationSeconds = 5 * 60
	MinCustomMinutes             = 1
	MaxCustomMinutes             = 60
	MaxTimerDurationSeconds      = MaxCustomMinutes * 60
)

type TimerPreset struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	DurationSeconds int    `json:"durationSeconds"`
	Icon            string `json:"icon"`
}

// IsCustom reports whether the preset is the user-sized sentinel entry.
func (p TimerPreset) IsCustom() bool {
	return p.ID == PresetCustom
}

// WithDuration returns a copy of the preset counting down from seconds.
func (p TimerPreset) WithDuration(seconds int) TimerPreset {
	p.DurationSeconds = seconds
	return p
}

var presets = []TimerPreset{
	{ID: PresetTeethBrushing, Label: "Teeth Brushing", DurationSeconds: 120, Icon: "sparkles"},
	{ID: PresetTransition, Label: "Transition", DurationSeconds: 180, Icon: "arrow-left-right"},
	{ID: PresetCleanUp, Label: "Clean-up", DurationSeconds: 300, Icon: "hand"},
	{ID: PresetBathTime, Label: "Bath Time", DurationSeconds: 600, Icon: "shower-head"},
	{ID: PresetReadingTime, Label: "Reading Time", DurationSeconds: 900, Icon: "book-open"},
	{ID: PresetCustom, Label: "Custom", DurationSeconds: DefaultCustomDurationSeconds, Icon: "clock"},
}

// Presets returns the catalog in display order. The slice is a copy.
func Presets() []TimerPreset {
	out := make([]TimerPreset, len(presets))
	copy(out, presets)
	return out
}

// DefaultPreset is the preset a fresh timer starts on.
func DefaultPreset() TimerPreset {
	return presets[0]
}

func FindPreset(id string) (TimerPreset, bool) {
	for _, preset := range presets {
		if preset.ID == id {
			return preset, true
		}
	}
	return TimerPreset{}, false
}

// CustomPreset returns the custom entry sized to seconds.
func CustomPreset(seconds int) TimerPreset {
	preset, _ := FindPreset(PresetCustom)
	return preset.WithDuration(seconds)
}

func IsValidCustomMinutes(minutes int) bool {
	return minutes >= MinCustomMinutes && minutes <= MaxCustomMinutes
}

// IsValidCustomSeconds reports whether a stored custom duration lies within
// the picker's range.
func IsValidCustomSeconds(seconds int) bool {
	return seconds >= MinCustomMinutes*60 && seconds <= MaxTimerDurationSeconds
}
