package model

const (
	SoundGentleChime = "gentle-chime"
	SoundHappyBell   = "happy-bell"
	SoundSoftGong    = "soft-gong"

	DefaultSoundID = SoundGentleChime
)

type Sound struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var sounds = []Sound{
	{ID: SoundGentleChime, Label: "Gentle Chime"},
	{ID: SoundHappyBell, Label: "Happy Bell"},
	{ID: SoundSoftGong, Label: "Soft Gong"},
}

func Sounds() []Sound {
	out := make([]Sound, len(sounds))
	copy(out, sounds)
	return out
}

func IsValidSound(id string) bool {
	for _, sound := range sounds {
		if sound.ID == id {
			return true
		}
	}
	return false
}
