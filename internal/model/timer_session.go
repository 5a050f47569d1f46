package model

import "time"

const (
	SessionInProgress = 0
	SessionCompleted  = 1
)

type TimerSession struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	PresetID      string     `json:"presetId"`
	PresetLabel   string     `json:"presetLabel"`
	TotalDuration int        `json:"totalDuration"`
	TimeSpent     int        `json:"timeSpent"`
	Completed     int        `json:"completed"`
	StartedAt     time.Time  `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
}

type SessionSummary struct {
	Sessions  int `json:"sessions"`
	Completed int `json:"completed"`
	TimeSpent int `json:"timeSpent"`
}
