package model

import "errors"

var (
	ErrUnknownPreset        = errors.New("unknown timer preset")
	ErrUnknownSound         = errors.New("unknown sound")
	ErrInvalidCustomMinutes = errors.New("custom timer must be between 1 and 60 minutes")
)
