package config

import "errors"

var (
	ErrInvalidConfig = errors.New("config: invalid")
	ErrUnknownPreset = errors.New("config: unknown preset")
)
