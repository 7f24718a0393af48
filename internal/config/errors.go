package config

import "errors"

// Error kinds wrapped around the underlying koanf and validation failures,
// matchable with errors.Is.
var (
	ErrInvalidConfig = errors.New("invalid configuration value")
	ErrLoadConfig    = errors.New("configuration could not be loaded")
)
