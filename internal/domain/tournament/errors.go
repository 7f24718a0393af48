package tournament

import "errors"

// Sentinel kinds for knockout errors.
var (
	ErrUnknownCommand    = errors.New("unknown result command")
	ErrNotEnoughEntrants = errors.New("not enough entrants for requested pool size")
	ErrInvalidTopSkew    = errors.New("top-skew size must be between 0 and the pool size")
	ErrPoolSizeConflict  = errors.New("persisted pool size conflicts with requested size")
)
