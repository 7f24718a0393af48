package app

import "errors"

// Sentinel kinds for engine-loop errors.
var (
	// ErrInsufficientEntrants means fewer entrants are available than a
	// requested pool size. The run stops gracefully.
	ErrInsufficientEntrants = errors.New("not enough entrants available")
)
