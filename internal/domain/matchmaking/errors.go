package matchmaking

import "errors"

// Sentinel kinds for selection errors.
var (
	ErrNoEntrants = errors.New("no entrants to select from")
)
