package repository

import "errors"

// Sentinel kinds for store errors.
var (
	// ErrUnknownEntrant is an integrity failure: an update referenced an id
	// that is not in the store. Callers must treat it as fatal.
	ErrUnknownEntrant = errors.New("unknown entrant")

	// ErrNoPool means no tournament pool is persisted.
	ErrNoPool = errors.New("no tournament pool saved")
)
