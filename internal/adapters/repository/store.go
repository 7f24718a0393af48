// Package repository defines the persistence collaborator for entrants,
// game records, eliminations, and the knockout pool, plus its errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/duelo/internal/domain/model"
)

// KnockoutRow is one line of the winner ordering: an entrant plus its
// elimination mark, nil for the winner (or a still-active entrant).
type KnockoutRow struct {
	Entrant      model.Entrant
	EliminatedAt *time.Time
}

// Store provides transactional access to the ladder state. Implementations
// are the sole source of truth: callers re-read rather than mirror.
type Store interface {
	// Upsert adds a new entrant with the default rating. Idempotent: the
	// first insert wins and later calls leave the row untouched.
	Upsert(ctx context.Context, path string) error

	// Entrant returns the entrant by id, or ErrUnknownEntrant.
	Entrant(ctx context.Context, id int64) (model.Entrant, error)

	// Entrants lists every entrant, optionally filtered. A nil keep returns
	// all rows.
	Entrants(ctx context.Context, keep func(model.Entrant) bool) ([]model.Entrant, error)

	// ApplyBout persists both new ratings, the matching win/loss/tie
	// counters, and the appended game record as one transaction. Returns
	// ErrUnknownEntrant, with nothing applied, if either id is missing.
	ApplyBout(ctx context.Context, idA, idB int64, newEloA, newEloB float64, result model.Result) error

	// MarkEliminated records an elimination mark; already-marked ids are a
	// no-op.
	MarkEliminated(ctx context.Context, id int64) error

	// Eliminations returns elimination marks keyed by entrant id.
	Eliminations(ctx context.Context) (map[int64]time.Time, error)

	// ClearEliminations removes every elimination mark.
	ClearEliminations(ctx context.Context) error

	// SavePool persists a curated pool under a run id, replacing any
	// existing pool.
	SavePool(ctx context.Context, runID string, ids []int64) error

	// LoadPool returns the persisted pool, or ErrNoPool.
	LoadPool(ctx context.Context) (*model.Pool, error)

	// ClearPool removes the persisted pool.
	ClearPool(ctx context.Context) error

	// Remove deletes an entrant, cascading to its game records and
	// elimination mark, as one transaction.
	Remove(ctx context.Context, id int64) error

	// ShiftRatings adds share to every entrant except excludeID and returns
	// how many rows moved.
	ShiftRatings(ctx context.Context, share float64, excludeID int64) (int64, error)

	// Rankings returns rank positions keyed by entrant id, Elo descending
	// with id ascending as the stable tiebreak.
	Rankings(ctx context.Context) (map[int64]int, error)

	// KnockoutResults returns all entrants in winner ordering: unmarked
	// first, then elimination time descending, then Elo descending.
	KnockoutResults(ctx context.Context) ([]KnockoutRow, error)

	// Rename changes an entrant's display identifier.
	Rename(ctx context.Context, oldPath, newPath string) error

	// Count returns the number of entrants tracked.
	Count(ctx context.Context) (int, error)
}
