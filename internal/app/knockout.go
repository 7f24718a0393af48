package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/duelo/internal/adapters/export"
	"github.com/okian/duelo/internal/adapters/repository"
	"github.com/okian/duelo/internal/adapters/term"
	"github.com/okian/duelo/internal/domain/tournament"
	"github.com/okian/duelo/pkg/logger"
)

// initKnockout resumes a persisted knockout run or curates a fresh pool.
// A persisted pool with a different requested size is a configuration
// conflict and fatal: resume unchanged or reset explicitly.
func (s *Service) initKnockout(ctx context.Context, p Params) error {
	marks, err := s.store.Eliminations(ctx)
	if err != nil {
		return err
	}

	pool, err := s.store.LoadPool(ctx)
	if err != nil && !errors.Is(err, repository.ErrNoPool) {
		return err
	}

	if len(marks) > 0 || pool != nil {
		if p.PoolSize > 0 && pool != nil && pool.Size() != p.PoolSize {
			return fmt.Errorf("stored pool has %d members, requested %d (resume without a size, or reset): %w",
				pool.Size(), p.PoolSize, tournament.ErrPoolSizeConflict)
		}

		s.log.Info(ctx, "resuming knockout tournament",
			logger.Int("eliminated", len(marks)),
			logger.Int("pool_size", pool.Size()))
		s.render.Infof("Resuming knockout tournament (%d eliminated).", len(marks))
		return nil
	}

	if p.PoolSize == 0 {
		return nil // all entrants compete
	}

	if err := s.sync(ctx); err != nil {
		return err
	}
	candidates, err := s.eligible(ctx, Params{Dir: p.Dir, Pattern: p.Pattern}, scope{})
	if err != nil {
		return err
	}
	if len(candidates) < p.PoolSize {
		return fmt.Errorf("%d files available, pool size %d: %w",
			len(candidates), p.PoolSize, ErrInsufficientEntrants)
	}

	ids, err := tournament.CuratePool(s.rng, candidates, p.PoolSize, p.TopSkew, p.Power)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if err := s.store.SavePool(ctx, runID, ids); err != nil {
		return err
	}

	s.log.Info(ctx, "curated knockout pool",
		logger.String("run_id", runID),
		logger.Int("total", p.PoolSize),
		logger.Int("top_skew", p.TopSkew))
	s.render.Successf("Selected %d competitors for the knockout tournament.", p.PoolSize)
	return nil
}

// winnerScreen shows the final ordering and waits for reset or quit.
// Returns quit=true when the judge is done with the program.
func (s *Service) winnerScreen(ctx context.Context, p Params, sc scope) (quit bool, err error) {
	rows, err := s.store.KnockoutResults(ctx)
	if err != nil {
		return false, err
	}
	s.render.WinnerScreen(resultRows(rows))

	for {
		input, err := s.prompt.Line("Type 'reset' to export results and start over, or 'q' to quit: ")
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(input) {
		case "reset":
			var runID string
			if sc.pool != nil {
				runID = sc.pool.RunID
			}
			path, err := export.WriteKnockoutCSV(p.Dir, runID, rows, s.now())
			if err != nil {
				return false, err
			}
			s.render.Successf("Results exported to %s", path)
			if err := s.clearKnockout(ctx); err != nil {
				return false, err
			}
			return false, nil
		case "q", "quit":
			return true, nil
		default:
			s.render.Warnf("Please type 'reset' or 'q'.")
		}
	}
}

// handleReset clears all knockout state after confirmation. Returns true
// when the state changed and the outer loop should re-sync.
func (s *Service) handleReset(ctx context.Context) (bool, error) {
	ok, err := s.prompt.Confirm("Reset the knockout tournament? All eliminations will be cleared.")
	if err != nil {
		return false, err
	}
	if !ok {
		s.render.Infof("Reset cancelled.")
		return false, nil
	}
	if err := s.clearKnockout(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// clearKnockout wipes eliminations and the pool, restoring every entrant.
func (s *Service) clearKnockout(ctx context.Context) error {
	if err := s.store.ClearEliminations(ctx); err != nil {
		return err
	}
	if err := s.store.ClearPool(ctx); err != nil {
		return err
	}
	s.render.Successf("Knockout tournament reset. All players are back in.")
	return nil
}

// resultRows maps store rows to display rows.
func resultRows(rows []repository.KnockoutRow) []term.ResultRow {
	out := make([]term.ResultRow, len(rows))
	for i, r := range rows {
		out[i] = term.ResultRow{
			Path:         r.Entrant.Path,
			Elo:          r.Entrant.Elo,
			Record:       r.Entrant.Record(),
			EliminatedAt: r.EliminatedAt,
		}
	}
	return out
}
