package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/duelo/internal/adapters/term"
	"github.com/okian/duelo/internal/domain/model"
	"github.com/okian/duelo/internal/domain/rating"
	"github.com/okian/duelo/internal/domain/tournament"
	"github.com/okian/duelo/pkg/logger"
	"github.com/okian/duelo/pkg/metrics"
)

// judge applies a result command: the zero-sum rating update with counters
// and game record in one transaction, then any knockout eliminations.
func (s *Service) judge(ctx context.Context, p Params, cmd tournament.Command, a, b model.Entrant) error {
	oldRanks, err := s.store.Rankings(ctx)
	if err != nil {
		return err
	}

	out := cmd.Outcome()
	if !p.Knockout {
		out = cmd.LadderOutcome()
	}

	newEloA, newEloB := rating.Apply(a.Elo, b.Elo, out.Result)
	if err := s.store.ApplyBout(ctx, a.ID, b.ID, newEloA, newEloB, out.Result); err != nil {
		return err // integrity failures are fatal
	}
	metrics.RecordBoutJudged(string(out.Result))

	newRanks, err := s.store.Rankings(ctx)
	if err != nil {
		return err
	}
	s.render.RankChanges([]term.RankChange{
		{Path: a.Path, Old: oldRanks[a.ID], New: newRanks[a.ID]},
		{Path: b.Path, Old: oldRanks[b.ID], New: newRanks[b.ID]},
	})

	if !p.Knockout {
		return nil
	}
	return s.applyEliminations(ctx, p, out, a, b)
}

// applyEliminations records the command's elimination marks and reports the
// surviving population.
func (s *Service) applyEliminations(ctx context.Context, p Params, out tournament.Outcome, a, b model.Entrant) error {
	if out.EliminateA {
		if err := s.store.MarkEliminated(ctx, a.ID); err != nil {
			return err
		}
		metrics.RecordElimination()
	}
	if out.EliminateB {
		if err := s.store.MarkEliminated(ctx, b.ID); err != nil {
			return err
		}
		metrics.RecordElimination()
	}

	winner, loser := a, b
	if out.Result == model.ResultB {
		winner, loser = b, a
	}

	switch {
	case out.RetiredWinner:
		s.render.Warnf("%s wins but is removed from the tournament.", winner.Path)
	case out.SparedLoser:
		s.render.Infof("%s wins, but both players stay in.", winner.Path)
	case out.Result == model.ResultTie && out.Eliminations() == 2:
		s.render.Warnf("Tie, but both players are removed from the tournament.")
	case out.Result == model.ResultTie && out.EliminateA:
		s.render.Warnf("Tie, but %s is removed from the tournament.", a.Path)
	case out.Result == model.ResultTie && out.EliminateB:
		s.render.Warnf("Tie, but %s is removed from the tournament.", b.Path)
	case out.Result == model.ResultTie:
		s.render.Infof("Tie - no one eliminated.")
	default:
		s.render.Warnf("%s has been eliminated.", loser.Path)
	}

	sc, err := s.loadScope(ctx, p)
	if err != nil {
		return err
	}
	files, err := s.eligible(ctx, p, sc)
	if err != nil {
		return err
	}
	metrics.UpdateKnockoutRemaining(len(files))
	s.render.Remaining(len(files))
	return nil
}

// handleRemove drops one or both bout participants from the ladder
// entirely. Returns handled=false for an unrecognized argument.
func (s *Service) handleRemove(ctx context.Context, arg string, a, b model.Entrant) (bool, error) {
	var targets []model.Entrant
	switch strings.ToLower(arg) {
	case "a":
		targets = []model.Entrant{a}
	case "b":
		targets = []model.Entrant{b}
	case "ab", "ba":
		targets = []model.Entrant{a, b}
	default:
		s.render.Warnf("Usage: rem a, rem b, or rem ab.")
		return false, nil
	}

	for _, e := range targets {
		if err := s.removeEntrant(ctx, e); err != nil {
			return false, err
		}
	}
	return true, nil
}

// removeEntrant deletes the entrant, redistributes its rating deviation
// across survivors, and parks the file in the trash directory.
func (s *Service) removeEntrant(ctx context.Context, e model.Entrant) error {
	// Re-read the rating: an earlier removal in the same command may have
	// already shifted it, and the delta must come from the persisted value.
	current, err := s.store.Entrant(ctx, e.ID)
	if err != nil {
		return err
	}
	delta := rating.RemovalDelta(current.Elo)

	if err := s.store.Remove(ctx, e.ID); err != nil {
		return err
	}
	metrics.RecordEntrantRemoved()

	remaining, err := s.store.Count(ctx)
	if err != nil {
		return err
	}

	if share, ok := rating.RedistributionShare(delta, remaining); ok {
		if _, err := s.store.ShiftRatings(ctx, share, e.ID); err != nil {
			return err
		}
		metrics.RecordRedistribution()
		s.render.Infof("Redistributed %+.1f elo across %d remaining entrants.", delta, remaining)
	} else {
		// Nothing to spread, or nobody left. Not fatal.
		s.log.Warn(ctx, "skipping elo redistribution",
			logger.Float64("delta", delta),
			logger.Int("remaining", remaining))
	}

	if path, err := s.scanner.Trash(e.Path, s.now()); err != nil {
		s.render.Warnf("Could not move %s to trash: %v", e.Path, err)
	} else {
		s.render.Successf("Removed %s (moved to %s).", e.Path, path)
	}
	return nil
}

// handleRename renames files (single name or one-'*' wildcard pairs) on
// disk and in the store, updating the in-flight matchup paths.
func (s *Service) handleRename(ctx context.Context, input string, a, b *model.Entrant) error {
	fields := strings.Fields(input)
	if len(fields) != 3 {
		return fmt.Errorf("usage: ren <old> <new>")
	}
	oldName, newName := fields[1], fields[2]

	var pairs [][2]string
	if strings.Contains(oldName, "*") {
		expanded, err := s.scanner.ExpandWildcard(oldName, newName)
		if err != nil {
			return err
		}
		pairs = expanded
	} else {
		pairs = [][2]string{{oldName, newName}}
	}

	for _, pair := range pairs {
		if err := s.scanner.Rename(pair[0], pair[1]); err != nil {
			return err
		}
		if err := s.store.Rename(ctx, pair[0], pair[1]); err != nil {
			return err
		}
		if a.Path == pair[0] {
			a.Path = pair[1]
		}
		if b.Path == pair[0] {
			b.Path = pair[1]
		}
		s.render.Infof("Renamed %s -> %s", pair[0], pair[1])
	}
	return nil
}
