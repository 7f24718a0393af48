// Package matchmaking selects pairs of entrants for a bout using weighted
// random draws: the first pick favors strong and under-played entrants, the
// second favors the most competitive opponent for the first.
package matchmaking

import (
	"math"
	"math/rand"
	"time"

	"github.com/okian/duelo/internal/domain/model"
	"github.com/okian/duelo/internal/domain/rating"
)

// Selector performs weighted random pair selection. Each call draws
// independently; the caller supplies the eligible population already
// filtered for existence, pattern match, pool membership, and elimination
// state.
type Selector struct {
	rng *rand.Rand
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithRand sets the random source, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(s *Selector) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// NewSelector constructs a Selector with default configuration.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight is the first-pick weight for an entrant: the probability of
// beating an average (default-rated) opponent, damped by play count so
// under-played entrants surface. power tunes the damping: 0 ignores play
// count, larger values aggressively prioritize the least played.
func Weight(e model.Entrant, power float64) float64 {
	eloWeight := rating.WinProbability(e.Elo, rating.DefaultElo)
	gamesWeight := 1.0 / math.Pow(float64(e.GamesPlayed()+1), power)
	return eloWeight * gamesWeight
}

// PairWeight is the second-pick weight for a candidate: the probability of
// the lower-rated side upsetting the higher-rated side. It is maximal (0.5)
// when ratings are equal, biasing toward competitive pairings.
func PairWeight(first, candidate model.Entrant) float64 {
	if first.Elo > candidate.Elo {
		return rating.WinProbability(candidate.Elo, first.Elo)
	}
	return rating.WinProbability(first.Elo, candidate.Elo)
}

// PickFirst draws one entrant from the population using Weight.
func (s *Selector) PickFirst(entrants []model.Entrant, power float64) (model.Entrant, error) {
	if len(entrants) == 0 {
		return model.Entrant{}, ErrNoEntrants
	}

	weights := make([]float64, len(entrants))
	for i, e := range entrants {
		weights[i] = Weight(e, power)
	}

	idx := NewSampler(weights).Draw(s.rng)
	return entrants[idx], nil
}

// PickSecond draws an opponent for first using PairWeight. ok is false when
// no candidate remains, which callers treat as "no bout possible".
func (s *Selector) PickSecond(entrants []model.Entrant, first model.Entrant) (model.Entrant, bool) {
	candidates := make([]model.Entrant, 0, len(entrants))
	weights := make([]float64, 0, len(entrants))
	for _, e := range entrants {
		if e.ID == first.ID {
			continue
		}
		candidates = append(candidates, e)
		weights = append(weights, PairWeight(first, e))
	}

	if len(candidates) == 0 {
		return model.Entrant{}, false
	}

	idx := NewSampler(weights).Draw(s.rng)
	return candidates[idx], true
}
