package tournament

import (
	"math/rand"

	"github.com/okian/duelo/internal/domain/matchmaking"
	"github.com/okian/duelo/internal/domain/model"
)

// topSkewPower is the fixed exponent for the top-skew curation phase. It is
// deliberately more aggressive than any sensible user-supplied power so the
// pool always carries a contingent of strong or under-played entrants.
const topSkewPower = 3.0

// CuratePool selects total unique entrants for a knockout run in two phases,
// both sampling without replacement:
//
//  1. total-topSkew draws weighted by matchmaking.Weight at the caller's
//     power,
//  2. topSkew draws from the remaining candidates at topSkewPower.
//
// Returns the chosen entrant ids.
func CuratePool(rng *rand.Rand, entrants []model.Entrant, total, topSkew int, power float64) ([]int64, error) {
	if topSkew < 0 || topSkew > total {
		return nil, ErrInvalidTopSkew
	}
	if len(entrants) < total {
		return nil, ErrNotEnoughEntrants
	}

	weights := make([]float64, len(entrants))
	for i, e := range entrants {
		weights[i] = matchmaking.Weight(e, power)
	}
	sampler := matchmaking.NewSampler(weights)

	selected := make([]int64, 0, total)
	remaining := make(map[int64]struct{}, len(entrants))
	for _, e := range entrants {
		remaining[e.ID] = struct{}{}
	}

	for i := 0; i < total-topSkew; i++ {
		idx := sampler.Draw(rng)
		selected = append(selected, entrants[idx].ID)
		delete(remaining, entrants[idx].ID)
	}

	if topSkew == 0 {
		return selected, nil
	}

	// Re-weight the survivors of phase one with the fixed exponent.
	leftovers := make([]model.Entrant, 0, len(remaining))
	skewWeights := make([]float64, 0, len(remaining))
	for _, e := range entrants {
		if _, ok := remaining[e.ID]; !ok {
			continue
		}
		leftovers = append(leftovers, e)
		skewWeights = append(skewWeights, matchmaking.Weight(e, topSkewPower))
	}

	skewSampler := matchmaking.NewSampler(skewWeights)
	for i := 0; i < topSkew; i++ {
		idx := skewSampler.Draw(rng)
		selected = append(selected, leftovers[idx].ID)
	}

	return selected, nil
}
