// Package rating implements the Elo mathematics: win probability, zero-sum
// rating updates, and the redistribution share applied when an entrant is
// removed from the ladder.
package rating

import (
	"math"

	"github.com/okian/duelo/internal/domain/model"
)

// Rating constants.
const (
	// KFactor controls the magnitude of rating change per bout.
	KFactor = 32.0

	// DefaultElo is the starting rating for new entrants and the baseline
	// for redistribution on removal.
	DefaultElo = 1000.0

	// negligibleDelta is the threshold below which redistribution is a no-op.
	negligibleDelta = 0.01
)

// WinProbability returns the probability of A beating B under the Elo model.
// WinProbability(a, b) + WinProbability(b, a) == 1 for all inputs.
func WinProbability(eloA, eloB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (eloB-eloA)/400.0))
}

// Apply computes the post-bout ratings for both sides. The sum of the two
// deltas is exactly zero: both sides share the same expected/actual scores,
// mirrored, and the K factor is constant.
func Apply(eloA, eloB float64, result model.Result) (newEloA, newEloB float64) {
	expectedA := WinProbability(eloA, eloB)
	expectedB := 1.0 - expectedA

	actualA, actualB := scores(result)

	newEloA = eloA + KFactor*(actualA-expectedA)
	newEloB = eloB + KFactor*(actualB-expectedB)
	return newEloA, newEloB
}

// scores maps a base result to the actual score pair.
func scores(result model.Result) (float64, float64) {
	switch result {
	case model.ResultA:
		return 1.0, 0.0
	case model.ResultB:
		return 0.0, 1.0
	default:
		return 0.5, 0.5
	}
}

// RemovalDelta is the rating mass an entrant takes with it when removed:
// its deviation from the default starting rating.
func RemovalDelta(removedElo float64) float64 {
	return removedElo - DefaultElo
}

// RedistributionShare returns the per-entrant adjustment that spreads delta
// across remaining survivors. Adding the same share to every survivor keeps
// all pairwise rating gaps, hence all pairwise win probabilities, intact.
// ok is false when the delta is negligible or nobody remains; callers log
// and skip rather than fail.
func RedistributionShare(delta float64, remaining int) (share float64, ok bool) {
	if math.Abs(delta) < negligibleDelta || remaining <= 0 {
		return 0, false
	}
	return delta / float64(remaining), true
}
