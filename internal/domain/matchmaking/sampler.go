package matchmaking

import (
	"math"
	"math/rand"
)

// Sampler draws indexes without replacement from a weighted population.
// It keeps explicit index/weight slices and removes drawn entries by
// swapping with the tail, so duplicate weights are unambiguous and each
// draw is O(n) over the remaining population.
type Sampler struct {
	indexes []int
	weights []float64
	total   float64
}

// NewSampler builds a sampler over len(weights) candidates. Non-finite or
// negative weights are treated as zero.
func NewSampler(weights []float64) *Sampler {
	s := &Sampler{
		indexes: make([]int, len(weights)),
		weights: make([]float64, len(weights)),
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		s.indexes[i] = i
		s.weights[i] = w
		s.total += w
	}
	return s
}

// Len returns the number of candidates still in the population.
func (s *Sampler) Len() int {
	return len(s.indexes)
}

// Draw removes one candidate and returns its original index, or -1 when
// the population is empty. When all remaining weights are zero or the
// running total has degenerated, the draw falls back to a uniform pick.
func (s *Sampler) Draw(rng *rand.Rand) int {
	n := len(s.indexes)
	if n == 0 {
		return -1
	}

	pos := n - 1
	if s.total > 0 && !math.IsNaN(s.total) {
		target := rng.Float64() * s.total
		acc := 0.0
		for i, w := range s.weights {
			acc += w
			if target < acc {
				pos = i
				break
			}
		}
	} else {
		pos = rng.Intn(n)
	}

	idx := s.indexes[pos]
	s.total -= s.weights[pos]
	if s.total < 0 {
		s.total = 0
	}

	// Swap-remove to keep the remaining population dense.
	s.indexes[pos] = s.indexes[n-1]
	s.weights[pos] = s.weights[n-1]
	s.indexes = s.indexes[:n-1]
	s.weights = s.weights[:n-1]

	return idx
}
